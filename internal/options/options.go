// Package options provides functional-option configuration for the storage
// engine and the server, following the same OptionFunc pattern used
// throughout this codebase's sibling packages.
package options

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCompactionThreshold is the uncompacted-bytes watermark that
	// triggers an automatic compaction pass after a write.
	DefaultCompactionThreshold int64 = 1024 * 1024 * 1024 // 1 GiB

	// DefaultReadTimeout bounds how long a connection's read loop blocks
	// between shutdown checks.
	DefaultReadTimeout = 500 * time.Millisecond

	// DefaultWorkers is the thread pool size used when none is given.
	DefaultWorkers = 4

	// DefaultEngineName is written to the data directory's sidecar file
	// on first open.
	DefaultEngineName = "kvs"
)

// Options configures an engine.Engine and, optionally, the server that
// wraps it.
type Options struct {
	DataDir             string
	CompactionThreshold int64
	ReadTimeout         time.Duration
	Workers             int
	EngineName          string
	Logger              *zap.SugaredLogger

	// OnCompaction, if set, is called once after every successful
	// compaction pass. The server uses it to drive a metric; tests use it
	// to assert compaction actually ran.
	OnCompaction func()
}

// Option mutates an Options value under construction.
type Option func(*Options)

// New builds an Options from defaults plus the given overrides.
func New(opts ...Option) *Options {
	o := &Options{
		CompactionThreshold: DefaultCompactionThreshold,
		ReadTimeout:         DefaultReadTimeout,
		Workers:             DefaultWorkers,
		EngineName:          DefaultEngineName,
		Logger:              zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDataDir sets the directory segment files and the engine sidecar file
// live under. There is no default; engine.Open rejects an empty DataDir.
func WithDataDir(dir string) Option {
	return func(o *Options) {
		if dir != "" {
			o.DataDir = dir
		}
	}
}

// WithCompactionThreshold overrides the uncompacted-bytes watermark.
func WithCompactionThreshold(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.CompactionThreshold = n
		}
	}
}

// WithReadTimeout overrides the per-connection read deadline used to poll
// for shutdown between frames.
func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ReadTimeout = d
		}
	}
}

// WithWorkers overrides the thread pool size.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithLogger overrides the engine/server logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithOnCompaction registers a callback invoked after every compaction
// pass completes.
func WithOnCompaction(fn func()) Option {
	return func(o *Options) {
		o.OnCompaction = fn
	}
}
