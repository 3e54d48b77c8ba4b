// Package engine is the log-structured storage engine: append-only segment
// files plus an in-memory index, online compaction, and per-handle readers
// that tolerate the writer rotating segments out from under them.
package engine

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	kverrors "github.com/arlindo/kvs/internal/errors"
	"github.com/arlindo/kvs/internal/fsutil"
	"github.com/arlindo/kvs/internal/options"
	"github.com/arlindo/kvs/internal/record"
	"github.com/arlindo/kvs/internal/segment"
)

const sidecarName = "engine"

// Engine owns a data directory: the segment files on disk, the in-memory
// index over them, and the single writer every mutation funnels through.
type Engine struct {
	dir     string
	idx     *index
	writer  *writer
	readers *readerPool
	logger  *zap.SugaredLogger
}

// Open replays every segment file in dir, in generation order, to rebuild
// the index, then returns an Engine ready to serve Handles.
func Open(opts *options.Options) (*Engine, error) {
	if opts.DataDir == "" {
		return nil, kverrors.NewStringError("data directory is required")
	}
	if err := fsutil.EnsureDir(opts.DataDir); err != nil {
		return nil, err
	}
	if err := checkSidecar(opts.DataDir, opts.EngineName); err != nil {
		return nil, err
	}

	idx := newIndex()
	readers := newReaderPool(opts.DataDir)

	gens, err := fsutil.SortedGens(opts.DataDir)
	if err != nil {
		return nil, err
	}

	var uncompacted int64
	for _, gen := range gens {
		u, err := replaySegment(opts.DataDir, gen, idx)
		if err != nil {
			return nil, err
		}
		uncompacted += u
	}

	currentGen := uint64(1)
	if len(gens) > 0 {
		currentGen = gens[len(gens)-1] + 1
	}

	w := &writer{
		dir:                 opts.DataDir,
		idx:                 idx,
		readers:             readers,
		compactionThreshold: opts.CompactionThreshold,
		uncompacted:         uncompacted,
		logger:              opts.Logger,
		onCompaction:        opts.OnCompaction,
	}
	if err := w.newSegment(currentGen); err != nil {
		return nil, err
	}

	return &Engine{
		dir:     opts.DataDir,
		idx:     idx,
		writer:  w,
		readers: readers,
		logger:  opts.Logger,
	}, nil
}

// replaySegment scans one segment file and applies every record it
// contains to idx, returning the number of dead bytes the segment
// contributed (records later overwritten or removed within the same
// replay).
func replaySegment(dir string, gen uint64, idx *index) (int64, error) {
	s, err := segment.Open(fsutil.SegmentPath(dir, gen))
	if err != nil {
		return 0, err
	}
	defer s.Close()

	var uncompacted int64
	err = s.Scan(func(offset int64, body []byte) error {
		cmd, err := record.Decode(body)
		if err != nil {
			return err
		}
		n := int64(len(body)) + 4

		switch cmd.Kind {
		case record.KindSet:
			if old, ok := idx.Get(string(cmd.Key)); ok {
				uncompacted += old.Length
			}
			idx.set(string(cmd.Key), Locator{Gen: gen, Offset: offset, Length: n})
		case record.KindRemove:
			if old, ok := idx.Get(string(cmd.Key)); ok {
				uncompacted += old.Length + n
			}
			idx.delete(string(cmd.Key))
		default:
			return kverrors.NewUnexpectedCommandTypeError(gen, offset)
		}
		return nil
	})
	return uncompacted, err
}

// checkSidecar writes the engine-name sidecar file on first open, or
// verifies it agrees with name on reopen.
func checkSidecar(dir, name string) error {
	path := filepath.Join(dir, sidecarName)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return os.WriteFile(path, []byte(name), 0644)
	}
	if err != nil {
		return kverrors.NewIOError(err, "read engine sidecar")
	}
	if string(b) != name {
		return kverrors.NewStringError("engine mismatch: store was created with " + string(b))
	}
	return nil
}

// NewHandle returns a Handle with its own private reader cache. Handles are
// cheap; the server opens one per connection so concurrent Gets never
// share a file descriptor.
func (e *Engine) NewHandle() *Handle {
	return &Handle{eng: e, r: e.readers.client()}
}

// Close flushes and closes the active segment. Any outstanding Handles must
// stop using the engine first.
func (e *Engine) Close() error {
	e.writer.mu.Lock()
	defer e.writer.mu.Unlock()
	if e.writer.store != nil {
		return e.writer.store.Close()
	}
	return nil
}

// Len returns the number of live keys.
func (e *Engine) Len() int {
	return e.idx.Len()
}
