package engine

import (
	"sync"
	"sync/atomic"

	"github.com/arlindo/kvs/internal/fsutil"
	"github.com/arlindo/kvs/internal/segment"
)

// readerPool hands out per-handle readers, each with its own cache of open
// segment file descriptors, and tells them which generations are stale once
// compaction retires a segment. This is the direct analogue of this
// engine's clone-per-thread reader: every Handle gets its own readerPool
// client so concurrent Gets never contend on a shared file descriptor.
type readerPool struct {
	dir       string
	safePoint atomic.Uint64
}

func newReaderPool(dir string) *readerPool {
	return &readerPool{dir: dir}
}

// publishSafePoint records that every generation below gen has been fully
// compacted away; any reader still holding a handle to one of those
// generations should close it the next time it looks anything up.
func (p *readerPool) publishSafePoint(gen uint64) {
	p.safePoint.Store(gen)
}

func (p *readerPool) client() *reader {
	return &reader{pool: p, handles: make(map[uint64]*segment.Store)}
}

// reader is a single handle's private segment file cache. It is not safe
// for concurrent use by multiple goroutines, matching the one-reader-per-
// worker model the server and thread pool establish.
type reader struct {
	pool    *readerPool
	mu      sync.Mutex
	handles map[uint64]*segment.Store
}

// closeStaleHandles drops and closes any cached file descriptor for a
// generation compaction has since deleted from disk.
func (r *reader) closeStaleHandles() {
	sp := r.pool.safePoint.Load()
	for gen, h := range r.handles {
		if gen < sp {
			h.Close()
			delete(r.handles, gen)
		}
	}
}

func (r *reader) readAt(loc Locator) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeStaleHandles()

	h, ok := r.handles[loc.Gen]
	if !ok {
		var err error
		h, err = segment.Open(fsutil.SegmentPath(r.pool.dir, loc.Gen))
		if err != nil {
			return nil, err
		}
		r.handles[loc.Gen] = h
	}
	return h.ReadAt(loc.Offset)
}

// close closes every cached handle. Called when a Handle is discarded.
func (r *reader) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for gen, h := range r.handles {
		h.Close()
		delete(r.handles, gen)
	}
}
