package engine

import (
	"sync"

	"go.uber.org/zap"

	kverrors "github.com/arlindo/kvs/internal/errors"
	"github.com/arlindo/kvs/internal/fsutil"
	"github.com/arlindo/kvs/internal/record"
	"github.com/arlindo/kvs/internal/segment"
)

// writer is the engine's single mutator. Every Set and Remove goes through
// one writer instance guarded by one mutex, mirroring the single-writer
// discipline the on-disk format depends on: readers only ever need to cope
// with a file growing, never with two writers racing on the same offset.
type writer struct {
	mu sync.Mutex

	dir                 string
	currentGen          uint64
	store               *segment.Store
	idx                 *index
	readers             *readerPool
	compactionThreshold int64
	uncompacted         int64
	logger              *zap.SugaredLogger
	onCompaction        func()
}

func (w *writer) set(key, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	body := record.Encode(record.Record{Kind: record.KindSet, Key: []byte(key), Value: []byte(value)}, nil)
	offset, n, err := w.store.Append(body)
	if err != nil {
		return err
	}

	if old, ok := w.idx.Get(key); ok {
		w.uncompacted += old.Length
	}
	w.idx.set(key, Locator{Gen: w.currentGen, Offset: offset, Length: n})

	return w.maybeCompact()
}

func (w *writer) remove(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	old, ok := w.idx.Get(key)
	if !ok {
		return kverrors.NewKeyNotFoundError(key)
	}

	body := record.Encode(record.Record{Kind: record.KindRemove, Key: []byte(key)}, nil)
	_, n, err := w.store.Append(body)
	if err != nil {
		return err
	}

	w.uncompacted += old.Length + n
	w.idx.delete(key)

	return w.maybeCompact()
}

// maybeCompact runs a compaction pass if the writer has accumulated enough
// dead bytes to be worth reclaiming. Called with w.mu already held.
func (w *writer) maybeCompact() error {
	if w.uncompacted < w.compactionThreshold {
		return nil
	}
	return w.compact()
}

// newSegment rotates the active segment to gen, flushing and closing the
// previous one first.
func (w *writer) newSegment(gen uint64) error {
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			return err
		}
	}
	s, err := segment.Open(fsutil.SegmentPath(w.dir, gen))
	if err != nil {
		return err
	}
	w.store = s
	w.currentGen = gen
	return nil
}
