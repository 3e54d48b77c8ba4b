package engine

import (
	"os"

	"github.com/benbjohnson/immutable"

	"github.com/arlindo/kvs/internal/fsutil"
	"github.com/arlindo/kvs/internal/record"
	"github.com/arlindo/kvs/internal/segment"
)

// compact rewrites every live record into a fresh segment, publishes the
// result, and deletes the segments that are now entirely dead. It follows
// the gen+1/gen+2 rotation this engine's on-disk format depends on: the
// compacted data lands in currentGen+1, new writes after the rotation land
// in currentGen+2, and readers always have a generation to fall back on
// while the rewrite is in flight because the old segments are only deleted
// once the new snapshot and safe point are both published. Called with
// w.mu already held.
func (w *writer) compact() error {
	compactionGen := w.currentGen + 1
	newActiveGen := w.currentGen + 2

	compactionStore, err := segment.Open(fsutil.SegmentPath(w.dir, compactionGen))
	if err != nil {
		return err
	}

	newMap := &immutable.SortedMap[string, Locator]{}
	rd := w.readers.client()

	it := w.idx.Snapshot().Iterator()
	for !it.Done() {
		key, loc, _ := it.Next()

		body, err := rd.readAt(loc)
		if err != nil {
			compactionStore.Close()
			rd.close()
			return err
		}

		cmd, err := record.Decode(body)
		if err != nil {
			compactionStore.Close()
			rd.close()
			return err
		}

		newBody := record.Encode(cmd, nil)
		offset, n, err := compactionStore.Append(newBody)
		if err != nil {
			compactionStore.Close()
			rd.close()
			return err
		}
		newMap = newMap.Set(key, Locator{Gen: compactionGen, Offset: offset, Length: n})
	}
	rd.close()

	if err := w.newSegment(newActiveGen); err != nil {
		compactionStore.Close()
		return err
	}

	if err := compactionStore.Close(); err != nil {
		return err
	}

	// Publish the rewritten index before the safe point: any reader that
	// observes the new locators next can safely resolve them against
	// compactionGen, and only after the safe point advances do stale
	// per-handle file descriptors get closed.
	w.idx.replace(newMap)
	w.uncompacted = 0
	w.readers.publishSafePoint(compactionGen)

	if w.logger != nil {
		w.logger.Infow("compaction complete",
			"compaction_gen", compactionGen,
			"new_active_gen", newActiveGen,
			"live_keys", newMap.Len(),
		)
	}

	if w.onCompaction != nil {
		w.onCompaction()
	}

	stale, err := fsutil.SortedGens(w.dir)
	if err != nil {
		return err
	}
	for _, gen := range stale {
		if gen < compactionGen {
			os.Remove(fsutil.SegmentPath(w.dir, gen))
		}
	}

	return nil
}
