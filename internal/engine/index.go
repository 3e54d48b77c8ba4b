package engine

import (
	"sync/atomic"

	"github.com/benbjohnson/immutable"
)

// index is the concurrent ordered map from key to Locator. It is built the
// way this codebase's write-ahead log keeps its segment table: an immutable,
// persistent map published through an atomic pointer. The writer goroutine
// is the only mutator; it builds a new snapshot per mutation and swaps the
// pointer, so every reader's Snapshot() sees a consistent, point-in-time
// view with no locking and no risk of observing a torn update.
type index struct {
	snap atomic.Pointer[immutable.SortedMap[string, Locator]]
}

func newIndex() *index {
	idx := &index{}
	idx.snap.Store(&immutable.SortedMap[string, Locator]{})
	return idx
}

// Snapshot returns the current immutable map. Safe to call and iterate from
// any goroutine; the map returned never changes underneath the caller.
func (i *index) Snapshot() *immutable.SortedMap[string, Locator] {
	return i.snap.Load()
}

// Get looks up key in the current snapshot.
func (i *index) Get(key string) (Locator, bool) {
	return i.Snapshot().Get(key)
}

// Len returns the number of live keys in the current snapshot.
func (i *index) Len() int {
	return i.Snapshot().Len()
}

// set publishes a new snapshot with key mapped to loc. Called only from the
// writer's single goroutine.
func (i *index) set(key string, loc Locator) {
	next := i.snap.Load().Set(key, loc)
	i.snap.Store(next)
}

// delete publishes a new snapshot with key removed. Called only from the
// writer's single goroutine.
func (i *index) delete(key string) {
	next := i.snap.Load().Delete(key)
	i.snap.Store(next)
}

// replace atomically swaps in an entirely new snapshot, used once
// compaction has rewritten every live locator onto the new generation.
func (i *index) replace(m *immutable.SortedMap[string, Locator]) {
	i.snap.Store(m)
}
