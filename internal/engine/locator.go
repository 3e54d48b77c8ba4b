package engine

// Locator is where a live key's most recent record lives on disk: which
// segment generation, at what byte offset, and how many bytes the record
// occupies on disk, length prefix included (so dead-byte accounting during
// compaction adds up to whole records, not just bodies).
type Locator struct {
	Gen    uint64
	Offset int64
	Length int64
}
