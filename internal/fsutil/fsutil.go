// Package fsutil has the small set of filesystem helpers the engine needs to
// discover and name segment files, trimmed from the equivalent
// directory-scanning helpers of this codebase's storage layer.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	kverrors "github.com/arlindo/kvs/internal/errors"
)

// SegmentExt is the file extension every segment log uses.
const SegmentExt = ".log"

// SegmentPath returns the path of the segment file for generation gen
// inside dir.
func SegmentPath(dir string, gen uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d%s", gen, SegmentExt))
}

// SortedGens returns the generation numbers of every segment file in dir,
// ascending. Non-segment files are ignored.
func SortedGens(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, kverrors.NewIOError(err, "read data directory")
	}

	var gens []uint64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, SegmentExt) {
			continue
		}
		gen, err := strconv.ParseUint(strings.TrimSuffix(name, SegmentExt), 10, 64)
		if err != nil {
			continue
		}
		gens = append(gens, gen)
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, nil
}

// EnsureDir creates dir (and parents) if it does not already exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return kverrors.NewIOError(err, "create data directory")
	}
	return nil
}
