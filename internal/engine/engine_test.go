package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	kverrors "github.com/arlindo/kvs/internal/errors"
	"github.com/arlindo/kvs/internal/fsutil"
	"github.com/arlindo/kvs/internal/options"
)

func open(t *testing.T, opts ...options.Option) *Engine {
	t.Helper()
	o := options.New(append([]options.Option{options.WithDataDir(t.TempDir())}, opts...)...)
	eng, err := Open(o)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestSetGetRoundTrip(t *testing.T) {
	eng := open(t)
	h := eng.NewHandle()
	defer h.Close()

	require.NoError(t, h.Set("k1", "v1"))
	v, err := h.Get("k1")
	require.NoError(t, err)
	require.Equal(t, "v1", v)
}

func TestGetMissingKeyReturnsKeyNotFound(t *testing.T) {
	eng := open(t)
	h := eng.NewHandle()
	defer h.Close()

	_, err := h.Get("nope")
	require.True(t, kverrors.IsKeyNotFound(err))
}

func TestRemoveMissingKeyReturnsKeyNotFound(t *testing.T) {
	eng := open(t)
	h := eng.NewHandle()
	defer h.Close()

	err := h.Remove("nope")
	require.True(t, kverrors.IsKeyNotFound(err))
}

func TestSetOverwriteReturnsLatestValue(t *testing.T) {
	eng := open(t)
	h := eng.NewHandle()
	defer h.Close()

	require.NoError(t, h.Set("k", "v1"))
	require.NoError(t, h.Set("k", "v2"))

	v, err := h.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v2", v)
}

func TestRemoveThenGetIsKeyNotFound(t *testing.T) {
	eng := open(t)
	h := eng.NewHandle()
	defer h.Close()

	require.NoError(t, h.Set("k", "v"))
	require.NoError(t, h.Remove("k"))

	_, err := h.Get("k")
	require.True(t, kverrors.IsKeyNotFound(err))
}

func TestScanReturnsOrderedRangeInclusiveOfEnd(t *testing.T) {
	eng := open(t)
	h := eng.NewHandle()
	defer h.Close()

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, h.Set(k, k+"-v"))
	}

	got, err := h.Scan("a", "c")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "a", got[0].Key)
	require.Equal(t, "b", got[1].Key)
	require.Equal(t, "c", got[2].Key)
}

func TestReopenReplaysSegmentsIntoIndex(t *testing.T) {
	dir := t.TempDir()
	o := options.New(options.WithDataDir(dir))

	eng1, err := Open(o)
	require.NoError(t, err)
	h1 := eng1.NewHandle()
	require.NoError(t, h1.Set("k", "v"))
	require.NoError(t, h1.Set("k2", "v2"))
	require.NoError(t, h1.Remove("k2"))
	h1.Close()
	require.NoError(t, eng1.Close())

	eng2, err := Open(o)
	require.NoError(t, err)
	defer eng2.Close()

	h2 := eng2.NewHandle()
	defer h2.Close()

	v, err := h2.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	_, err = h2.Get("k2")
	require.True(t, kverrors.IsKeyNotFound(err))
}

func TestCompactionReclaimsStaleSegmentsAndPreservesLiveData(t *testing.T) {
	var compactions int
	eng := open(t,
		options.WithCompactionThreshold(200),
		options.WithOnCompaction(func() { compactions++ }),
	)
	h := eng.NewHandle()
	defer h.Close()

	for i := 0; i < 200; i++ {
		require.NoError(t, h.Set("k", fmt.Sprintf("value-%d", i)))
	}

	require.Greater(t, compactions, 0)

	v, err := h.Get("k")
	require.NoError(t, err)
	require.Equal(t, "value-199", v)

	gens, err := fsutil.SortedGens(eng.dir)
	require.NoError(t, err)
	require.Len(t, gens, 2, "compaction should leave exactly the compacted segment and the active segment on disk")
}

func TestEngineMismatchSidecarIsRejected(t *testing.T) {
	dir := t.TempDir()
	o := options.New(options.WithDataDir(dir))
	eng, err := Open(o)
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	o2 := options.New(options.WithDataDir(dir))
	o2.EngineName = "sled"
	_, err = Open(o2)
	require.Error(t, err)
}
