package segment

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndReadAt(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "1.log"))
	require.NoError(t, err)
	defer s.Close()

	off1, n1, err := s.Append([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, int64(0), off1)
	require.Equal(t, int64(4+5), n1)

	off2, _, err := s.Append([]byte("world!"))
	require.NoError(t, err)
	require.Equal(t, n1, off2)

	got, err := s.ReadAt(off1)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	got2, err := s.ReadAt(off2)
	require.NoError(t, err)
	require.Equal(t, []byte("world!"), got2)
}

func TestScanVisitsEveryRecordInOrder(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "1.log"))
	require.NoError(t, err)
	defer s.Close()

	want := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}
	for _, b := range want {
		_, _, err := s.Append(b)
		require.NoError(t, err)
	}

	var got [][]byte
	err = s.Scan(func(offset int64, body []byte) error {
		got = append(got, body)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestReopenPicksUpExistingSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1.log")
	s1, err := Open(path)
	require.NoError(t, err)
	_, _, err = s1.Append([]byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	require.Equal(t, int64(4+len("persisted")), s2.Size())
}
