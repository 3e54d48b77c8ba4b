package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeSet(t *testing.T) {
	r := Record{Kind: KindSet, Key: []byte("k1"), Value: []byte("v1")}
	body := Encode(r, nil)

	got, err := Decode(body)
	require.NoError(t, err)
	require.Equal(t, r, got)
}

func TestEncodeDecodeRemove(t *testing.T) {
	r := Record{Kind: KindRemove, Key: []byte("k1")}
	body := Encode(r, nil)

	got, err := Decode(body)
	require.NoError(t, err)
	require.Equal(t, KindRemove, got.Kind)
	require.Equal(t, []byte("k1"), got.Key)
	require.Empty(t, got.Value)
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	body := Encode(Record{Kind: 99, Key: []byte("k")}, nil)
	_, err := Decode(body)
	require.Error(t, err)
}

func TestEncodeAppendsToExistingBuffer(t *testing.T) {
	prefix := []byte{0xAB, 0xCD}
	body := Encode(Record{Kind: KindSet, Key: []byte("a"), Value: []byte("b")}, prefix)
	require.Equal(t, []byte{0xAB, 0xCD}, body[:2])

	got, err := Decode(body[2:])
	require.NoError(t, err)
	require.Equal(t, []byte("a"), got.Key)
}
