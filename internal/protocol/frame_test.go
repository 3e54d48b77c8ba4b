package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, req Request) Request {
	t.Helper()
	frame := Encode(req)

	body, err := ReadFrame(bytes.NewReader(frame))
	require.NoError(t, err)

	got, err := DecodeRequest(body)
	require.NoError(t, err)
	return got
}

func TestEncodeDecodeGet(t *testing.T) {
	got := roundTrip(t, Request{Op: OpGet, Key: "hello"})
	require.Equal(t, OpGet, got.Op)
	require.Equal(t, "hello", got.Key)
}

func TestEncodeDecodeSetWithTTL(t *testing.T) {
	got := roundTrip(t, Request{Op: OpSet, Key: "k", Value: "v", TTL: 42})
	require.Equal(t, OpSet, got.Op)
	require.Equal(t, "k", got.Key)
	require.Equal(t, "v", got.Value)
	require.Equal(t, uint32(42), got.TTL)
}

func TestEncodeDecodeScanRange(t *testing.T) {
	got := roundTrip(t, Request{Op: OpScan, Key: "a", Value: "z"})
	require.Equal(t, OpScan, got.Op)
	require.Equal(t, "a", got.Key)
	require.Equal(t, "z", got.Value)
}

func TestEncodeDecodePing(t *testing.T) {
	got := roundTrip(t, Request{Op: OpPing})
	require.Equal(t, OpPing, got.Op)
	require.Equal(t, "", got.Key)
}

func TestEncodeDecodePingWithMessage(t *testing.T) {
	got := roundTrip(t, Request{Op: OpPing, Key: "hi"})
	require.Equal(t, OpPing, got.Op)
	require.Equal(t, "hi", got.Key)
}

func TestDecodeRequestRejectsUnknownOpcode(t *testing.T) {
	_, err := DecodeRequest([]byte{99})
	require.Error(t, err)
}

func TestDecodeRequestRejectsEmptyFrame(t *testing.T) {
	_, err := DecodeRequest(nil)
	require.Error(t, err)
}

func TestReadFrameRespectsLengthPrefix(t *testing.T) {
	frame := Encode(Request{Op: OpGet, Key: "x"})
	var trailing = []byte("garbage-that-should-not-be-read")
	r := bytes.NewReader(append(frame, trailing...))

	body, err := ReadFrame(r)
	require.NoError(t, err)
	require.Len(t, body, len(frame)-4)

	remaining, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, trailing, remaining)
}
