package protocol

import (
	"testing"

	kverrors "github.com/arlindo/kvs/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestParseResponseOK(t *testing.T) {
	v, err := ParseResponse("OKhello\n")
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestParseResponseOKToleratesMissingNewline(t *testing.T) {
	v, err := ParseResponse("OKhello")
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestParseResponseOKEmpty(t *testing.T) {
	v, err := ParseResponse("OK\n")
	require.NoError(t, err)
	require.Equal(t, "", v)
}

func TestParseResponseKeyNotFound(t *testing.T) {
	_, err := ParseResponse("ErrorKey not found\n")
	require.True(t, kverrors.IsKeyNotFound(err))
}

func TestParseResponseGenericError(t *testing.T) {
	_, err := ParseResponse("Errorsomething went wrong\n")
	require.Error(t, err)
	require.False(t, kverrors.IsKeyNotFound(err))
}

func TestEncodeErrorUsesReservedKeyNotFoundText(t *testing.T) {
	out := EncodeError(kverrors.NewKeyNotFoundError("missing"))
	require.Equal(t, "ErrorKey not found\n", string(out))
}
