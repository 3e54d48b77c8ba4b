package protocol

import (
	"strings"

	kverrors "github.com/arlindo/kvs/internal/errors"
)

// keyNotFoundMessage is the reserved response text the client maps back to
// a key-not-found error rather than a generic StringError.
const keyNotFoundMessage = "Key not found"

// EncodeOK formats a successful response carrying a single value (Get,
// VGet, Ping) or no value at all (Set, Remove, VSet, VDel).
func EncodeOK(value string) []byte {
	return []byte("OK" + value + "\n")
}

// EncodeOKValues formats a successful Scan response: every matching value,
// space-separated, on one line.
func EncodeOKValues(values []string) []byte {
	return []byte("OK" + strings.Join(values, " ") + "\n")
}

// EncodeError formats a failed response. If err is a key-not-found error
// the reserved "Key not found" text is used so the client can distinguish
// it from any other failure.
func EncodeError(err error) []byte {
	msg := err.Error()
	if kverrors.IsKeyNotFound(err) {
		msg = keyNotFoundMessage
	}
	return []byte("Error" + msg + "\n")
}

// ParseResponse interprets a response line, tolerating a trailing newline
// whether or not the transport delivered one. It returns the payload after
// "OK" on success, or an error on failure -- a key-not-found error if the
// message matches the reserved text, a generic error otherwise.
func ParseResponse(line string) (string, error) {
	line = strings.TrimSuffix(line, "\n")

	if strings.HasPrefix(line, "OK") {
		return line[len("OK"):], nil
	}
	if strings.HasPrefix(line, "Error") {
		msg := line[len("Error"):]
		if strings.TrimSpace(msg) == keyNotFoundMessage {
			return "", kverrors.NewKeyNotFoundError("")
		}
		return "", kverrors.NewStringError(msg)
	}
	return "", kverrors.NewCodecError(nil, "unrecognized response line")
}
