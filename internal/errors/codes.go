// Package errors defines the error taxonomy shared by the storage engine,
// the wire codec and the server. Every failure mode the system produces maps
// to one of the codes below, so callers can branch on Code() instead of
// matching on message text.
package errors

// Code categorizes a failure independently of its message text.
type Code string

const (
	// CodeIO covers failures opening, reading, writing or syncing files.
	CodeIO Code = "IO"

	// CodeCodec covers failures encoding or decoding a wire frame or an
	// on-disk record.
	CodeCodec Code = "CODEC"

	// CodeKeyNotFound is returned when a Get/Remove targets a key that
	// does not exist in the index.
	CodeKeyNotFound Code = "KEY_NOT_FOUND"

	// CodeUnexpectedCommandType is returned when a log record is read
	// back with a command kind that decodes outside the Set/Remove
	// range, or with a Remove kind where the index expects a Set.
	CodeUnexpectedCommandType Code = "UNEXPECTED_COMMAND_TYPE"

	// CodeInvalidCommand is returned when a wire request does not match
	// any known opcode, or an opcode's body is malformed.
	CodeInvalidCommand Code = "INVALID_COMMAND"

	// CodeStringError is a catch-all for errors surfaced verbatim as
	// strings, mirroring configuration and startup failures that have no
	// more specific classification.
	CodeStringError Code = "STRING_ERROR"
)
