package errors

// KVError is the sole concrete error type the engine, codec and server
// produce. It embeds baseError for the cause/code/message plumbing and adds
// the handful of fields worth attaching once a caller has matched on Code().
type KVError struct {
	*baseError

	key     string
	gen     uint64
	offset  int64
	opcode  byte
}

func newKV(cause error, code Code, msg string) *KVError {
	return &KVError{baseError: newBase(cause, code, msg)}
}

// WithKey records which key the failing operation targeted.
func (e *KVError) WithKey(key string) *KVError {
	e.key = key
	return e
}

// WithLocation records which segment generation and byte offset were being
// read or written when the error occurred.
func (e *KVError) WithLocation(gen uint64, offset int64) *KVError {
	e.gen = gen
	e.offset = offset
	return e
}

// WithOpcode records the wire opcode that produced an InvalidCommand error.
func (e *KVError) WithOpcode(op byte) *KVError {
	e.opcode = op
	return e
}

func (e *KVError) Key() string    { return e.key }
func (e *KVError) Gen() uint64    { return e.gen }
func (e *KVError) Offset() int64  { return e.offset }
func (e *KVError) Opcode() byte   { return e.opcode }

// NewIOError wraps a filesystem or syscall failure.
func NewIOError(cause error, msg string) *KVError {
	return newKV(cause, CodeIO, msg)
}

// NewCodecError wraps a wire-frame or on-disk record decoding failure.
func NewCodecError(cause error, msg string) *KVError {
	return newKV(cause, CodeCodec, msg)
}

// NewKeyNotFoundError reports a missing key. The message matches the wire
// protocol's reserved "Key not found" text so the server can forward it
// without rewriting.
func NewKeyNotFoundError(key string) *KVError {
	return newKV(nil, CodeKeyNotFound, "Key not found").WithKey(key)
}

// NewUnexpectedCommandTypeError reports a log record whose decoded kind is
// neither Set nor Remove, or is not the kind the index expects there.
func NewUnexpectedCommandTypeError(gen uint64, offset int64) *KVError {
	return newKV(nil, CodeUnexpectedCommandType, "unexpected command type").
		WithLocation(gen, offset)
}

// NewInvalidCommandError reports a wire request with an unknown opcode or a
// malformed opcode body.
func NewInvalidCommandError(op byte, msg string) *KVError {
	return newKV(nil, CodeInvalidCommand, msg).WithOpcode(op)
}

// NewStringError wraps a message with no richer classification, mirroring
// configuration and startup failures.
func NewStringError(msg string) *KVError {
	return newKV(nil, CodeStringError, msg)
}

// IsKeyNotFound reports whether err is, or wraps, a key-not-found failure.
func IsKeyNotFound(err error) bool {
	var e *KVError
	if stdAs(err, &e) {
		return e.Code() == CodeKeyNotFound
	}
	return false
}
