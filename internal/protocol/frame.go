// Package protocol implements the binary wire format the server and client
// speak: a 4-byte big-endian length prefix followed by a 1-byte opcode and
// an opcode-specific body, and a text-line response format tolerant of a
// present or absent trailing newline.
package protocol

import (
	"encoding/binary"
	"io"

	kverrors "github.com/arlindo/kvs/internal/errors"
)

var enc = binary.BigEndian

// Opcode identifies which operation a Request carries.
type Opcode byte

const (
	OpGet    Opcode = 1
	OpSet    Opcode = 2
	OpRemove Opcode = 3
	OpScan   Opcode = 4
	OpVGet   Opcode = 5
	OpVSet   Opcode = 6
	OpVDel   Opcode = 7
	OpPing   Opcode = 8
)

func (op Opcode) String() string {
	switch op {
	case OpGet:
		return "Get"
	case OpSet:
		return "Set"
	case OpRemove:
		return "Remove"
	case OpScan:
		return "Scan"
	case OpVGet:
		return "VGet"
	case OpVSet:
		return "VSet"
	case OpVDel:
		return "VDel"
	case OpPing:
		return "Ping"
	default:
		return "Unknown"
	}
}

// Request is a decoded client request. Which fields are meaningful depends
// on Op: Get/VGet/Remove/VDel use Key; Set/VSet use Key, Value and TTL;
// Scan uses Key as the range start and Value as the range end; Ping uses
// Key as the message to echo back (empty means "no message").
type Request struct {
	Op    Opcode
	Key   string
	Value string
	TTL   uint32
}

// Encode serializes req to the wire format: a 4-byte length prefix covering
// everything that follows, the opcode byte, then the opcode's body.
func Encode(req Request) []byte {
	body := []byte{byte(req.Op)}

	switch req.Op {
	case OpGet, OpVGet, OpRemove, OpVDel:
		body = appendString(body, req.Key)
	case OpSet, OpVSet:
		body = appendString(body, req.Key)
		body = appendString(body, req.Value)
		body = append(body, be32(req.TTL)...)
	case OpScan:
		body = appendString(body, req.Key)
		body = appendString(body, req.Value)
	case OpPing:
		body = appendString(body, req.Key)
	}

	out := make([]byte, 4+len(body))
	enc.PutUint32(out[:4], uint32(len(body)))
	copy(out[4:], body)
	return out
}

// DecodeRequest parses the opcode-and-body portion of a frame (everything
// after the 4-byte length prefix, already stripped by ReadFrame).
func DecodeRequest(body []byte) (Request, error) {
	if len(body) < 1 {
		return Request{}, kverrors.NewInvalidCommandError(0, "empty request frame")
	}
	op := Opcode(body[0])
	rest := body[1:]

	switch op {
	case OpGet, OpVGet, OpRemove, OpVDel:
		key, _, err := consumeString(rest)
		if err != nil {
			return Request{}, kverrors.NewInvalidCommandError(byte(op), "malformed key field").WithOpcode(byte(op))
		}
		return Request{Op: op, Key: key}, nil

	case OpSet, OpVSet:
		key, rest, err := consumeString(rest)
		if err != nil {
			return Request{}, kverrors.NewInvalidCommandError(byte(op), "malformed key field")
		}
		value, rest, err := consumeString(rest)
		if err != nil {
			return Request{}, kverrors.NewInvalidCommandError(byte(op), "malformed value field")
		}
		if len(rest) < 4 {
			return Request{}, kverrors.NewInvalidCommandError(byte(op), "missing ttl field")
		}
		ttl := enc.Uint32(rest[:4])
		return Request{Op: op, Key: key, Value: value, TTL: ttl}, nil

	case OpScan:
		start, rest, err := consumeString(rest)
		if err != nil {
			return Request{}, kverrors.NewInvalidCommandError(byte(op), "malformed scan start field")
		}
		end, _, err := consumeString(rest)
		if err != nil {
			return Request{}, kverrors.NewInvalidCommandError(byte(op), "malformed scan end field")
		}
		return Request{Op: op, Key: start, Value: end}, nil

	case OpPing:
		msg, _, err := consumeString(rest)
		if err != nil {
			return Request{}, kverrors.NewInvalidCommandError(byte(op), "malformed ping message field")
		}
		return Request{Op: op, Key: msg}, nil

	default:
		return Request{}, kverrors.NewInvalidCommandError(byte(op), "unknown opcode")
	}
}

// ReadFrame reads one length-prefixed frame from r and returns its body
// (opcode byte plus payload, length prefix stripped).
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := enc.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, kverrors.NewIOError(err, "read request body")
	}
	return body, nil
}

func appendString(b []byte, s string) []byte {
	b = append(b, be32(uint32(len(s)))...)
	return append(b, s...)
}

func be32(v uint32) []byte {
	var b [4]byte
	enc.PutUint32(b[:], v)
	return b[:]
}

func consumeString(b []byte) (string, []byte, error) {
	if len(b) < 4 {
		return "", nil, io.ErrUnexpectedEOF
	}
	n := enc.Uint32(b[:4])
	b = b[4:]
	if uint32(len(b)) < n {
		return "", nil, io.ErrUnexpectedEOF
	}
	return string(b[:n]), b[n:], nil
}
