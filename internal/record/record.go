// Package record encodes and decodes the command records written to segment
// files: a Set carries a key and a value, a Remove carries only a key. The
// wire shape is a handful of protobuf-style varint/length-delimited fields,
// written with protowire directly rather than through generated message
// types, so the record format never depends on running protoc.
package record

import (
	"google.golang.org/protobuf/encoding/protowire"

	kverrors "github.com/arlindo/kvs/internal/errors"
)

// Kind distinguishes a Set record from a Remove record.
type Kind uint64

const (
	// KindSet marks a record that assigns Value to Key.
	KindSet Kind = 1
	// KindRemove marks a record that deletes Key. Value is unused.
	KindRemove Kind = 2
)

const (
	fieldKind  protowire.Number = 1
	fieldKey   protowire.Number = 2
	fieldValue protowire.Number = 3
)

// Record is one decoded command, as read back from a segment file.
type Record struct {
	Kind  Kind
	Key   []byte
	Value []byte
}

// Encode appends the protobuf-wire-format body for r to buf and returns the
// extended slice. There is no generated message type behind this: the three
// fields are written directly with protowire, the same tags a .proto file
// would assign them.
func Encode(r Record, buf []byte) []byte {
	buf = protowire.AppendTag(buf, fieldKind, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(r.Kind))

	buf = protowire.AppendTag(buf, fieldKey, protowire.BytesType)
	buf = protowire.AppendBytes(buf, r.Key)

	if r.Kind == KindSet {
		buf = protowire.AppendTag(buf, fieldValue, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.Value)
	}
	return buf
}

// Decode parses a record body previously produced by Encode. Unknown fields
// are skipped rather than rejected, so the format can grow new fields
// without breaking old readers.
func Decode(body []byte) (Record, error) {
	var r Record
	var sawKind bool

	b := body
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Record{}, kverrors.NewCodecError(protowire.ParseError(n), "malformed record tag")
		}
		b = b[n:]

		switch num {
		case fieldKind:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Record{}, kverrors.NewCodecError(protowire.ParseError(n), "malformed record kind")
			}
			r.Kind = Kind(v)
			sawKind = true
			b = b[n:]
		case fieldKey:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Record{}, kverrors.NewCodecError(protowire.ParseError(n), "malformed record key")
			}
			r.Key = append([]byte(nil), v...)
			b = b[n:]
		case fieldValue:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Record{}, kverrors.NewCodecError(protowire.ParseError(n), "malformed record value")
			}
			r.Value = append([]byte(nil), v...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Record{}, kverrors.NewCodecError(protowire.ParseError(n), "malformed record field")
			}
			b = b[n:]
		}
	}

	if !sawKind || (r.Kind != KindSet && r.Kind != KindRemove) {
		return Record{}, kverrors.NewUnexpectedCommandTypeError(0, 0)
	}
	return r, nil
}
