// Package vector validates vector literals on the client side before they
// are sent as the value of a VSet request. The server never parses or
// understands vector syntax; it stores VSet/VGet/VDel values as opaque
// strings like any other key/value pair.
package vector

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	kverrors "github.com/arlindo/kvs/internal/errors"
)

var literal = regexp.MustCompile(`^\[(\s*[^\[\],\s]+(\s*,\s*[^\[\],\s]+)*)?\s*\]$`)

// Validate checks that s is a well-formed vector literal -- a
// bracket-delimited, comma-separated list of finite float32 values -- and
// returns it re-rendered with normalized spacing, or an error describing
// which rule it violates.
func Validate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !literal.MatchString(s) {
		return "", kverrors.NewStringError("Invalid vector format. Expected: [val1,val2,...]")
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if strings.TrimSpace(inner) == "" {
		return "[]", nil
	}
	parts := strings.Split(inner, ",")

	var b strings.Builder
	b.WriteByte('[')
	for i, p := range parts {
		p = strings.TrimSpace(p)
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			// An out-of-range literal parses to +/-Inf with ErrRange rather
			// than failing outright; let the Inf check below classify it.
			var numErr *strconv.NumError
			if !(errors.As(err, &numErr) && numErr.Err == strconv.ErrRange) {
				return "", kverrors.NewStringError("Invalid input syntax for type vector")
			}
		}
		if math.IsNaN(f) {
			return "", kverrors.NewStringError("NAN not allowed in vector")
		}
		if math.IsInf(float64(float32(f)), 0) {
			return "", kverrors.NewStringError("Inf not allowed in vector")
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p)
	}
	b.WriteByte(']')
	return b.String(), nil
}

