package engine

import (
	kverrors "github.com/arlindo/kvs/internal/errors"
	"github.com/arlindo/kvs/internal/record"
)

// Handle is a caller's view onto an Engine: it shares the engine's writer
// and index but owns a private reader, so one slow Get never blocks
// another handle's file descriptor cache.
type Handle struct {
	eng *Engine
	r   *reader
}

// KV is one key/value pair returned by Scan.
type KV struct {
	Key   string
	Value string
}

// Get returns the current value of key, or a key-not-found error.
func (h *Handle) Get(key string) (string, error) {
	loc, ok := h.eng.idx.Get(key)
	if !ok {
		return "", kverrors.NewKeyNotFoundError(key)
	}

	body, err := h.r.readAt(loc)
	if err != nil {
		return "", err
	}
	cmd, err := record.Decode(body)
	if err != nil {
		return "", err
	}
	if cmd.Kind != record.KindSet {
		return "", kverrors.NewUnexpectedCommandTypeError(loc.Gen, loc.Offset)
	}
	return string(cmd.Value), nil
}

// Set assigns value to key, appending a record to the active segment.
func (h *Handle) Set(key, value string) error {
	return h.eng.writer.set(key, value)
}

// Remove deletes key. It returns a key-not-found error if key is not
// currently live.
func (h *Handle) Remove(key string) error {
	return h.eng.writer.remove(key)
}

// Scan returns every live key/value pair with key in [start, end], ordered
// by key. end is inclusive; an empty end means "through the end of the
// keyspace".
func (h *Handle) Scan(start, end string) ([]KV, error) {
	snap := h.eng.idx.Snapshot()
	it := snap.Iterator()
	it.Seek(start)

	var out []KV
	for !it.Done() {
		key, loc, ok := it.Next()
		if !ok {
			break
		}
		if end != "" && key > end {
			break
		}

		body, err := h.r.readAt(loc)
		if err != nil {
			return nil, err
		}
		cmd, err := record.Decode(body)
		if err != nil {
			return nil, err
		}
		out = append(out, KV{Key: key, Value: string(cmd.Value)})
	}
	return out, nil
}

// Close releases the handle's private file descriptor cache.
func (h *Handle) Close() {
	h.r.close()
}
