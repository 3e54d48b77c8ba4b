// Package segment implements the append-only, length-prefixed file format
// shared by every generation of the log. It is the positioned buffered
// writer/reader layer the engine's writer and readers sit on top of.
package segment

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sync"

	kverrors "github.com/arlindo/kvs/internal/errors"
)

var enc = binary.BigEndian

// lenWidth is the size, in bytes, of the length prefix written before every
// record body.
const lenWidth = 4

// Store wraps a single segment file (`<gen>.log`) with a buffered writer and
// tracks its size so callers can hand out the write position of each record
// for the index to remember.
type Store struct {
	*os.File
	mu   sync.Mutex
	buf  *bufio.Writer
	size int64
}

// Open opens or creates the segment file at path and wraps it in a Store,
// picking up wherever a previous writer left off.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, kverrors.NewIOError(err, "open segment file")
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, kverrors.NewIOError(err, "stat segment file")
	}

	return &Store{
		File: f,
		size: fi.Size(),
		buf:  bufio.NewWriter(f),
	}, nil
}

// Append writes body, length-prefixed, to the end of the segment, flushes
// the write buffer so readers holding their own descriptor on the file can
// see the record, and returns the offset the record starts at and the total
// bytes written (prefix included) so the index locator can be built
// directly from the return values.
func (s *Store) Append(body []byte) (offset int64, n int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset = s.size

	var lenBuf [lenWidth]byte
	enc.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := s.buf.Write(lenBuf[:]); err != nil {
		return 0, 0, kverrors.NewIOError(err, "write record length")
	}
	if _, err := s.buf.Write(body); err != nil {
		return 0, 0, kverrors.NewIOError(err, "write record body")
	}
	if err := s.buf.Flush(); err != nil {
		return 0, 0, kverrors.NewIOError(err, "flush segment buffer")
	}

	n = int64(lenWidth + len(body))
	s.size += n
	return offset, n, nil
}

// ReadAt returns the record body stored at offset, flushing any buffered
// writes first so a reader never misses data its own writer has not yet
// pushed to the file.
func (s *Store) ReadAt(offset int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.buf.Flush(); err != nil {
		return nil, kverrors.NewIOError(err, "flush segment buffer")
	}

	var lenBuf [lenWidth]byte
	if _, err := s.File.ReadAt(lenBuf[:], offset); err != nil {
		return nil, kverrors.NewIOError(err, "read record length")
	}

	body := make([]byte, enc.Uint32(lenBuf[:]))
	if _, err := s.File.ReadAt(body, offset+lenWidth); err != nil {
		return nil, kverrors.NewIOError(err, "read record body")
	}
	return body, nil
}

// Size returns the current length of the segment file, including any bytes
// still sitting in the write buffer.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Close flushes any buffered writes and closes the underlying file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.buf.Flush(); err != nil {
		return kverrors.NewIOError(err, "flush segment buffer on close")
	}
	return s.File.Close()
}

// Scan calls fn with the body and offset of every record in the segment,
// from the start of the file, stopping at the first short read (the usual
// end of a well-formed segment) or when fn returns an error.
func (s *Store) Scan(fn func(offset int64, body []byte) error) error {
	s.mu.Lock()
	if err := s.buf.Flush(); err != nil {
		s.mu.Unlock()
		return kverrors.NewIOError(err, "flush segment buffer before scan")
	}
	s.mu.Unlock()

	r := io.NewSectionReader(s.File, 0, s.Size())
	var offset int64
	for {
		var lenBuf [lenWidth]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return kverrors.NewIOError(err, "scan record length")
		}

		body := make([]byte, enc.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(r, body); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return kverrors.NewIOError(err, "scan record body")
		}

		if err := fn(offset, body); err != nil {
			return err
		}
		offset += int64(lenWidth + len(body))
	}
}
