package server

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/arlindo/kvs/internal/engine"
	kverrors "github.com/arlindo/kvs/internal/errors"
	"github.com/arlindo/kvs/internal/protocol"
)

// handleConn reads frames off conn until the client disconnects or the
// server shuts down, dispatching each to the engine and writing back a
// response line. Each connection gets its own engine.Handle so concurrent
// connections never share a reader's file descriptor cache.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	h := s.eng.NewHandle()
	defer h.Close()

	for {
		if s.shuttingDown.Load() {
			return
		}

		conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		body, err := protocol.ReadFrame(conn)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			s.logger.Debugw("connection read failed", "remote", conn.RemoteAddr(), "err", err)
			return
		}

		resp := s.dispatch(h, body)
		if _, err := conn.Write(resp); err != nil {
			s.logger.Debugw("connection write failed", "remote", conn.RemoteAddr(), "err", err)
			return
		}
	}
}

// dispatch decodes one request body and runs it against h, returning the
// encoded response line.
func (s *Server) dispatch(h *engine.Handle, body []byte) []byte {
	req, err := protocol.DecodeRequest(body)
	if err != nil {
		s.m.recordError("invalid", string(kverrors.GetCode(err)))
		return protocol.EncodeError(err)
	}

	op := req.Op.String()
	s.m.recordRequest(op)

	var (
		value  string
		opErr  error
		result []byte
	)

	switch req.Op {
	case protocol.OpGet, protocol.OpVGet:
		value, opErr = h.Get(req.Key)

	case protocol.OpSet, protocol.OpVSet:
		opErr = h.Set(req.Key, req.Value)

	case protocol.OpRemove, protocol.OpVDel:
		opErr = h.Remove(req.Key)

	case protocol.OpScan:
		var kvs []engine.KV
		kvs, opErr = h.Scan(req.Key, req.Value)
		if opErr == nil {
			values := make([]string, 0, len(kvs))
			for _, kv := range kvs {
				values = append(values, kv.Value)
			}
			result = protocol.EncodeOKValues(values)
		}

	case protocol.OpPing:
		if req.Key != "" {
			value = req.Key
		} else {
			value = "PONG"
		}

	default:
		opErr = kverrors.NewInvalidCommandError(byte(req.Op), "unsupported opcode")
	}

	if result != nil {
		return result
	}
	if opErr != nil {
		s.m.recordError(op, string(kverrors.GetCode(opErr)))
		return protocol.EncodeError(opErr)
	}
	return protocol.EncodeOK(value)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
