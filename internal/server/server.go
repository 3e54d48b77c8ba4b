// Package server implements the TCP front end: an accept loop that hands
// every connection off to the thread pool, and a per-connection dispatch
// loop that decodes wire frames and drives an engine.Handle.
//
// The reference implementation this is adapted from polls a non-blocking
// listener and sleeps on WouldBlock. Go's net.Listener.Accept blocks, so
// shutdown here works the idiomatic way instead: Shutdown closes the
// listener to unblock Accept, and a shuttingDown flag lets both the accept
// loop and every connection's read loop tell an intentional close from a
// real error.
package server

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arlindo/kvs/internal/engine"
	"github.com/arlindo/kvs/internal/options"
	"github.com/arlindo/kvs/internal/threadpool"
)

// Server serves the wire protocol over TCP, backed by one engine.Engine and
// a bounded thread pool.
type Server struct {
	eng    *engine.Engine
	opts   *options.Options
	logger *zap.SugaredLogger
	pool   *threadpool.Pool
	m      *Metrics

	mu           sync.Mutex
	ln           net.Listener
	adminSrv     *http.Server
	shuttingDown atomic.Bool
	conns        sync.WaitGroup
}

// New wires an engine, already-built Metrics and a thread pool into a
// Server ready to Serve. Metrics is built by the caller before the engine
// is opened (see cmd/kvs-server) so its RecordCompaction method can be
// passed to options.WithOnCompaction.
func New(eng *engine.Engine, opts *options.Options, m *Metrics) *Server {
	if m == nil {
		m = NewMetrics()
	}
	return &Server{
		eng:    eng,
		opts:   opts,
		logger: opts.Logger,
		pool:   threadpool.New(opts.Workers, opts.Logger),
		m:      m,
	}
}

// Serve runs the accept loop on ln until Shutdown is called. It returns nil
// on a clean shutdown and the underlying error otherwise.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.shuttingDown.Load() {
				return nil
			}
			return err
		}

		s.m.connsAccepted.Inc()
		s.m.connsActive.Inc()
		s.conns.Add(1)
		s.pool.Submit(func() {
			defer s.conns.Done()
			defer s.m.connsActive.Dec()
			s.handleConn(conn)
		})
	}
}

// ServeAdmin starts the /metrics and /healthz HTTP listener on addr. It
// blocks until Shutdown closes the listener.
func (s *Server) ServeAdmin(addr string) error {
	srv := &http.Server{Addr: addr, Handler: adminRouter(s.m)}
	s.mu.Lock()
	s.adminSrv = srv
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections, waits for in-flight
// connections to finish their current frame, and stops the thread pool.
func (s *Server) Shutdown() error {
	s.shuttingDown.Store(true)

	s.mu.Lock()
	ln := s.ln
	adminSrv := s.adminSrv
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	if adminSrv != nil {
		adminSrv.Close()
	}

	s.conns.Wait()
	s.pool.Stop()
	return s.eng.Close()
}
