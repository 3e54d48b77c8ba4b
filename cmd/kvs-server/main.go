// Command kvs-server runs the storage engine behind the wire protocol.
package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap/zapcore"

	"github.com/arlindo/kvs/internal/engine"
	"github.com/arlindo/kvs/internal/options"
	"github.com/arlindo/kvs/internal/server"
	"github.com/arlindo/kvs/pkg/logger"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "address to listen on for client connections")
	adminAddr := flag.String("admin-addr", "", "address to serve /metrics and /healthz on (disabled if empty)")
	dataDir := flag.String("data-dir", "", "directory to store segment files in")
	workers := flag.Int("workers", options.DefaultWorkers, "thread pool size")
	flag.Parse()

	if *dataDir == "" {
		log.Fatal("-data-dir is required")
	}

	lg := logger.New(zapcore.InfoLevel)
	defer lg.Sync()

	m := server.NewMetrics()
	opts := options.New(
		options.WithDataDir(*dataDir),
		options.WithWorkers(*workers),
		options.WithLogger(lg),
		options.WithOnCompaction(m.RecordCompaction),
	)

	eng, err := engine.Open(opts)
	if err != nil {
		lg.Fatalw("failed to open engine", "err", err)
	}

	srv := server.New(eng, opts, m)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		lg.Fatalw("failed to listen", "addr", *addr, "err", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		lg.Info("shutting down")
		srv.Shutdown()
	}()

	if *adminAddr != "" {
		go func() {
			if err := srv.ServeAdmin(*adminAddr); err != nil {
				lg.Errorw("admin listener failed", "err", err)
			}
		}()
	}

	lg.Infow("listening", "addr", *addr)
	if err := srv.Serve(ln); err != nil {
		lg.Fatalw("server exited", "err", err)
	}
}
