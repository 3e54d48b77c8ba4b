package server

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arlindo/kvs/internal/engine"
	"github.com/arlindo/kvs/internal/options"
	"github.com/arlindo/kvs/internal/protocol"
	"github.com/arlindo/kvs/pkg/logger"
)

func newTestServer(t *testing.T) (*Server, net.Listener) {
	t.Helper()
	opts := options.New(
		options.WithDataDir(t.TempDir()),
		options.WithLogger(logger.Nop()),
		options.WithWorkers(2),
	)
	eng, err := engine.Open(opts)
	require.NoError(t, err)

	srv := New(eng, opts, NewMetrics())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown() })
	return srv, ln
}

func TestServerSetGetRemoveRoundTrip(t *testing.T) {
	_, ln := newTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, writeAndDiscard(conn, protocol.Request{Op: protocol.OpSet, Key: "k", Value: "v"}))
	val, err := readValue(t, conn, protocol.Request{Op: protocol.OpGet, Key: "k"})
	require.NoError(t, err)
	require.Equal(t, "v", val)

	require.NoError(t, writeAndDiscard(conn, protocol.Request{Op: protocol.OpRemove, Key: "k"}))
	_, err = readValue(t, conn, protocol.Request{Op: protocol.OpGet, Key: "k"})
	require.Error(t, err)
}

func TestServerPingWithoutMessageRepliesPong(t *testing.T) {
	_, ln := newTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	val, err := readValue(t, conn, protocol.Request{Op: protocol.OpPing})
	require.NoError(t, err)
	require.Equal(t, "PONG", val)
}

func TestServerPingWithMessageEchoesIt(t *testing.T) {
	_, ln := newTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	val, err := readValue(t, conn, protocol.Request{Op: protocol.OpPing, Key: "hi"})
	require.NoError(t, err)
	require.Equal(t, "hi", val)
}

func TestServerScanReturnsValuesInInclusiveRange(t *testing.T) {
	_, ln := newTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, writeAndDiscard(conn, protocol.Request{Op: protocol.OpSet, Key: k, Value: k + "v"}))
	}

	line := sendRaw(t, conn, protocol.Request{Op: protocol.OpScan, Key: "a", Value: "c"})
	got, err := protocol.ParseResponse(line)
	require.NoError(t, err)
	require.Contains(t, got, "av")
	require.Contains(t, got, "bv")
	require.Contains(t, got, "cv")
	require.NotContains(t, got, "dv")
}

func writeAndDiscard(conn net.Conn, req protocol.Request) error {
	if _, err := conn.Write(protocol.Encode(req)); err != nil {
		return err
	}
	_, err := bufio.NewReader(conn).ReadString('\n')
	return err
}

func sendRaw(t *testing.T, conn net.Conn, req protocol.Request) string {
	t.Helper()
	_, err := conn.Write(protocol.Encode(req))
	require.NoError(t, err)
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	return line
}

func readValue(t *testing.T, conn net.Conn, req protocol.Request) (string, error) {
	t.Helper()
	line := sendRaw(t, conn, req)
	return protocol.ParseResponse(line)
}
