// Package clientlib is a thin, synchronous client for the wire protocol:
// connect, send one request, read one response line. It is the Go
// analogue of this system's async KvClient, minus the connection retry
// loop and the REPL built on top of it; neither exists in this repository
// (cmd/kvs-client sends one request per invocation).
package clientlib

import (
	"bufio"
	"net"
	"time"

	"github.com/arlindo/kvs/internal/protocol"
)

// Client is a single connection to a server speaking the wire protocol.
// It is not safe for concurrent use by multiple goroutines.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to addr and returns a ready Client.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// DialTimeout is Dial with a connect deadline.
func DialTimeout(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) roundTrip(req protocol.Request) (string, error) {
	if _, err := c.conn.Write(protocol.Encode(req)); err != nil {
		return "", err
	}

	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return protocol.ParseResponse(line)
}

// Get fetches the current value of key.
func (c *Client) Get(key string) (string, error) {
	return c.roundTrip(protocol.Request{Op: protocol.OpGet, Key: key})
}

// Set assigns value to key.
func (c *Client) Set(key, value string) error {
	_, err := c.roundTrip(protocol.Request{Op: protocol.OpSet, Key: key, Value: value})
	return err
}

// Remove deletes key.
func (c *Client) Remove(key string) error {
	_, err := c.roundTrip(protocol.Request{Op: protocol.OpRemove, Key: key})
	return err
}

// VGet, VSet and VDel mirror Get/Set/Remove for vector-typed values. Vector
// literal validation happens in the vector package before VSet is called;
// the wire protocol and the server treat the value as an opaque string
// either way.
func (c *Client) VGet(key string) (string, error) {
	return c.roundTrip(protocol.Request{Op: protocol.OpVGet, Key: key})
}

func (c *Client) VSet(key, value string) error {
	_, err := c.roundTrip(protocol.Request{Op: protocol.OpVSet, Key: key, Value: value})
	return err
}

func (c *Client) VDel(key string) error {
	_, err := c.roundTrip(protocol.Request{Op: protocol.OpVDel, Key: key})
	return err
}

// Scan returns the raw "value value ..." payload (values only, space
// separated, in key order) for every live key in [start, end], end
// inclusive.
func (c *Client) Scan(start, end string) (string, error) {
	return c.roundTrip(protocol.Request{Op: protocol.OpScan, Key: start, Value: end})
}

// Ping checks that the server is responsive. The server echoes msg back,
// or replies "PONG" if msg is empty.
func (c *Client) Ping(msg string) (string, error) {
	return c.roundTrip(protocol.Request{Op: protocol.OpPing, Key: msg})
}
