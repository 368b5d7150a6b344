package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
)

// Request represents an IPC request.
type Request struct {
	Method    string `json:"method"`
	Region    string `json:"region,omitempty"`
	SubRegion string `json:"sub_region,omitempty"`
	Format    string `json:"format,omitempty"`
}

// Response represents an IPC response.
type Response struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn wraps a Unix socket connection with framed JSON.
type Conn struct {
	conn net.Conn
	rw   *bufio.ReadWriter
}

// Dial connects to a Unix socket.
func Dial(socketPath string) (*Conn, error) {
	c, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: c, rw: bufio.NewReadWriter(bufio.NewReader(c), bufio.NewWriter(c))}, nil
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// SendRequest writes a framed JSON request.
func (c *Conn) SendRequest(req Request) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if _, err := c.rw.Write(append(b, '\n')); err != nil {
		return err
	}
	return c.rw.Flush()
}

// ReadResponse reads one framed JSON response.
func (c *Conn) ReadResponse() (Response, error) {
	var resp Response
	line, err := c.rw.ReadBytes('\n')
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp, nil
}

// Call sends req and waits for its response. A response with OK=false is
// returned as an error.
func (c *Conn) Call(req Request) (json.RawMessage, error) {
	if err := c.SendRequest(req); err != nil {
		return nil, err
	}
	resp, err := c.ReadResponse()
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("%s: %s", req.Method, resp.Error)
	}
	return resp.Data, nil
}
