package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	ipcmsg "github.com/adrianmross/region-select/pkg/ipc"
)

// HandlerFunc processes a request and returns a response payload or error.
type HandlerFunc func(req ipcmsg.Request) (interface{}, error)

// ErrNotImplemented is returned for unknown methods.
var ErrNotImplemented = errors.New("method not implemented")

// Serve starts a Unix socket server and handles requests with the provided
// handler until ctx is cancelled. ready, when non-nil, is closed once the
// socket accepts connections.
func Serve(ctx context.Context, socketPath string, handler HandlerFunc, log *slog.Logger, ready chan<- struct{}) error {
	// remove stale socket
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	if err := os.Chmod(socketPath, 0o600); err != nil {
		return fmt.Errorf("chmod socket: %w", err)
	}
	if ready != nil {
		close(ready)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go handleConn(conn, handler, log)
	}
}

func handleConn(c net.Conn, handler HandlerFunc, log *slog.Logger) {
	defer c.Close()
	rw := bufio.NewReadWriter(bufio.NewReader(c), bufio.NewWriter(c))
	for {
		line, err := rw.ReadBytes('\n')
		if err != nil {
			return
		}
		var req ipcmsg.Request
		if err := json.Unmarshal(line, &req); err != nil {
			writeResp(rw, ipcmsg.Response{OK: false, Error: "invalid request"})
			continue
		}
		data, err := handler(req)
		if err != nil {
			log.Debug("ipc request failed", "method", req.Method, "error", err)
			writeResp(rw, ipcmsg.Response{OK: false, Error: err.Error()})
			continue
		}
		raw, err := json.Marshal(data)
		if err != nil {
			writeResp(rw, ipcmsg.Response{OK: false, Error: err.Error()})
			continue
		}
		writeResp(rw, ipcmsg.Response{OK: true, Data: raw})
	}
}

func writeResp(w *bufio.ReadWriter, resp ipcmsg.Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	b = append(b, '\n')
	_, _ = w.Write(b)
	_ = w.Flush()
}
