// Package server implements the TCP front end: it accepts connections, reads
// one request per connection, dispatches to a storage engine, and writes
// back exactly one response before closing.
package server

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/arnavsurve/kvs/internal/engine"
	"github.com/arnavsurve/kvs/internal/protocol"
)

// Server dispatches requests arriving on a TCP listener to a backing engine.
type Server struct {
	listener net.Listener
	engine   engine.Engine
}

// New binds a Server to listener, dispatching every request to eng.
func New(listener net.Listener, eng engine.Engine) *Server {
	return &Server{listener: listener, engine: eng}
}

// Serve accepts connections until the listener is closed or an
// unrecoverable accept error occurs. A failure on a single connection is
// logged and does not stop the accept loop.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}

		s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	peer := conn.RemoteAddr()
	slog.Debug("server: accepted connection", "peer", peer)

	reader := bufio.NewReader(conn)
	req, err := protocol.ReadRequest(reader)
	if err != nil {
		slog.Warn("server: failed to read request", "peer", peer, "error", err)
		s.writeResponse(conn, protocol.ErrorResponse(err.Error()), peer)
		return
	}

	resp := s.dispatch(req)
	s.writeResponse(conn, resp, peer)
}

func (s *Server) dispatch(req protocol.Request) protocol.Response {
	switch req.Kind {
	case protocol.RequestGet:
		slog.Info("server: dispatch", "command", "get", "key", req.Key)
		value, err := s.engine.Get(req.Key)
		if err != nil {
			return protocol.ErrorResponse(err.Error())
		}
		return protocol.ValueResponse(value)

	case protocol.RequestSet:
		slog.Info("server: dispatch", "command", "set", "key", req.Key)
		if err := s.engine.Set(req.Key, req.Value); err != nil {
			return protocol.ErrorResponse(err.Error())
		}
		return protocol.SuccessResponse()

	case protocol.RequestRemove:
		slog.Info("server: dispatch", "command", "rm", "key", req.Key)
		if err := s.engine.Remove(req.Key); err != nil {
			if errors.Is(err, engine.ErrKeyNotFound) {
				return protocol.KeyNotFoundResponse()
			}
			return protocol.ErrorResponse(err.Error())
		}
		return protocol.SuccessResponse()

	default:
		return protocol.ErrorResponse(fmt.Sprintf("unknown request kind %q", req.Kind))
	}
}

func (s *Server) writeResponse(conn net.Conn, resp protocol.Response, peer net.Addr) {
	writer := bufio.NewWriter(conn)
	if err := protocol.WriteResponse(writer, resp); err != nil {
		slog.Error("server: failed to write response", "peer", peer, "error", err)
	}
}
