package bridge

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"

	"github.com/a01110946/RhinoMCP/internal/logx"
	"github.com/a01110946/RhinoMCP/pkg/protocol"
)

// Server accepts TCP connections and runs one synchronous request/response
// loop per connection. Connections are independent: a failure on one never
// affects another.
type Server struct {
	addr string
	disp *Dispatcher
	ln   net.Listener
}

// NewServer creates a server that will listen on addr.
func NewServer(addr string, disp *Dispatcher) *Server {
	return &Server{addr: addr, disp: disp}
}

// Listen binds the listening socket. A bind failure (port already in use)
// is returned to the caller and is fatal; there is no retry.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}
	s.ln = ln
	logx.Log.Info().Str("addr", ln.Addr().String()).Str("version", Version).Msg("bridge listening")
	return nil
}

// Addr returns the bound address. Valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until the listener is closed, handling each
// on its own goroutine.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting connections.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// handleConn runs the per-connection loop: read one request, dispatch it,
// write one response, in order. Malformed JSON gets an error response and
// the loop continues; stream errors end only this connection.
func (s *Server) handleConn(conn net.Conn) {
	connID := uuid.NewString()[:8]
	logx.Log.Info().Str("conn", connID).Str("remote", conn.RemoteAddr().String()).Msg("connection established")
	defer func() {
		conn.Close()
		logx.Log.Info().Str("conn", connID).Msg("connection closed")
	}()

	codec := protocol.NewCodec(conn)
	for {
		req, err := codec.ReadRequest()
		if err != nil {
			var malformed *protocol.MalformedError
			if errors.As(err, &malformed) {
				if werr := codec.Write(protocol.Error("invalid JSON format", "")); werr != nil {
					return
				}
				continue
			}
			if !errors.Is(err, io.EOF) {
				logx.Log.Debug().Str("conn", connID).Err(err).Msg("read error")
			}
			return
		}

		resp := s.disp.Dispatch(connID, req)
		if err := codec.Write(resp); err != nil {
			logx.Log.Debug().Str("conn", connID).Err(err).Msg("write error")
			return
		}
	}
}
