// Package ws exposes the same command dispatcher over a WebSocket
// endpoint, for controllers that cannot hold a raw TCP socket. Each
// WebSocket message carries one JSON request and receives one JSON
// response, with the same semantics as the TCP transport.
package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/a01110946/RhinoMCP/internal/bridge"
	"github.com/a01110946/RhinoMCP/internal/logx"
	"github.com/a01110946/RhinoMCP/pkg/protocol"
)

// Server hosts the WebSocket transport.
type Server struct {
	disp *bridge.Dispatcher
	up   websocket.Upgrader
}

// NewServer creates a WebSocket transport over the given dispatcher.
func NewServer(disp *bridge.Dispatcher) *Server {
	return &Server{
		disp: disp,
		up: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Localhost-only deployment; origin checks add nothing here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns a gin engine serving /ws and /healthz.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ws", s.handleWS)
	r.GET("/healthz", s.handleHealthz)
	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	resp := s.disp.Dispatch("healthz", &protocol.Request{Type: protocol.CmdPing})
	status := http.StatusOK
	if !resp.OK() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logx.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	connID := "ws-" + uuid.NewString()[:8]
	logx.Log.Info().Str("conn", connID).Str("remote", c.Request.RemoteAddr).Msg("websocket connection established")
	defer logx.Log.Info().Str("conn", connID).Msg("websocket connection closed")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logx.Log.Debug().Str("conn", connID).Err(err).Msg("websocket read error")
			}
			return
		}

		req, errResp := decode(msg)
		resp := errResp
		if resp == nil {
			resp = s.disp.Dispatch(connID, req)
		}
		if err := conn.WriteJSON(resp); err != nil {
			logx.Log.Debug().Str("conn", connID).Err(err).Msg("websocket write error")
			return
		}
	}
}

// decode parses one message, returning either a request to dispatch or a
// ready-made error response for malformed JSON.
func decode(msg []byte) (*protocol.Request, *protocol.Response) {
	var req protocol.Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return nil, protocol.Error("invalid JSON format", "")
	}
	return &req, nil
}
