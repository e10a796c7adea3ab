// Package rhino is the client side of the bridge: it owns one TCP
// connection to the command executor and offers typed wrappers over the
// command vocabulary. The outer AI tool server consumes this package as
// its only interface into the subsystem.
package rhino

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/a01110946/RhinoMCP/internal/logx"
	"github.com/a01110946/RhinoMCP/pkg/protocol"
)

// Point is a 3D coordinate sent to the bridge.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Client communicates with the bridge over a single persistent connection.
// Methods are safe for use from one goroutine at a time per command; the
// internal mutex serializes concurrent callers onto the synchronous
// request/response stream.
type Client struct {
	addr    string
	timeout time.Duration

	mu        sync.Mutex
	conn      net.Conn
	codec     *protocol.Codec
	connected bool
}

// NewClient creates a client for the bridge at addr. It does not connect.
func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

// SetTimeout enables a per-round-trip I/O deadline. Zero (the default)
// keeps the original blocking contract: a stalled bridge blocks the caller
// until the operator interrupts.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// Connected reports whether the last Connect succeeded and the client has
// not been disconnected since.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect dials the bridge and performs the handshake: a ping as the
// connectivity and version check, then a refresh_view to normalize the
// host display state. On any handshake failure the connection is closed
// and the client stays disconnected. The refresh outcome itself does not
// fail the handshake — a session with no open document still answers ping.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to connect to bridge at %s: %w", c.addr, err)
	}
	c.conn = conn
	c.codec = protocol.NewCodec(conn)
	c.connected = true
	c.mu.Unlock()

	ping := c.SendCommand(protocol.CmdPing, nil)
	if !ping.OK() {
		c.Disconnect()
		return fmt.Errorf("ping handshake failed: %s", ping.Message)
	}
	logx.Log.Info().Str("addr", c.addr).
		Interface("version", ping.Data["version"]).
		Interface("server_version", ping.Data["server_version"]).
		Msg("connected to bridge")

	if refresh := c.SendCommand(protocol.CmdRefreshView, nil); !refresh.OK() {
		logx.Log.Debug().Str("message", refresh.Message).Msg("post-connect refresh skipped")
	}
	return nil
}

// Disconnect closes the connection and clears the connected state.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.codec = nil
	c.connected = false
}

// SendCommand is the sole I/O primitive: serialize one request, write it,
// read one response. It never returns a Go error; every failure mode
// (not connected, write, read, decode) comes back as an error-status
// response. A failed round trip does not disconnect the client, so the
// operator can retry manually.
func (c *Client) SendCommand(cmdType string, data map[string]any) *protocol.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.codec == nil {
		return protocol.Error("not connected to bridge", "")
	}

	if c.timeout > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.timeout))
		defer c.conn.SetDeadline(time.Time{})
	}

	req := protocol.Request{Type: cmdType, Data: data}
	if err := c.codec.Write(req); err != nil {
		return protocol.Error("command error: "+err.Error(), "")
	}
	resp, err := c.codec.ReadResponse()
	if err != nil {
		return protocol.Error("command error: "+err.Error(), "")
	}
	return resp
}

// Ping checks connectivity and returns bridge and host information.
func (c *Client) Ping() *protocol.Response {
	return c.SendCommand(protocol.CmdPing, nil)
}

// CreateSphere adds a sphere to the active document and refreshes the view
// on success.
func (c *Client) CreateSphere(x, y, z, radius float64) *protocol.Response {
	resp := c.SendCommand(protocol.CmdCreateSphere, map[string]any{
		"center_x": x,
		"center_y": y,
		"center_z": z,
		"radius":   radius,
	})
	c.refreshAfter(resp)
	return resp
}

// CreateCurve adds an interpolated curve through points and refreshes the
// view on success. At least two points are required; fewer is rejected
// locally without a round trip.
func (c *Client) CreateCurve(points []Point) *protocol.Response {
	if len(points) < 2 {
		return protocol.Error("at least 2 points are required to create a curve", "")
	}
	pts := make([]any, len(points))
	for i, p := range points {
		pts[i] = map[string]any{"x": p.X, "y": p.Y, "z": p.Z}
	}
	resp := c.SendCommand(protocol.CmdCreateCurve, map[string]any{"points": pts})
	c.refreshAfter(resp)
	return resp
}

// RunScript executes source in the host's embedded scripting language and
// refreshes the view on success. An empty script is rejected locally.
func (c *Client) RunScript(script string) *protocol.Response {
	if script == "" {
		return protocol.Error("script cannot be empty", "")
	}
	resp := c.SendCommand(protocol.CmdRunScript, map[string]any{"script": script})
	c.refreshAfter(resp)
	return resp
}

// RefreshView forces the host display to redraw.
func (c *Client) RefreshView() *protocol.Response {
	return c.SendCommand(protocol.CmdRefreshView, nil)
}

// refreshAfter issues the follow-up refresh that geometry and script
// commands trigger on success only.
func (c *Client) refreshAfter(resp *protocol.Response) {
	if resp.OK() {
		c.SendCommand(protocol.CmdRefreshView, nil)
	}
}
