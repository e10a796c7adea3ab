package bridge_test

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a01110946/RhinoMCP/internal/audit"
	"github.com/a01110946/RhinoMCP/internal/bridge"
	"github.com/a01110946/RhinoMCP/internal/host/memdoc"
	"github.com/a01110946/RhinoMCP/pkg/protocol"
)

// startBridge runs a bridge on an ephemeral port and returns the host for
// document manipulation plus the listen address.
func startBridge(t *testing.T) (*memdoc.Host, string) {
	t.Helper()
	h := memdoc.New("memdoc-test")
	srv := bridge.NewServer("127.0.0.1:0", bridge.NewDispatcher(h, audit.Nop{}))
	require.NoError(t, srv.Listen())
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })
	return h, srv.Addr().String()
}

func dial(t *testing.T, addr string) *protocol.Codec {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return protocol.NewCodec(conn)
}

func roundTrip(t *testing.T, c *protocol.Codec, cmdType string, data map[string]any) *protocol.Response {
	t.Helper()
	require.NoError(t, c.Write(protocol.Request{Type: cmdType, Data: data}))
	resp, err := c.ReadResponse()
	require.NoError(t, err)
	return resp
}

func TestPing(t *testing.T) {
	h, addr := startBridge(t)
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdPing, nil)
	require.True(t, resp.OK())
	assert.Equal(t, "memdoc-test", resp.Data["version"])
	assert.Equal(t, false, resp.Data["has_active_doc"])
	assert.Equal(t, bridge.Version, resp.Data["server_version"])
	assert.NotEmpty(t, resp.Data["server_start_time"])

	h.OpenDoc()
	resp = roundTrip(t, c, protocol.CmdPing, nil)
	require.True(t, resp.OK())
	assert.Equal(t, true, resp.Data["has_active_doc"])
}

func TestCreateSphereWithoutDocument(t *testing.T) {
	h, addr := startBridge(t)
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdCreateSphere, map[string]any{
		"center_x": 0.0, "center_y": 0.0, "center_z": 0.0, "radius": 5.0,
	})
	assert.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "no active document")

	// The session is untouched after the failure.
	h.OpenDoc()
	resp = roundTrip(t, c, protocol.CmdPing, nil)
	require.True(t, resp.OK())
}

func TestCreateSphere(t *testing.T) {
	h, addr := startBridge(t)
	doc := h.OpenDoc()
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdCreateSphere, map[string]any{
		"center_x": 1.0, "center_y": 2.0, "center_z": 3.0, "radius": 5.0,
	})
	require.True(t, resp.OK(), "unexpected error: %s", resp.Message)
	assert.Contains(t, resp.Message, "radius 5")
	assert.NotEmpty(t, resp.Data["id"])
	assert.Equal(t, 1, doc.ObjectCount())
	assert.Equal(t, 1, doc.RedrawCount())
}

func TestCreateSpherePermissiveDefaults(t *testing.T) {
	// Missing and malformed numeric fields fall back to documented
	// defaults instead of failing the command.
	h, addr := startBridge(t)
	doc := h.OpenDoc()
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdCreateSphere, map[string]any{
		"center_x": "not a number",
	})
	require.True(t, resp.OK(), "unexpected error: %s", resp.Message)
	assert.Equal(t, 1.0, resp.Data["radius"])
	require.Equal(t, 1, doc.ObjectCount())
	obj := doc.Objects()[0]
	assert.Equal(t, 0.0, obj.Center.X)
	assert.Equal(t, 1.0, obj.Radius)
}

func TestCreateCurve(t *testing.T) {
	h, addr := startBridge(t)
	doc := h.OpenDoc()
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdCreateCurve, map[string]any{
		"points": []any{
			map[string]any{"x": 0.0, "y": 0.0, "z": 30.0},
			map[string]any{"x": 10.0, "y": 10.0, "z": 30.0},
			map[string]any{"x": 20.0, "y": 0.0, "z": 30.0},
		},
	})
	require.True(t, resp.OK(), "unexpected error: %s", resp.Message)
	assert.Equal(t, 3.0, resp.Data["point_count"])
	assert.Equal(t, 1, doc.ObjectCount())
}

func TestCreateCurveTooFewPoints(t *testing.T) {
	h, addr := startBridge(t)
	doc := h.OpenDoc()
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdCreateCurve, map[string]any{
		"points": []any{map[string]any{"x": 0.0, "y": 0.0, "z": 0.0}},
	})
	assert.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "at least 2 points")
	assert.Equal(t, 0, doc.ObjectCount())
}

func TestRunScript(t *testing.T) {
	_, addr := startBridge(t)
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdRunScript, map[string]any{
		"script": `print("from script") result = 7`,
	})
	require.True(t, resp.OK(), "unexpected error: %s", resp.Message)
	assert.Equal(t, "from script\n", resp.Data["output"])
	assert.Equal(t, 7.0, resp.Data["result"])
}

func TestRunScriptFailure(t *testing.T) {
	_, addr := startBridge(t)
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdRunScript, map[string]any{
		"script": `error("kaboom")`,
	})
	assert.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "script execution error")
	assert.NotEmpty(t, resp.Traceback)

	// The connection survives the failure.
	resp = roundTrip(t, c, protocol.CmdPing, nil)
	assert.True(t, resp.OK())
}

func TestRunScriptEmpty(t *testing.T) {
	_, addr := startBridge(t)
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdRunScript, nil)
	assert.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "empty script")
}

func TestRefreshViewIdempotent(t *testing.T) {
	h, addr := startBridge(t)
	doc := h.OpenDoc()
	c := dial(t, addr)

	for i := 0; i < 3; i++ {
		resp := roundTrip(t, c, protocol.CmdRefreshView, nil)
		require.True(t, resp.OK())
	}
	assert.Equal(t, 0, doc.ObjectCount())
	assert.Equal(t, 3, doc.RedrawCount())
}

func TestRefreshViewWithoutDocument(t *testing.T) {
	_, addr := startBridge(t)
	c := dial(t, addr)

	resp := roundTrip(t, c, protocol.CmdRefreshView, nil)
	assert.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "no active document")
}

func TestUnknownCommandKeepsConnectionOpen(t *testing.T) {
	_, addr := startBridge(t)
	c := dial(t, addr)

	resp := roundTrip(t, c, "bogus", nil)
	assert.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "unknown command")
	assert.Contains(t, resp.Message, "bogus")

	resp = roundTrip(t, c, protocol.CmdPing, nil)
	assert.True(t, resp.OK())
}

func TestMalformedJSONKeepsConnectionOpen(t *testing.T) {
	_, addr := startBridge(t)
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	c := protocol.NewCodec(conn)

	_, err = conn.Write([]byte("this is not json\n"))
	require.NoError(t, err)

	resp, err := c.ReadResponse()
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "invalid JSON")

	// A subsequent valid request on the same connection succeeds.
	resp = roundTrip(t, c, protocol.CmdPing, nil)
	assert.True(t, resp.OK())
}

func TestConcurrentConnections(t *testing.T) {
	// Each connection gets its own loop; responses stay in order within a
	// connection while other connections proceed independently.
	h, addr := startBridge(t)
	h.OpenDoc()

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				done <- err
				return
			}
			defer conn.Close()
			c := protocol.NewCodec(conn)
			for j := 0; j < 10; j++ {
				if err := c.Write(protocol.Request{Type: protocol.CmdCreateSphere, Data: map[string]any{"radius": 1.0}}); err != nil {
					done <- err
					return
				}
				resp, err := c.ReadResponse()
				if err != nil {
					done <- err
					return
				}
				if !resp.OK() {
					done <- fmt.Errorf("unexpected error response: %s", resp.Message)
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-done)
	}
	assert.Equal(t, 40, h.ActiveDoc().ObjectCount())
}

func TestBindFailureIsFatal(t *testing.T) {
	_, addr := startBridge(t)

	h := memdoc.New("memdoc-test")
	second := bridge.NewServer(addr, bridge.NewDispatcher(h, audit.Nop{}))
	err := second.Listen()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bind")
}
