package bridge

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/a01110946/RhinoMCP/internal/host"
	"github.com/a01110946/RhinoMCP/pkg/protocol"
)

// Default sphere parameters when the request omits them.
const (
	defaultCenter = 0.0
	defaultRadius = 1.0
)

const noActiveDocMessage = "no active document; open a document in the host application"

// activeDoc resolves the session's document, or nil when none is open.
func (d *Dispatcher) activeDoc() host.Doc {
	return d.host.ActiveDoc()
}

func (d *Dispatcher) handlePing(_ map[string]any) *protocol.Response {
	return protocol.Success("host is connected", map[string]any{
		"version":           d.host.Version(),
		"has_active_doc":    d.activeDoc() != nil,
		"server_version":    Version,
		"server_start_time": d.startTime,
	})
}

func (d *Dispatcher) handleCreateSphere(data map[string]any) *protocol.Response {
	doc := d.activeDoc()
	if doc == nil {
		return protocol.Error(noActiveDocMessage, "")
	}

	center := host.Point3{
		X: numberParam(data, "center_x", defaultCenter),
		Y: numberParam(data, "center_y", defaultCenter),
		Z: numberParam(data, "center_z", defaultCenter),
	}
	radius := numberParam(data, "radius", defaultRadius)

	id, err := doc.AddSphere(center, radius)
	if err != nil {
		return protocol.Error("sphere creation error: "+err.Error(), "")
	}
	doc.Redraw()

	return protocol.Success(
		fmt.Sprintf("Sphere created at (%g, %g, %g) with radius %g", center.X, center.Y, center.Z, radius),
		map[string]any{
			"id":     id,
			"radius": radius,
		},
	)
}

func (d *Dispatcher) handleCreateCurve(data map[string]any) *protocol.Response {
	doc := d.activeDoc()
	if doc == nil {
		return protocol.Error(noActiveDocMessage, "")
	}

	points := pointsParam(data, "points")
	if len(points) < 2 {
		return protocol.Error("at least 2 points are required to create a curve", "")
	}

	id, err := doc.AddCurve(points)
	if err != nil {
		return protocol.Error("curve creation error: "+err.Error(), "")
	}
	doc.Redraw()

	return protocol.Success(
		fmt.Sprintf("Curve created with %d points", len(points)),
		map[string]any{
			"id":          id,
			"point_count": len(points),
		},
	)
}

// handleRunScript executes arbitrary operator-supplied source against the
// live session. Intentionally unsandboxed; the audit trail is the only
// record of what ran.
func (d *Dispatcher) handleRunScript(data map[string]any) *protocol.Response {
	script := stringParam(data, "script")
	if script == "" {
		return protocol.Error("script execution error: empty script", "")
	}

	var out bytes.Buffer
	result, err := d.host.ScriptEngine().Run(script, &out)
	if err != nil {
		traceback := err.Error()
		var scriptErr *host.ScriptError
		if errors.As(err, &scriptErr) && scriptErr.Traceback != "" {
			traceback = scriptErr.Traceback
		}
		return protocol.Error("script execution error: "+err.Error(), traceback)
	}

	return protocol.Success("Script executed successfully", map[string]any{
		"output": out.String(),
		"result": result,
	})
}

func (d *Dispatcher) handleRefreshView(_ map[string]any) *protocol.Response {
	doc := d.activeDoc()
	if doc == nil {
		return protocol.Error(noActiveDocMessage, "")
	}
	doc.Redraw()
	return protocol.Success("View refreshed", nil)
}
