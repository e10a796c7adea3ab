// Package bridge implements the command executor: a TCP server that reads
// framed JSON requests, dispatches them against the host session, and
// writes one response per request.
package bridge

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/a01110946/RhinoMCP/internal/audit"
	"github.com/a01110946/RhinoMCP/internal/host"
	"github.com/a01110946/RhinoMCP/internal/logx"
	"github.com/a01110946/RhinoMCP/pkg/protocol"
)

// Version identifies the bridge build in ping responses.
const Version = "RhinoMCP-Go/1.0"

// HandlerFunc services one command and must return a response.
type HandlerFunc func(data map[string]any) *protocol.Response

// Dispatcher routes requests to command handlers through a closed lookup
// table. The host session is injected; handlers that mutate it check for
// an active document first.
type Dispatcher struct {
	host      host.Host
	recorder  audit.Recorder
	startTime string
	handlers  map[string]HandlerFunc
}

// NewDispatcher builds a dispatcher over the given host session. rec may
// be audit.Nop{} to disable the audit trail.
func NewDispatcher(h host.Host, rec audit.Recorder) *Dispatcher {
	d := &Dispatcher{
		host:      h,
		recorder:  rec,
		startTime: time.Now().Format("2006-01-02 15:04:05"),
	}
	d.handlers = map[string]HandlerFunc{
		protocol.CmdPing:         d.handlePing,
		protocol.CmdCreateSphere: d.handleCreateSphere,
		protocol.CmdCreateCurve:  d.handleCreateCurve,
		protocol.CmdRunScript:    d.handleRunScript,
		protocol.CmdRefreshView:  d.handleRefreshView,
	}
	return d
}

// Dispatch services one request. Every failure mode, panics included, is
// converted into an error response; the caller always has something to
// write back and the connection never dies on a failed command.
func (d *Dispatcher) Dispatch(connID string, req *protocol.Request) (resp *protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			logx.Log.Error().Str("conn", connID).Str("command", req.Type).
				Interface("panic", r).Msg("command handler panicked")
			resp = protocol.Error(
				fmt.Sprintf("%s error: %v", req.Type, r),
				string(debug.Stack()),
			)
		}
		resp.Data = protocol.SanitizeMap(resp.Data)
		d.recorder.Record(audit.Entry{
			Time:    time.Now(),
			ConnID:  connID,
			Command: req.Type,
			Status:  resp.Status,
			Message: resp.Message,
		})
	}()

	h, ok := d.handlers[req.Type]
	if !ok {
		return protocol.Error("unknown command: "+req.Type, "")
	}
	logx.Log.Debug().Str("conn", connID).Str("command", req.Type).Msg("dispatching command")
	return h(req.Data)
}
