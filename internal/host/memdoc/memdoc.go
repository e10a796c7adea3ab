// Package memdoc is an in-process reference host: a mutex-guarded document
// store with an embedded Lua script engine. The standalone bridge binary
// and the test suite run against it; a deployment next to the real CAD
// application supplies its own host.Host instead.
package memdoc

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/a01110946/RhinoMCP/internal/host"
)

// Host implements host.Host backed by memory.
type Host struct {
	version string

	mu  sync.Mutex
	doc *Doc
}

// New creates a host with no open document.
func New(version string) *Host {
	return &Host{version: version}
}

// Version implements host.Host.
func (h *Host) Version() string {
	return h.version
}

// ActiveDoc implements host.Host. It returns nil when no document is open.
func (h *Host) ActiveDoc() host.Doc {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.doc == nil {
		return nil
	}
	return h.doc
}

// ScriptEngine implements host.Host.
func (h *Host) ScriptEngine() host.ScriptEngine {
	return &luaEngine{host: h}
}

// OpenDoc opens a fresh empty document, replacing any open one.
func (h *Host) OpenDoc() *Doc {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doc = &Doc{}
	return h.doc
}

// CloseDoc closes the active document, if any.
func (h *Host) CloseDoc() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doc = nil
}

// Object is one geometric object in a document.
type Object struct {
	ID     string
	Kind   string
	Center host.Point3
	Radius float64
	Points []host.Point3
}

// Doc implements host.Doc. All methods are safe for concurrent use; the
// bridge itself takes no locks across connections.
type Doc struct {
	mu      sync.Mutex
	objects []Object
	redraws int
}

// AddSphere implements host.Doc.
func (d *Doc) AddSphere(center host.Point3, radius float64) (string, error) {
	if radius <= 0 {
		return "", errors.New("sphere radius must be positive")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	obj := Object{ID: uuid.NewString(), Kind: "sphere", Center: center, Radius: radius}
	d.objects = append(d.objects, obj)
	return obj.ID, nil
}

// AddCurve implements host.Doc.
func (d *Doc) AddCurve(points []host.Point3) (string, error) {
	if len(points) < 2 {
		return "", errors.New("at least 2 points are required to create a curve")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	obj := Object{ID: uuid.NewString(), Kind: "curve", Points: append([]host.Point3(nil), points...)}
	d.objects = append(d.objects, obj)
	return obj.ID, nil
}

// Redraw implements host.Doc.
func (d *Doc) Redraw() {
	d.mu.Lock()
	d.redraws++
	d.mu.Unlock()
}

// ObjectCount implements host.Doc.
func (d *Doc) ObjectCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}

// RedrawCount reports how many redraws were requested.
func (d *Doc) RedrawCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.redraws
}

// Objects returns a snapshot of the document contents.
func (d *Doc) Objects() []Object {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Object(nil), d.objects...)
}
