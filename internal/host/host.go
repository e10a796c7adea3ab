// Package host defines the capability surface the bridge needs from the
// CAD application. The bridge never reaches for a global document; a Host
// is injected and every handler that needs a document checks ActiveDoc
// first.
package host

import "io"

// Point3 is a 3D coordinate in document units.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Host is the live application session.
type Host interface {
	// Version reports the host application version string.
	Version() string
	// ActiveDoc returns the open document, or nil when none is open.
	ActiveDoc() Doc
	// ScriptEngine returns the embedded scripting engine. This is the
	// single untrusted-code execution boundary: Run executes arbitrary
	// operator-supplied source against the live session.
	ScriptEngine() ScriptEngine
}

// Doc is an open document.
type Doc interface {
	// AddSphere adds a sphere and returns its object id.
	AddSphere(center Point3, radius float64) (string, error)
	// AddCurve adds an interpolated curve through the given points and
	// returns its object id. At least two points are required.
	AddCurve(points []Point3) (string, error)
	// Redraw forces all views to repaint.
	Redraw()
	// ObjectCount reports the number of objects in the document.
	ObjectCount() int
}

// ScriptEngine executes source in the host's embedded scripting language.
type ScriptEngine interface {
	// Run executes source with print output captured to out. When the
	// script assigns a global named "result", that value is returned.
	Run(source string, out io.Writer) (result any, err error)
}

// ScriptError is a script failure with the engine's diagnostic trace.
type ScriptError struct {
	Message   string
	Traceback string
}

func (e *ScriptError) Error() string {
	return e.Message
}
