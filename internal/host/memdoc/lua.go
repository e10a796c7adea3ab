package memdoc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/a01110946/RhinoMCP/internal/host"
)

// luaEngine runs operator-supplied Lua against the live host. This is the
// untrusted-code boundary: scripts get full access to the document API and
// are not sandboxed, matching the bridge's trusted-localhost scope.
type luaEngine struct {
	host *Host
}

// Run executes source with print captured to out. A global named "result"
// set by the script is returned as the result value.
func (e *luaEngine) Run(source string, out io.Writer) (any, error) {
	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		for i := 1; i <= top; i++ {
			if i > 1 {
				fmt.Fprint(out, "\t")
			}
			fmt.Fprint(out, L.ToStringMeta(L.Get(i)).String())
		}
		fmt.Fprintln(out)
		return 0
	}))

	e.registerDocAPI(L)

	if err := L.DoString(source); err != nil {
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) {
			return nil, &host.ScriptError{
				Message:   apiErr.Object.String(),
				Traceback: strings.TrimSpace(apiErr.Object.String() + "\n" + apiErr.StackTrace),
			}
		}
		return nil, err
	}
	return luaToGo(L.GetGlobal("result")), nil
}

// registerDocAPI exposes the document operations to scripts. Each function
// resolves the active document at call time so a script observes the same
// no-document errors as the command handlers.
func (e *luaEngine) registerDocAPI(L *lua.LState) {
	doc := func(L *lua.LState) host.Doc {
		d := e.host.ActiveDoc()
		if d == nil {
			L.RaiseError("no active document")
		}
		return d
	}

	L.SetGlobal("add_sphere", L.NewFunction(func(L *lua.LState) int {
		center := host.Point3{
			X: float64(L.CheckNumber(1)),
			Y: float64(L.CheckNumber(2)),
			Z: float64(L.CheckNumber(3)),
		}
		id, err := doc(L).AddSphere(center, float64(L.CheckNumber(4)))
		if err != nil {
			L.RaiseError("%s", err.Error())
		}
		L.Push(lua.LString(id))
		return 1
	}))

	L.SetGlobal("add_curve", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		var points []host.Point3
		tbl.ForEach(func(_, v lua.LValue) {
			pt, ok := v.(*lua.LTable)
			if !ok {
				L.RaiseError("add_curve expects a table of {x, y, z} tables")
			}
			points = append(points, host.Point3{
				X: float64(lua.LVAsNumber(pt.RawGetInt(1))),
				Y: float64(lua.LVAsNumber(pt.RawGetInt(2))),
				Z: float64(lua.LVAsNumber(pt.RawGetInt(3))),
			})
		})
		id, err := doc(L).AddCurve(points)
		if err != nil {
			L.RaiseError("%s", err.Error())
		}
		L.Push(lua.LString(id))
		return 1
	}))

	L.SetGlobal("object_count", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(doc(L).ObjectCount()))
		return 1
	}))

	L.SetGlobal("redraw", L.NewFunction(func(L *lua.LState) int {
		doc(L).Redraw()
		return 0
	}))
}

func luaToGo(v lua.LValue) any {
	switch t := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(t)
	case lua.LNumber:
		return float64(t)
	case lua.LString:
		return string(t)
	default:
		return v.String()
	}
}
