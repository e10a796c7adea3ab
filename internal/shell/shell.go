// Package shell is the interactive command loop over the bridge client.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/a01110946/RhinoMCP/pkg/protocol"
	"github.com/a01110946/RhinoMCP/pkg/rhino"
)

// HistoryCap bounds the in-memory command history; oldest entries are
// evicted past it. History is display only.
const HistoryCap = 50

const helpText = `Commands:
  sphere <x> <y> <z> <radius>   create a sphere in the active document
  curve <x,y,z> <x,y,z> ...     create a curve through 2+ points
  script <code>                 run a script in the host's script engine
  refresh                       redraw the host views
  ping                          check connection and host info
  history                       show recent commands
  help                          show this help
  exit                          quit`

// Commander is the slice of the bridge client the shell drives.
// *rhino.Client satisfies it.
type Commander interface {
	Ping() *protocol.Response
	CreateSphere(x, y, z, radius float64) *protocol.Response
	CreateCurve(points []rhino.Point) *protocol.Response
	RunScript(script string) *protocol.Response
	RefreshView() *protocol.Response
}

// Shell reads operator commands, dispatches them through the client, and
// prints human-readable results. It never crashes on a failed command.
type Shell struct {
	client  Commander
	out     io.Writer
	history []string
}

// New creates a shell writing its output to out.
func New(client Commander, out io.Writer) *Shell {
	return &Shell{client: client, out: out}
}

// Run processes lines from in until exit or EOF.
func (s *Shell) Run(in io.Reader) error {
	fmt.Fprintln(s.out, "RhinoMCP shell. Type 'help' for commands.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if !s.Execute(scanner.Text()) {
			return nil
		}
	}
}

// Execute handles one input line. It returns false when the operator asked
// to exit.
func (s *Shell) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	s.remember(line)

	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "sphere":
		s.cmdSphere(rest)
	case "curve":
		s.cmdCurve(rest)
	case "script":
		s.cmdScript(rest)
	case "refresh":
		s.printResponse(s.client.RefreshView())
	case "ping":
		s.printResponse(s.client.Ping())
	case "history":
		s.cmdHistory()
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "exit", "quit":
		return false
	default:
		fmt.Fprintf(s.out, "unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

// History returns a copy of the recorded command lines, oldest first.
func (s *Shell) History() []string {
	return append([]string(nil), s.history...)
}

func (s *Shell) remember(line string) {
	s.history = append(s.history, line)
	if len(s.history) > HistoryCap {
		s.history = s.history[len(s.history)-HistoryCap:]
	}
}

// cmdSphere validates its four numeric arguments locally; a bad argument
// prints a validation error and sends nothing.
func (s *Shell) cmdSphere(rest string) {
	args := strings.Fields(rest)
	if len(args) != 4 {
		fmt.Fprintln(s.out, "usage: sphere <x> <y> <z> <radius>")
		return
	}
	vals := make([]float64, 4)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			fmt.Fprintf(s.out, "invalid number %q\n", a)
			return
		}
		vals[i] = v
	}
	s.printResponse(s.client.CreateSphere(vals[0], vals[1], vals[2], vals[3]))
}

func (s *Shell) cmdCurve(rest string) {
	args := strings.Fields(rest)
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: curve <x,y,z> <x,y,z> ...  (at least 2 points)")
		return
	}
	points := make([]rhino.Point, 0, len(args))
	for _, a := range args {
		parts := strings.Split(a, ",")
		if len(parts) != 3 {
			fmt.Fprintf(s.out, "invalid point %q, expected x,y,z\n", a)
			return
		}
		var pt rhino.Point
		coords := []*float64{&pt.X, &pt.Y, &pt.Z}
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				fmt.Fprintf(s.out, "invalid number %q\n", p)
				return
			}
			*coords[i] = v
		}
		points = append(points, pt)
	}
	s.printResponse(s.client.CreateCurve(points))
}

func (s *Shell) cmdScript(rest string) {
	if strings.TrimSpace(rest) == "" {
		fmt.Fprintln(s.out, "usage: script <code>")
		return
	}
	s.printResponse(s.client.RunScript(rest))
}

func (s *Shell) cmdHistory() {
	for i, line := range s.history {
		fmt.Fprintf(s.out, "%3d  %s\n", i+1, line)
	}
}

func (s *Shell) printResponse(resp *protocol.Response) {
	if resp.OK() {
		fmt.Fprintln(s.out, resp.Message)
		s.printData(resp.Data)
		return
	}
	fmt.Fprintf(s.out, "error: %s\n", resp.Message)
	if resp.Traceback != "" {
		fmt.Fprintln(s.out, resp.Traceback)
	}
}

func (s *Shell) printData(data map[string]any) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(s.out, "  %s: %v\n", k, data[k])
	}
}
