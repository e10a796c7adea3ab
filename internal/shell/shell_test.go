package shell_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a01110946/RhinoMCP/internal/shell"
	"github.com/a01110946/RhinoMCP/pkg/protocol"
	"github.com/a01110946/RhinoMCP/pkg/rhino"
)

// fakeCommander records calls and returns canned responses.
type fakeCommander struct {
	calls []string
	fail  bool
}

func (f *fakeCommander) respond(msg string) *protocol.Response {
	if f.fail {
		return protocol.Error(msg+" failed", "fake traceback")
	}
	return protocol.Success(msg+" ok", nil)
}

func (f *fakeCommander) Ping() *protocol.Response {
	f.calls = append(f.calls, "ping")
	return f.respond("ping")
}

func (f *fakeCommander) CreateSphere(x, y, z, radius float64) *protocol.Response {
	f.calls = append(f.calls, fmt.Sprintf("sphere(%g,%g,%g,%g)", x, y, z, radius))
	return f.respond("sphere")
}

func (f *fakeCommander) CreateCurve(points []rhino.Point) *protocol.Response {
	f.calls = append(f.calls, fmt.Sprintf("curve(%d)", len(points)))
	return f.respond("curve")
}

func (f *fakeCommander) RunScript(script string) *protocol.Response {
	f.calls = append(f.calls, "script:"+script)
	return f.respond("script")
}

func (f *fakeCommander) RefreshView() *protocol.Response {
	f.calls = append(f.calls, "refresh")
	return f.respond("refresh")
}

func newShell() (*shell.Shell, *fakeCommander, *bytes.Buffer) {
	fake := &fakeCommander{}
	var out bytes.Buffer
	return shell.New(fake, &out), fake, &out
}

func TestEmptyLineIgnored(t *testing.T) {
	s, fake, out := newShell()
	assert.True(t, s.Execute("   "))
	assert.Empty(t, fake.calls)
	assert.Empty(t, out.String())
	assert.Empty(t, s.History())
}

func TestSphere(t *testing.T) {
	s, fake, out := newShell()
	s.Execute("sphere 1 2 3 5")
	require.Equal(t, []string{"sphere(1,2,3,5)"}, fake.calls)
	assert.Contains(t, out.String(), "sphere ok")
}

func TestSphereInvalidNumberSendsNothing(t *testing.T) {
	s, fake, out := newShell()
	s.Execute("sphere 1 2 three 5")
	assert.Empty(t, fake.calls)
	assert.Contains(t, out.String(), `invalid number "three"`)
}

func TestSphereWrongArity(t *testing.T) {
	s, fake, out := newShell()
	s.Execute("sphere 1 2")
	assert.Empty(t, fake.calls)
	assert.Contains(t, out.String(), "usage: sphere")
}

func TestCurve(t *testing.T) {
	s, fake, _ := newShell()
	s.Execute("curve 0,0,0 10,10,0 20,0,0")
	assert.Equal(t, []string{"curve(3)"}, fake.calls)
}

func TestCurveInvalidPoint(t *testing.T) {
	s, fake, out := newShell()
	s.Execute("curve 0,0 10,10,0")
	assert.Empty(t, fake.calls)
	assert.Contains(t, out.String(), "invalid point")
}

func TestScript(t *testing.T) {
	s, fake, _ := newShell()
	s.Execute("script print('hello world')")
	assert.Equal(t, []string{"script:print('hello world')"}, fake.calls)
}

func TestErrorPrintsTraceback(t *testing.T) {
	s, fake, out := newShell()
	fake.fail = true
	s.Execute("refresh")
	assert.Contains(t, out.String(), "error: refresh failed")
	assert.Contains(t, out.String(), "fake traceback")
}

func TestUnknownCommandHint(t *testing.T) {
	s, fake, out := newShell()
	assert.True(t, s.Execute("bogus"))
	assert.Empty(t, fake.calls)
	assert.Contains(t, out.String(), "unknown command: bogus")
	assert.Contains(t, out.String(), "help")
}

func TestExit(t *testing.T) {
	s, _, _ := newShell()
	assert.False(t, s.Execute("exit"))
}

func TestHistoryBounded(t *testing.T) {
	s, _, _ := newShell()
	for i := 0; i < shell.HistoryCap+5; i++ {
		s.Execute(fmt.Sprintf("script print(%d)", i))
	}
	h := s.History()
	require.Len(t, h, shell.HistoryCap)
	assert.Equal(t, "script print(5)", h[0], "oldest entries evicted")
}

func TestRunLoop(t *testing.T) {
	fake := &fakeCommander{}
	var out bytes.Buffer
	s := shell.New(fake, &out)

	in := strings.NewReader("ping\n\nrefresh\nexit\n")
	require.NoError(t, s.Run(in))
	assert.Equal(t, []string{"ping", "refresh"}, fake.calls)
}
