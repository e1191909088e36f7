package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	signedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isSignedIn() bool { return f.signedIn }
func (f *fakeExec) SignUp(ctx context.Context) error {
	f.signedIn = true
	return f.record("signup", nil)
}
func (f *fakeExec) SignIn(ctx context.Context) error {
	f.signedIn = true
	return f.record("signin", nil)
}
func (f *fakeExec) SignOut(ctx context.Context) error {
	f.signedIn = false
	return f.record("signout", nil)
}
func (f *fakeExec) WhoAmI(ctx context.Context) error       { return f.record("whoami", nil) }
func (f *fakeExec) ListSessions(ctx context.Context) error { return f.record("sessions", nil) }
func (f *fakeExec) Page(ctx context.Context, args []string) error {
	return f.record("page", args)
}
func (f *fakeExec) PageSize(ctx context.Context, args []string) error {
	return f.record("pagesize", args)
}
func (f *fakeExec) Sort(ctx context.Context, args []string) error { return f.record("sort", args) }
func (f *fakeExec) NewSession(ctx context.Context, args []string) error {
	return f.record("new", args)
}
func (f *fakeExec) RenameSession(ctx context.Context, args []string) error {
	return f.record("rename", args)
}
func (f *fakeExec) DeleteSession(ctx context.Context, args []string) error {
	return f.record("delete", args)
}
func (f *fakeExec) Join(ctx context.Context, args []string) error { return f.record("join", args) }
func (f *fakeExec) Leave(ctx context.Context) error               { return f.record("leave", nil) }
func (f *fakeExec) Show(ctx context.Context) error                { return f.record("show", nil) }
func (f *fakeExec) Share(ctx context.Context, args []string) error {
	return f.record("share", args)
}

// capturePrint swaps printlnFn for a recorder and returns the recorded lines.
func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_SignInAndCommands(t *testing.T) {
	capturePrint(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"signin",
		"sessions",
		"page 2",
		"pagesize 5",
		"sort name asc",
		"new team notes",
		"rename abc new name",
		"join abc",
		"share hello world",
		"show",
		"leave",
		"rm abc",
		"signout",
		"exit",
		"sessions",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	assert.Equal(t, []string{
		"signin", "sessions", "page", "pagesize", "sort", "new", "rename",
		"join", "share", "show", "leave", "delete", "signout",
	}, exec.calls)
	assert.Equal(t, []string{"2"}, exec.args[2])
	assert.Equal(t, []string{"name", "asc"}, exec.args[4])
	assert.Equal(t, []string{"abc", "new", "name"}, exec.args[6])
	assert.Equal(t, []string{"hello", "world"}, exec.args[8])
}

func TestRunREPL_GatesCommandsUntilSignedIn(t *testing.T) {
	lines := capturePrint(t)

	input := strings.NewReader("sessions\njoin x\nshare hi\nwhoami\nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"whoami"}, exec.calls)

	gated := 0
	for _, l := range *lines {
		if strings.HasPrefix(l, "Please sign in first") {
			gated++
		}
	}
	assert.Equal(t, 3, gated)
}

func TestRunREPL_UnknownAndEmpty(t *testing.T) {
	lines := capturePrint(t)

	input := strings.NewReader("\n   \nfoobar\n")
	exec := &fakeExec{signedIn: true}
	runREPL(context.Background(), exec, func() string { return "(bob)" }, bufio.NewScanner(input))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "clip (bob)> ")
}

func TestRunREPL_HelpDependsOnSignIn(t *testing.T) {
	lines := capturePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("help\n")))
	assert.Contains(t, *lines, signedOutHelp)

	exec.signedIn = true
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("help\n")))
	assert.Contains(t, *lines, signedInHelp)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrint(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("signin\n")))
	assert.Empty(t, exec.calls)
}
