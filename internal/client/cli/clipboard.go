package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clipshare/internal/client/clipboard"
)

var errNoSession = errors.New("no session joined")

// Join starts following the clipboard of session <id>.
func (a *App) Join(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("join <id>")
	}
	return a.join(ctx, args[0])
}

func (a *App) join(ctx context.Context, id string) error {
	s, err := a.registry.Get(ctx, id)
	if err != nil {
		a.report(err)
		if a.activeSession == nil {
			_ = a.store.ClearActiveSession(ctx)
		}
		return err
	}

	a.activeSession = s
	if err := a.store.SetActiveSession(ctx, s.ID); err != nil {
		a.log.Warn(ctx, "failed to remember active session", "error", err)
	}
	printlnFn(fmt.Sprintf("Joined session %s (%s)", s.Name, s.ID))
	a.engine.Activate(ctx, s.ID)
	return nil
}

// Leave stops following the current session.
func (a *App) Leave(ctx context.Context) error {
	if a.activeSession == nil {
		printlnFn("Not in a session")
		return errNoSession
	}

	a.engine.Deactivate()
	printlnFn("Left session", a.activeSession.Name)
	a.activeSession = nil

	if err := a.store.ClearActiveSession(ctx); err != nil {
		a.log.Warn(ctx, "failed to forget active session", "error", err)
	}
	return nil
}

// Show prints the clipboard as currently displayed.
func (a *App) Show(ctx context.Context) error {
	if a.activeSession == nil {
		printlnFn("Not in a session. Join one with: join <id>")
		return errNoSession
	}
	a.printClipboard(a.engine.Snapshot())
	return nil
}

// Share replaces the session clipboard with the rest of the line, or with
// a multi-line text read from the input when the line is empty.
func (a *App) Share(ctx context.Context, args []string) error {
	if a.activeSession == nil {
		printlnFn("Not in a session. Join one with: join <id>")
		return errNoSession
	}

	text := strings.Join(args, " ")
	if text == "" {
		var err error
		if text, err = getMultiline(a.reader, "Enter text to share", a.out); err != nil {
			return err
		}
	}

	// the engine renders the outcome
	return a.engine.Push(ctx, text)
}

// render is called by the sync engine after every display change.
func (a *App) render(s clipboard.Snapshot) {
	a.printClipboard(s)
}

func (a *App) printClipboard(s clipboard.Snapshot) {
	if s.Alert != "" {
		printlnFn("!", s.Alert)
		return
	}
	if s.Text == "" {
		printlnFn("[clipboard is empty]")
		return
	}
	printlnFn("[clipboard]")
	printlnFn(s.Text)
}
