package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	ListSessions(ctx context.Context) error
	Page(ctx context.Context, args []string) error
	PageSize(ctx context.Context, args []string) error
	Sort(ctx context.Context, args []string) error
	NewSession(ctx context.Context, args []string) error
	RenameSession(ctx context.Context, args []string) error
	DeleteSession(ctx context.Context, args []string) error

	Join(ctx context.Context, args []string) error
	Leave(ctx context.Context) error
	Show(ctx context.Context) error
	Share(ctx context.Context, args []string) error
}

const (
	signedOutHelp = "Available commands: signup, signin, whoami, exit"
	signedInHelp  = "Available commands: sessions, page <n>, pagesize <n>, sort <field> [asc|desc], " +
		"new <name>, rename <id> <name>, delete <id>, join <id>, leave, show, share [text], whoami, signout, exit"
)

// runREPL starts a simple read–eval–print loop for the clipshare CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and dispatches to methods on 'a' with the remaining tokens as
// arguments. The loop exits on scanner EOF, when ctx is done, or when the
// user types "exit" or "quit".
//
//	Signed out:
//	  - help                        show available commands
//	  - signup | signin             open the sign-up / sign-in form
//	  - whoami                      show who is signed in
//	  - exit | quit                 leave the program
//
//	Signed in, additionally:
//	  - sessions | ls               list the current page of sessions
//	  - page <n> | pagesize <n>     move through the list
//	  - sort <field> [asc|desc]     order by name, created_at or updated_at
//	  - new <name>                  create a session
//	  - rename <id> <name>          rename a session
//	  - delete <id>                 delete a session
//	  - join <id> | leave           follow / stop following a session clipboard
//	  - show                        print the clipboard
//	  - share [text]                replace the clipboard (multi-line without text)
//	  - signout                     sign out
//
// Handlers print their own messages; errors they return are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("clip %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn(signedInHelp)
			} else {
				printlnFn(signedOutHelp)
			}
			continue
		case "signup":
			_ = a.SignUp(ctx)
			continue
		case "signin", "login":
			_ = a.SignIn(ctx)
			continue
		case "whoami":
			_ = a.WhoAmI(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !isKnownCommand(cmd) {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isSignedIn() {
			printlnFn("Please sign in first (signin or signup)")
			continue
		}

		switch cmd {
		case "signout", "logout":
			_ = a.SignOut(ctx)
		case "sessions", "ls":
			_ = a.ListSessions(ctx)
		case "page":
			_ = a.Page(ctx, args)
		case "pagesize":
			_ = a.PageSize(ctx, args)
		case "sort":
			_ = a.Sort(ctx, args)
		case "new":
			_ = a.NewSession(ctx, args)
		case "rename":
			_ = a.RenameSession(ctx, args)
		case "delete", "rm":
			_ = a.DeleteSession(ctx, args)
		case "join":
			_ = a.Join(ctx, args)
		case "leave":
			_ = a.Leave(ctx)
		case "show":
			_ = a.Show(ctx)
		case "share":
			_ = a.Share(ctx, args)
		}
	}
}

func isKnownCommand(cmd string) bool {
	switch cmd {
	case "signout", "logout", "sessions", "ls", "page", "pagesize", "sort",
		"new", "rename", "delete", "rm", "join", "leave", "show", "share":
		return true
	}
	return false
}
