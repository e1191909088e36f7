package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/clipshare/internal/client/models"
)

var errUsage = errors.New("usage")

// sortFields are the orderings the server accepts.
var sortFields = map[string]struct{}{
	"name":       {},
	"created_at": {},
	"updated_at": {},
}

func usage(text string) error {
	printlnFn("Usage:", text)
	return errUsage
}

// ListSessions prints the current page of sessions.
func (a *App) ListSessions(ctx context.Context) error {
	page, err := a.registry.List(ctx, a.pages.Params())
	if err != nil {
		a.report(err)
		return err
	}

	requested := a.pages.Page()
	a.pages.Update(page.TotalItems)
	if a.pages.Page() != requested {
		// the list shrank under us, show the last page instead
		if page, err = a.registry.List(ctx, a.pages.Params()); err != nil {
			a.report(err)
			return err
		}
	}

	a.printSessions(page)
	return nil
}

func (a *App) printSessions(page *models.SessionPage) {
	if len(page.Items) == 0 {
		printlnFn("No sessions yet. Create one with: new <name>")
		return
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
	for _, s := range page.Items {
		marker := ""
		if a.activeSession != nil && a.activeSession.ID == s.ID {
			marker = " *"
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\n", s.ID, s.Name, marker, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()

	printlnFn(strings.TrimRight(sb.String(), "\n"))
	printlnFn(fmt.Sprintf("Page %d of %d (%d sessions, %d per page)",
		a.pages.Page(), a.pages.TotalPages(), a.pages.Total(), a.pages.PageSize()))
}

// Page switches to another page of the session list.
func (a *App) Page(ctx context.Context, args []string) error {
	n, err := positiveArg(args)
	if err != nil {
		return usage("page <number>")
	}
	a.pages.SetPage(n)
	return a.ListSessions(ctx)
}

// PageSize changes how many sessions a page holds and goes back to page 1.
func (a *App) PageSize(ctx context.Context, args []string) error {
	n, err := positiveArg(args)
	if err != nil {
		return usage("pagesize <number>")
	}
	a.pages.SetPageSize(n)
	return a.ListSessions(ctx)
}

// Sort changes the ordering of the session list.
func (a *App) Sort(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usage("sort name|created_at|updated_at [asc|desc]")
	}
	if _, ok := sortFields[args[0]]; !ok {
		return usage("sort name|created_at|updated_at [asc|desc]")
	}

	desc := true
	if len(args) == 2 {
		switch args[1] {
		case "asc":
			desc = false
		case "desc":
		default:
			return usage("sort name|created_at|updated_at [asc|desc]")
		}
	}

	a.pages.SetSort(args[0], desc)
	return a.ListSessions(ctx)
}

// NewSession creates a session named by the rest of the line.
func (a *App) NewSession(ctx context.Context, args []string) error {
	s, err := a.registry.Create(ctx, strings.Join(args, " "))
	if err != nil {
		a.report(err)
		return err
	}
	printlnFn(fmt.Sprintf("Created session %s (%s)", s.Name, s.ID))
	return nil
}

// RenameSession renames session <id>.
func (a *App) RenameSession(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("rename <id> <name>")
	}

	s, err := a.registry.Rename(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		a.report(err)
		return err
	}
	if a.activeSession != nil && a.activeSession.ID == s.ID {
		a.activeSession = s
	}
	printlnFn(fmt.Sprintf("Renamed session %s to %s", s.ID, s.Name))
	return nil
}

// DeleteSession removes session <id> and lists the sessions again.
func (a *App) DeleteSession(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <id>")
	}

	id := args[0]
	if err := a.registry.Remove(ctx, id); err != nil {
		a.report(err)
		return err
	}
	printlnFn("Deleted session", id)

	if a.activeSession != nil && a.activeSession.ID == id {
		_ = a.Leave(ctx)
	}
	return a.ListSessions(ctx)
}

func positiveArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, errUsage
	}
	return n, nil
}
