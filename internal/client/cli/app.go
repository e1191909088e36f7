package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/clipshare/internal/client/client"
	"github.com/dmitrijs2005/clipshare/internal/client/clipboard"
	"github.com/dmitrijs2005/clipshare/internal/client/config"
	"github.com/dmitrijs2005/clipshare/internal/client/models"
	"github.com/dmitrijs2005/clipshare/internal/client/services"
	"github.com/dmitrijs2005/clipshare/internal/client/state"
	"github.com/dmitrijs2005/clipshare/internal/filex"
	"github.com/dmitrijs2005/clipshare/internal/logging"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	api      client.Client
	store    *state.Store
	flow     *services.AuthFlow
	registry *services.SessionRegistry
	pages    *services.Pagination
	engine   *clipboard.Engine

	reader *bufio.Reader
	out    io.Writer

	auth          *models.AuthSession
	activeSession *models.Session
}

// NewApp opens the local database and builds the API client and services.
// The caller must Close the App.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(c.DBPath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	api, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, log, db, api, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, db *sql.DB, api client.Client, reader *bufio.Reader, out io.Writer) *App {
	a := &App{
		config:   c,
		log:      log,
		db:       db,
		api:      api,
		store:    state.NewStore(db),
		flow:     services.NewAuthFlow(api, log),
		registry: services.NewSessionRegistry(api, log),
		pages:    services.NewPagination(),
		reader:   reader,
		out:      out,
	}
	a.engine = clipboard.New(api, c.PollInterval, log.With("component", "clipboard"), clipboard.WithRenderer(a.render))
	return a
}

// Run restores the previous sign-in and session, then serves the REPL until
// the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to clipshare (type 'help' for commands)")
	a.restore(ctx)
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

// Close stops polling and releases the local database.
func (a *App) Close() error {
	a.engine.Deactivate()
	return a.db.Close()
}

func (a *App) isSignedIn() bool {
	return a.auth != nil
}

func (a *App) getStatus() string {
	if a.auth == nil {
		return ""
	}
	s := a.auth.AccountName
	if a.activeSession != nil {
		s += " @ " + a.activeSession.Name
	}
	return fmt.Sprintf("(%s)", s)
}

// restore brings back a stored, non-expired AuthSession and re-joins the
// remembered session.
func (a *App) restore(ctx context.Context) {
	auth, token, err := a.store.LoadAuth(ctx)
	switch {
	case errors.Is(err, state.ErrNoAuthSession):
		return
	case errors.Is(err, state.ErrAuthExpired):
		printlnFn("Your session has expired, please sign in again")
		return
	case err != nil:
		a.log.Error(ctx, "failed to load auth session", "error", err)
		return
	}

	a.api.SetAccessToken(token)
	a.auth = auth
	printlnFn("Signed in as", auth.AccountName)

	id, err := a.store.ActiveSession(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to load active session", "error", err)
		return
	}
	if id != "" {
		_ = a.join(ctx, id)
	}
}

// report prints a human-readable message for err.
func (a *App) report(err error) {
	var rf *services.RequestFailedError
	switch {
	case errors.As(err, &rf) && errors.Is(err, client.ErrUnauthorized):
		printlnFn(rf.Cause + ": please sign in again")
	case errors.As(err, &rf):
		printlnFn(rf.Cause)
	case errors.Is(err, client.ErrValidation):
		printlnFn(err.Error())
	default:
		printlnFn("Error:", err.Error())
	}
}
