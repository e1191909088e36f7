// Package clipboard keeps the displayed clipboard of a session in step with
// the server by conditional polling.
//
// One Engine follows at most one session at a time. While active it fetches
// immediately and then once per interval. A tick that finds the previous
// fetch still running is skipped, never queued. Each fetch carries the
// version token (Last-Modified) of the last accepted value, and a value is
// only accepted when its token differs from the held one, so identical
// polls never re-render.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/clipshare/internal/client/client"
	"github.com/dmitrijs2005/clipshare/internal/logging"
)

// Banners shown when the server cannot be reached.
const (
	FetchFailedAlert = "Failed to fetch clipboard content. Please try again later."
	PushFailedAlert  = "Failed to share clipboard content. Please try again later."
)

// DefaultInterval is the poll cadence used when none is given.
const DefaultInterval = time.Second

var ErrNotActive = errors.New("no active session")

// API is the part of client.Client the engine talks to.
type API interface {
	FetchClipboard(ctx context.Context, sessionID, token string) (client.FetchResult, error)
	PushClipboard(ctx context.Context, sessionID, text string) error
}

// Snapshot is a copy of what the engine currently displays.
type Snapshot struct {
	SessionID    string
	Active       bool
	Text         string
	LastModified string
	Alert        string

	// Renders counts display changes, Skipped counts ticks dropped because a
	// fetch was still in flight.
	Renders int
	Skipped int
}

type Option func(*Engine)

// WithRenderer registers fn to be called, outside the engine lock, after
// every display change.
func WithRenderer(fn func(Snapshot)) Option {
	return func(e *Engine) { e.render = fn }
}

type Engine struct {
	api      API
	interval time.Duration
	log      logging.Logger
	render   func(Snapshot)

	mu        sync.Mutex
	gen       uint64
	active    bool
	sessionID string
	text      string
	token     string
	alert     string
	renders   int
	skipped   int
	cancel    context.CancelFunc
}

func New(api API, interval time.Duration, log logging.Logger, opts ...Option) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	e := &Engine{api: api, interval: interval, log: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Activate starts following sessionID, replacing any previous session. The
// held token is reset so the first fetch is unconditional. Polling stops
// when ctx is done or on Deactivate.
func (e *Engine) Activate(ctx context.Context, sessionID string) {
	e.mu.Lock()
	e.stopLocked()
	e.gen++
	gen := e.gen
	e.active = true
	e.sessionID = sessionID
	e.text = ""
	e.token = ""
	e.alert = ""
	pollCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	e.log.Info(ctx, "clipboard polling started", "session_id", sessionID, "interval", e.interval.String())

	go e.run(pollCtx, gen, sessionID)
}

// Deactivate stops polling. A fetch still in flight is cancelled and its
// result, should it arrive, is ignored.
func (e *Engine) Deactivate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return
	}
	e.stopLocked()
	e.gen++
	e.active = false
	e.sessionID = ""
	e.text = ""
	e.token = ""
	e.alert = ""
}

func (e *Engine) stopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) run(ctx context.Context, gen uint64, sessionID string) {
	var inFlight atomic.Bool

	e.poll(ctx, gen, sessionID, &inFlight)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.poll(ctx, gen, sessionID, &inFlight)
		}
	}
}

func (e *Engine) poll(ctx context.Context, gen uint64, sessionID string, inFlight *atomic.Bool) {
	if !inFlight.CompareAndSwap(false, true) {
		e.mu.Lock()
		if e.gen == gen {
			e.skipped++
		}
		e.mu.Unlock()
		e.log.Debug(ctx, "clipboard poll skipped, previous fetch in flight", "session_id", sessionID)
		return
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		inFlight.Store(false)
		return
	}
	token := e.token
	e.mu.Unlock()

	go func() {
		defer inFlight.Store(false)
		res, err := e.api.FetchClipboard(ctx, sessionID, token)
		e.applyFetch(ctx, gen, res, err)
	}()
}

func (e *Engine) applyFetch(ctx context.Context, gen uint64, res client.FetchResult, err error) {
	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return
	}

	changed := false
	switch {
	case err != nil:
		if ctx.Err() != nil {
			e.mu.Unlock()
			return
		}
		e.log.Warn(ctx, "clipboard fetch failed", "session_id", e.sessionID, "error", err)
		changed = e.setAlert(FetchFailedAlert)

	case res.Status == client.FetchNewValue && e.isNewer(res):
		changed = e.text != res.Text || e.alert != ""
		e.text = res.Text
		e.token = res.LastModified
		e.alert = ""
		e.log.Debug(ctx, "clipboard updated", "session_id", e.sessionID, "last_modified", res.LastModified)

	default:
		// not modified, no content or same token
		if e.alert == FetchFailedAlert {
			changed = e.setAlert("")
		}
	}

	e.finish(changed)
}

// isNewer reports whether res carries a value the engine has not accepted
// yet. Without a token on either side the content decides.
func (e *Engine) isNewer(res client.FetchResult) bool {
	if res.LastModified != e.token {
		return true
	}
	return res.LastModified == "" && res.Text != e.text
}

func (e *Engine) setAlert(alert string) bool {
	if e.alert == alert {
		return false
	}
	e.alert = alert
	return true
}

// finish releases the lock and renders when the display changed.
func (e *Engine) finish(changed bool) {
	if !changed {
		e.mu.Unlock()
		return
	}
	e.renders++
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if e.render != nil {
		e.render(snap)
	}
}

// Push shares text in the active session.
func (e *Engine) Push(ctx context.Context, text string) error {
	e.mu.Lock()
	sessionID := e.sessionID
	active := e.active
	e.mu.Unlock()

	if !active {
		return ErrNotActive
	}
	return e.PushTo(ctx, sessionID, text)
}

// PushTo replaces the clipboard of sessionID with text. When sessionID is
// the active session the display follows: the pushed text is shown and the
// banner cleared on success, the push banner is shown on failure. The held
// token is left alone; the next poll picks up the server's.
func (e *Engine) PushTo(ctx context.Context, sessionID, text string) error {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()

	err := e.api.PushClipboard(ctx, sessionID, text)

	e.mu.Lock()
	if e.gen != gen || !e.active || e.sessionID != sessionID {
		e.mu.Unlock()
		if err != nil {
			return fmt.Errorf("push clipboard: %w", err)
		}
		return nil
	}

	changed := false
	if err != nil {
		e.log.Warn(ctx, "clipboard push failed", "session_id", sessionID, "error", err)
		changed = e.setAlert(PushFailedAlert)
	} else {
		changed = e.setAlert("")
		if e.text != text {
			e.text = text
			changed = true
		}
	}
	e.finish(changed)

	if err != nil {
		return fmt.Errorf("push clipboard: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the displayed state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:    e.sessionID,
		Active:       e.active,
		Text:         e.text,
		LastModified: e.token,
		Alert:        e.alert,
		Renders:      e.renders,
		Skipped:      e.skipped,
	}
}
