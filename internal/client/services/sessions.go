package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clipshare/internal/client/client"
	"github.com/dmitrijs2005/clipshare/internal/client/models"
	"github.com/dmitrijs2005/clipshare/internal/common"
	"github.com/dmitrijs2005/clipshare/internal/logging"
)

// SessionAPI is the part of client.Client the registry needs.
type SessionAPI interface {
	ListSessions(ctx context.Context, params models.ListParams) (*models.SessionPage, error)
	CreateSession(ctx context.Context, name string) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	UpdateSession(ctx context.Context, id, name string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

var ErrEmptyName = fmt.Errorf("session name must not be empty: %w", client.ErrValidation)

// SessionRegistry is a thin CRUD wrapper over the session endpoints. It does
// not retry and does not cache; after Remove the caller lists again.
type SessionRegistry struct {
	api SessionAPI
	log logging.Logger
}

func NewSessionRegistry(api SessionAPI, log logging.Logger) *SessionRegistry {
	return &SessionRegistry{api: api, log: log}
}

// NormalizeParams fills in defaults for a list request.
func NormalizeParams(p models.ListParams) models.ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = common.DefaultPageSize
	}
	if p.SortBy == "" {
		p.SortBy = common.DefaultSortBy
	}
	return p
}

func (r *SessionRegistry) List(ctx context.Context, params models.ListParams) (*models.SessionPage, error) {
	params = NormalizeParams(params)

	page, err := r.api.ListSessions(ctx, params)
	if err != nil {
		return nil, r.failed(ctx, "Failed to load sessions", err)
	}
	return page, nil
}

func (r *SessionRegistry) Create(ctx context.Context, name string) (*models.Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	s, err := r.api.CreateSession(ctx, name)
	if err != nil {
		return nil, r.failed(ctx, "Failed to create session", err)
	}
	return s, nil
}

func (r *SessionRegistry) Get(ctx context.Context, id string) (*models.Session, error) {
	s, err := r.api.GetSession(ctx, id)
	if err != nil {
		return nil, r.failed(ctx, "Failed to load session", err)
	}
	return s, nil
}

func (r *SessionRegistry) Rename(ctx context.Context, id, name string) (*models.Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	s, err := r.api.UpdateSession(ctx, id, name)
	if err != nil {
		return nil, r.failed(ctx, "Failed to rename session", err)
	}
	return s, nil
}

func (r *SessionRegistry) Remove(ctx context.Context, id string) error {
	if err := r.api.DeleteSession(ctx, id); err != nil {
		return r.failed(ctx, "Failed to delete session", err)
	}
	return nil
}

func (r *SessionRegistry) failed(ctx context.Context, cause string, err error) error {
	if errors.Is(err, client.ErrNotFound) {
		cause = "Session not found"
	}
	r.log.Warn(ctx, "session request failed", "cause", cause, "error", err)
	return &RequestFailedError{Cause: cause, Err: err}
}

// Pagination keeps the list parameters of a session table.
type Pagination struct {
	params models.ListParams
	total  int
}

func NewPagination() *Pagination {
	return &Pagination{params: NormalizeParams(models.ListParams{SortDesc: true})}
}

// Params returns the parameters of the next list request.
func (p *Pagination) Params() models.ListParams { return p.params }

func (p *Pagination) Page() int { return p.params.Page }

func (p *Pagination) PageSize() int { return p.params.PageSize }

func (p *Pagination) Total() int { return p.total }

// SetPageSize changes the page size and goes back to page 1.
func (p *Pagination) SetPageSize(n int) {
	if n < 1 {
		n = common.DefaultPageSize
	}
	p.params.PageSize = n
	p.params.Page = 1
}

// SetPage moves to page n, clamped to [1, TotalPages] once a total is known.
func (p *Pagination) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	if pages := p.TotalPages(); pages > 0 && n > pages {
		n = pages
	}
	p.params.Page = n
}

// SetSort changes the ordering and goes back to page 1.
func (p *Pagination) SetSort(field string, desc bool) {
	if field == "" {
		field = common.DefaultSortBy
	}
	p.params.SortBy = field
	p.params.SortDesc = desc
	p.params.Page = 1
}

// Update records the total reported by the last list response. When the
// current page no longer exists it moves to the last one.
func (p *Pagination) Update(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	if pages := p.TotalPages(); pages > 0 && p.params.Page > pages {
		p.params.Page = pages
	}
}

// TotalPages is ceil(total / pageSize).
func (p *Pagination) TotalPages() int {
	if p.params.PageSize < 1 {
		return 0
	}
	return (p.total + p.params.PageSize - 1) / p.params.PageSize
}
