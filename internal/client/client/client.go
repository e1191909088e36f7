package client

import (
	"context"

	"github.com/dmitrijs2005/clipshare/internal/client/models"
)

// FetchStatus classifies the answer to a conditional clipboard fetch.
type FetchStatus int

const (
	// FetchNotModified means the held version token is still current (304).
	FetchNotModified FetchStatus = iota
	// FetchNoContent means nothing was ever shared in the session (204).
	FetchNoContent
	// FetchNewValue means the body carries a value and a version token (200).
	FetchNewValue
)

func (s FetchStatus) String() string {
	switch s {
	case FetchNotModified:
		return "not modified"
	case FetchNoContent:
		return "no content"
	case FetchNewValue:
		return "new value"
	}
	return "unknown"
}

// FetchResult is the outcome of Client.FetchClipboard.
type FetchResult struct {
	Status       FetchStatus
	Text         string
	LastModified string
}

// Client is the transport-agnostic contract of the clipboard service API.
type Client interface {
	SignUp(ctx context.Context, name, password string) (*models.Account, error)
	SignIn(ctx context.Context, name, password string) (*models.Account, error)
	SignOut(ctx context.Context) error

	ListSessions(ctx context.Context, params models.ListParams) (*models.SessionPage, error)
	CreateSession(ctx context.Context, name string) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	UpdateSession(ctx context.Context, id, name string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// FetchClipboard asks for the clipboard of a session. A non-empty token is
	// sent as If-Modified-Since.
	FetchClipboard(ctx context.Context, sessionID, token string) (FetchResult, error)
	PushClipboard(ctx context.Context, sessionID, text string) error

	AccessToken() string
	SetAccessToken(token string)
}
