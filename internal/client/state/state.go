// Package state persists what the CLI must remember between runs: the
// signed-in AuthSession with its access token, and the last joined session.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clipshare/internal/client/models"
	"github.com/dmitrijs2005/clipshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clipshare/internal/dbx"
)

// Metadata keys.
const (
	KeyAccount       = "auth.account"
	KeyExpiresAt     = "auth.expires_at"
	KeyToken         = "auth.token"
	KeyActiveSession = "session.active"
)

var (
	ErrNoAuthSession = errors.New("not signed in")
	ErrAuthExpired   = errors.New("auth session expired")
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// SaveAuth stores the AuthSession and its access token atomically.
func (s *Store) SaveAuth(ctx context.Context, auth models.AuthSession, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyAccount, []byte(auth.AccountName)); err != nil {
			return err
		}
		var exp []byte
		if !auth.ExpiresAt.IsZero() {
			exp = []byte(auth.ExpiresAt.UTC().Format(time.RFC3339Nano))
		}
		if err := repo.Set(ctx, KeyExpiresAt, exp); err != nil {
			return err
		}
		return repo.Set(ctx, KeyToken, []byte(token))
	})
}

// LoadAuth returns the stored AuthSession and token. An expired session is
// removed together with the active session and reported as ErrAuthExpired.
func (s *Store) LoadAuth(ctx context.Context) (*models.AuthSession, string, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	name, err := repo.Get(ctx, KeyAccount)
	if err != nil {
		return nil, "", err
	}
	if len(name) == 0 {
		return nil, "", ErrNoAuthSession
	}

	auth := &models.AuthSession{AccountName: string(name)}

	exp, err := repo.Get(ctx, KeyExpiresAt)
	if err != nil {
		return nil, "", err
	}
	if len(exp) > 0 {
		t, err := time.Parse(time.RFC3339Nano, string(exp))
		if err != nil {
			return nil, "", fmt.Errorf("parse %s: %w", KeyExpiresAt, err)
		}
		auth.ExpiresAt = t
	}

	if auth.Expired(s.now()) {
		if err := s.ClearAuth(ctx); err != nil {
			return nil, "", err
		}
		return nil, "", ErrAuthExpired
	}

	token, err := repo.Get(ctx, KeyToken)
	if err != nil {
		return nil, "", err
	}
	return auth, string(token), nil
}

// ClearAuth forgets the AuthSession and the active session.
func (s *Store) ClearAuth(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, KeyAccount, KeyExpiresAt, KeyToken, KeyActiveSession)
	})
}

func (s *Store) SetActiveSession(ctx context.Context, id string) error {
	return metadata.NewSQLiteRepository(s.db).Set(ctx, KeyActiveSession, []byte(id))
}

// ActiveSession returns the remembered session id, or "" when none.
func (s *Store) ActiveSession(ctx context.Context) (string, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, KeyActiveSession)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Store) ClearActiveSession(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, KeyActiveSession)
}
