// Package models defines client-side data models used by the clipshare CLI.
package models

import "time"

// Account is the payload returned by a successful sign-in or sign-up.
type Account struct {
	// ID is the server-assigned account identifier.
	ID uint64

	// Name is the account (user) name.
	Name string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthSession is the signed-in identity kept by the client between runs.
// It is created by the caller of the auth flow, never by the flow itself.
type AuthSession struct {
	AccountName string

	// ExpiresAt is taken from the access token; zero means unknown.
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s AuthSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
