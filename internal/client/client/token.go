package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessClaims mirrors the claims the server puts into the access token.
type accessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenInfo is what the client can learn from its own access token.
type TokenInfo struct {
	Username  string
	Subject   string
	ExpiresAt time.Time
}

var ErrNoAccessToken = errors.New("no access token")

// ParseAccessToken reads the claims of an access token without verifying its
// signature: the client has no key and only needs the expiry and the name.
func ParseAccessToken(token string) (TokenInfo, error) {
	if token == "" {
		return TokenInfo{}, ErrNoAccessToken
	}

	var claims accessClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, fmt.Errorf("parse access token: %w", err)
	}

	info := TokenInfo{Username: claims.Username, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
