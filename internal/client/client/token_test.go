package client

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccessToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "42",
		"username": "alice",
		"exp":      exp.Unix(),
	}).SignedString([]byte("any key"))
	require.NoError(t, err)

	info, err := ParseAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)
	assert.Equal(t, "42", info.Subject)
	assert.True(t, exp.Equal(info.ExpiresAt))
}

func TestParseAccessToken_ExpiredStillParses(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "bob",
		"exp":      exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	info, err := ParseAccessToken(signed)
	require.NoError(t, err)
	assert.True(t, exp.Equal(info.ExpiresAt))
}

func TestParseAccessToken_Errors(t *testing.T) {
	_, err := ParseAccessToken("")
	require.ErrorIs(t, err, ErrNoAccessToken)

	_, err = ParseAccessToken("not-a-jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse access token")
}

func TestParseAccessToken_NoExpiry(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "c"}).SignedString([]byte("k"))
	require.NoError(t, err)

	info, err := ParseAccessToken(signed)
	require.NoError(t, err)
	assert.True(t, info.ExpiresAt.IsZero())
}
