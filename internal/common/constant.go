// Package common contains protocol constants shared by the clipshare client
// and the in-memory test server.
package common

// HTTP headers used by the clipboard protocol.
const (
	ContentTypeHeader     = "Content-Type"
	LastModifiedHeader    = "Last-Modified"
	IfModifiedSinceHeader = "If-Modified-Since"
	RequestIDHeader       = "X-Request-ID"

	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// AccessTokenCookieName is the cookie the server uses to carry the access token.
const AccessTokenCookieName = "accessToken"

// Default listing parameters, matching the web client.
const (
	DefaultPageSize = 10
	DefaultSortBy   = "updated_at"
)
