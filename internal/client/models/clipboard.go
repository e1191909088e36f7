package models

// Clipboard is the shared text of a session together with its version token.
type Clipboard struct {
	SessionID string
	Text      string

	// LastModified is an opaque version token, compared for equality only.
	LastModified string
}
