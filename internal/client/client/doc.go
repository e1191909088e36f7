// Package client contains the client-side building blocks for talking to the
// shared clipboard service.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): sign-up,
//     sign-in, sign-out, session CRUD and the clipboard fetch/push pair.
//  2. A concrete HTTP implementation (see HTTPClient) that keeps the access
//     token in a cookie jar, tags every request with an X-Request-ID and maps
//     non-2xx responses to typed errors in one place.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//  4. ParseAccessToken, which reads the name and expiry from an access token.
//
// # Error Handling
//
// Failures are classified with errors.Is against ErrValidation, ErrAuth,
// ErrNotFound, ErrTransport, ErrServer and ErrUnauthorized. Structured server
// errors are *APIError values, network failures are *TransportError values.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
