package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks input rejected locally; such errors never reach the network.
	ErrValidation = errors.New("validation error")

	// ErrAuth marks a structured error response carrying a known auth code.
	ErrAuth = errors.New("auth error")

	// ErrNotFound is returned for 404 responses on session-scoped operations.
	ErrNotFound = errors.New("not found")

	// ErrTransport covers network failures and malformed responses.
	ErrTransport = errors.New("transport error")

	// ErrServer covers any other non-2xx response.
	ErrServer = errors.New("server error")

	// ErrUnauthorized is returned when the server rejects the access token.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error codes the server puts into structured error payloads.
const (
	CodeSignUpWeakPassword  = "ERR_2101"
	CodeSignUpNameTaken     = "ERR_2102"
	CodeSignInWrongPassword = "ERR_2103"
	CodeSignInNameNotFound  = "ERR_2201"
)

var authCodes = map[string]struct{}{
	CodeSignUpWeakPassword:  {},
	CodeSignUpNameTaken:     {},
	CodeSignInWrongPassword: {},
	CodeSignInNameNotFound:  {},
}

// IsAuthCode reports whether code belongs to the sign-in/sign-up code table.
func IsAuthCode(code string) bool {
	_, ok := authCodes[code]
	return ok
}

// APIError is a non-2xx response with a structured `{"error", "code", "message"}` body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Is classifies the error against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuth:
		return IsAuthCode(e.Code)
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized && !IsAuthCode(e.Code)
	case ErrServer:
		return !IsAuthCode(e.Code) && e.Status != http.StatusNotFound
	}
	return false
}

// TransportError wraps a failure to complete an HTTP exchange.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
