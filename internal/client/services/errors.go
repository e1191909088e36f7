package services

import (
	"errors"
	"fmt"
)

// ErrRequestFailed matches every *RequestFailedError.
var ErrRequestFailed = errors.New("request failed")

// RequestFailedError is how the session registry reports a failed call.
// Cause is meant for the user; Err keeps the underlying error so callers can
// still tell, for example, client.ErrNotFound apart.
type RequestFailedError struct {
	Cause string
	Err   error
}

func (e *RequestFailedError) Error() string {
	if e.Err == nil {
		return e.Cause
	}
	return fmt.Sprintf("%s: %v", e.Cause, e.Err)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }
