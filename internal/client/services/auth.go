// Package services contains the application services of the clipshare
// client: the sign-in/sign-up form controller and the session registry.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/clipshare/internal/client/client"
	"github.com/dmitrijs2005/clipshare/internal/client/models"
	"github.com/dmitrijs2005/clipshare/internal/client/validation"
	"github.com/dmitrijs2005/clipshare/internal/logging"
)

// Authenticator is the part of client.Client the auth flow needs.
type Authenticator interface {
	SignIn(ctx context.Context, name, password string) (*models.Account, error)
	SignUp(ctx context.Context, name, password string) (*models.Account, error)
}

// AuthState is a state of the auth form.
type AuthState int

const (
	StateClosed AuthState = iota
	StateEditing
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s AuthState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Field names a form input.
type Field int

const (
	FieldUsername Field = iota
	FieldPassword
)

// Alerts shown above the form.
const (
	AlertBothRequired  = "Both username and password are required"
	AlertUnexpected    = "Unexpected error occurred"
	AlertWeakPassword  = "Password must be at least 8 character long and contain at least one uppercase letter, one lowercase letter, one digit and one special character"
	AlertNameTaken     = "User with such name already exists"
	AlertNameNotFound  = "User with such name does not exist"
	AlertWrongPassword = "Password is incorrect"
)

var codeAlerts = map[string]string{
	client.CodeSignUpWeakPassword:  AlertWeakPassword,
	client.CodeSignUpNameTaken:     AlertNameTaken,
	client.CodeSignInNameNotFound:  AlertNameNotFound,
	client.CodeSignInWrongPassword: AlertWrongPassword,
}

var (
	ErrFormInvalid      = fmt.Errorf("form is incomplete: %w", client.ErrValidation)
	ErrFormClosed       = errors.New("form is not open")
	ErrSubmitInProgress = errors.New("submit already in progress")
)

// FormView is a copy of the form state for rendering.
type FormView struct {
	Kind     validation.FormKind
	State    AuthState
	Username models.FieldState
	Password models.FieldState
	Alert    string
}

// AuthFlow drives one sign-in or sign-up form from opening to the server's
// answer. It never persists anything; the caller establishes the
// AuthSession from the returned account.
type AuthFlow struct {
	auth Authenticator
	log  logging.Logger

	mu       sync.Mutex
	state    AuthState
	kind     validation.FormKind
	username models.FieldState
	password models.FieldState
	alert    string
}

func NewAuthFlow(auth Authenticator, log logging.Logger) *AuthFlow {
	return &AuthFlow{auth: auth, log: log}
}

// Open shows an empty form of the given kind, discarding any previous one.
func (f *AuthFlow) Open(kind validation.FormKind) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reset()
	f.kind = kind
	f.state = StateEditing
}

// Dismiss closes the form and drops all of its state.
func (f *AuthFlow) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reset()
	f.state = StateClosed
}

func (f *AuthFlow) reset() {
	f.username = models.FieldState{}
	f.password = models.FieldState{}
	f.alert = ""
}

// OnFieldChange stores and validates a new field value and clears the alert.
func (f *AuthFlow) OnFieldChange(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateClosed:
		return ErrFormClosed
	case StateSubmitting:
		return ErrSubmitInProgress
	}

	var res validation.Result
	var target *models.FieldState
	switch field {
	case FieldUsername:
		res = validation.ValidateUsername(f.kind, value)
		target = &f.username
	case FieldPassword:
		res = validation.ValidatePassword(f.kind, value)
		target = &f.password
	default:
		return fmt.Errorf("unknown field %d", field)
	}

	*target = models.FieldState{Value: value, Feedback: res.Feedback, Touched: true, Valid: res.Valid}
	f.alert = ""
	f.state = StateEditing
	return nil
}

// Submit sends the form when both fields are valid. On failure the alert
// carries the message for the user and the password is cleared.
func (f *AuthFlow) Submit(ctx context.Context) (*models.Account, error) {
	f.mu.Lock()
	switch f.state {
	case StateClosed:
		f.mu.Unlock()
		return nil, ErrFormClosed
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	if !f.username.Valid || !f.password.Valid {
		f.alert = AlertBothRequired
		f.mu.Unlock()
		return nil, ErrFormInvalid
	}

	kind, name, password := f.kind, f.username.Value, f.password.Value
	f.state = StateSubmitting
	f.alert = ""
	f.mu.Unlock()

	account, err := f.send(ctx, kind, name, password)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSubmitting {
		// dismissed or reopened meanwhile
		return nil, ErrFormClosed
	}

	if err != nil {
		f.state = StateFailed
		f.alert = alertFor(err)
		f.password = models.FieldState{}
		f.log.Warn(ctx, "auth request failed", "form", kind.String(), "name", name, "error", err)
		return nil, err
	}

	f.state = StateSucceeded
	f.reset()
	f.log.Info(ctx, "auth succeeded", "form", kind.String(), "account", account.Name)
	return account, nil
}

func (f *AuthFlow) send(ctx context.Context, kind validation.FormKind, name, password string) (*models.Account, error) {
	switch kind {
	case validation.SignIn:
		return f.auth.SignIn(ctx, name, password)
	case validation.SignUp:
		return f.auth.SignUp(ctx, name, password)
	}
	return nil, fmt.Errorf("unsupported form %s", kind)
}

func alertFor(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if msg, ok := codeAlerts[apiErr.Code]; ok {
			return msg
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return AlertUnexpected
}

// View returns a copy of the current form state.
func (f *AuthFlow) View() FormView {
	f.mu.Lock()
	defer f.mu.Unlock()

	return FormView{
		Kind:     f.kind,
		State:    f.state,
		Username: f.username,
		Password: f.password,
		Alert:    f.alert,
	}
}
