package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/clipshare/internal/client/client"
	"github.com/dmitrijs2005/clipshare/internal/client/models"
	"github.com/dmitrijs2005/clipshare/internal/client/validation"
	"github.com/dmitrijs2005/clipshare/internal/logging"
)

func openForm(t *testing.T, auth *fakeAuth, kind validation.FormKind, name, password string) *AuthFlow {
	t.Helper()
	f := NewAuthFlow(auth, logging.Nop())
	f.Open(kind)
	require.NoError(t, f.OnFieldChange(FieldUsername, name))
	require.NoError(t, f.OnFieldChange(FieldPassword, password))
	return f
}

func TestAuthFlow_OpenAndDismiss(t *testing.T) {
	f := NewAuthFlow(&fakeAuth{}, logging.Nop())
	assert.Equal(t, StateClosed, f.View().State)

	require.ErrorIs(t, f.OnFieldChange(FieldUsername, "x"), ErrFormClosed)

	f.Open(validation.SignUp)
	v := f.View()
	assert.Equal(t, StateEditing, v.State)
	assert.Equal(t, validation.SignUp, v.Kind)
	assert.False(t, v.Username.Touched)

	require.NoError(t, f.OnFieldChange(FieldUsername, "abc"))
	f.Dismiss()

	v = f.View()
	assert.Equal(t, StateClosed, v.State)
	assert.Equal(t, models.FieldState{}, v.Username)
}

func TestAuthFlow_OnFieldChange_ValidatesAndClearsAlert(t *testing.T) {
	f := NewAuthFlow(&fakeAuth{}, logging.Nop())
	f.Open(validation.SignUp)

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrFormInvalid)
	assert.Equal(t, AlertBothRequired, f.View().Alert)

	require.NoError(t, f.OnFieldChange(FieldUsername, "ab"))
	v := f.View()
	assert.Empty(t, v.Alert)
	assert.Equal(t, models.FieldState{Value: "ab", Feedback: validation.UsernameTooShortFeedback, Touched: true}, v.Username)

	require.NoError(t, f.OnFieldChange(FieldPassword, "Abcdef1!"))
	assert.True(t, f.View().Password.Valid)
}

func TestAuthFlow_SignUp_ShortUsernameSendsNothing(t *testing.T) {
	auth := &fakeAuth{}
	f := openForm(t, auth, validation.SignUp, "ab", "Abcdef1!")

	assert.Equal(t, validation.UsernameTooShortFeedback, f.View().Username.Feedback)

	acc, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrFormInvalid)
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Nil(t, acc)
	assert.Zero(t, auth.calls())
	assert.Equal(t, AlertBothRequired, f.View().Alert)
	assert.Equal(t, StateEditing, f.View().State)
}

func TestAuthFlow_SignUp_Success(t *testing.T) {
	want := &models.Account{ID: 7, Name: "abc123"}
	auth := &fakeAuth{SignUpRet: want}
	f := openForm(t, auth, validation.SignUp, "abc123", "Abcdef1!")

	acc, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, acc)

	assert.Equal(t, 1, auth.SignUpCalls)
	assert.Zero(t, auth.SignInCalls)
	assert.Equal(t, "abc123", auth.LastName)
	assert.Equal(t, "Abcdef1!", auth.LastPassword)

	v := f.View()
	assert.Equal(t, StateSucceeded, v.State)
	assert.Equal(t, models.FieldState{}, v.Username)
	assert.Equal(t, models.FieldState{}, v.Password)
	assert.Empty(t, v.Alert)
}

func TestAuthFlow_SignIn_UsesSignIn(t *testing.T) {
	auth := &fakeAuth{SignInRet: &models.Account{Name: "x"}}
	f := openForm(t, auth, validation.SignIn, "x", "y")

	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, auth.SignInCalls)
	assert.Zero(t, auth.SignUpCalls)
}

func TestAuthFlow_FailureClassification(t *testing.T) {
	apiErr := func(code, msg string) error {
		return fmt.Errorf("sign in: %w", &client.APIError{Status: http.StatusBadRequest, Code: code, Message: msg})
	}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "weak password", err: apiErr(client.CodeSignUpWeakPassword, "bad"), want: AlertWeakPassword},
		{name: "name taken", err: apiErr(client.CodeSignUpNameTaken, "conflict"), want: AlertNameTaken},
		{name: "name not found", err: apiErr(client.CodeSignInNameNotFound, "nf"), want: AlertNameNotFound},
		{name: "wrong password", err: apiErr(client.CodeSignInWrongPassword, "wp"), want: AlertWrongPassword},
		{name: "unknown code is verbatim", err: apiErr("ERR_9999", "Server is sleeping"), want: "Server is sleeping"},
		{name: "transport", err: &client.TransportError{Op: "sign in", Err: errors.New("connection refused")}, want: AlertUnexpected},
		{name: "anything else", err: errors.New("boom"), want: AlertUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{SignInErr: tt.err}
			f := openForm(t, auth, validation.SignIn, "alice", "secret")

			acc, err := f.Submit(context.Background())
			require.Error(t, err)
			assert.Nil(t, acc)

			v := f.View()
			assert.Equal(t, StateFailed, v.State)
			assert.Equal(t, tt.want, v.Alert)
			assert.Equal(t, "alice", v.Username.Value)
			assert.Empty(t, v.Password.Value)
		})
	}
}

func TestAuthFlow_EditingAfterFailure(t *testing.T) {
	auth := &fakeAuth{SignInErr: errors.New("boom")}
	f := openForm(t, auth, validation.SignIn, "alice", "secret")

	_, err := f.Submit(context.Background())
	require.Error(t, err)

	require.NoError(t, f.OnFieldChange(FieldPassword, "again"))
	v := f.View()
	assert.Equal(t, StateEditing, v.State)
	assert.Empty(t, v.Alert)
}

func TestAuthFlow_ConcurrentSubmitRejected(t *testing.T) {
	auth := &fakeAuth{SignInRet: &models.Account{Name: "alice"}, block: make(chan struct{})}
	f := openForm(t, auth, validation.SignIn, "alice", "secret")

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return f.View().State == StateSubmitting }, time.Second, time.Millisecond)

	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitInProgress)
	require.ErrorIs(t, f.OnFieldChange(FieldUsername, "bob"), ErrSubmitInProgress)

	close(auth.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, auth.calls())
}

func TestAuthFlow_DismissDuringSubmitDiscardsResult(t *testing.T) {
	auth := &fakeAuth{SignInRet: &models.Account{Name: "alice"}, block: make(chan struct{})}
	f := openForm(t, auth, validation.SignIn, "alice", "secret")

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return f.View().State == StateSubmitting }, time.Second, time.Millisecond)

	f.Dismiss()
	close(auth.block)

	require.ErrorIs(t, <-done, ErrFormClosed)
	assert.Equal(t, StateClosed, f.View().State)
}

func TestAuthState_String(t *testing.T) {
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "unknown", AuthState(99).String())
}
