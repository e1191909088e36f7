package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clipshare/internal/client/client"
	"github.com/dmitrijs2005/clipshare/internal/client/models"
	"github.com/dmitrijs2005/clipshare/internal/client/services"
	"github.com/dmitrijs2005/clipshare/internal/client/validation"
)

var errAlreadySignedIn = errors.New("already signed in")

// SignUp prompts for a new username and password and creates the account.
func (a *App) SignUp(ctx context.Context) error {
	return a.authenticate(ctx, validation.SignUp)
}

// SignIn prompts for credentials and signs in.
func (a *App) SignIn(ctx context.Context) error {
	return a.authenticate(ctx, validation.SignIn)
}

// authenticate runs one pass of the auth form. Field feedback is printed as
// soon as a value is entered; the form alert is printed after a failed
// submit. On success the AuthSession is stored.
func (a *App) authenticate(ctx context.Context, kind validation.FormKind) error {
	if a.isSignedIn() {
		printlnFn("Already signed in as", a.auth.AccountName, "- sign out first")
		return errAlreadySignedIn
	}

	a.flow.Open(kind)
	defer a.flow.Dismiss()
	printlnFn(kind.String())

	name, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	if err := a.flow.OnFieldChange(services.FieldUsername, name); err != nil {
		return err
	}
	if fb := a.flow.View().Username.Feedback; fb != "" {
		printlnFn(fb)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	err = a.flow.OnFieldChange(services.FieldPassword, string(password))
	clear(password)
	if err != nil {
		return err
	}
	if fb := a.flow.View().Password.Feedback; fb != "" {
		printlnFn(fb)
	}

	account, err := a.flow.Submit(ctx)
	if err != nil {
		printlnFn(a.flow.View().Alert)
		return err
	}

	return a.establish(ctx, account)
}

// establish stores the AuthSession for account. The expiry comes from the
// access token the server has just set.
func (a *App) establish(ctx context.Context, account *models.Account) error {
	token := a.api.AccessToken()
	auth := models.AuthSession{AccountName: account.Name}

	if info, err := client.ParseAccessToken(token); err != nil {
		a.log.Warn(ctx, "access token not readable, expiry unknown", "error", err)
	} else {
		auth.ExpiresAt = info.ExpiresAt
	}

	if err := a.store.SaveAuth(ctx, auth, token); err != nil {
		a.log.Error(ctx, "failed to save auth session", "error", err)
	}

	a.auth = &auth
	printlnFn("Signed in as", account.Name)
	return nil
}

// SignOut ends the server session and forgets the local one, including the
// active clipboard session. Local state is cleared even when the server
// cannot be reached.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.api.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "sign out request failed", "error", err)
		a.api.SetAccessToken("")
	}

	a.engine.Deactivate()
	a.activeSession = nil
	a.auth = nil
	a.pages = services.NewPagination()

	if err := a.store.ClearAuth(ctx); err != nil {
		a.report(err)
		return err
	}

	printlnFn("Signed out")
	return nil
}

// WhoAmI prints the signed-in account and when its sign-in expires.
func (a *App) WhoAmI(ctx context.Context) error {
	if a.auth == nil {
		printlnFn("Not signed in")
		return nil
	}
	if a.auth.ExpiresAt.IsZero() {
		printlnFn("Signed in as", a.auth.AccountName)
		return nil
	}
	printlnFn("Signed in as", a.auth.AccountName, "until", a.auth.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}
