package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/clipshare/internal/client/models"
)

// fakeAuth implements Authenticator for AuthFlow tests.
type fakeAuth struct {
	mu sync.Mutex

	SignInRet *models.Account
	SignInErr error
	SignUpRet *models.Account
	SignUpErr error

	// block, when set, is waited on before answering
	block chan struct{}

	SignInCalls  int
	SignUpCalls  int
	LastName     string
	LastPassword string
}

func (f *fakeAuth) SignIn(ctx context.Context, name, password string) (*models.Account, error) {
	f.record(name, password, &f.SignInCalls)
	f.wait()
	return f.SignInRet, f.SignInErr
}

func (f *fakeAuth) SignUp(ctx context.Context, name, password string) (*models.Account, error) {
	f.record(name, password, &f.SignUpCalls)
	f.wait()
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeAuth) record(name, password string, counter *int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*counter++
	f.LastName = name
	f.LastPassword = password
}

func (f *fakeAuth) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAuth) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SignInCalls + f.SignUpCalls
}

// fakeSessionAPI implements SessionAPI for SessionRegistry tests.
type fakeSessionAPI struct {
	ListRet   *models.SessionPage
	ListErr   error
	CreateRet *models.Session
	CreateErr error
	GetRet    *models.Session
	GetErr    error
	UpdateRet *models.Session
	UpdateErr error
	DeleteErr error

	Calls      int
	LastParams models.ListParams
	LastID     string
	LastName   string
}

func (f *fakeSessionAPI) ListSessions(ctx context.Context, params models.ListParams) (*models.SessionPage, error) {
	f.Calls++
	f.LastParams = params
	return f.ListRet, f.ListErr
}

func (f *fakeSessionAPI) CreateSession(ctx context.Context, name string) (*models.Session, error) {
	f.Calls++
	f.LastName = name
	return f.CreateRet, f.CreateErr
}

func (f *fakeSessionAPI) GetSession(ctx context.Context, id string) (*models.Session, error) {
	f.Calls++
	f.LastID = id
	return f.GetRet, f.GetErr
}

func (f *fakeSessionAPI) UpdateSession(ctx context.Context, id, name string) (*models.Session, error) {
	f.Calls++
	f.LastID = id
	f.LastName = name
	return f.UpdateRet, f.UpdateErr
}

func (f *fakeSessionAPI) DeleteSession(ctx context.Context, id string) error {
	f.Calls++
	f.LastID = id
	return f.DeleteErr
}
