package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"moneymate/internal/amqp"
	"moneymate/internal/api"
	"moneymate/internal/core"
	"moneymate/internal/storage"
)

var (
	errUnauthorized = &api.Error{Op: "test", StatusCode: 401, Message: "Unauthorized"}
	errOffline      = &api.TransportError{Op: "test", Err: errors.New("dial tcp: connection refused")}
)

// fakeAPI records calls by name and answers from the configured fields.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int
	last  map[string][]any

	profile    core.Profile
	profileErr error
	token      string
	message    string
	err        map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls: map[string]int{},
		last:  map[string][]any{},
		err:   map[string]error{},
		token: "tok-1",
	}
}

func (f *fakeAPI) record(name string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	f.last[name] = args
	return f.err[name]
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) msg() api.MessageResponse { return api.MessageResponse{Message: f.message} }

func (f *fakeAPI) SignUp(_ context.Context, email, password string) (api.MessageResponse, error) {
	return f.msg(), f.record("SignUp", email, password)
}

func (f *fakeAPI) Verify(_ context.Context, email, code string) (api.TokenResponse, error) {
	if err := f.record("Verify", email, code); err != nil {
		return api.TokenResponse{}, err
	}
	return api.TokenResponse{Message: f.message, Token: f.token}, nil
}

func (f *fakeAPI) Resend(_ context.Context, email string) (api.MessageResponse, error) {
	return f.msg(), f.record("Resend", email)
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (api.TokenResponse, error) {
	if err := f.record("Login", email, password); err != nil {
		return api.TokenResponse{}, err
	}
	return api.TokenResponse{Message: f.message, Token: f.token}, nil
}

func (f *fakeAPI) Logout(_ context.Context, token string) (api.MessageResponse, error) {
	return f.msg(), f.record("Logout", token)
}

func (f *fakeAPI) Profile(_ context.Context, token string) (core.Profile, error) {
	if err := f.record("Profile", token); err != nil {
		return core.Profile{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return core.Profile{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeAPI) SetIncome(_ context.Context, token string, totalIncome int64) (api.MessageResponse, error) {
	err := f.record("SetIncome", token, totalIncome)
	if err == nil {
		f.mu.Lock()
		f.profile.TotalIncome = totalIncome
		f.mu.Unlock()
	}
	return f.msg(), err
}

func (f *fakeAPI) AddExpense(_ context.Context, token string, e core.NewExpense) (api.MessageResponse, error) {
	err := f.record("AddExpense", token, e)
	if err == nil {
		f.mu.Lock()
		f.profile.Expenses = append(f.profile.Expenses, core.Expense{ID: "new", Name: e.Name, Amount: e.Amount, Category: e.Category})
		f.mu.Unlock()
	}
	return f.msg(), err
}

func (f *fakeAPI) DeleteExpense(_ context.Context, token, id string) (api.MessageResponse, error) {
	return f.msg(), f.record("DeleteExpense", token, id)
}

func (f *fakeAPI) ChangePassword(_ context.Context, token, password string) (api.MessageResponse, error) {
	return f.msg(), f.record("ChangePassword", token, password)
}

func (f *fakeAPI) DeleteAccount(_ context.Context, token string) (api.MessageResponse, error) {
	return f.msg(), f.record("DeleteAccount", token)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []*amqp.Event
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, e *amqp.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakeEvents) types() []amqp.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []amqp.EventType
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

func newTokens(t *testing.T, token string) *storage.TokenStore {
	t.Helper()
	ts := storage.NewTokenStore(storage.NewMemoryStore())
	if token != "" {
		require.NoError(t, ts.SetToken(context.Background(), token))
	}
	return ts
}

func storedToken(t *testing.T, ts *storage.TokenStore) string {
	t.Helper()
	tok, err := ts.Token(context.Background())
	require.NoError(t, err)
	return tok
}
