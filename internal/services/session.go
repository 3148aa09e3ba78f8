package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/badoux/checkmail"
	"golang.org/x/sync/singleflight"

	"moneymate/internal/amqp"
	"moneymate/internal/api"
	"moneymate/internal/cache"
	"moneymate/internal/core"
	"moneymate/internal/log"
)

var (
	// ErrNotAuthenticated is returned by authenticated operations when no
	// token is stored.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrVerificationRequired is returned by Login when the account has not
	// confirmed its email yet; the caller should ask for the emailed code.
	ErrVerificationRequired = errors.New("email verification required")
)

// API is the subset of the remote API the services use. *api.Client
// satisfies it.
type API interface {
	SignUp(ctx context.Context, email, password string) (api.MessageResponse, error)
	Verify(ctx context.Context, email, code string) (api.TokenResponse, error)
	Resend(ctx context.Context, email string) (api.MessageResponse, error)
	Login(ctx context.Context, email, password string) (api.TokenResponse, error)
	Logout(ctx context.Context, token string) (api.MessageResponse, error)
	Profile(ctx context.Context, token string) (core.Profile, error)
	SetIncome(ctx context.Context, token string, totalIncome int64) (api.MessageResponse, error)
	AddExpense(ctx context.Context, token string, e core.NewExpense) (api.MessageResponse, error)
	DeleteExpense(ctx context.Context, token, id string) (api.MessageResponse, error)
	ChangePassword(ctx context.Context, token, password string) (api.MessageResponse, error)
	DeleteAccount(ctx context.Context, token string) (api.MessageResponse, error)
}

// TokenStore persists the bearer token. *storage.TokenStore satisfies it.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// EventPublisher receives an event after each successful mutation.
// *amqp.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.Event) error
}

// Session is the single owner of authentication state, the cached profile
// and the display preferences.
type Session struct {
	api    API
	tokens TokenStore
	cache  cache.Cache[core.Profile]
	events EventPublisher
	logger *log.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	auth    AuthState
	profile *core.Profile
	prefs   core.Preferences
}

type Option func(*Session)

func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l.WithComponent(log.ComponentSession) }
}

// WithProfileCache lets Profile serve a recently fetched profile without a
// network call.
func WithProfileCache(c cache.Cache[core.Profile]) Option {
	return func(s *Session) { s.cache = c }
}

func WithEvents(p EventPublisher) Option {
	return func(s *Session) { s.events = p }
}

func WithPreferences(p core.Preferences) Option {
	return func(s *Session) { s.prefs = p }
}

func NewSession(client API, tokens TokenStore, opts ...Option) *Session {
	s := &Session{
		api:    client,
		tokens: tokens,
		logger: log.Discard(),
		auth:   Unknown,
		prefs:  core.DefaultPreferences(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Auth:        s.auth,
		Profile:     cloneProfile(s.profile),
		Preferences: s.prefs,
	}
}

func (s *Session) Preferences() core.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *Session) SetCurrency(c core.Currency) {
	s.mu.Lock()
	s.prefs.Currency = c
	s.mu.Unlock()
}

func (s *Session) SetBudgetCycle(b core.BudgetCycle) {
	s.mu.Lock()
	s.prefs.BudgetCycle = b
	s.mu.Unlock()
}

// Token returns the stored bearer token, or "" when there is none.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.tokens.Token(ctx)
}

// Bootstrap decides the initial authentication state from the stored token.
// A 401 from the profile fetch clears the token. Any other failure yields
// Unknown with the token kept; nothing is retried.
func (s *Session) Bootstrap(ctx context.Context) (AuthState, error) {
	logger := s.logger.With(log.FieldOperation, log.OpBootstrap)

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.setAuth(Unknown)
		return Unknown, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		s.setAuth(Unauthenticated)
		logger.DebugContext(ctx, "No stored token")
		return Unauthenticated, nil
	}

	_, err = s.fetchProfile(ctx, token)
	switch {
	case err == nil:
		logger.DebugContext(ctx, "Session restored", log.FieldAuthState, Authenticated.String())
		return Authenticated, nil
	case api.IsUnauthorized(err):
		logger.InfoContext(ctx, "Stored token rejected", log.FieldAuthState, Unauthenticated.String())
		return Unauthenticated, nil
	default:
		s.setAuth(Unknown)
		logger.WarnContext(ctx, "Session bootstrap failed", log.FieldError, err.Error())
		return Unknown, err
	}
}

// Profile returns the cached profile when fresh, otherwise fetches it.
func (s *Session) Profile(ctx context.Context) (core.Profile, error) {
	token, err := s.requireToken(ctx)
	if err != nil {
		return core.Profile{}, err
	}
	if s.cache != nil {
		if p, ok := s.cache.Get(token); ok {
			s.setProfile(p)
			return p, nil
		}
	}
	return s.fetchProfile(ctx, token)
}

// Refresh fetches the profile from the server, bypassing the cache.
func (s *Session) Refresh(ctx context.Context) (core.Profile, error) {
	token, err := s.requireToken(ctx)
	if err != nil {
		return core.Profile{}, err
	}
	return s.fetchProfile(ctx, token)
}

// fetchProfile collapses concurrent fetches for the same token into one call.
// The shared call is detached from the caller's cancellation so one waiter
// giving up does not fail the others.
func (s *Session) fetchProfile(ctx context.Context, token string) (core.Profile, error) {
	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(token, func() (any, error) {
		return s.api.Profile(fetchCtx, token)
	})
	if err != nil {
		if api.IsUnauthorized(err) {
			s.expire(ctx, token)
		}
		return core.Profile{}, err
	}
	p := v.(core.Profile)
	if shared {
		s.logger.DebugContext(ctx, "Profile fetch shared", log.FieldOperation, log.OpRefresh)
	}

	if s.cache != nil {
		s.cache.Set(token, p)
	}
	s.setProfile(p)
	return p, nil
}

func (s *Session) setProfile(p core.Profile) {
	s.mu.Lock()
	s.auth = Authenticated
	s.profile = cloneProfile(&p)
	s.mu.Unlock()
}

// SignUp registers a new account. The server then emails a code to be
// passed to Verify.
func (s *Session) SignUp(ctx context.Context, email, password, confirm string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || confirm == "" {
		return "", &core.ValidationError{Field: "email", Msg: "Please fill in all fields", Err: core.ErrEmptyEmail}
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return "", &core.ValidationError{Field: "email", Msg: "Please enter a valid email address", Err: err}
	}
	if err := core.ValidateNewPassword(password, confirm); err != nil {
		return "", err
	}

	resp, err := s.api.SignUp(ctx, email, password)
	if err != nil {
		s.logger.InfoContext(ctx, "Sign up rejected", log.FieldOperation, log.OpSignUp, log.FieldError, err.Error())
		return "", err
	}
	return messageOr(resp.Message, "Verification code sent to your email"), nil
}

// Verify confirms the emailed code, stores the returned token and loads the
// profile.
func (s *Session) Verify(ctx context.Context, email, code string) (string, error) {
	if err := core.ValidateEmail(email); err != nil {
		return "", err
	}
	if err := core.ValidateCode(code); err != nil {
		return "", err
	}

	resp, err := s.api.Verify(ctx, strings.TrimSpace(email), code)
	if err != nil {
		return "", err
	}
	if err := s.signIn(ctx, log.OpVerify, resp.Token); err != nil {
		return "", err
	}
	return messageOr(resp.Message, "Email verified"), nil
}

func (s *Session) ResendCode(ctx context.Context, email string) (string, error) {
	if err := core.ValidateEmail(email); err != nil {
		return "", err
	}
	resp, err := s.api.Resend(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	return messageOr(resp.Message, "A new code has been sent"), nil
}

// Login exchanges credentials for a token. A 403 means the account is not
// verified yet and is reported as ErrVerificationRequired; no token is stored.
func (s *Session) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", &core.ValidationError{Field: "email", Msg: "Please fill in all fields", Err: core.ErrEmptyEmail}
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		if api.IsForbidden(err) {
			return "", fmt.Errorf("%w: %w", ErrVerificationRequired, err)
		}
		s.logger.InfoContext(ctx, "Login rejected", log.FieldOperation, log.OpLogin, log.FieldError, err.Error())
		return "", err
	}
	if err := s.signIn(ctx, log.OpLogin, resp.Token); err != nil {
		return "", err
	}
	return messageOr(resp.Message, "Logged in successfully!"), nil
}

func (s *Session) signIn(ctx context.Context, op, token string) error {
	if token == "" {
		return fmt.Errorf("%s: server returned no token", op)
	}
	if err := s.tokens.SetToken(ctx, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if _, err := s.fetchProfile(ctx, token); err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	s.logger.InfoContext(ctx, "Signed in", log.FieldOperation, op, log.FieldAuthState, Authenticated.String())
	return nil
}

// Logout tells the server and always forgets the local token, even when the
// server could not be reached.
func (s *Session) Logout(ctx context.Context) (string, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if token != "" {
		if _, err := s.api.Logout(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "Logout request failed",
				log.FieldOperation, log.OpLogout, log.FieldError, err.Error())
		}
	}
	if err := s.expire(ctx, token); err != nil {
		return "", err
	}
	return "Logged out successfully!", nil
}

// authorized runs fn with the stored token. A 401 clears the session.
func (s *Session) authorized(ctx context.Context, fn func(token string) error) error {
	token, err := s.requireToken(ctx)
	if err != nil {
		return err
	}
	err = fn(token)
	if api.IsUnauthorized(err) {
		s.expire(ctx, token)
	}
	return err
}

func (s *Session) requireToken(ctx context.Context) (string, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		s.setAuth(Unauthenticated)
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// expire drops every trace of the session: token, cached and held profile.
func (s *Session) expire(ctx context.Context, token string) error {
	if s.cache != nil && token != "" {
		s.cache.Delete(token)
	}
	s.mu.Lock()
	s.auth = Unauthenticated
	s.profile = nil
	s.mu.Unlock()

	if err := s.tokens.ClearToken(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to clear token", log.FieldErrorType, log.ErrorTypeStorage, log.FieldError, err.Error())
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *Session) setAuth(a AuthState) {
	s.mu.Lock()
	s.auth = a
	if a != Authenticated {
		s.profile = nil
	}
	s.mu.Unlock()
}

// publish hands e to the event publisher, if any. Failures are logged only.
func (s *Session) publish(ctx context.Context, e *amqp.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			log.FieldOperation, log.OpPublish,
			log.FieldEventType, string(e.Type),
			log.FieldError, err.Error())
	}
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
