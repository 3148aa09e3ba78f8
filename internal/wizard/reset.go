// Package wizard implements the three-step forgot-password flow as an
// explicit state machine.
package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"moneymate/internal/api"
	"moneymate/internal/core"
	"moneymate/internal/log"
)

// MaxCodeAttempts is how many server rejections of a code are tolerated
// before a new code must be requested.
const MaxCodeAttempts = 3

var (
	ErrWrongStep = errors.New("operation not allowed in the current step")
	ErrClosed    = errors.New("reset wizard is closed")
)

// Step is one of AwaitingEmail, AwaitingCode or AwaitingNewPassword.
type Step interface {
	step()
	Number() int
}

type AwaitingEmail struct {
	Email string
}

type AwaitingCode struct {
	Email        string
	AttemptsLeft int
}

type AwaitingNewPassword struct {
	Email string
	Code  string
}

func (AwaitingEmail) step()       {}
func (AwaitingCode) step()        {}
func (AwaitingNewPassword) step() {}

func (AwaitingEmail) Number() int       { return 1 }
func (AwaitingCode) Number() int        { return 2 }
func (AwaitingNewPassword) Number() int { return 3 }

// ResetAPI is the part of the remote API the wizard talks to.
type ResetAPI interface {
	ForgotPassword(ctx context.Context, email string) (api.MessageResponse, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) (api.MessageResponse, error)
}

// Reset drives the forgot-password flow. State only changes through its
// methods; rejected input leaves the step untouched.
type Reset struct {
	api    ResetAPI
	logger *log.Logger

	mu     sync.Mutex
	step   Step
	closed bool
	// attempts left for the current code; carried through AwaitingNewPassword.
	attempts int
}

func NewReset(client ResetAPI, logger *log.Logger) *Reset {
	if logger == nil {
		logger = log.Discard()
	}
	return &Reset{
		api:    client,
		logger: logger.WithComponent(log.ComponentWizard),
		step:   AwaitingEmail{},
	}
}

func (r *Reset) Step() Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step
}

// Closed reports whether the wizard finished or was cancelled.
func (r *Reset) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// SubmitEmail requests a reset code for email.
func (r *Reset) SubmitEmail(ctx context.Context, email string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrClosed
	}
	if _, ok := r.step.(AwaitingEmail); !ok {
		return "", ErrWrongStep
	}
	email = strings.TrimSpace(email)
	if err := core.ValidateEmail(email); err != nil {
		return "", err
	}

	resp, err := r.api.ForgotPassword(ctx, email)
	if err != nil {
		r.logger.InfoContext(ctx, "Reset code request failed", log.FieldStep, 1, log.FieldError, err.Error())
		return "", err
	}

	r.toCode(email, MaxCodeAttempts)
	return messageOr(resp.Message, "Reset code sent to your email"), nil
}

// SubmitCode accepts a 5-digit code and moves on to password entry. The
// code is checked by the server only on final submission. AttemptsLeft is
// only a hint for the prompt and never blocks a well-formed code.
func (r *Reset) SubmitCode(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	cur, ok := r.step.(AwaitingCode)
	if !ok {
		return ErrWrongStep
	}
	if err := core.ValidateCode(code); err != nil {
		return err
	}

	r.step = AwaitingNewPassword{Email: cur.Email, Code: code}
	return nil
}

// Resend asks for a fresh code and restores the attempt budget.
func (r *Reset) Resend(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrClosed
	}
	cur, ok := r.step.(AwaitingCode)
	if !ok {
		return "", ErrWrongStep
	}

	resp, err := r.api.ForgotPassword(ctx, cur.Email)
	if err != nil {
		return "", err
	}
	r.toCode(cur.Email, MaxCodeAttempts)
	return messageOr(resp.Message, "A new code has been sent"), nil
}

// SubmitNewPassword sets the new password. A server rejection of the code
// returns the wizard to code entry with one attempt fewer.
func (r *Reset) SubmitNewPassword(ctx context.Context, password, confirm string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrClosed
	}
	cur, ok := r.step.(AwaitingNewPassword)
	if !ok {
		return "", ErrWrongStep
	}
	if err := core.ValidateNewPassword(password, confirm); err != nil {
		return "", err
	}

	resp, err := r.api.ResetPassword(ctx, cur.Email, cur.Code, password)
	if err != nil {
		if api.IsInvalidCode(err) {
			left := max(r.attempts-1, 0)
			r.toCode(cur.Email, left)
			r.logger.InfoContext(ctx, "Reset code rejected", log.FieldStep, 3, "attempts_left", left)
		}
		return "", err
	}

	r.logger.InfoContext(ctx, "Password reset", log.FieldStep, 3)
	r.step = AwaitingEmail{}
	r.attempts = 0
	r.closed = true
	return messageOr(resp.Message, "Password reset successfully!"), nil
}

func (r *Reset) toCode(email string, attempts int) {
	r.attempts = attempts
	r.step = AwaitingCode{Email: email, AttemptsLeft: attempts}
}

// Cancel abandons the flow.
func (r *Reset) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step = AwaitingEmail{}
	r.closed = true
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
