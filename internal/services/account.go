package services

import (
	"context"

	"moneymate/internal/amqp"
	"moneymate/internal/core"
	"moneymate/internal/log"
)

// Account holds the settings-screen operations on the signed-in account.
type Account struct {
	session *Session
	logger  *log.Logger
}

func NewAccount(s *Session) *Account {
	return &Account{
		session: s,
		logger:  s.logger.WithComponent(log.ComponentAccount),
	}
}

func (a *Account) ChangePassword(ctx context.Context, password, confirm string) (string, error) {
	if err := core.ValidateNewPassword(password, confirm); err != nil {
		return "", err
	}

	var msg string
	err := a.session.authorized(ctx, func(token string) error {
		resp, err := a.session.api.ChangePassword(ctx, token, password)
		msg = resp.Message
		return err
	})
	if err != nil {
		return "", err
	}
	a.logger.InfoContext(ctx, "Password changed", log.FieldOperation, log.OpUpdate)
	return messageOr(msg, "Password changed successfully!"), nil
}

// DeleteAccount removes the account on the server and then forgets the
// local session.
func (a *Account) DeleteAccount(ctx context.Context) (string, error) {
	var (
		msg   string
		token string
	)
	err := a.session.authorized(ctx, func(t string) error {
		token = t
		resp, err := a.session.api.DeleteAccount(ctx, t)
		msg = resp.Message
		return err
	})
	if err != nil {
		return "", err
	}

	a.logger.InfoContext(ctx, "Account deleted", log.FieldOperation, log.OpDelete)
	a.session.publish(ctx, amqp.NewEvent(amqp.EventAccountDeleted))

	if err := a.session.expire(ctx, token); err != nil {
		return "", err
	}
	return messageOr(msg, "Account deleted successfully"), nil
}
