package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moneymate/internal/api"
	"moneymate/internal/cli"
	"moneymate/internal/notice"
	"moneymate/internal/services"
	"moneymate/internal/wizard"
)

func cmdStatus(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state, err := a.session.Bootstrap(ctx)
	fmt.Fprintf(a.stdout, "Status: %s\n", state)
	if err != nil {
		return err
	}
	if state != services.Authenticated {
		return nil
	}

	token, err := a.session.Token(ctx)
	if err != nil {
		return err
	}
	if exp, ok := api.TokenExpiry(token); ok {
		fmt.Fprintf(a.stdout, "Session expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func cmdSignUp(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("signup")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return usagef("signup requires -email")
	}

	pw, confirm := *password, *password
	if pw == "" {
		var err error
		if pw, err = a.prompt.Password("Password: "); err != nil {
			return err
		}
		if confirm, err = a.prompt.Password("Confirm password: "); err != nil {
			return err
		}
	}

	msg, err := a.session.SignUp(ctx, *email, pw, confirm)
	if err != nil {
		return err
	}
	a.success(msg)
	return a.verifyInteractive(ctx, *email)
}

// verifyInteractive asks for the emailed code and verifies it. "r" resends
// the code. Running out of input leaves verification for later.
func (a *app) verifyInteractive(ctx context.Context, email string) error {
	for {
		code, err := a.prompt.Line("Verification code (r to resend): ")
		if errors.Is(err, cli.ErrNoInput) {
			a.info(fmt.Sprintf("Run 'moneymate verify -email %s -code <code>' once you have the code", email))
			return nil
		}
		if err != nil {
			return err
		}

		if strings.EqualFold(code, "r") {
			msg, err := a.session.ResendCode(ctx, email)
			if err != nil {
				a.warn(err, "")
				continue
			}
			a.success(msg)
			continue
		}

		msg, err := a.session.Verify(ctx, email, code)
		if err != nil {
			if api.IsTransport(err) {
				return err
			}
			a.warn(err, "")
			continue
		}
		a.success(msg)
		return nil
	}
}

func cmdVerify(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("verify")
	email := fs.String("email", "", "account email")
	code := fs.String("code", "", "5-digit code from the email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return usagef("verify requires -email")
	}

	msg, err := a.session.Verify(ctx, *email, *code)
	if err != nil {
		return err
	}
	a.success(msg)
	return nil
}

func cmdResend(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("resend")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	msg, err := a.session.ResendCode(ctx, *email)
	if err != nil {
		return err
	}
	a.success(msg)
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return usagef("login requires -email")
	}

	pw := *password
	if pw == "" {
		var err error
		if pw, err = a.prompt.Password("Password: "); err != nil {
			return err
		}
	}

	msg, err := a.session.Login(ctx, *email, pw)
	if errors.Is(err, services.ErrVerificationRequired) {
		notice.Print(a.stdout, notice.FromError(err, ""))
		return a.verifyInteractive(ctx, *email)
	}
	if err != nil {
		return err
	}
	a.success(msg)
	return nil
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	if err := a.newFlagSet("logout").Parse(args); err != nil {
		return err
	}
	msg, err := a.session.Logout(ctx)
	if err != nil {
		return err
	}
	a.success(msg)
	return nil
}

// cmdForgot walks the three reset steps. Rejected input is reported and
// asked for again; running out of input ends the flow.
func cmdForgot(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("forgot")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reset := wizard.NewReset(a.client, a.logger)
	pending := *email

	for !reset.Closed() {
		switch step := reset.Step().(type) {
		case wizard.AwaitingEmail:
			addr := pending
			pending = ""
			if addr == "" {
				var err error
				if addr, err = a.prompt.Line("Email: "); err != nil {
					return err
				}
			}
			msg, err := reset.SubmitEmail(ctx, addr)
			if err != nil {
				a.warn(err, "")
				continue
			}
			a.success(msg)

		case wizard.AwaitingCode:
			label := fmt.Sprintf("Code sent to %s (%d attempts left, r to resend, q to quit): ", step.Email, step.AttemptsLeft)
			code, err := a.prompt.Line(label)
			if err != nil {
				return err
			}
			switch strings.ToLower(code) {
			case "q":
				reset.Cancel()
				a.info("Password reset cancelled")
				return nil
			case "r":
				msg, err := reset.Resend(ctx)
				if err != nil {
					a.warn(err, "")
					continue
				}
				a.success(msg)
				continue
			}
			if err := reset.SubmitCode(code); err != nil {
				a.warn(err, "")
			}

		case wizard.AwaitingNewPassword:
			pw, err := a.prompt.Password("New password: ")
			if err != nil {
				return err
			}
			confirm, err := a.prompt.Password("Confirm new password: ")
			if err != nil {
				return err
			}
			msg, err := reset.SubmitNewPassword(ctx, pw, confirm)
			if err != nil {
				a.warn(err, "")
				continue
			}
			a.success(msg)
		}
	}
	return nil
}
