package main

import (
	"context"
	"fmt"

	"moneymate/internal/core"
)

func cmdPasswd(ctx context.Context, a *app, args []string) error {
	if err := a.newFlagSet("passwd").Parse(args); err != nil {
		return err
	}
	pw, err := a.prompt.Password("New password: ")
	if err != nil {
		return err
	}
	confirm, err := a.prompt.Password("Confirm new password: ")
	if err != nil {
		return err
	}

	msg, err := a.account.ChangePassword(ctx, pw, confirm)
	if err != nil {
		return err
	}
	a.success(msg)
	return nil
}

func cmdDeleteAccount(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("delete-account")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*yes {
		ok, err := a.prompt.Confirm("Delete your account and all expenses? This cannot be undone.")
		if err != nil {
			return err
		}
		if !ok {
			a.info("Account deletion cancelled")
			return nil
		}
	}

	msg, err := a.account.DeleteAccount(ctx)
	if err != nil {
		return err
	}
	a.success(msg)
	return nil
}

// cmdPrefs prints the display preferences in effect for this run. They are
// never stored; set them with the global flags or the environment.
func cmdPrefs(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("prefs")
	currency := fs.String("currency", "", "display currency")
	cycle := fs.String("cycle", "", "budget cycle label")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *currency != "" {
		c, err := core.ParseCurrency(*currency)
		if err != nil {
			return usagef("%v", err)
		}
		a.session.SetCurrency(c)
	}
	if *cycle != "" {
		b, err := core.ParseBudgetCycle(*cycle)
		if err != nil {
			return usagef("%v", err)
		}
		a.session.SetBudgetCycle(b)
	}

	prefs := a.session.Preferences()
	fmt.Fprintf(a.stdout, "Currency: %s (%s)\n", prefs.Currency, prefs.Currency.Symbol())
	fmt.Fprintf(a.stdout, "Budget cycle: %s\n", prefs.BudgetCycle)
	fmt.Fprintf(a.stdout, "Example: %s\n", prefs.Currency.Format(20000))
	return nil
}
