package main

import (
	"context"
	"fmt"

	"moneymate/internal/report"
)

func cmdHome(ctx context.Context, a *app, args []string) error {
	if err := a.newFlagSet("home").Parse(args); err != nil {
		return err
	}
	profile, err := a.session.Profile(ctx)
	if err != nil {
		return err
	}
	return report.RenderSummary(a.stdout, profile, a.session.Preferences())
}

// cmdIncome shows the saved income, or submits a new one. A saved income is
// locked and only replaced with -edit.
func cmdIncome(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("income")
	amount := fs.String("amount", "", "monthly income in whole units")
	edit := fs.Bool("edit", false, "replace an income that is already set")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile, err := a.session.Profile(ctx)
	if err != nil {
		return err
	}
	cur := a.session.Preferences().Currency
	form := a.budget.ResumeIncomeForm(profile)

	if *amount == "" && !*edit {
		if form.Locked() {
			fmt.Fprintf(a.stdout, "Income: %s (locked, use -edit -amount to change)\n", cur.Format(profile.TotalIncome))
		} else {
			fmt.Fprintln(a.stdout, "Income: not set (use -amount to set it)")
		}
		return nil
	}

	if *edit {
		form.Unlock()
	}
	if err := form.SetValue(*amount); err != nil {
		return err
	}
	msg, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	a.success(msg)

	if st := a.session.State(); st.Profile != nil {
		fmt.Fprintf(a.stdout, "Income: %s (locked)\n", cur.Format(st.Profile.TotalIncome))
	}
	return nil
}

func cmdExpenses(ctx context.Context, a *app, args []string) error {
	if err := a.newFlagSet("expenses").Parse(args); err != nil {
		return err
	}
	profile, err := a.session.Profile(ctx)
	if err != nil {
		return err
	}
	return report.RenderExpenses(a.stdout, profile.Expenses, a.session.Preferences())
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("add")
	name := fs.String("name", "", "expense name")
	amount := fs.String("amount", "", "amount in whole units")
	category := fs.String("category", "", "essentials, flexible or non-essentials")
	if err := fs.Parse(args); err != nil {
		return err
	}

	msg, err := a.budget.AddExpense(ctx, *name, *amount, *category)
	if err != nil {
		return err
	}
	a.success(msg)
	return nil
}

func cmdRemove(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("rm")
	id := fs.String("id", "", "expense id, as shown by 'expenses'")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return usagef("rm requires -id")
	}

	msg, err := a.budget.DeleteExpense(ctx, *id)
	if err != nil {
		return err
	}
	a.success(msg)
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	if err := a.newFlagSet("export").Parse(args); err != nil {
		return err
	}

	exporter, err := newExporter(ctx, a.cfg, a.logger)
	if err != nil {
		return usagef("%v", err)
	}
	profile, err := a.session.Profile(ctx)
	if err != nil {
		return err
	}

	res, err := exporter.Export(ctx, profile.Expenses)
	if err != nil {
		return err
	}
	if res.Appended == 0 {
		a.info(fmt.Sprintf("Nothing new to export (%d already in the sheet)", res.Skipped))
		return nil
	}
	a.success(fmt.Sprintf("Exported %d expenses (%d already in the sheet)", res.Appended, res.Skipped))
	return nil
}
