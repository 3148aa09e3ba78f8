// Package sheets exports the user's expenses to a spreadsheet.
package sheets

import (
	"context"

	"moneymate/internal/core"
)

// Exporter copies expenses into an external sheet. Expenses whose id is
// already present are skipped, so exporting twice appends nothing new.
type Exporter interface {
	Export(ctx context.Context, expenses []core.Expense) (Result, error)
}

type Result struct {
	Appended int
	Skipped  int
	// Range is the sheet range written, when the backend reports one.
	Range string
}

// Header is the first row of an export sheet.
var Header = []any{"ID", "Date", "Name", "Category", "Amount"}

// Row converts e into the sheet columns described by Header.
func Row(e core.Expense) []any {
	date := ""
	if !e.CreatedAt.IsZero() {
		date = e.CreatedAt.UTC().Format("2006-01-02")
	}
	return []any{e.ID, date, e.Name, e.Category.DisplayName(), e.Amount}
}

// Pending splits expenses into the rows still to be written and the number
// already present in existing. Expenses without an id are always written.
func Pending(expenses []core.Expense, existing map[string]struct{}) (rows [][]any, skipped int) {
	seen := make(map[string]struct{}, len(existing))
	for id := range existing {
		seen[id] = struct{}{}
	}
	for _, e := range expenses {
		if e.ID != "" {
			if _, ok := seen[e.ID]; ok {
				skipped++
				continue
			}
			seen[e.ID] = struct{}{}
		}
		rows = append(rows, Row(e))
	}
	return rows, skipped
}
