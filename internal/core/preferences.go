package core

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

const (
	Weekly   BudgetCycle = "Weekly"
	BiWeekly BudgetCycle = "Bi-Weekly"
	Monthly  BudgetCycle = "Monthly"
)

const (
	DefaultCurrency    Currency    = "INR"
	DefaultBudgetCycle BudgetCycle = Monthly
)

type (
	// Currency is an ISO 4217 code from the supported list.
	Currency string

	// BudgetCycle is a display label with no effect on any computation.
	BudgetCycle string

	// Preferences are client-local display settings. They live for the
	// process lifetime and are never sent to the server.
	Preferences struct {
		Currency    Currency
		BudgetCycle BudgetCycle
	}
)

// Currencies lists the selectable currencies in menu order.
var Currencies = []Currency{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY", "INR"}

// BudgetCycles lists the selectable cycles in menu order.
var BudgetCycles = []BudgetCycle{Weekly, BiWeekly, Monthly}

func DefaultPreferences() Preferences {
	return Preferences{Currency: DefaultCurrency, BudgetCycle: DefaultBudgetCycle}
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Currencies {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported currency %q: must be one of %v", s, Currencies)
}

func ParseBudgetCycle(s string) (BudgetCycle, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, known := range BudgetCycles {
		if norm == strings.ToLower(string(known)) || norm == strings.ReplaceAll(strings.ToLower(string(known)), "-", "") {
			return known, nil
		}
	}
	return "", fmt.Errorf("unsupported budget cycle %q: must be one of %v", s, BudgetCycles)
}

func (c Currency) definition() *money.Currency {
	if cur := money.GetCurrency(string(c)); cur != nil {
		return cur
	}
	return money.GetCurrency(string(DefaultCurrency))
}

// Symbol returns the currency grapheme, e.g. "₹" for INR.
func (c Currency) Symbol() string {
	return c.definition().Grapheme
}

// Format renders a whole-unit amount with symbol and thousands separators,
// e.g. Currency("INR").Format(20000) == "₹20,000".
func (c Currency) Format(amount int64) string {
	cur := c.definition()
	return money.NewFormatter(0, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template).Format(amount)
}
