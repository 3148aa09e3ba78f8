package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	Essentials    Category = "essentials"
	Flexible      Category = "flexible"
	NonEssentials Category = "non-essentials"
)

type (
	// Category is the fixed three-way expense classification.
	Category string

	Expense struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Amount    int64     `json:"amount"` // whole currency units
		Category  Category  `json:"category"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// NewExpense is the payload for creating an expense; the server assigns
	// the id and timestamp.
	NewExpense struct {
		Name     string   `json:"name"`
		Amount   int64    `json:"amount"`
		Category Category `json:"category"`
	}

	// Profile is the server-owned view of the user's budget. It is cached in
	// memory only.
	Profile struct {
		TotalIncome    int64              `json:"totalIncome"`
		TotalExpenses  int64              `json:"totalExpenses"`
		Remaining      int64              `json:"remaining"`
		Expenses       []Expense          `json:"expenses"`
		CategoryTotals map[Category]int64 `json:"categoryTotals,omitempty"`
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrUnknownCategory = errors.New("unknown category")
)

// Categories lists the recognised categories in display order.
var Categories = []Category{Essentials, Flexible, NonEssentials}

// Valid reports whether c is one of the three recognised categories.
func (c Category) Valid() bool {
	switch c {
	case Essentials, Flexible, NonEssentials:
		return true
	default:
		return false
	}
}

// DisplayName returns the human label, e.g. "Non Essentials". Unknown
// categories are returned as-is.
func (c Category) DisplayName() string {
	if !c.Valid() {
		return string(c)
	}
	return cases.Title(language.English).String(strings.ReplaceAll(string(c), "-", " "))
}

// Color returns the hex color used for the category in charts and tags.
func (c Category) Color() string {
	switch c {
	case Essentials:
		return "#10B981"
	case Flexible:
		return "#F59E0B"
	case NonEssentials:
		return "#EF4444"
	default:
		return "#6B7280"
	}
}

// ParseCategory accepts the wire value or the display name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "-")
	norm = strings.ReplaceAll(norm, "_", "-")
	if norm == "nonessentials" || norm == "non-essential" {
		norm = string(NonEssentials)
	}
	c := Category(norm)
	if !c.Valid() {
		return "", &ValidationError{Field: "category", Msg: "category must be one of essentials, flexible, non-essentials", Err: ErrUnknownCategory}
	}
	return c, nil
}

// UnmarshalJSON accepts both "id" and the Mongo-style "_id" for the identifier.
func (e *Expense) UnmarshalJSON(data []byte) error {
	type plain Expense
	var aux struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Expense(aux.plain)
	if e.ID == "" {
		e.ID = aux.MongoID
	}
	return nil
}

func (n NewExpense) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return &ValidationError{Field: "name", Msg: "Please fill in all fields", Err: ErrEmptyName}
	}
	if n.Amount <= 0 {
		return &ValidationError{Field: "amount", Msg: "Amount must be greater than zero", Err: ErrNonPositiveAmount}
	}
	if !n.Category.Valid() {
		return &ValidationError{Field: "category", Msg: "category must be one of essentials, flexible, non-essentials", Err: ErrUnknownCategory}
	}
	return nil
}

// Summary recomputes the aggregate figures from the expense list.
func (p Profile) Summary() Summary {
	return Aggregate(p.Expenses, p.TotalIncome)
}

// ExpensesIn returns the expenses of one category, preserving server order.
func (p Profile) ExpensesIn(c Category) []Expense {
	var out []Expense
	for _, e := range p.Expenses {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}
