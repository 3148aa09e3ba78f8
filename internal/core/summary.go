package core

import "encoding/json"

// CategoryTotals holds the per-category sums of the three recognised
// categories.
type CategoryTotals struct {
	Essentials    int64
	Flexible      int64
	NonEssentials int64
}

// Summary is the aggregate view over a profile's expenses.
type Summary struct {
	TotalIncome    int64
	TotalExpenses  int64
	Remaining      int64 // may be negative
	CategoryTotals CategoryTotals
}

// Get returns the total for c, or zero for an unrecognised category.
func (t CategoryTotals) Get(c Category) int64 {
	switch c {
	case Essentials:
		return t.Essentials
	case Flexible:
		return t.Flexible
	case NonEssentials:
		return t.NonEssentials
	default:
		return 0
	}
}

func (t CategoryTotals) Sum() int64 {
	return t.Essentials + t.Flexible + t.NonEssentials
}

// MarshalJSON uses the wire keys, including "non-essentials".
func (t CategoryTotals) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[Category]int64{
		Essentials:    t.Essentials,
		Flexible:      t.Flexible,
		NonEssentials: t.NonEssentials,
	})
}
