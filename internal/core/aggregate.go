package core

// Aggregate partitions expenses by category and computes the totals.
//
// Expenses whose category is not one of the three recognised values are
// left out of every bucket but still count toward TotalExpenses. Amounts are
// not validated here.
func Aggregate(expenses []Expense, totalIncome int64) Summary {
	s := Summary{TotalIncome: totalIncome}
	for _, e := range expenses {
		s.TotalExpenses += e.Amount
		switch e.Category {
		case Essentials:
			s.CategoryTotals.Essentials += e.Amount
		case Flexible:
			s.CategoryTotals.Flexible += e.Amount
		case NonEssentials:
			s.CategoryTotals.NonEssentials += e.Amount
		}
	}
	s.Remaining = s.TotalIncome - s.TotalExpenses
	return s
}
