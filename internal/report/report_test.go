package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneymate/internal/core"
)

func TestPieSlices(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		s := core.Aggregate([]core.Expense{
			{Amount: 20000, Category: core.Essentials},
			{Amount: 5000, Category: core.Flexible},
			{Amount: 3000, Category: core.NonEssentials},
		}, 50000)

		assert.Equal(t, []Slice{
			{Name: "Essentials", Amount: 20000, Color: "#10B981"},
			{Name: "Flexible", Amount: 5000, Color: "#F59E0B"},
			{Name: "Non Essentials", Amount: 3000, Color: "#EF4444"},
			{Name: "Remaining", Amount: 22000, Color: "#6B7280"},
		}, PieSlices(s))
	})

	t.Run("zero categories dropped and negative remaining clamped", func(t *testing.T) {
		s := core.Aggregate([]core.Expense{{Amount: 9000, Category: core.Flexible}}, 1000)
		assert.Equal(t, []Slice{{Name: "Flexible", Amount: 9000, Color: "#F59E0B"}}, PieSlices(s))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, PieSlices(core.Summary{}))
	})
}

func TestRenderSummary(t *testing.T) {
	p := core.Profile{
		TotalIncome: 50000,
		Expenses: []core.Expense{
			{ID: "1", Name: "Rent", Amount: 20000, Category: core.Essentials},
			{ID: "2", Name: "Dinner", Amount: 5000, Category: core.Flexible},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, p, core.DefaultPreferences()))
	out := buf.String()

	assert.Contains(t, out, "Monthly Budget Cycle")
	assert.Contains(t, out, "₹50,000")
	assert.Contains(t, out, "₹25,000")
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "Dinner")
	assert.Contains(t, out, "No non-essential expenses added yet")
	assert.NotContains(t, out, "No essential expenses added yet")
}

func TestRenderSummary_Negative(t *testing.T) {
	p := core.Profile{
		TotalIncome: 100,
		Expenses:    []core.Expense{{Name: "Car", Amount: 600, Category: core.Essentials}},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, p, core.Preferences{Currency: "USD", BudgetCycle: core.Weekly}))
	assert.Contains(t, buf.String(), "-$500")
	assert.Contains(t, buf.String(), "Weekly Budget")
}

func TestRenderExpenses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderExpenses(&buf, nil, core.DefaultPreferences()))
	assert.Contains(t, buf.String(), "No expenses added yet")

	buf.Reset()
	expenses := []core.Expense{
		{ID: "665f1c", Name: "Groceries", Amount: 8000, Category: core.Essentials, CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		{ID: "665f1d", Name: "Cinema", Amount: 1200, Category: core.NonEssentials},
	}
	require.NoError(t, RenderExpenses(&buf, expenses, core.DefaultPreferences()))
	out := buf.String()
	assert.Contains(t, out, "Total Expenses: ₹9,200")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "[Non Essentials]")
	assert.Contains(t, out, "665f1c")
	assert.Contains(t, out, "₹1,200")
}
