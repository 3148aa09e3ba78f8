// Package report renders the home and money screens as terminal text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"moneymate/internal/core"
)

const (
	remainingColor = "#6B7280"
	barWidth       = 30
)

// Slice is one segment of the expense breakdown chart.
type Slice struct {
	Name   string
	Amount int64
	Color  string
}

// PieSlices returns the chart segments for s: the three categories and the
// remaining budget, clamped at zero. Segments with no amount are left out.
func PieSlices(s core.Summary) []Slice {
	all := []Slice{
		{Name: core.Essentials.DisplayName(), Amount: s.CategoryTotals.Essentials, Color: core.Essentials.Color()},
		{Name: core.Flexible.DisplayName(), Amount: s.CategoryTotals.Flexible, Color: core.Flexible.Color()},
		{Name: core.NonEssentials.DisplayName(), Amount: s.CategoryTotals.NonEssentials, Color: core.NonEssentials.Color()},
		{Name: "Remaining", Amount: max(s.Remaining, 0), Color: remainingColor},
	}
	out := all[:0]
	for _, sl := range all {
		if sl.Amount > 0 {
			out = append(out, sl)
		}
	}
	return out
}

type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Muted    lipgloss.Style
	Card     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")),
		Positive: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		Negative: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Italic(true),
		Card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func colored(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// RenderSummary writes the home screen for p.
func RenderSummary(w io.Writer, p core.Profile, prefs core.Preferences) error {
	st := DefaultStyles()
	cur := prefs.Currency
	sum := p.Summary()

	var b strings.Builder
	fmt.Fprintln(&b, st.Title.Render(string(prefs.BudgetCycle)+" Budget"))
	fmt.Fprintln(&b, st.Subtitle.Render("Track your income and expenses"))
	fmt.Fprintln(&b)

	remaining := st.Positive
	if sum.Remaining < 0 {
		remaining = st.Negative
	}
	totals := fmt.Sprintf("%s %s\n%s %s\n%s %s",
		st.Label.Render("Total Income:  "), cur.Format(sum.TotalIncome),
		st.Label.Render("Total Expenses:"), st.Negative.Render(cur.Format(sum.TotalExpenses)),
		st.Label.Render("Remaining:     "), remaining.Render(cur.Format(sum.Remaining)))
	fmt.Fprintln(&b, st.Card.Render(totals))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, st.Title.Render("Expense Breakdown"))
	fmt.Fprintln(&b, st.Subtitle.Render(string(prefs.BudgetCycle)+" Budget Cycle"))

	cards := make([]string, 0, len(core.Categories))
	for _, c := range core.Categories {
		cards = append(cards, st.Card.Render(
			colored(c.Color()).Render("●")+" "+c.DisplayName()+"\n"+cur.Format(sum.CategoryTotals.Get(c))))
	}
	fmt.Fprintln(&b, lipgloss.JoinHorizontal(lipgloss.Top, cards...))

	writeChart(&b, PieSlices(sum), cur)
	fmt.Fprintln(&b)

	for _, c := range core.Categories {
		writeCategory(&b, st, c, p.ExpensesIn(c), sum.CategoryTotals.Get(c), cur)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeChart(b *strings.Builder, slices []Slice, cur core.Currency) {
	var total int64
	for _, s := range slices {
		total += s.Amount
	}
	if total == 0 {
		return
	}
	for _, s := range slices {
		width := int(s.Amount * barWidth / total)
		if width == 0 {
			width = 1
		}
		pct := float64(s.Amount) * 100 / float64(total)
		fmt.Fprintf(b, "%-15s %s %s (%.0f%%)\n",
			s.Name, colored(s.Color).Render(strings.Repeat("█", width)), cur.Format(s.Amount), pct)
	}
}

func placeholder(c core.Category) string {
	switch c {
	case core.Essentials:
		return "No essential expenses added yet"
	case core.Flexible:
		return "No flexible expenses added yet"
	case core.NonEssentials:
		return "No non-essential expenses added yet"
	default:
		return "No expenses added yet"
	}
}

func writeCategory(b *strings.Builder, st Styles, c core.Category, expenses []core.Expense, total int64, cur core.Currency) {
	fmt.Fprintf(b, "%s %s  %s\n", colored(c.Color()).Render("▌"), st.Title.Render(c.DisplayName()), cur.Format(total))
	if len(expenses) == 0 {
		fmt.Fprintf(b, "  %s\n", st.Muted.Render(placeholder(c)))
		return
	}
	for _, e := range expenses {
		fmt.Fprintf(b, "  %-24s %12s\n", e.Name, cur.Format(e.Amount))
	}
}

// RenderExpenses writes the money screen: totals followed by every expense
// with its id, which is what deletion takes.
func RenderExpenses(w io.Writer, expenses []core.Expense, prefs core.Preferences) error {
	st := DefaultStyles()
	cur := prefs.Currency
	sum := core.Aggregate(expenses, 0)

	var b strings.Builder
	fmt.Fprintln(&b, st.Title.Render("Expense Manager"))
	fmt.Fprintln(&b, st.Subtitle.Render("Track and manage your expenses"))
	fmt.Fprintf(&b, "Total Expenses: %s\n", cur.Format(sum.TotalExpenses))
	for _, c := range core.Categories {
		fmt.Fprintf(&b, "%s: %s\n", c.DisplayName(), colored(c.Color()).Render(cur.Format(sum.CategoryTotals.Get(c))))
	}
	fmt.Fprintln(&b)

	if len(expenses) == 0 {
		fmt.Fprintln(&b, st.Muted.Render("No expenses added yet"))
	}
	for _, e := range expenses {
		created := ""
		if !e.CreatedAt.IsZero() {
			created = e.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "%-24s %-16s %12s  %-16s %s\n",
			e.Name,
			colored(e.Category.Color()).Render("["+e.Category.DisplayName()+"]"),
			cur.Format(e.Amount),
			created,
			st.Muted.Render(e.ID))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
