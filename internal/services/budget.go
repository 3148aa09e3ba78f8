package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"moneymate/internal/amqp"
	"moneymate/internal/core"
	"moneymate/internal/log"
)

// ErrIncomeLocked is returned when editing a locked income form.
var ErrIncomeLocked = errors.New("income is locked")

// Budget holds the income and expense operations. Every successful mutation
// is followed by a profile refresh.
type Budget struct {
	session *Session
	logger  *log.Logger
}

func NewBudget(s *Session) *Budget {
	return &Budget{
		session: s,
		logger:  s.logger.WithComponent(log.ComponentBudget),
	}
}

// Summary aggregates the profile currently held by the session. ok is false
// when no profile has been loaded.
func (b *Budget) Summary() (summary core.Summary, ok bool) {
	st := b.session.State()
	if st.Profile == nil {
		return core.Summary{}, false
	}
	return st.Profile.Summary(), true
}

// AddExpense validates the input locally, creates the expense and refreshes
// the profile.
func (b *Budget) AddExpense(ctx context.Context, name, rawAmount, category string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(rawAmount) == "" || strings.TrimSpace(category) == "" {
		return "", &core.ValidationError{Field: "name", Msg: "Please fill in all fields", Err: core.ErrEmptyName}
	}
	amount, err := core.ParseAmount("expense", rawAmount)
	if err != nil {
		return "", err
	}
	cat, err := core.ParseCategory(category)
	if err != nil {
		return "", err
	}
	e := core.NewExpense{Name: name, Amount: amount, Category: cat}
	if err := e.Validate(); err != nil {
		return "", err
	}

	var msg string
	err = b.session.authorized(ctx, func(token string) error {
		resp, err := b.session.api.AddExpense(ctx, token, e)
		msg = resp.Message
		return err
	})
	if err != nil {
		return "", err
	}

	b.logger.InfoContext(ctx, "Expense added",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithExpense("", e.Name, e.Amount, string(e.Category)).ToSlice()...)

	ev := amqp.NewEvent(amqp.EventExpenseAdded)
	ev.Name, ev.Amount, ev.Category = e.Name, e.Amount, string(e.Category)
	b.session.publish(ctx, ev)

	b.refreshAfterWrite(ctx)
	return messageOr(msg, "Expense added successfully!"), nil
}

func (b *Budget) DeleteExpense(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", core.NewValidationError("id", "Please choose an expense to delete")
	}

	var msg string
	err := b.session.authorized(ctx, func(token string) error {
		resp, err := b.session.api.DeleteExpense(ctx, token, id)
		msg = resp.Message
		return err
	})
	if err != nil {
		return "", err
	}

	b.logger.InfoContext(ctx, "Expense deleted", log.FieldOperation, log.OpDelete, log.FieldExpenseID, id)

	ev := amqp.NewEvent(amqp.EventExpenseDeleted)
	ev.ExpenseID = id
	b.session.publish(ctx, ev)

	b.refreshAfterWrite(ctx)
	return messageOr(msg, "Expense deleted"), nil
}

func (b *Budget) setIncome(ctx context.Context, amount int64) (string, error) {
	var msg string
	err := b.session.authorized(ctx, func(token string) error {
		resp, err := b.session.api.SetIncome(ctx, token, amount)
		msg = resp.Message
		return err
	})
	if err != nil {
		return "", err
	}

	b.logger.InfoContext(ctx, "Income updated", log.FieldOperation, log.OpUpdate, log.FieldAmount, amount)

	ev := amqp.NewEvent(amqp.EventIncomeLocked)
	ev.Amount = amount
	b.session.publish(ctx, ev)

	b.refreshAfterWrite(ctx)
	return messageOr(msg, "Income saved"), nil
}

// refreshAfterWrite reloads the profile once the server has accepted a
// write. A failed reload does not undo the write, so it is only logged; a 401
// has already expired the session in fetchProfile.
func (b *Budget) refreshAfterWrite(ctx context.Context) {
	if _, err := b.session.Refresh(ctx); err != nil {
		b.logger.WarnContext(ctx, "Profile refresh after write failed",
			log.FieldOperation, log.OpRefresh,
			log.FieldError, err.Error())
	}
}

// IncomeForm is the income entry on the home screen. Once a value has been
// accepted by the server the form is locked until Unlock is called.
type IncomeForm struct {
	budget *Budget

	mu     sync.Mutex
	value  string
	locked bool
}

func (b *Budget) NewIncomeForm() *IncomeForm {
	return &IncomeForm{budget: b}
}

// ResumeIncomeForm returns a form showing the income already saved in p.
// A positive income starts locked, as it does after a successful Submit.
func (b *Budget) ResumeIncomeForm(p core.Profile) *IncomeForm {
	f := &IncomeForm{budget: b}
	if p.TotalIncome > 0 {
		f.value = strconv.FormatInt(p.TotalIncome, 10)
		f.locked = true
	}
	return f
}

// SetValue replaces the raw input. It fails while the form is locked.
func (f *IncomeForm) SetValue(v string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked {
		return ErrIncomeLocked
	}
	f.value = v
	return nil
}

func (f *IncomeForm) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *IncomeForm) Locked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locked
}

// Submit sends the income to the server. Empty, non-numeric and
// non-positive values are rejected without a network call. On failure the
// form stays editable.
func (f *IncomeForm) Submit(ctx context.Context) (string, error) {
	f.mu.Lock()
	raw, locked := f.value, f.locked
	f.mu.Unlock()
	if locked {
		return "", ErrIncomeLocked
	}

	amount, err := core.ParseAmount("salary", raw)
	if err != nil {
		return "", err
	}

	msg, err := f.budget.setIncome(ctx, amount)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.locked = true
	f.mu.Unlock()
	return msg, nil
}

// Unlock makes the form editable again. No network call is made.
func (f *IncomeForm) Unlock() {
	f.mu.Lock()
	f.locked = false
	f.mu.Unlock()
}
