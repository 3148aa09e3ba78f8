// Package memory is an in-process sheets.Exporter.
package memory

import (
	"context"
	"fmt"
	"sync"

	"moneymate/internal/core"
	"moneymate/internal/sheets"
)

var _ sheets.Exporter = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows [][]any
}

func New() *Store {
	return &Store{}
}

func (s *Store) Export(_ context.Context, expenses []core.Expense) (sheets.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rows) == 0 {
		s.rows = append(s.rows, sheets.Header)
	}
	existing := make(map[string]struct{}, len(s.rows))
	for _, r := range s.rows[1:] {
		if id, ok := r[0].(string); ok && id != "" {
			existing[id] = struct{}{}
		}
	}

	rows, skipped := sheets.Pending(expenses, existing)
	first := len(s.rows) + 1
	s.rows = append(s.rows, rows...)

	res := sheets.Result{Appended: len(rows), Skipped: skipped}
	if len(rows) > 0 {
		res.Range = fmt.Sprintf("mem!A%d:E%d", first, len(s.rows))
	}
	return res, nil
}

// Rows returns a copy of every row written so far, header included.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	copy(out, s.rows)
	return out
}
