// Package services owns the client's application state: the session, the
// cached profile and the display preferences. Screens read it through State
// and change it only through the operations defined here.
package services

import (
	"slices"

	"moneymate/internal/core"
)

// AuthState is the outcome of session bootstrap.
type AuthState int

const (
	// Unknown means the session could not be established, e.g. the server
	// was unreachable. The stored token is kept.
	Unknown AuthState = iota
	Unauthenticated
	Authenticated
)

func (a AuthState) String() string {
	switch a {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is a read-only snapshot of the application state.
type State struct {
	Auth        AuthState
	Profile     *core.Profile
	Preferences core.Preferences
}

func cloneProfile(p *core.Profile) *core.Profile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Expenses = slices.Clone(p.Expenses)
	if p.CategoryTotals != nil {
		cp.CategoryTotals = make(map[core.Category]int64, len(p.CategoryTotals))
		for k, v := range p.CategoryTotals {
			cp.CategoryTotals[k] = v
		}
	}
	return &cp
}
