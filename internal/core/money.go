// Package core provides money parsing and handling utilities.
//
// This file contains parsing of user-entered amounts. Amounts are whole
// currency units; the API never carries fractional values.
package core

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// grouped matches digits split into thousands by one separator kind.
var grouped = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+$|^-?\d{1,3}(?: \d{3})+$|^-?\d{1,3}(?:_\d{3})+$`)

var (
	ErrEmptyAmount       = errors.New("empty amount")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// ParseAmount converts user input into a positive whole amount.
//
// Surrounding whitespace and thousands separators ("20,000", "20 000",
// "20_000") are ignored when every group after the first has three digits.
// Anything else that is not a plain integer is
// rejected, as are zero and negative values.
//
// Examples:
//
//	ParseAmount("50000")  -> 50000, nil
//	ParseAmount("50,000") -> 50000, nil
//	ParseAmount("")       -> 0, ErrEmptyAmount
//	ParseAmount("12.5")   -> 0, ErrInvalidAmount
//	ParseAmount("0")      -> 0, ErrNonPositiveAmount
func ParseAmount(field, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: field, Msg: "Please enter a valid " + field + " amount", Err: ErrEmptyAmount}
	}
	if grouped.MatchString(s) {
		s = strings.NewReplacer(",", "", " ", "", "_", "").Replace(s)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Msg: "Please enter a valid " + field + " amount", Err: ErrInvalidAmount}
	}
	if v <= 0 {
		return 0, &ValidationError{Field: field, Msg: "Please enter a valid " + field + " amount", Err: ErrNonPositiveAmount}
	}
	return v, nil
}
