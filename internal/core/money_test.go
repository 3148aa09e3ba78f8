package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		out  int64
		want error
	}{
		{"50000", 50000, nil},
		{" 20,000 ", 20000, nil},
		{"1 500", 1500, nil},
		{"20 000", 20000, nil},
		{"1_000_000", 1000000, nil},
		{"1 2", 0, ErrInvalidAmount},
		{"1,2", 0, ErrInvalidAmount},
		{"20,00", 0, ErrInvalidAmount},
		{"1,000 000", 0, ErrInvalidAmount},
		{",100", 0, ErrInvalidAmount},
		{"1", 1, nil},
		{"", 0, ErrEmptyAmount},
		{"   ", 0, ErrEmptyAmount},
		{"abc", 0, ErrInvalidAmount},
		{"12.5", 0, ErrInvalidAmount},
		{"0", 0, ErrNonPositiveAmount},
		{"-10", 0, ErrNonPositiveAmount},
	}
	for _, tc := range cases {
		got, err := ParseAmount("salary", tc.in)
		if tc.want == nil {
			assert.NoError(t, err, tc.in)
			assert.Equal(t, tc.out, got, tc.in)
			continue
		}
		assert.True(t, errors.Is(err, tc.want), "%q: got %v", tc.in, err)
		assert.True(t, IsValidationError(err), tc.in)
		assert.Equal(t, "Please enter a valid salary amount", err.Error())
	}
}

func TestCurrency_Format(t *testing.T) {
	assert.Equal(t, "₹20,000", Currency("INR").Format(20000))
	assert.Equal(t, "$1,234,567", Currency("USD").Format(1234567))
	assert.Equal(t, "-$500", Currency("USD").Format(-500))
	assert.Equal(t, "₹", Currency("INR").Symbol())
	assert.Equal(t, "€", Currency("EUR").Symbol())
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("usd")
	assert.NoError(t, err)
	assert.Equal(t, Currency("USD"), c)

	_, err = ParseCurrency("BTC")
	assert.Error(t, err)
}

func TestParseBudgetCycle(t *testing.T) {
	for in, want := range map[string]BudgetCycle{
		"weekly":    Weekly,
		"Bi-Weekly": BiWeekly,
		"biweekly":  BiWeekly,
		"MONTHLY":   Monthly,
	} {
		got, err := ParseBudgetCycle(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBudgetCycle("yearly")
	assert.Error(t, err)
	assert.Equal(t, Preferences{Currency: "INR", BudgetCycle: Monthly}, DefaultPreferences())
}

func TestValidateCode(t *testing.T) {
	assert.NoError(t, ValidateCode("12345"))
	for _, bad := range []string{"", "1234", "123456", "12a45", "١٢٣٤٥"} {
		err := ValidateCode(bad)
		assert.True(t, errors.Is(err, ErrIncompleteCode), bad)
	}
}

func TestValidateNewPassword(t *testing.T) {
	assert.NoError(t, ValidateNewPassword("secret1", "secret1"))
	assert.True(t, errors.Is(ValidateNewPassword("", ""), ErrEmptyPassword))
	assert.True(t, errors.Is(ValidateNewPassword("abc", "abc"), ErrPasswordTooShort))
	assert.True(t, errors.Is(ValidateNewPassword("secret1", "secret2"), ErrPasswordMismatch))
}
