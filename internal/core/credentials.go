package core

import (
	"errors"
	"strings"
)

const (
	// CodeLength is the number of digits in an emailed one-time code.
	CodeLength = 5
	// PasswordMinLength applies to new passwords chosen on the client.
	PasswordMinLength = 6
)

var (
	ErrEmptyEmail       = errors.New("empty email")
	ErrEmptyPassword    = errors.New("empty password")
	ErrIncompleteCode   = errors.New("incomplete code")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Msg: "Please enter your email", Err: ErrEmptyEmail}
	}
	return nil
}

// ValidateCode accepts exactly CodeLength ASCII digits.
func ValidateCode(code string) error {
	if len(code) != CodeLength {
		return &ValidationError{Field: "code", Msg: "Please enter the 5-digit code", Err: ErrIncompleteCode}
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return &ValidationError{Field: "code", Msg: "Please enter the 5-digit code", Err: ErrIncompleteCode}
		}
	}
	return nil
}

// ValidateNewPassword checks a newly chosen password and its confirmation.
func ValidateNewPassword(password, confirm string) error {
	if password == "" {
		return &ValidationError{Field: "password", Msg: "Please enter a new password", Err: ErrEmptyPassword}
	}
	if len(password) < PasswordMinLength {
		return &ValidationError{Field: "password", Msg: "Password must be at least 6 characters", Err: ErrPasswordTooShort}
	}
	if password != confirm {
		return &ValidationError{Field: "confirm", Msg: "Passwords do not match", Err: ErrPasswordMismatch}
	}
	return nil
}
