package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a request the server answered with a non-2xx status.
type Error struct {
	Op         string
	StatusCode int
	// Message is the server's "message" field, shown to the user verbatim.
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func statusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether the server rejected the bearer token.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports a 403, which login uses for unverified accounts.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsInvalidCode reports whether the server rejected a one-time code. The
// server gives no code for this, so the message is matched.
func IsInvalidCode(err error) bool {
	msg := strings.ToLower(Message(err))
	return strings.Contains(msg, "invalid") || strings.Contains(msg, "expired")
}

// Message returns the server's message for err, or "" when there is none.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
