// Package notice turns operation outcomes into short user-facing messages,
// the terminal counterpart of a toast.
package notice

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"moneymate/internal/api"
	"moneymate/internal/core"
	"moneymate/internal/services"
	"moneymate/internal/wizard"
)

// DefaultFallback is shown for failures that carry no message of their own.
const DefaultFallback = "Something went wrong"

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

type Notice struct {
	Kind    Kind
	Message string
}

func Success(msg string) Notice { return Notice{Kind: KindSuccess, Message: msg} }
func Info(msg string) Notice    { return Notice{Kind: KindInfo, Message: msg} }
func Warning(msg string) Notice { return Notice{Kind: KindWarning, Message: msg} }

// known maps client-side sentinels to their user-facing text.
var known = []struct {
	err error
	msg string
}{
	{services.ErrNotAuthenticated, "Please log in first"},
	{services.ErrIncomeLocked, "Income is locked, choose edit to change it"},
	{wizard.ErrWrongStep, "That step is not available right now"},
	{wizard.ErrClosed, "The reset flow has ended"},
}

// FromError picks the message to show for err. Validation errors and server
// rejections carrying a message are shown verbatim; transport failures and
// anything without a message get fallback, or DefaultFallback when empty.
func FromError(err error, fallback string) Notice {
	if fallback == "" {
		fallback = DefaultFallback
	}
	if err == nil {
		return Notice{}
	}

	var ve *core.ValidationError
	if errors.As(err, &ve) && ve.Msg != "" {
		return Notice{Kind: KindError, Message: ve.Msg}
	}
	if msg := api.Message(err); msg != "" {
		kind := KindError
		if errors.Is(err, services.ErrVerificationRequired) {
			kind = KindInfo
		}
		return Notice{Kind: kind, Message: msg}
	}
	for _, k := range known {
		if errors.Is(err, k.err) {
			return Notice{Kind: KindError, Message: k.msg}
		}
	}
	return Notice{Kind: KindError, Message: fallback}
}

// Styles are the colors of each kind, matching the app's toasts.
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
}

func DefaultStyles() Styles {
	base := lipgloss.NewStyle().Bold(true)
	return Styles{
		Success: base.Foreground(lipgloss.Color("#10B981")),
		Error:   base.Foreground(lipgloss.Color("#EF4444")),
		Warning: base.Foreground(lipgloss.Color("#F59E0B")),
		Info:    base.Foreground(lipgloss.Color("#3B82F6")),
	}
}

func (s Styles) icon(k Kind) (string, lipgloss.Style) {
	switch k {
	case KindSuccess:
		return "✓", s.Success
	case KindError:
		return "✗", s.Error
	case KindWarning:
		return "!", s.Warning
	default:
		return "i", s.Info
	}
}

// Render formats n as a single line, e.g. "✓ Expense added successfully!".
func (s Styles) Render(n Notice) string {
	icon, style := s.icon(n.Kind)
	return style.Render(icon) + " " + n.Message
}

// Print writes n followed by a newline. Empty notices are skipped.
func Print(w io.Writer, n Notice) {
	if n.Message == "" {
		return
	}
	fmt.Fprintln(w, DefaultStyles().Render(n))
}
