// Package notify shows short-lived success and error messages to the user.
package notify

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Notifier delivers fire-and-forget notifications.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Terminal writes notifications as single styled lines.
type Terminal struct {
	w       io.Writer
	success lipgloss.Style
	failure lipgloss.Style
}

// NewTerminal returns a Terminal writing to w. Colors are only emitted when
// color is true and w is a color-capable terminal.
func NewTerminal(w io.Writer, color bool) *Terminal {
	r := lipgloss.NewRenderer(w)
	t := &Terminal{w: w, success: r.NewStyle(), failure: r.NewStyle()}
	if color {
		t.success = t.success.Foreground(lipgloss.Color("2"))
		t.failure = t.failure.Foreground(lipgloss.Color("1"))
	}
	return t
}

// Success writes msg prefixed with a check mark.
func (t *Terminal) Success(msg string) {
	fmt.Fprintln(t.w, t.success.Render("✔ "+msg))
}

// Error writes msg prefixed with a cross.
func (t *Terminal) Error(msg string) {
	fmt.Fprintln(t.w, t.failure.Render("✖ "+msg))
}
