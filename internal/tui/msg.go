// Package tui renders the sign-up form as a Bubble Tea terminal UI, with a
// plain line-prompt fallback when stdout is not a terminal.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gearx-ai/signup/internal/form"
)

// ThankYou is the confirmation shown after a successful submission.
const ThankYou = "Thank you for submitting!"

// SubmitResultMsg carries the settled outcome of a submission.
type SubmitResultMsg struct {
	Message string
	Err     error
}

// ToastExpiredMsg fires when the toast with sequence Seq should be dismissed.
type ToastExpiredMsg struct {
	Seq int
}

// submitCmd delivers p off the update loop.
func submitCmd(ctx context.Context, s form.Submitter, p form.Payload) tea.Cmd {
	return func() tea.Msg {
		msg, err := s.Submit(ctx, p)
		return SubmitResultMsg{Message: msg, Err: err}
	}
}

// toastCmd schedules dismissal of toast seq after d.
func toastCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ToastExpiredMsg{Seq: seq}
	})
}
