package render

import (
	"github.com/blockedby/leetstats/internal/stats"
)

// StatusKind styles the status line.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// View is the surface the renderer draws on. Implementations must be safe
// for concurrent use: animation frames arrive from timer goroutines.
type View interface {
	// Input returns the raw contents of the username field.
	Input() string
	ClearInput()
	FocusInput()

	SetStatus(msg string, kind StatusKind)
	// SetBusy shows the in-flight state and disables input while busy.
	SetBusy(busy bool)
	SetClearVisible(visible bool)

	SetProgress(tier stats.Difficulty, f Frame)
	// SetCards replaces all cards.
	SetCards(cards []stats.Card)
}
