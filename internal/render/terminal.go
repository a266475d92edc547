package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/term"

	"github.com/blockedby/leetstats/internal/stats"
)

const (
	defaultBarWidth = 30
	minBarWidth     = 10
	maxBarWidth     = 50
)

// TerminalView draws the stats panel as text. On a terminal every change
// redraws the panel in place; otherwise nothing is written until Flush.
type TerminalView struct {
	mu sync.Mutex

	out      io.Writer
	tty      bool
	barWidth int
	drawn    int

	input        string
	focused      bool
	busy         bool
	clearVisible bool
	status       string
	kind         StatusKind
	frames       map[stats.Difficulty]Frame
	cards        []stats.Card
}

// NewTerminalView returns a view writing to out.
func NewTerminalView(out io.Writer) *TerminalView {
	v := &TerminalView{
		out:      out,
		barWidth: defaultBarWidth,
		kind:     StatusInfo,
		frames:   make(map[stats.Difficulty]Frame, len(stats.Tiers)),
	}

	if f, ok := out.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		v.tty = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			v.barWidth = max(minBarWidth, min(maxBarWidth, w-40))
		}
	}
	return v
}

// SetInput fills the username field.
func (v *TerminalView) SetInput(s string) {
	v.mu.Lock()
	v.input = s
	v.mu.Unlock()
}

func (v *TerminalView) Input() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input
}

func (v *TerminalView) ClearInput() {
	v.update(func() { v.input = "" })
}

func (v *TerminalView) FocusInput() {
	v.mu.Lock()
	v.focused = true
	v.mu.Unlock()
}

func (v *TerminalView) SetStatus(msg string, kind StatusKind) {
	v.update(func() {
		v.status = sanitize(msg)
		v.kind = kind
	})
}

func (v *TerminalView) SetBusy(busy bool) {
	v.update(func() { v.busy = busy })
}

func (v *TerminalView) SetClearVisible(visible bool) {
	v.update(func() { v.clearVisible = visible })
}

func (v *TerminalView) SetProgress(tier stats.Difficulty, f Frame) {
	v.update(func() { v.frames[tier] = f })
}

func (v *TerminalView) SetCards(cards []stats.Card) {
	v.update(func() {
		v.cards = make([]stats.Card, len(cards))
		for i, c := range cards {
			v.cards[i] = stats.Card{Label: sanitize(c.Label), Value: c.Value}
		}
	})
}

// Status returns the current status line and its kind.
func (v *TerminalView) Status() (string, StatusKind) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status, v.kind
}

// Busy reports whether the view shows the in-flight state.
func (v *TerminalView) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

// ClearVisible reports whether the clear control is shown.
func (v *TerminalView) ClearVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clearVisible
}

// Focused reports whether the input has been focused.
func (v *TerminalView) Focused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.focused
}

// Progress returns the last frame drawn for tier.
func (v *TerminalView) Progress(tier stats.Difficulty) Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames[tier]
}

// Cards returns a copy of the current cards.
func (v *TerminalView) Cards() []stats.Card {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]stats.Card(nil), v.cards...)
}

// Render returns the panel as text.
func (v *TerminalView) Render() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renderLocked()
}

// Flush writes the current panel. On a terminal it replaces what is on
// screen.
func (v *TerminalView) Flush() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drawLocked()
}

func (v *TerminalView) update(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fn()
	if v.tty {
		_ = v.drawLocked()
	}
}

func (v *TerminalView) drawLocked() error {
	var b strings.Builder
	if v.tty && v.drawn > 0 {
		// cursor up, then clear to end of screen
		fmt.Fprintf(&b, "\x1b[%dA\x1b[J", v.drawn)
	}
	panel := v.renderLocked()
	b.WriteString(panel)

	if _, err := io.WriteString(v.out, b.String()); err != nil {
		return err
	}
	v.drawn = strings.Count(panel, "\n")
	return nil
}

func (v *TerminalView) renderLocked() string {
	var b strings.Builder

	for _, tier := range stats.Tiers {
		f := v.frames[tier]
		fmt.Fprintf(&b, "%-7s %s %d/%d  %s\n",
			tier, v.bar(f.Degree), f.Count, f.Total, stats.FormatPercent(f.Percent))
	}

	if len(v.cards) > 0 {
		b.WriteString("\n")
		for _, c := range v.cards {
			fmt.Fprintf(&b, "%-20s %d\n", c.Label, c.Value)
		}
	}

	status := v.status
	if v.busy {
		status = "Searching... " + status
	}
	if status != "" {
		b.WriteString("\n")
		if v.kind == StatusError {
			b.WriteString("error: ")
		}
		b.WriteString(status)
		b.WriteString("\n")
	}
	return b.String()
}

func (v *TerminalView) bar(degree float64) string {
	filled := int(math.Round(degree / 360 * float64(v.barWidth)))
	filled = max(0, min(v.barWidth, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", v.barWidth-filled) + "]"
}

// sanitize drops control characters so that text from the network cannot
// move the cursor or change colors.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
