package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/leetstats/internal/stats"
)

func TestTerminalView_NotATerminalWritesOnFlush(t *testing.T) {
	var buf bytes.Buffer
	v := NewTerminalView(&buf)

	v.SetStatus("Fetching user stats...", StatusInfo)
	v.SetProgress(stats.Easy, Frame{Degree: 36, Count: 10, Solved: 50, Total: 500, Percent: 10})
	assert.Empty(t, buf.String())

	require.NoError(t, v.Flush())
	assert.Equal(t, v.Render(), buf.String())
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestTerminalView_Render(t *testing.T) {
	v := NewTerminalView(&bytes.Buffer{})

	f := NewIndicator(stats.TierStats{Solved: 100, Total: 500}, 1).Tick()
	v.SetProgress(stats.Easy, f)
	v.SetCards(stats.Cards(stats.UserStats{Submissions: stats.Submissions{All: 640, Easy: 300}}))
	v.SetStatus("Stats loaded successfully", StatusSuccess)

	out := v.Render()
	lines := strings.Split(out, "\n")

	assert.True(t, strings.HasPrefix(lines[0], "Easy    ["))
	assert.Contains(t, lines[0], "100/500  20.0%")
	// 72 of 360 degrees on a 30 column bar
	assert.Contains(t, lines[0], "["+strings.Repeat("#", 6)+strings.Repeat("-", 24)+"]")
	assert.Contains(t, lines[1], "0/0  0.0%")
	assert.Contains(t, out, "Overall Submissions  640")
	assert.Contains(t, out, "Hard Submissions     0")
	assert.True(t, strings.HasSuffix(out, "Stats loaded successfully\n"))
}

func TestTerminalView_ErrorAndBusy(t *testing.T) {
	v := NewTerminalView(&bytes.Buffer{})

	v.SetBusy(true)
	v.SetStatus("Fetching user stats...", StatusInfo)
	assert.Contains(t, v.Render(), "Searching... Fetching user stats...")

	v.SetBusy(false)
	v.SetStatus("User not found", StatusError)
	assert.Contains(t, v.Render(), "error: User not found")
}

func TestTerminalView_StripsControlCharacters(t *testing.T) {
	v := NewTerminalView(&bytes.Buffer{})

	v.SetStatus("bad\x1b[2Jnews\r\n", StatusError)
	msg, _ := v.Status()
	assert.Equal(t, "bad[2Jnews", msg)

	v.SetCards([]stats.Card{{Label: "Easy\x07 Submissions", Value: 3}})
	assert.Equal(t, "Easy Submissions", v.Cards()[0].Label)
}

func TestTerminalView_InputAndClear(t *testing.T) {
	v := NewTerminalView(&bytes.Buffer{})

	v.SetInput("alice")
	assert.Equal(t, "alice", v.Input())
	v.ClearInput()
	assert.Equal(t, "", v.Input())

	assert.False(t, v.Focused())
	v.FocusInput()
	assert.True(t, v.Focused())
}
