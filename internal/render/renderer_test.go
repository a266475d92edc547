package render

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/leetstats/internal/stats"
)

// manualScheduler queues frames until the test runs them.
type manualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func (s *manualScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// drain runs queued frames, including ones they schedule, and returns how
// many ran.
func (s *manualScheduler) drain() int {
	n := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return n
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
		n++
	}
}

type stubFetcher struct {
	mu      sync.Mutex
	calls   []string
	result  stats.UserStats
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *stubFetcher) FetchStats(ctx context.Context, username string) (stats.UserStats, error) {
	f.mu.Lock()
	f.calls = append(f.calls, username)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func (f *stubFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func sampleStats() stats.UserStats {
	return stats.UserStats{
		Tiers: map[stats.Difficulty]stats.TierStats{
			stats.Easy:   {Solved: 100, Total: 500},
			stats.Medium: {Solved: 50, Total: 1000},
			stats.Hard:   {Solved: 0, Total: 0},
		},
		Submissions: stats.Submissions{All: 900, Easy: 400, Medium: 350, Hard: 150},
	}
}

func newTestRenderer(f Fetcher) (*Renderer, *TerminalView, *manualScheduler) {
	view := NewTerminalView(&bytes.Buffer{})
	sched := &manualScheduler{}
	return New(view, f, Options{Scheduler: sched}), view, sched
}

func TestRenderer_SearchSuccess(t *testing.T) {
	f := &stubFetcher{result: sampleStats()}
	r, view, sched := newTestRenderer(f)

	view.SetInput("  alice_01  ")
	require.NoError(t, r.Search(context.Background()))

	assert.Equal(t, []string{"alice_01"}, f.Calls())
	msg, kind := view.Status()
	assert.Equal(t, "Stats loaded successfully", msg)
	assert.Equal(t, StatusSuccess, kind)
	assert.False(t, view.Busy())
	assert.Equal(t, Idle, r.State())

	assert.Equal(t, stats.Cards(sampleStats()), view.Cards())

	sched.drain()
	r.WaitAnimations()

	easy := view.Progress(stats.Easy)
	assert.True(t, easy.Done)
	assert.Equal(t, 100, easy.Count)
	assert.Equal(t, 72.0, easy.Degree)
	assert.Equal(t, "20.0%", stats.FormatPercent(easy.Percent))

	hard := view.Progress(stats.Hard)
	assert.True(t, hard.Done)
	assert.Equal(t, "0.0%", stats.FormatPercent(hard.Percent))
}

func TestRenderer_InvalidInputSendsNothing(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "Username should not be empty"},
		{"   ", "Username should not be empty"},
		{"bad name", "Invalid username format"},
		{"a.b", "Invalid username format"},
		{"abcdefghijklmnop", "Invalid username format"},
		{"<script>", "Invalid username format"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := &stubFetcher{result: sampleStats()}
			r, view, _ := newTestRenderer(f)

			view.SetInput(tt.input)
			assert.True(t, r.Dispatch(context.Background(), Event{Type: EventClick, Target: TargetSearch}))

			assert.Empty(t, f.Calls())
			msg, kind := view.Status()
			assert.Equal(t, tt.want, msg)
			assert.Equal(t, StatusError, kind)
			assert.Equal(t, Idle, r.State())
		})
	}
}

func TestRenderer_EnterSubmits(t *testing.T) {
	f := &stubFetcher{result: sampleStats()}
	r, view, _ := newTestRenderer(f)
	view.SetInput("bob")

	assert.False(t, r.Dispatch(context.Background(), Event{Type: EventKeydown, Target: TargetInput, Key: "a"}))
	assert.Empty(t, f.Calls())

	assert.True(t, r.Dispatch(context.Background(), Event{Type: EventKeydown, Target: TargetInput, Key: "Enter"}))
	assert.Equal(t, []string{"bob"}, f.Calls())
}

func TestRenderer_SubmitWhileBusyIsNoop(t *testing.T) {
	f := &stubFetcher{
		result:  sampleStats(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	r, view, _ := newTestRenderer(f)
	view.SetInput("carol")

	done := make(chan error, 1)
	go func() { done <- r.Search(context.Background()) }()

	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not start")
	}
	assert.Equal(t, Busy, r.State())
	assert.True(t, view.Busy())

	r.Dispatch(context.Background(), Event{Type: EventClick, Target: TargetSearch})
	r.Dispatch(context.Background(), Event{Type: EventKeydown, Target: TargetInput, Key: "Enter"})

	close(f.release)
	require.NoError(t, <-done)

	assert.Len(t, f.Calls(), 1)
	assert.Equal(t, Idle, r.State())
	assert.False(t, view.Busy())
}

func TestRenderer_FetchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &StatusError{Status: 404, Message: "User not found"}, "User not found"},
		{"fallback message", &StatusError{Status: 500, Message: msgFetchFallback}, "Unable to fetch user details"},
		{"network", ErrFetchFailed, "Failed to fetch user stats"},
		{"other", errors.New("boom"), "Failed to fetch user stats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFetcher{err: tt.err}
			r, view, _ := newTestRenderer(f)
			view.SetInput("dave")

			err := r.Search(context.Background())
			assert.ErrorIs(t, err, tt.err)

			msg, kind := view.Status()
			assert.Equal(t, tt.want, msg)
			assert.Equal(t, StatusError, kind)
			assert.Equal(t, Idle, r.State())
			assert.False(t, view.Busy())
			assert.Empty(t, view.Cards())
		})
	}
}

func TestRenderer_NewSearchSupersedesAnimation(t *testing.T) {
	r, view, sched := newTestRenderer(&stubFetcher{})

	first := sampleStats()
	r.Display(first)
	sched.drain()

	second := stats.UserStats{Tiers: map[stats.Difficulty]stats.TierStats{
		stats.Easy: {Solved: 1, Total: 2},
	}}
	r.Display(first)
	r.Display(second)
	sched.drain()
	r.WaitAnimations()

	easy := view.Progress(stats.Easy)
	assert.Equal(t, 1, easy.Solved)
	assert.Equal(t, 2, easy.Total)
	assert.True(t, easy.Done)
	assert.Equal(t, 0, view.Progress(stats.Medium).Total)
}

func TestRenderer_StepCount(t *testing.T) {
	view := NewTerminalView(&bytes.Buffer{})
	sched := &manualScheduler{}
	r := New(view, &stubFetcher{}, Options{Steps: 5, Scheduler: sched})

	r.Display(stats.UserStats{Tiers: map[stats.Difficulty]stats.TierStats{
		stats.Easy: {Solved: 5, Total: 10},
	}})

	// the first frame runs immediately, the other four are scheduled
	assert.Equal(t, 4, sched.drain())
	r.WaitAnimations()
	assert.Equal(t, 5, view.Progress(stats.Easy).Count)
}

func TestRenderer_ClearControl(t *testing.T) {
	f := &stubFetcher{}
	r, view, _ := newTestRenderer(f)
	ctx := context.Background()

	r.Dispatch(ctx, Event{Type: EventInput, Target: TargetInput})
	assert.False(t, view.ClearVisible())

	view.SetInput("x")
	r.Dispatch(ctx, Event{Type: EventInput, Target: TargetInput})
	assert.True(t, view.ClearVisible())

	view.SetStatus("Invalid username format", StatusError)
	r.Dispatch(ctx, Event{Type: EventClick, Target: TargetClear})

	assert.Equal(t, "", view.Input())
	assert.False(t, view.ClearVisible())
	assert.True(t, view.Focused())
	msg, kind := view.Status()
	assert.Equal(t, "", msg)
	assert.Equal(t, StatusInfo, kind)
	assert.Empty(t, f.Calls())
}

func TestRenderer_Bindings(t *testing.T) {
	r, _, _ := newTestRenderer(&stubFetcher{})

	bindings := r.Bindings()
	require.Len(t, bindings, 4)
	for _, b := range bindings {
		assert.NotNil(t, b.Handler)
	}
	assert.False(t, r.Dispatch(context.Background(), Event{Type: EventClick, Target: "elsewhere"}))
}
