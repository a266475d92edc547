// Package render turns a username into animated progress rings and summary
// cards. It validates input, calls the proxy, and drives a View frame by
// frame.
package render

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/blockedby/leetstats/internal/logger"
	"github.com/blockedby/leetstats/internal/stats"
)

const (
	msgFetching = "Fetching user stats..."
	msgLoaded   = "Stats loaded successfully"
)

// EventType names a user interaction.
type EventType string

const (
	EventClick   EventType = "click"
	EventKeydown EventType = "keydown"
	EventInput   EventType = "input"
)

// Target names the control an event happened on.
type Target string

const (
	TargetSearch Target = "search"
	TargetInput  Target = "input"
	TargetClear  Target = "clear"
)

// Event is one user interaction.
type Event struct {
	Type   EventType
	Target Target
	// Key is set for keydown events.
	Key string
}

// Binding routes matching events to a handler when its guard allows.
type Binding struct {
	Event   EventType
	Target  Target
	Handler func(ctx context.Context, ev Event)
	// Guard is optional.
	Guard func(ev Event) bool
}

// Options tune a Renderer.
type Options struct {
	// Steps is the number of animation frames; DefaultSteps when zero.
	Steps     int
	Scheduler Scheduler
	Logger    *logger.Logger
}

// Renderer is the stats component. Its view, fetcher and scheduler are
// fixed at construction.
type Renderer struct {
	view      View
	fetcher   Fetcher
	scheduler Scheduler
	steps     int
	log       *logger.Logger

	trigger  Trigger
	bindings []Binding

	generation atomic.Uint64
	anims      sync.WaitGroup
}

// New creates a Renderer drawing on view and loading stats through fetcher.
func New(view View, fetcher Fetcher, opts Options) *Renderer {
	if opts.Steps < 1 {
		opts.Steps = DefaultSteps
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickScheduler{Interval: FrameInterval}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	r := &Renderer{
		view:      view,
		fetcher:   fetcher,
		scheduler: opts.Scheduler,
		steps:     opts.Steps,
		log:       opts.Logger.Component("render"),
	}
	r.bindings = []Binding{
		{Event: EventClick, Target: TargetSearch, Handler: r.onSubmit},
		{Event: EventKeydown, Target: TargetInput, Handler: r.onSubmit, Guard: isEnter},
		{Event: EventInput, Target: TargetInput, Handler: r.onInput},
		{Event: EventClick, Target: TargetClear, Handler: r.onClear},
	}
	return r
}

// Bindings returns the event table.
func (r *Renderer) Bindings() []Binding {
	return r.bindings
}

// Dispatch runs every binding matching ev and reports whether any did.
func (r *Renderer) Dispatch(ctx context.Context, ev Event) bool {
	handled := false
	for _, b := range r.bindings {
		if b.Event != ev.Type || b.Target != ev.Target {
			continue
		}
		if b.Guard != nil && !b.Guard(ev) {
			continue
		}
		b.Handler(ctx, ev)
		handled = true
	}
	return handled
}

// State returns the trigger state.
func (r *Renderer) State() State {
	return r.trigger.State()
}

// Search validates the current input and, when valid and idle, fetches and
// displays the stats. It blocks until the response settles; the animation
// continues on the scheduler afterwards.
//
// It returns the validation or fetch error, nil on success and nil when a
// search was already in flight.
func (r *Renderer) Search(ctx context.Context) error {
	if r.trigger.State() == Busy {
		return nil
	}

	username, err := stats.NormalizeUsername(r.view.Input())
	if err != nil {
		r.view.SetStatus(err.Error(), StatusError)
		return err
	}

	if !r.trigger.Begin() {
		return nil
	}
	defer func() {
		r.trigger.Settle()
		r.view.SetBusy(false)
	}()

	r.view.SetBusy(true)
	r.view.SetStatus(msgFetching, StatusInfo)

	s, err := r.fetcher.FetchStats(ctx, username)
	if err != nil {
		r.log.Debug().Err(err).Str("username", username).Msg("fetch failed")
		r.view.SetStatus(userMessage(err), StatusError)
		return err
	}

	r.Display(s)
	r.view.SetStatus(msgLoaded, StatusSuccess)
	return nil
}

// Display starts the ring animations and replaces the cards. Animations of
// an earlier Display stop at their next frame.
func (r *Renderer) Display(s stats.UserStats) {
	gen := r.generation.Add(1)

	for _, tier := range stats.Tiers {
		r.animate(gen, tier, NewIndicator(s.Tier(tier), r.steps))
	}
	r.view.SetCards(stats.Cards(s))
}

// WaitAnimations blocks until every started animation has finished or been
// superseded.
func (r *Renderer) WaitAnimations() {
	r.anims.Wait()
}

func (r *Renderer) animate(gen uint64, tier stats.Difficulty, ind *Indicator) {
	r.anims.Add(1)

	var step func()
	step = func() {
		if r.generation.Load() != gen {
			r.anims.Done()
			return
		}
		f := ind.Tick()
		r.view.SetProgress(tier, f)
		if f.Done {
			r.anims.Done()
			return
		}
		r.scheduler.RequestFrame(step)
	}
	step()
}

func (r *Renderer) onSubmit(ctx context.Context, _ Event) {
	_ = r.Search(ctx)
}

func (r *Renderer) onInput(_ context.Context, _ Event) {
	r.view.SetClearVisible(r.view.Input() != "")
}

// onClear empties the input. An in-flight request is left alone.
func (r *Renderer) onClear(_ context.Context, _ Event) {
	r.view.ClearInput()
	r.view.SetClearVisible(false)
	r.view.SetStatus("", StatusInfo)
	r.view.FocusInput()
}

func isEnter(ev Event) bool {
	return strings.EqualFold(ev.Key, "Enter")
}
