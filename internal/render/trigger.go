package render

import "sync"

// State is the state of the search trigger.
type State int

const (
	Idle State = iota
	Busy
)

func (s State) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// Trigger guards the search action: at most one request is in flight.
type Trigger struct {
	mu    sync.Mutex
	state State
}

// Begin moves Idle to Busy. It returns false when a request is already in
// flight, in which case the caller must not start another.
func (t *Trigger) Begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Busy {
		return false
	}
	t.state = Busy
	return true
}

// Settle returns to Idle, whatever the outcome of the request.
func (t *Trigger) Settle() {
	t.mu.Lock()
	t.state = Idle
	t.mu.Unlock()
}

// State returns the current state.
func (t *Trigger) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
