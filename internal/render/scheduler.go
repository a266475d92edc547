package render

import "time"

// FrameInterval approximates one display refresh.
const FrameInterval = 16 * time.Millisecond

// Scheduler runs fn once, at the next frame.
type Scheduler interface {
	RequestFrame(fn func())
}

// TickScheduler schedules frames on timers. Each request gets its own
// timer, so tiers animate independently.
type TickScheduler struct {
	Interval time.Duration
}

// RequestFrame implements Scheduler.
func (s TickScheduler) RequestFrame(fn func()) {
	d := s.Interval
	if d <= 0 {
		d = FrameInterval
	}
	time.AfterFunc(d, fn)
}
