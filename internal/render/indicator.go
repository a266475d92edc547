package render

import (
	"github.com/blockedby/leetstats/internal/stats"
)

// DefaultSteps is the number of frames an animation takes.
const DefaultSteps = 60

// snapEpsilon absorbs float drift so that steps frames always reach the target.
const snapEpsilon = 1e-9

// Frame is what a view draws for one tier at one point of the animation.
type Frame struct {
	// Degree is the ring fill, 0..360.
	Degree float64
	// Count is the running solved count shown while animating.
	Count   int
	Solved  int
	Total   int
	Percent float64
	Done    bool
}

// Indicator animates one progress ring from empty to its target.
//
// The zero value is not usable; use NewIndicator.
type Indicator struct {
	tier stats.TierStats

	degree       float64
	targetDegree float64
	degreeStep   float64

	count     float64
	countStep float64

	done bool
}

// NewIndicator prepares the animation of t over steps frames.
// steps below 1 falls back to DefaultSteps.
func NewIndicator(t stats.TierStats, steps int) *Indicator {
	if steps < 1 {
		steps = DefaultSteps
	}
	target := t.Degrees()
	return &Indicator{
		tier:         t,
		targetDegree: target,
		degreeStep:   target / float64(steps),
		countStep:    float64(t.Solved) / float64(steps),
	}
}

// Tick advances the animation by one frame and returns it. Once the
// accumulated degree reaches the target the frame snaps to the exact final
// values and every later Tick returns that same frame.
func (i *Indicator) Tick() Frame {
	if i.done {
		return i.Frame()
	}
	if i.tier.Total == 0 || i.degree >= i.targetDegree {
		return i.finish()
	}

	i.degree += i.degreeStep
	i.count += i.countStep
	if i.degree >= i.targetDegree-snapEpsilon {
		return i.finish()
	}
	return i.Frame()
}

// Done reports whether the final frame has been produced.
func (i *Indicator) Done() bool {
	return i.done
}

// Frame returns the current frame without advancing.
func (i *Indicator) Frame() Frame {
	count := int(min(i.count, float64(i.tier.Solved)))
	if i.done {
		count = i.tier.Solved
	}
	return Frame{
		Degree:  min(i.degree, i.targetDegree),
		Count:   count,
		Solved:  i.tier.Solved,
		Total:   i.tier.Total,
		Percent: i.tier.Percent(),
		Done:    i.done,
	}
}

func (i *Indicator) finish() Frame {
	i.degree = i.targetDegree
	i.count = float64(i.tier.Solved)
	i.done = true
	return i.Frame()
}
