package game

import (
	"math"
	"time"
)

const stepEpsilon = 1e-9

// Stepper is anything advanced one fixed tick at a time.
type Stepper interface {
	Step() []Event
}

// Loop drives a Stepper with a fixed-timestep accumulator. Frame time is
// accumulated and consumed in whole timesteps; the leftover carries into the
// next frame. The accumulator is capped so a stalled caller cannot trigger
// an unbounded catch-up.
type Loop struct {
	target    Stepper
	step      float64
	max       float64
	acc       float64
	lastSteps int
}

// NewLoop creates a loop for a match using its timestep and cap.
func NewLoop(m *Match) *Loop {
	s := m.Settings()
	return NewLoopFor(m, s.Timestep, s.MaxAccumulatedSteps)
}

// NewLoopFor creates a loop for any stepper.
func NewLoopFor(target Stepper, timestep float64, maxSteps int) *Loop {
	return &Loop{
		target: target,
		step:   timestep,
		max:    timestep * float64(maxSteps),
	}
}

// Advance adds frame time and runs as many fixed steps as it covers. It
// returns the events of every step run, in order.
func (l *Loop) Advance(frame time.Duration) []Event {
	if frame > 0 {
		l.acc += frame.Seconds()
	}
	if l.acc > l.max {
		l.acc = l.max
	}

	// Count whole steps up front so rounding in repeated subtraction cannot
	// drop the last one.
	n := int(math.Floor(l.acc/l.step + stepEpsilon))
	l.acc = math.Max(0, l.acc-float64(n)*l.step)

	var events []Event
	for i := 0; i < n; i++ {
		events = append(events, l.target.Step()...)
	}
	l.lastSteps = n
	return events
}

// LastSteps reports how many steps the previous Advance ran.
func (l *Loop) LastSteps() int {
	return l.lastSteps
}

// Alpha is the fraction of a step left in the accumulator, for render
// interpolation.
func (l *Loop) Alpha() float64 {
	return l.acc / l.step
}

// Reset drops any accumulated time.
func (l *Loop) Reset() {
	l.acc = 0
	l.lastSteps = 0
}
