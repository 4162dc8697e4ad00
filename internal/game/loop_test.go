package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingStepper struct {
	steps int
}

func (c *countingStepper) Step() []Event {
	c.steps++
	return []Event{{Kind: EventWallHit, BallID: c.steps}}
}

func TestLoopRunsWholeSteps(t *testing.T) {
	c := &countingStepper{}
	l := NewLoopFor(c, 1.0/60.0, 10)

	events := l.Advance(50 * time.Millisecond)
	assert.Equal(t, 3, c.steps)
	assert.Equal(t, 3, l.LastSteps())
	assert.Len(t, events, 3)
	assert.Equal(t, 3, events[2].BallID, "events keep step order")

	// Leftover time carries into the next frame.
	l.Advance(10 * time.Millisecond)
	assert.Equal(t, 3, c.steps)
	l.Advance(10 * time.Millisecond)
	assert.Equal(t, 4, c.steps)
	assert.GreaterOrEqual(t, l.Alpha(), 0.0)
	assert.Less(t, l.Alpha(), 1.0)
}

func TestLoopCapsAfterStall(t *testing.T) {
	c := &countingStepper{}
	l := NewLoopFor(c, 1.0/60.0, 10)

	l.Advance(5 * time.Second)
	assert.Equal(t, 10, c.steps)

	l.Advance(0)
	assert.Equal(t, 10, c.steps, "the excess was dropped, not deferred")
}

func TestLoopIgnoresNegativeFrames(t *testing.T) {
	c := &countingStepper{}
	l := NewLoopFor(c, 1.0/60.0, 10)

	assert.Empty(t, l.Advance(-time.Second))
	assert.Equal(t, 0, c.steps)

	l.Advance(20 * time.Millisecond)
	l.Reset()
	l.Advance(10 * time.Millisecond)
	assert.Equal(t, 1, c.steps)
}

func TestLoopDrivesMatch(t *testing.T) {
	tune := DefaultTuning()
	tune.CountdownDuration = 0
	m := NewMatch(NewSettings(tune), 1, nil)
	if err := m.StartCountdown(); err != nil {
		t.Fatal(err)
	}
	l := NewLoop(m)

	l.Advance(time.Second)
	// The cap limits one frame to MaxAccumulatedSteps ticks; the first tick
	// ends the countdown.
	assert.Equal(t, PhasePlaying, m.Phase())
	assert.InDelta(t, float64(tune.MaxAccumulatedSteps-1)*m.Settings().Timestep, m.State().Elapsed, 1e-9)
}
