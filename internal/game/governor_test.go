package game

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

const speedTolerance = 1e-9

func TestGovernClampsAboveMax(t *testing.T) {
	s := NewSettings(DefaultTuning())
	v := Govern(s, Vec2{X: 0, Y: 1000}, SideHuman)

	// Clamped to max, then one decay step since max is above the threshold.
	assert.InDelta(t, s.MaxSpeed*s.SpeedDecay, v.Length(), speedTolerance)
	assert.Equal(t, 0.0, v.X)
}

func TestGovernFloorsBelowMin(t *testing.T) {
	s := NewSettings(DefaultTuning())
	v := Govern(s, Vec2{X: 0, Y: -100}, SideHuman)
	assert.InDelta(t, s.MinSpeed, v.Length(), speedTolerance)
	assert.Negative(t, v.Y)
}

func TestGovernZeroVelocity(t *testing.T) {
	s := NewSettings(DefaultTuning())

	down := Govern(s, Vec2{}, SideAI)
	assert.InDelta(t, s.MinSpeed, down.Length(), speedTolerance)
	assert.InDelta(t, s.LaunchAngle, AngleFromHorizontal(down), 1e-9)
	assert.Positive(t, down.Y, "moves away from the AI end wall")

	up := Govern(s, Vec2{}, SideHuman)
	assert.Negative(t, up.Y, "moves away from the human end wall")
}

func TestGovernDecaysTowardsBase(t *testing.T) {
	s := NewSettings(DefaultTuning())
	v := FromAngle(1.2, 500)

	prev := v.Length()
	for i := 0; i < 1000; i++ {
		v = Govern(s, v, SideHuman)
		speed := v.Length()
		assert.LessOrEqual(t, speed, prev+speedTolerance, "step %d", i)
		assert.GreaterOrEqual(t, speed, s.MinSpeed-speedTolerance)
		assert.GreaterOrEqual(t, speed, s.BaseSpeed-speedTolerance)
		prev = speed
	}
	assert.LessOrEqual(t, prev, s.DecayThreshold)
}

func TestGovernLeavesBandAlone(t *testing.T) {
	s := NewSettings(DefaultTuning())
	in := FromAngle(1.0, s.BaseSpeed)
	assert.Equal(t, in, Govern(s, in, SideHuman))
}

func TestGovernMinimumAngle(t *testing.T) {
	s := NewSettings(DefaultTuning())
	v := Govern(s, Vec2{X: -300, Y: 0.5}, SideHuman)

	assert.InDelta(t, Vec2{X: -300, Y: 0.5}.Length(), v.Length(), 1e-6)
	assert.InDelta(t, s.MinAngle, AngleFromHorizontal(v), 1e-9)
	assert.Negative(t, v.X)
	assert.Positive(t, v.Y)
}

// Any input velocity comes out inside the speed band and steep enough.
func TestGovernInvariants(t *testing.T) {
	s := NewSettings(DefaultTuning())
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 5000; i++ {
		in := FromAngle(rng.Float64()*2*math.Pi, rng.Float64()*1500)
		if i%50 == 0 {
			in = Vec2{X: rng.Float64()*1500 - 750}
		}
		v := Govern(s, in, SideHuman)
		speed := v.Length()
		assert.GreaterOrEqual(t, speed, s.MinSpeed-speedTolerance, "input %v", in)
		assert.LessOrEqual(t, speed, s.MaxSpeed+speedTolerance, "input %v", in)
		assert.GreaterOrEqual(t, AngleFromHorizontal(v), s.MinAngle-1e-9, "input %v", in)
	}
}

func TestGovernBallsSetsWorldVelocity(t *testing.T) {
	w := newTestWorld(t)
	s := w.Settings()
	top := w.AddBall(Vec2{X: 240, Y: 100}, Vec2{})
	bottom := w.AddBall(Vec2{X: 240, Y: 600}, Vec2{})

	governBalls(w)

	assert.Positive(t, top.Velocity.Y)
	assert.Negative(t, bottom.Velocity.Y)
	assert.InDelta(t, s.MinSpeed, top.Velocity.Length(), speedTolerance)
}
