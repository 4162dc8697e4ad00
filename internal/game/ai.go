package game

import "math"

// Input is the human paddle's key state for one tick.
type Input struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// driftCapFactor limits the AI's speed while it returns to the center with
// nothing to track.
const driftCapFactor = 0.5

// ApplyPaddleAccel moves velocity v one step towards target tv. Both paddles
// use it so they share the same feel:
//
//   - tv == 0: friction only, snapping to exactly 0 below stopEps
//   - |tv-v| < accel: snap to tv
//   - otherwise: v moves towards tv by accel*factor
func ApplyPaddleAccel(v, tv, accel, factor, friction, stopEps float64) float64 {
	if tv == 0 {
		v *= friction
		if math.Abs(v) < stopEps {
			v = 0
		}
		return v
	}
	delta := tv - v
	if math.Abs(delta) < accel {
		return tv
	}
	return v + Sign(delta)*accel*factor
}

// HumanTargetVelocity maps key state to the human paddle's target velocity.
// Holding both keys cancels out.
func HumanTargetVelocity(s Settings, in Input) float64 {
	switch {
	case in.Left && !in.Right:
		return -s.PlayerSpeed
	case in.Right && !in.Left:
		return s.PlayerSpeed
	}
	return 0
}

// StepHumanPaddle computes the human paddle's next velocity.
func StepHumanPaddle(s Settings, v float64, in Input) float64 {
	tv := HumanTargetVelocity(s, in)
	v = ApplyPaddleAccel(v, tv, s.PaddleAccel, 1, s.PaddleFriction, s.PaddleStopEpsilon)
	return Clamp(v, -s.PlayerSpeed, s.PlayerSpeed)
}

// AI drives the computer paddle through select, desire, smooth and clamp.
type AI struct {
	settings Settings
}

func NewAI(s Settings) *AI {
	return &AI{settings: s}
}

// ShouldTrack reports whether a ball is worth following: it moves towards the
// AI's end wall and is already in the AI's half.
func (a *AI) ShouldTrack(pos, vel Vec2) bool {
	return vel.Y < 0 && pos.Y < a.settings.ArenaHeight/2
}

// SelectTarget returns the tracked ball vertically closest to the paddle, or
// nil. Ties keep the earlier ball.
func (a *AI) SelectTarget(balls []*Ball, paddle *Paddle) *Ball {
	var best *Ball
	bestDist := math.Inf(1)
	for _, b := range balls {
		if !a.ShouldTrack(b.Position, b.Velocity) {
			continue
		}
		if d := math.Abs(b.Position.Y - paddle.Position.Y); d < bestDist {
			best, bestDist = b, d
		}
	}
	return best
}

// DesiredVelocity applies the thresholded proportional law. With no target
// the paddle drifts back to the center at a reduced cap.
func (a *AI) DesiredVelocity(target *Ball, paddle *Paddle, difficulty float64) float64 {
	s := a.settings
	aim := s.ArenaWidth / 2
	limit := s.AIMaxSpeed * driftCapFactor
	if target != nil {
		aim = target.Position.X
		limit = s.AIMaxSpeed * difficulty
	}

	diff := aim - paddle.Position.X
	if math.Abs(diff) <= s.ReactionBase/difficulty {
		return 0
	}
	return Sign(diff) * math.Min(math.Abs(diff)*s.AIGain, limit)
}

// Smooth moves the current velocity towards tv with the shared paddle law.
// The AI accelerates harder than the human by AIResponsiveness, and by the
// difficulty multiplier.
func (a *AI) Smooth(v, tv, difficulty float64) float64 {
	s := a.settings
	return ApplyPaddleAccel(v, tv, s.PaddleAccel*difficulty, s.AIResponsiveness, s.PaddleFriction, s.PaddleStopEpsilon)
}

// ClampVelocity bounds v to ±AIMaxSpeed·difficulty.
func (a *AI) ClampVelocity(v, difficulty float64) float64 {
	limit := a.settings.AIMaxSpeed * difficulty
	return Clamp(v, -limit, limit)
}

// Next runs the full pipeline for one tick and returns the AI paddle's new
// velocity.
func (a *AI) Next(balls []*Ball, paddle *Paddle, difficulty float64) float64 {
	target := a.SelectTarget(balls, paddle)
	tv := a.DesiredVelocity(target, paddle, difficulty)
	v := a.Smooth(paddle.Velocity, tv, difficulty)
	return a.ClampVelocity(v, difficulty)
}
