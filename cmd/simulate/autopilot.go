package main

import (
	"math"

	"github.com/playmatatu/brickduel/internal/game"
)

// autopilot stands in for the human: it chases the ball that will reach the
// bottom paddle first, or the lowest ball when none is incoming.
func autopilot(w *game.World, s game.Settings) game.Input {
	paddle := w.Paddle(game.SideHuman)
	if paddle == nil {
		return game.Input{}
	}

	var target *game.Ball
	for _, b := range w.Balls() {
		incoming := b.Velocity.Y > 0
		switch {
		case target == nil:
			target = b
		case incoming && target.Velocity.Y <= 0:
			target = b
		case incoming == (target.Velocity.Y > 0) && b.Position.Y > target.Position.Y:
			target = b
		}
	}
	if target == nil {
		return game.Input{}
	}

	dx := target.Position.X - paddle.Position.X
	if math.Abs(dx) < paddle.HalfWidth*0.3 {
		return game.Input{}
	}
	return game.Input{Left: dx < 0, Right: dx > 0}
}
