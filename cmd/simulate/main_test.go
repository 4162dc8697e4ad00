package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/brickduel/internal/game"
)

func TestAutopilotChasesIncomingBall(t *testing.T) {
	s := game.NewSettings(game.DefaultTuning())
	w := game.NewWorld(s, game.NewImpulseBackend())
	w.Init()
	w.AddPaddle(game.SideHuman)
	w.AddPaddle(game.SideAI)

	assert.Equal(t, game.Input{}, autopilot(w, s), "no balls, no input")

	// The lower ball is moving away; the incoming one wins.
	w.AddBall(game.Vec2{X: s.ArenaWidth - 40, Y: s.HumanPaddleY - 60}, game.Vec2{Y: -200})
	w.AddBall(game.Vec2{X: 40, Y: s.Center().Y}, game.Vec2{Y: 200})
	assert.Equal(t, game.Input{Left: true}, autopilot(w, s))
}

func TestRunIsDeterministic(t *testing.T) {
	tune := game.DefaultTuning()
	tune.CountdownDuration = 0
	s := game.NewSettings(tune)

	a := run(s, 9, 20, true)
	b := run(s, 9, 20, true)
	require.Equal(t, a.Summary, b.Summary)
	assert.Equal(t, a.Ticks, b.Ticks)
	assert.Equal(t, a.Events, b.Events)
	assert.Equal(t, uint64(9), a.Seed)
	assert.Positive(t, a.Events["paddleHit"])
}
