package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"
)

// ErrInvalidPhase is returned by commands that do not apply to the current
// phase.
var ErrInvalidPhase = errors.New("command not valid in current phase")

// Split velocity factors for the duplicated ball.
const (
	splitFactorX = 0.8
	splitFactorY = 0.6
)

// launchOffset is how far from the center line the opening balls start.
const launchOffset = 40

// Match is the context of one duel: settings, world, subsystems, RNG, clock
// and state. It is not safe for concurrent use; callers serialize access.
type Match struct {
	settings   Settings
	seed       uint64
	rng        *rand.Rand
	clock      Clock
	ownClock   *ManualClock // set when the match advances its own clock
	world      *World
	resolver   *Resolver
	ai         *AI
	difficulty *Difficulty
	state      MatchState
	input      Input
}

// NewMatch creates a match in the menu phase. With a nil clock the match
// runs on a manual clock advanced by one timestep per playing tick, which
// makes a run fully determined by seed and inputs.
func NewMatch(s Settings, seed uint64, clock Clock) *Match {
	m := &Match{
		settings: s,
		seed:     seed,
		rng:      NewRand(seed),
		clock:    clock,
		resolver: NewResolver(s),
		ai:       NewAI(s),
	}
	if clock == nil {
		m.ownClock = NewManualClock(time.Unix(0, 0))
		m.clock = m.ownClock
	}
	m.difficulty = NewDifficulty(s, m.clock.Now())
	m.InitMatch()
	return m
}

// InitMatch builds a fresh world: boundary, paddles, mirrored brick fields
// and two balls launched in mirrored directions. The match returns to the
// menu phase.
func (m *Match) InitMatch() {
	s := m.settings
	w := NewWorld(s, NewImpulseBackend())
	w.Init()
	w.AddPaddle(SideHuman)
	w.AddPaddle(SideAI)
	PlaceBricks(w, GeneratePattern(s, m.rng))

	dir := 1.0
	if m.rng.IntN(2) == 0 {
		dir = -1
	}
	center := s.Center()
	vel := FromAngle(s.LaunchAngle, s.BaseSpeed).TimesVec(dir, 1)
	w.AddBall(center.Plus(Vec2{Y: launchOffset}), vel)
	w.AddBall(center.Minus(Vec2{Y: launchOffset}), vel.Times(-1))

	m.world = w
	m.state = MatchState{Phase: PhaseMenu}
	m.input = Input{}
	m.difficulty.Reset(m.clock.Now())
}

// StartCountdown moves from the menu to the countdown.
func (m *Match) StartCountdown() error {
	if m.state.Phase != PhaseMenu {
		return fmt.Errorf("start countdown from %s: %w", m.state.Phase, ErrInvalidPhase)
	}
	m.state.Phase = PhaseCountdown
	m.state.Countdown = m.settings.CountdownDuration
	log.Printf("[MATCH] countdown started (%.1fs)", m.settings.CountdownDuration)
	return nil
}

// ResetMatch clears pending brick removals and rebuilds the match in the
// menu phase.
func (m *Match) ResetMatch() {
	if m.world != nil {
		m.resolver.CancelFades(m.world)
	}
	m.InitMatch()
	log.Printf("[MATCH] reset")
}

// SetPaused pauses or resumes play. Asking for the state the match is
// already in is a no-op.
func (m *Match) SetPaused(paused bool) error {
	switch {
	case paused && m.state.Phase == PhasePlaying:
		m.state.Phase = PhasePaused
	case !paused && m.state.Phase == PhasePaused:
		m.state.Phase = PhasePlaying
	case paused && m.state.Phase == PhasePaused, !paused && m.state.Phase == PhasePlaying:
		return nil
	default:
		return fmt.Errorf("set paused=%t from %s: %w", paused, m.state.Phase, ErrInvalidPhase)
	}
	return nil
}

// SetInput records the human key state used from the next tick on.
func (m *Match) SetInput(in Input) {
	m.input = in
}

func (m *Match) Settings() Settings { return m.settings }
func (m *Match) World() *World { return m.world }
func (m *Match) State() MatchState { return m.state }
func (m *Match) Phase() Phase { return m.state.Phase }
func (m *Match) Seed() uint64 { return m.seed }

// Difficulty returns the current AI multiplier.
func (m *Match) Difficulty() float64 { return m.difficulty.Multiplier() }

// Remaining returns the number of target bricks each side still has to
// clear. The human's targets sit in the AI's field and vice versa.
func (m *Match) Remaining() (human, ai int) {
	return len(m.world.Bricks(SideAI)), len(m.world.Bricks(SideHuman))
}

// Step runs exactly one fixed tick and returns its events. Outside the
// countdown and playing phases it does nothing.
func (m *Match) Step() []Event {
	switch m.state.Phase {
	case PhaseCountdown:
		return m.stepCountdown()
	case PhasePlaying:
		return m.stepPlaying()
	}
	return nil
}

func (m *Match) stepCountdown() []Event {
	m.state.Countdown -= m.settings.Timestep
	if m.state.Countdown > 0 {
		return nil
	}
	m.state.Countdown = 0
	m.state.Phase = PhasePlaying
	m.difficulty.Reset(m.clock.Now())
	log.Printf("[MATCH] playing")
	return []Event{{Kind: EventPhaseChanged, Phase: PhasePlaying}}
}

// stepPlaying is the per-tick pipeline: input, AI, physics, collisions,
// scripted events, speed governor, difficulty, win check.
func (m *Match) stepPlaying() []Event {
	s := m.settings
	w := m.world

	if p := w.Paddle(SideHuman); p != nil {
		w.SetPaddleVelocity(p.ID, StepHumanPaddle(s, p.Velocity, m.input))
	}
	if p := w.Paddle(SideAI); p != nil {
		w.SetPaddleVelocity(p.ID, m.ai.Next(w.Balls(), p, m.difficulty.Multiplier()))
	}

	contacts := w.Step(s.Timestep)
	m.state.Elapsed += s.Timestep
	m.state.Ticks++
	if m.ownClock != nil {
		m.ownClock.Advance(time.Duration(s.Timestep * float64(time.Second)))
	}

	events := m.resolver.Resolve(w, contacts, m.state.Elapsed)
	events = append(events, m.resolver.Expire(w, m.state.Elapsed, &m.state.Score)...)
	events = append(events, m.checkSplit()...)
	events = append(events, m.checkSpawn()...)

	governBalls(w)

	human, ai := m.Remaining()
	m.difficulty.Update(m.clock.Now(), ai, human)

	return append(events, m.checkWin()...)
}

// checkSplit duplicates one ball of the losing side once SplitTime has
// passed. It runs at most once per match.
func (m *Match) checkSplit() []Event {
	if m.state.SplitDone || m.state.Elapsed < m.settings.SplitTime {
		return nil
	}
	m.state.SplitDone = true
	m.state.LastSpawn = m.state.Elapsed

	loser := SideHuman
	if m.state.Score.AI < m.state.Score.Human {
		loser = SideAI
	}
	src := m.splitSource(loser)
	if src == nil {
		return nil
	}

	s := m.settings
	vel := Vec2{X: -src.Velocity.X * splitFactorX, Y: -src.Velocity.Y * splitFactorY}
	pos := src.Position.Plus(vel.WithLength(2*src.Radius + 1))
	pos.X = Clamp(pos.X, src.Radius+1, s.ArenaWidth-src.Radius-1)
	pos.Y = Clamp(pos.Y, src.Radius+1, s.ArenaHeight-src.Radius-1)
	ball := m.world.AddBall(pos, vel)

	log.Printf("[MATCH] ball %d split from %d on %s side", ball.ID, src.ID, loser)
	return []Event{{Kind: EventBallSplit, BallID: ball.ID, Side: loser, Position: pos}}
}

// splitSource picks the ball in side's half closest to side's paddle,
// falling back to the first ball.
func (m *Match) splitSource(side Side) *Ball {
	balls := m.world.Balls()
	if len(balls) == 0 {
		return nil
	}
	s := m.settings
	paddleY := s.PaddleY(side)
	var best *Ball
	bestDist := 0.0
	for _, b := range balls {
		inHalf := b.Position.Y > s.ArenaHeight/2
		if side == SideAI {
			inHalf = b.Position.Y < s.ArenaHeight/2
		}
		if !inHalf {
			continue
		}
		d := b.Position.Y - paddleY
		if d < 0 {
			d = -d
		}
		if best == nil || d < bestDist {
			best, bestDist = b, d
		}
	}
	if best == nil {
		best = balls[0]
	}
	return best
}

// checkSpawn adds bricks every SpawnInterval once the split has happened.
func (m *Match) checkSpawn() []Event {
	if !m.state.SplitDone || m.state.Elapsed-m.state.LastSpawn < m.settings.SpawnInterval {
		return nil
	}
	m.state.LastSpawn = m.state.Elapsed
	var events []Event
	for _, b := range SpawnBricks(m.world, m.rng) {
		events = append(events, Event{
			Kind:           EventBrickSpawned,
			BrickID:        b.ID,
			Side:           b.Owner,
			IsPlayerTarget: b.PlayerOwned(),
			Position:       b.Position,
		})
	}
	return events
}

// checkWin ends the match as soon as either side has no targets left. The
// side that cleared its targets wins; if both clear on the same tick the
// higher score wins and an equal score is a draw.
func (m *Match) checkWin() []Event {
	if m.state.Phase == PhaseOver {
		return nil
	}
	human, ai := m.Remaining()
	if human > 0 && ai > 0 {
		return nil
	}

	var winner *Side
	switch {
	case human == 0 && ai > 0:
		winner = sidePtr(SideHuman)
	case ai == 0 && human > 0:
		winner = sidePtr(SideAI)
	case m.state.Score.Human > m.state.Score.AI:
		winner = sidePtr(SideHuman)
	case m.state.Score.AI > m.state.Score.Human:
		winner = sidePtr(SideAI)
	}
	m.state.Winner = winner
	m.state.Phase = PhaseOver

	ev := Event{Kind: EventMatchOver, Phase: PhaseOver}
	if winner != nil {
		ev.Side = *winner
		log.Printf("[MATCH] over after %.1fs, %s wins %d-%d", m.state.Elapsed, *winner, m.state.Score.Human, m.state.Score.AI)
	} else {
		log.Printf("[MATCH] over after %.1fs, draw", m.state.Elapsed)
	}
	return []Event{{Kind: EventPhaseChanged, Phase: PhaseOver}, ev}
}

func sidePtr(s Side) *Side {
	return &s
}

// Snapshot returns a read-only copy of everything a renderer needs.
func (m *Match) Snapshot() Snapshot {
	human, ai := m.Remaining()
	snap := Snapshot{
		Phase:          m.state.Phase,
		Score:          m.state.Score,
		Elapsed:        fix(m.state.Elapsed),
		Countdown:      fix(m.state.Countdown),
		Difficulty:     fix(m.difficulty.Multiplier()),
		Color:          m.difficulty.Color(),
		HumanRemaining: human,
		AIRemaining:    ai,
		Winner:         m.state.Winner,
	}
	for _, b := range m.world.Balls() {
		snap.Balls = append(snap.Balls, BallView{
			ID:       b.ID,
			Position: b.Position.Fixed(),
			Velocity: b.Velocity.Fixed(),
			Radius:   b.Radius,
		})
	}
	for _, side := range []Side{SideHuman, SideAI} {
		p := m.world.Paddle(side)
		if p == nil {
			continue
		}
		snap.Paddles = append(snap.Paddles, PaddleView{
			ID:         p.ID,
			Side:       p.Side,
			Position:   p.Position.Fixed(),
			HalfWidth:  p.HalfWidth,
			HalfHeight: p.HalfHeight,
			Velocity:   fix(p.Velocity),
		})
	}
	for _, e := range m.world.Query(KindBrick) {
		b := e.Brick
		snap.Bricks = append(snap.Bricks, BrickView{
			ID:       b.ID,
			Row:      b.Row,
			Col:      b.Col,
			Owner:    b.Owner,
			Position: b.Position.Fixed(),
			Fading:   b.Fading,
		})
	}
	return snap
}

// Summary returns the final score/time record.
func (m *Match) Summary() Summary {
	return Summary{
		Score:   m.state.Score,
		Elapsed: fix(m.state.Elapsed),
		Winner:  m.state.Winner,
		Seed:    m.seed,
	}
}
