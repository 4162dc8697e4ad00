package game

import "math"

// momentumSpeedLimit is the fraction of MaxSpeed above which a paddle no
// longer adds momentum to a ball.
const momentumSpeedLimit = 0.9

// Score counts bricks broken by each side.
type Score struct {
	Human int `json:"human" msgpack:"human"`
	AI    int `json:"ai" msgpack:"ai"`
}

// Add credits one broken brick to side.
func (s *Score) Add(side Side) {
	if side == SideAI {
		s.AI++
	} else {
		s.Human++
	}
}

// Of returns side's score.
func (s Score) Of(side Side) int {
	if side == SideAI {
		return s.AI
	}
	return s.Human
}

// Resolver turns the world's begin-contacts into gameplay effects.
type Resolver struct {
	settings Settings
}

func NewResolver(s Settings) *Resolver {
	return &Resolver{settings: s}
}

// Resolve handles one step's contacts in detection order and returns the
// collision events they produce. now is the game time after the step.
func (r *Resolver) Resolve(w *World, contacts []WorldContact, now float64) []Event {
	var events []Event
	for _, c := range contacts {
		ball := w.Entity(c.BallID)
		other := w.Entity(c.OtherID)
		if ball == nil || other == nil || ball.Kind != KindBall {
			continue
		}
		switch c.OtherKind {
		case KindBrick:
			if ev, ok := r.hitBrick(ball.Ball, other.Brick, now); ok {
				events = append(events, ev)
			}
		case KindPaddle:
			events = append(events, r.hitPaddle(w, ball.Ball, other.Paddle, c.Speed))
		case KindWall:
			events = append(events, Event{
				Kind:     EventWallHit,
				BallID:   ball.ID,
				WallID:   other.ID,
				Speed:    c.Speed,
				Position: ball.Ball.Position,
			})
		}
	}
	return events
}

// hitBrick starts the fade of a brick. A brick that is already fading still
// reflects balls but produces no further events.
func (r *Resolver) hitBrick(ball *Ball, brick *Brick, now float64) (Event, bool) {
	if brick.Fading {
		return Event{}, false
	}
	brick.Fading = true
	brick.RemoveAt = now + r.settings.BrickFadeDelay
	return Event{
		Kind:           EventBrickHit,
		BallID:         ball.ID,
		BrickID:        brick.ID,
		Side:           brick.Owner,
		IsPlayerTarget: brick.PlayerOwned(),
		Position:       brick.Position,
	}, true
}

// hitPaddle adds a share of the paddle's movement to the ball and makes sure
// the ball leaves the paddle with a usable vertical speed.
func (r *Resolver) hitPaddle(w *World, ball *Ball, paddle *Paddle, speed float64) Event {
	s := r.settings
	v := ball.Velocity

	if v.Length() < momentumSpeedLimit*s.MaxSpeed {
		momentum := (paddle.Position.X - paddle.PrevX) / s.Timestep
		v.X += momentum * s.MomentumTransfer
	}
	if math.Abs(v.Y) < s.MinVerticalSpeed {
		v.Y = s.MinVerticalSpeed * s.AwayFrom(paddle.Side)
	}
	if v != ball.Velocity {
		w.SetBallVelocity(ball.ID, v)
	}

	return Event{
		Kind:     EventPaddleHit,
		BallID:   ball.ID,
		PaddleID: paddle.ID,
		Side:     paddle.Side,
		Speed:    speed,
		Position: ball.Position,
	}
}

// Expire removes every fading brick whose delay has run out, credits the
// brick to the owner's opponent, and returns the destruction events in id
// order.
func (r *Resolver) Expire(w *World, now float64, score *Score) []Event {
	var events []Event
	for _, e := range w.Query(KindBrick) {
		b := e.Brick
		if !b.Fading || now < b.RemoveAt {
			continue
		}
		scorer := b.Owner.Opponent()
		score.Add(scorer)
		w.Remove(b.ID)
		events = append(events, Event{
			Kind:           EventBrickDestroyed,
			BrickID:        b.ID,
			Side:           scorer,
			IsPlayerTarget: b.PlayerOwned(),
			Position:       b.Position,
		})
	}
	return events
}

// CancelFades drops every pending removal. Used on reset so no timer acts on
// a stale match.
func (r *Resolver) CancelFades(w *World) {
	for _, b := range w.Query(KindBrick) {
		b.Brick.Fading = false
		b.Brick.RemoveAt = 0
	}
}
