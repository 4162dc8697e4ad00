package game

import "fmt"

// Side identifies one half of the arena.
type Side uint8

const (
	SideHuman Side = iota // bottom
	SideAI                // top
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideHuman {
		return SideAI
	}
	return SideHuman
}

func (s Side) String() string {
	if s == SideAI {
		return "ai"
	}
	return "human"
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "human":
		*s = SideHuman
	case "ai":
		*s = SideAI
	default:
		return fmt.Errorf("unknown side %q", string(b))
	}
	return nil
}

// EntityKind tags the payload of an Entity.
type EntityKind uint8

const (
	KindBall EntityKind = iota
	KindPaddle
	KindBrick
	KindWall
)

func (k EntityKind) String() string {
	switch k {
	case KindBall:
		return "ball"
	case KindPaddle:
		return "paddle"
	case KindBrick:
		return "brick"
	case KindWall:
		return "wall"
	}
	return "unknown"
}

// Ball is a simulated ball.
type Ball struct {
	ID       int
	Position Vec2
	Velocity Vec2
	Radius   float64
}

// Paddle is a kinematic paddle. Only its horizontal position changes.
type Paddle struct {
	ID         int
	Side       Side
	Position   Vec2
	HalfWidth  float64
	HalfHeight float64
	Velocity   float64 // horizontal
	PrevX      float64 // x before the last physics step
}

// Brick is a static brick in one side's field. Breaking a brick scores for
// the owner's opponent: each side's bricks are the other side's target.
type Brick struct {
	ID       int
	Row      int
	Col      int
	Position Vec2
	Owner    Side
	Fading   bool
	RemoveAt float64 // game time at which a fading brick is removed
}

// PlayerOwned reports whether the brick sits in the human's field, i.e. it
// counts towards the AI's remaining targets.
func (b *Brick) PlayerOwned() bool {
	return b.Owner == SideHuman
}

// Wall is a static boundary piece.
type Wall struct {
	ID         int
	Position   Vec2
	Angle      float64
	HalfWidth  float64
	HalfHeight float64
	Corner     bool
}

// Entity is one registry record. Exactly one payload pointer matches Kind.
type Entity struct {
	ID     int
	Kind   EntityKind
	Body   BodyID
	Ball   *Ball
	Paddle *Paddle
	Brick  *Brick
	Wall   *Wall
}
