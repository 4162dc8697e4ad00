package game

// EventKind names a per-tick event.
type EventKind string

const (
	// Collision events, one per begin-contact.
	EventBrickHit  EventKind = "brickHit"
	EventPaddleHit EventKind = "paddleHit"
	EventWallHit   EventKind = "wallHit"

	// Lifecycle events.
	EventBrickDestroyed EventKind = "brickDestroyed"
	EventBrickSpawned   EventKind = "brickSpawned"
	EventBallSplit      EventKind = "ballSplit"
	EventPhaseChanged   EventKind = "phaseChanged"
	EventMatchOver      EventKind = "matchOver"
)

// Event is one entry of the list returned by Match.Step. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind     EventKind `json:"kind" msgpack:"kind"`
	BallID   int       `json:"ballId,omitempty" msgpack:"ballId,omitempty"`
	BrickID  int       `json:"brickId,omitempty" msgpack:"brickId,omitempty"`
	WallID   int       `json:"wallId,omitempty" msgpack:"wallId,omitempty"`
	PaddleID int       `json:"paddleId,omitempty" msgpack:"paddleId,omitempty"`
	Side     Side      `json:"side" msgpack:"side"`
	// IsPlayerTarget is set on brick events: the brick is in the human's
	// field, so breaking it scores for the AI.
	IsPlayerTarget bool    `json:"isPlayerTarget,omitempty" msgpack:"isPlayerTarget,omitempty"`
	Speed          float64 `json:"speed,omitempty" msgpack:"speed,omitempty"`
	Phase          Phase   `json:"phase,omitempty" msgpack:"phase,omitempty"`
	Position       Vec2    `json:"position" msgpack:"position"`
}
