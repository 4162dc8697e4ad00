package game

// Phase represents the current stage of a match
type Phase string

const (
	PhaseMenu      Phase = "MENU"
	PhaseCountdown Phase = "COUNTDOWN"
	PhasePlaying   Phase = "PLAYING"
	PhasePaused    Phase = "PAUSED"
	PhaseOver      Phase = "OVER"
)

// MatchState is the mutable match bookkeeping owned by the orchestrator.
type MatchState struct {
	Phase     Phase
	Elapsed   float64 // seconds of play, advanced only while playing
	Countdown float64 // seconds left before play starts
	Score     Score
	SplitDone bool
	LastSpawn float64
	Winner    *Side
	Ticks     uint64
}

// BallView, PaddleView and BrickView are the read-only entity shapes handed
// to renderers and clients.
type BallView struct {
	ID       int     `json:"id" msgpack:"id"`
	Position Vec2    `json:"position" msgpack:"position"`
	Velocity Vec2    `json:"velocity" msgpack:"velocity"`
	Radius   float64 `json:"radius" msgpack:"radius"`
}

type PaddleView struct {
	ID         int     `json:"id" msgpack:"id"`
	Side       Side    `json:"side" msgpack:"side"`
	Position   Vec2    `json:"position" msgpack:"position"`
	HalfWidth  float64 `json:"halfWidth" msgpack:"halfWidth"`
	HalfHeight float64 `json:"halfHeight" msgpack:"halfHeight"`
	Velocity   float64 `json:"velocity" msgpack:"velocity"`
}

type BrickView struct {
	ID       int  `json:"id" msgpack:"id"`
	Row      int  `json:"row" msgpack:"row"`
	Col      int  `json:"col" msgpack:"col"`
	Owner    Side `json:"owner" msgpack:"owner"`
	Position Vec2 `json:"position" msgpack:"position"`
	Fading   bool `json:"fading" msgpack:"fading"`
}

// Snapshot is the read-only view of a match.
type Snapshot struct {
	Phase          Phase        `json:"phase" msgpack:"phase"`
	Score          Score        `json:"score" msgpack:"score"`
	Elapsed        float64      `json:"elapsed" msgpack:"elapsed"`
	Countdown      float64      `json:"countdown" msgpack:"countdown"`
	Difficulty     float64      `json:"difficulty" msgpack:"difficulty"`
	Color          string       `json:"color" msgpack:"color"`
	HumanRemaining int          `json:"humanRemaining" msgpack:"humanRemaining"`
	AIRemaining    int          `json:"aiRemaining" msgpack:"aiRemaining"`
	Winner         *Side        `json:"winner,omitempty" msgpack:"winner,omitempty"`
	Balls          []BallView   `json:"balls" msgpack:"balls"`
	Paddles        []PaddleView `json:"paddles" msgpack:"paddles"`
	Bricks         []BrickView  `json:"bricks" msgpack:"bricks"`
}

// Summary is the final score/time record handed to the persistence sink.
type Summary struct {
	Score   Score   `json:"score"`
	Elapsed float64 `json:"elapsed"`
	Winner  *Side   `json:"winner,omitempty"`
	Seed    uint64  `json:"seed"`
}
