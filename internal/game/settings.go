package game

import (
	"log"
	"math"
	"time"
)

// Tuning holds every gameplay knob. Values are in arena units (pixels),
// seconds, and per-step factors where noted. It is loaded from YAML by the
// config package, so every field carries a yaml tag.
type Tuning struct {
	// Arena
	ArenaWidth       float64 `yaml:"arena_width"`
	ArenaHeight      float64 `yaml:"arena_height"`
	CornerRadius     float64 `yaml:"corner_radius"`
	CornerSegments   int     `yaml:"corner_segments"`
	SegmentThickness float64 `yaml:"segment_thickness"`
	WallThickness    float64 `yaml:"wall_thickness"`

	// Simulation
	Timestep            float64 `yaml:"timestep"`
	VelocityIterations  int     `yaml:"velocity_iterations"`
	PositionIterations  int     `yaml:"position_iterations"`
	MaxAccumulatedSteps int     `yaml:"max_accumulated_steps"`

	// Balls
	BallRadius     float64 `yaml:"ball_radius"`
	BaseSpeed      float64 `yaml:"base_speed"`
	MinSpeed       float64 `yaml:"min_speed"`
	MaxSpeed       float64 `yaml:"max_speed"`
	DecayThreshold float64 `yaml:"decay_threshold"`
	SpeedDecay     float64 `yaml:"speed_decay"` // per step, < 1
	MinAngle       float64 `yaml:"min_angle"`   // radians from horizontal
	LaunchAngle    float64 `yaml:"launch_angle"`

	// Paddles
	PaddleHalfWidth   float64 `yaml:"paddle_half_width"`
	PaddleHalfHeight  float64 `yaml:"paddle_half_height"`
	PaddleGap         float64 `yaml:"paddle_gap"` // distance from the brick field
	PlayerSpeed       float64 `yaml:"player_speed"`
	PaddleAccel       float64 `yaml:"paddle_accel"`    // velocity change per step
	PaddleFriction    float64 `yaml:"paddle_friction"` // per step, < 1
	PaddleStopEpsilon float64 `yaml:"paddle_stop_epsilon"`
	MomentumTransfer  float64 `yaml:"momentum_transfer"`
	MinVerticalSpeed  float64 `yaml:"min_vertical_speed"`

	// AI
	AIMaxSpeed       float64 `yaml:"ai_max_speed"`
	AIGain           float64 `yaml:"ai_gain"`
	ReactionBase     float64 `yaml:"reaction_base"`
	AIResponsiveness float64 `yaml:"ai_responsiveness"`

	// Difficulty
	MinDifficulty      float64 `yaml:"min_difficulty"`
	MaxDifficulty      float64 `yaml:"max_difficulty"`
	IncreaseRate       float64 `yaml:"increase_rate"`
	DecreaseRate       float64 `yaml:"decrease_rate"`
	DifficultyLerp     float64 `yaml:"difficulty_lerp"`
	DifficultyInterval float64 `yaml:"difficulty_interval"` // seconds of clock time

	// Bricks
	BrickRows        int     `yaml:"brick_rows"`
	BrickCols        int     `yaml:"brick_cols"`
	BrickWidth       float64 `yaml:"brick_width"`
	BrickHeight      float64 `yaml:"brick_height"`
	BrickGap         float64 `yaml:"brick_gap"`
	FieldMargin      float64 `yaml:"field_margin"` // distance from the end wall
	FillChance       float64 `yaml:"fill_chance"`
	MinCoverage      float64 `yaml:"min_coverage"`
	MaxBricksPerSide int     `yaml:"max_bricks_per_side"`
	BrickFadeDelay   float64 `yaml:"brick_fade_delay"`

	// Scripted events
	CountdownDuration float64 `yaml:"countdown_duration"`
	SplitTime         float64 `yaml:"split_time"`
	SpawnInterval     float64 `yaml:"spawn_interval"`
}

// DefaultTuning returns the standard match tuning.
func DefaultTuning() Tuning {
	return Tuning{
		ArenaWidth:       480,
		ArenaHeight:      720,
		CornerRadius:     24,
		CornerSegments:   16,
		SegmentThickness: 1,
		WallThickness:    20,

		Timestep:            1.0 / 60.0,
		VelocityIterations:  8,
		PositionIterations:  3,
		MaxAccumulatedSteps: 10,

		BallRadius:     7,
		BaseSpeed:      300,
		MinSpeed:       200,
		MaxSpeed:       620,
		DecayThreshold: 360,
		SpeedDecay:     0.995,
		MinAngle:       0.35,
		LaunchAngle:    math.Pi / 3,

		PaddleHalfWidth:   45,
		PaddleHalfHeight:  7,
		PaddleGap:         40,
		PlayerSpeed:       420,
		PaddleAccel:       35,
		PaddleFriction:    0.8,
		PaddleStopEpsilon: 5,
		MomentumTransfer:  0.25,
		MinVerticalSpeed:  90,

		AIMaxSpeed:       380,
		AIGain:           6,
		ReactionBase:     12,
		AIResponsiveness: 1.5,

		MinDifficulty:      0.5,
		MaxDifficulty:      2.0,
		IncreaseRate:       0.12,
		DecreaseRate:       0.06,
		DifficultyLerp:     0.15,
		DifficultyInterval: 2,

		BrickRows:        3,
		BrickCols:        8,
		BrickWidth:       50,
		BrickHeight:      16,
		BrickGap:         4,
		FieldMargin:      28,
		FillChance:       0.75,
		MinCoverage:      0.6,
		MaxBricksPerSide: 24,
		BrickFadeDelay:   0.15,

		CountdownDuration: 3,
		SplitTime:         30,
		SpawnInterval:     12,
	}
}

// Settings is the immutable per-match configuration: the tuning plus the
// geometry derived from it. It is computed once by NewSettings and passed by
// value afterwards.
type Settings struct {
	Tuning

	FieldWidth    float64
	FieldDepth    float64
	FieldLeft     float64
	AIFieldTop    float64
	HumanFieldTop float64
	AIPaddleY     float64
	HumanPaddleY  float64
}

// minDifficultyFloor keeps reaction thresholds finite.
const minDifficultyFloor = 0.05

// NewSettings validates t and derives the arena layout.
func NewSettings(t Tuning) Settings {
	d := DefaultTuning()
	if t.Timestep <= 0 {
		t.Timestep = d.Timestep
	}
	if t.MaxAccumulatedSteps < 1 {
		t.MaxAccumulatedSteps = d.MaxAccumulatedSteps
	}
	if t.CornerSegments < 1 {
		t.CornerSegments = d.CornerSegments
	}
	if t.MinDifficulty < minDifficultyFloor {
		log.Printf("[MATCH] min_difficulty %.3f too low, using %.2f", t.MinDifficulty, minDifficultyFloor)
		t.MinDifficulty = minDifficultyFloor
	}
	if t.MaxDifficulty < t.MinDifficulty {
		t.MaxDifficulty = t.MinDifficulty
	}
	if t.MinSpeed > t.MaxSpeed {
		t.MinSpeed, t.MaxSpeed = t.MaxSpeed, t.MinSpeed
	}
	t.BaseSpeed = Clamp(t.BaseSpeed, t.MinSpeed, t.MaxSpeed)
	if t.DecayThreshold < t.BaseSpeed {
		t.DecayThreshold = t.BaseSpeed
	}
	if t.BrickRows < 1 {
		t.BrickRows = d.BrickRows
	}
	if t.BrickCols < 1 {
		t.BrickCols = d.BrickCols
	}
	if cells := t.BrickRows * t.BrickCols; t.MaxBricksPerSide > cells || t.MaxBricksPerSide < 1 {
		t.MaxBricksPerSide = cells
	}

	s := Settings{Tuning: t}
	cols, rows := float64(t.BrickCols), float64(t.BrickRows)
	s.FieldWidth = cols*t.BrickWidth + (cols-1)*t.BrickGap
	s.FieldDepth = rows*t.BrickHeight + (rows-1)*t.BrickGap
	s.FieldLeft = (t.ArenaWidth - s.FieldWidth) / 2
	s.AIFieldTop = t.FieldMargin
	s.HumanFieldTop = t.ArenaHeight - t.FieldMargin - s.FieldDepth
	s.AIPaddleY = s.AIFieldTop + s.FieldDepth + t.PaddleGap
	s.HumanPaddleY = t.ArenaHeight - s.AIPaddleY
	return s
}

// DifficultyEvery returns the difficulty update cadence.
func (s Settings) DifficultyEvery() time.Duration {
	return time.Duration(s.DifficultyInterval * float64(time.Second))
}

// PaddleY returns the fixed y coordinate of a side's paddle.
func (s Settings) PaddleY(side Side) float64 {
	if side == SideAI {
		return s.AIPaddleY
	}
	return s.HumanPaddleY
}

// paddleWallMargin is the room left beyond one ball width between a paddle
// and a side wall.
const paddleWallMargin = 1

// PaddleRange returns the horizontal range of a paddle center. A ball always
// fits between the paddle and either side wall, so it is never pinned there.
func (s Settings) PaddleRange() (lo, hi float64) {
	gap := 2*s.BallRadius + paddleWallMargin
	lo, hi = s.PaddleHalfWidth+gap, s.ArenaWidth-s.PaddleHalfWidth-gap
	if lo > hi {
		lo = s.ArenaWidth / 2
		hi = lo
	}
	return lo, hi
}

// Center returns the arena center.
func (s Settings) Center() Vec2 {
	return Vec2{X: s.ArenaWidth / 2, Y: s.ArenaHeight / 2}
}

// CellCenter returns the world position of a brick grid cell on a side.
// Row 0 is the row nearest the side's end wall.
func (s Settings) CellCenter(side Side, row, col int) Vec2 {
	x := s.FieldLeft + float64(col)*(s.BrickWidth+s.BrickGap) + s.BrickWidth/2
	offset := float64(row)*(s.BrickHeight+s.BrickGap) + s.BrickHeight/2
	if side == SideAI {
		return Vec2{X: x, Y: s.AIFieldTop + offset}
	}
	return Vec2{X: x, Y: s.ArenaHeight - s.FieldMargin - offset}
}

// AwayFrom returns the vertical direction that moves away from side's end
// wall: +1 (down) for the AI at the top, -1 (up) for the human at the bottom.
func (s Settings) AwayFrom(side Side) float64 {
	if side == SideAI {
		return 1
	}
	return -1
}
