package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePatternCoverage(t *testing.T) {
	s := NewSettings(DefaultTuning())
	cells := s.BrickRows * s.BrickCols
	minimum := int(math.Ceil(s.MinCoverage * float64(cells)))

	for seed := uint64(0); seed < 200; seed++ {
		p := GeneratePattern(s, NewRand(seed))
		require.Len(t, p, s.BrickRows)
		assert.GreaterOrEqual(t, p.Count(), minimum, "seed %d", seed)
		assert.LessOrEqual(t, p.Count(), s.MaxBricksPerSide, "seed %d", seed)
	}
}

func TestGeneratePatternRespectsCap(t *testing.T) {
	tune := DefaultTuning()
	tune.FillChance = 1
	tune.MaxBricksPerSide = 10
	s := NewSettings(tune)

	assert.Equal(t, 10, GeneratePattern(s, NewRand(9)).Count())
}

func TestGeneratePatternIsSeeded(t *testing.T) {
	s := NewSettings(DefaultTuning())
	assert.Equal(t, GeneratePattern(s, NewRand(42)), GeneratePattern(s, NewRand(42)))
}

func TestPlaceBricksMirrors(t *testing.T) {
	w := newTestWorld(t)
	s := w.Settings()
	PlaceBricks(w, GeneratePattern(s, NewRand(5)))

	human, ai := w.Bricks(SideHuman), w.Bricks(SideAI)
	require.Equal(t, len(human), len(ai))

	byCell := make(map[Cell]*Brick)
	for _, b := range ai {
		byCell[Cell{b.Row, b.Col}] = b
	}
	for _, h := range human {
		a, ok := byCell[Cell{h.Row, h.Col}]
		require.True(t, ok, "cell %d,%d", h.Row, h.Col)
		assert.Equal(t, h.Position.X, a.Position.X)
		assert.InDelta(t, s.ArenaHeight, h.Position.Y+a.Position.Y, 1e-9)
		assert.Greater(t, h.Position.Y, s.HumanPaddleY)
		assert.Less(t, a.Position.Y, s.AIPaddleY)
	}
}

func fillSide(w *World, side Side, skip Cell) {
	s := w.Settings()
	for r := 0; r < s.BrickRows; r++ {
		for c := 0; c < s.BrickCols; c++ {
			if (Cell{r, c}) != skip {
				w.AddBrick(side, r, c)
			}
		}
	}
}

func TestSpawnBricksFillsFreeCell(t *testing.T) {
	w := newTestWorld(t)
	free := Cell{Row: 1, Col: 4}
	fillSide(w, SideHuman, free)
	fillSide(w, SideAI, Cell{Row: -1})

	spawned := SpawnBricks(w, NewRand(1))
	require.Len(t, spawned, 1, "the full AI side gets nothing")
	assert.Equal(t, SideHuman, spawned[0].Owner)
	assert.Equal(t, free, Cell{spawned[0].Row, spawned[0].Col})

	assert.Empty(t, SpawnBricks(w, NewRand(1)))
}

func TestSpawnBricksAvoidsBalls(t *testing.T) {
	w := newTestWorld(t)
	s := w.Settings()
	free := Cell{Row: 0, Col: 0}
	fillSide(w, SideAI, free)
	fillSide(w, SideHuman, Cell{Row: -1})

	w.AddBall(s.CellCenter(SideAI, free.Row, free.Col), Vec2{Y: 300})
	assert.Empty(t, SpawnBricks(w, NewRand(1)))
}

func TestSpawnBricksHonorsCap(t *testing.T) {
	tune := DefaultTuning()
	tune.MaxBricksPerSide = 2
	w := NewWorld(NewSettings(tune), NewImpulseBackend())
	w.Init()
	w.AddBrick(SideHuman, 0, 0)
	w.AddBrick(SideHuman, 0, 1)

	spawned := SpawnBricks(w, NewRand(3))
	require.Len(t, spawned, 1)
	assert.Equal(t, SideAI, spawned[0].Owner)
}
