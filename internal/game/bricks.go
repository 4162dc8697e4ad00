package game

import (
	"math"
	"math/rand/v2"
)

// Cell is a brick grid coordinate.
type Cell struct {
	Row int
	Col int
}

// Pattern is a rows×cols occupancy grid. Both fields are built from the same
// pattern, each with row 0 against its own end wall, so they mirror each
// other across the center line.
type Pattern [][]bool

// Count returns the number of filled cells.
func (p Pattern) Count() int {
	n := 0
	for _, row := range p {
		for _, filled := range row {
			if filled {
				n++
			}
		}
	}
	return n
}

// NewRand returns the match's seeded generator.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GeneratePattern fills each cell with FillChance, then tops up random empty
// cells until MinCoverage is met, and trims random cells above
// MaxBricksPerSide.
func GeneratePattern(s Settings, rng *rand.Rand) Pattern {
	rows, cols := s.BrickRows, s.BrickCols
	p := make(Pattern, rows)
	var empty, filled []Cell
	for r := 0; r < rows; r++ {
		p[r] = make([]bool, cols)
		for c := 0; c < cols; c++ {
			if rng.Float64() < s.FillChance {
				p[r][c] = true
				filled = append(filled, Cell{r, c})
			} else {
				empty = append(empty, Cell{r, c})
			}
		}
	}

	need := int(math.Ceil(s.MinCoverage * float64(rows*cols)))
	need = min(need, s.MaxBricksPerSide)
	for len(filled) < need && len(empty) > 0 {
		i := rng.IntN(len(empty))
		cell := empty[i]
		empty = append(empty[:i], empty[i+1:]...)
		p[cell.Row][cell.Col] = true
		filled = append(filled, cell)
	}
	for len(filled) > s.MaxBricksPerSide {
		i := rng.IntN(len(filled))
		cell := filled[i]
		filled = append(filled[:i], filled[i+1:]...)
		p[cell.Row][cell.Col] = false
	}
	return p
}

// PlaceBricks creates both fields from one pattern, human side first.
func PlaceBricks(w *World, p Pattern) {
	for _, side := range []Side{SideHuman, SideAI} {
		for r, row := range p {
			for c, filled := range row {
				if filled {
					w.AddBrick(side, r, c)
				}
			}
		}
	}
}

// emptyCells lists the free cells of side's field in row-major order. A cell
// is not free if a brick occupies it or a ball overlaps it.
func emptyCells(w *World, side Side) []Cell {
	s := w.Settings()
	taken := make(map[Cell]bool)
	for _, b := range w.Bricks(side) {
		taken[Cell{b.Row, b.Col}] = true
	}
	balls := w.Balls()

	var cells []Cell
	for r := 0; r < s.BrickRows; r++ {
		for c := 0; c < s.BrickCols; c++ {
			cell := Cell{r, c}
			if taken[cell] || cellBlocked(s, s.CellCenter(side, r, c), balls) {
				continue
			}
			cells = append(cells, cell)
		}
	}
	return cells
}

func cellBlocked(s Settings, center Vec2, balls []*Ball) bool {
	hw, hh := s.BrickWidth/2, s.BrickHeight/2
	for _, b := range balls {
		d := b.Position.Minus(center)
		if math.Abs(d.X) < hw+b.Radius && math.Abs(d.Y) < hh+b.Radius {
			return true
		}
	}
	return false
}

// SpawnBricks adds at most one brick per side, in a uniformly random free
// cell, to every side still under MaxBricksPerSide.
func SpawnBricks(w *World, rng *rand.Rand) []*Brick {
	var spawned []*Brick
	for _, side := range []Side{SideHuman, SideAI} {
		if len(w.Bricks(side)) >= w.Settings().MaxBricksPerSide {
			continue
		}
		cells := emptyCells(w, side)
		if len(cells) == 0 {
			continue
		}
		cell := cells[rng.IntN(len(cells))]
		spawned = append(spawned, w.AddBrick(side, cell.Row, cell.Col))
	}
	return spawned
}
