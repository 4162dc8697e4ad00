package game

import colorful "github.com/lucasb-eyer/go-colorful"

// Difficulty band anchors, from very easy to extreme.
var (
	colorVeryEasy = colorful.Hsl(190, 0.80, 0.55)
	colorEasy     = colorful.Hsl(155, 0.70, 0.52)
	colorNormal   = colorful.Hsl(120, 0.60, 0.50)
	colorHard     = colorful.Hsl(40, 0.90, 0.55)
	colorExtreme  = colorful.Hsl(0, 0.85, 0.50)
)

// DifficultyColor maps a multiplier to a hex color. The range is cut into
// four bands, each blended in RGB between two anchors:
//
//	very easy    MinDifficulty .. midpoint of MinDifficulty and 1
//	easy/normal  that midpoint .. 1
//	normal/hard  1 .. midpoint of 1 and MaxDifficulty
//	extreme      that midpoint .. MaxDifficulty
func DifficultyColor(s Settings, multiplier float64) string {
	lo, hi := s.MinDifficulty, s.MaxDifficulty
	m := Clamp(multiplier, lo, hi)
	stops := []float64{lo, (lo + 1) / 2, 1, (1 + hi) / 2, hi}
	anchors := []colorful.Color{colorVeryEasy, colorEasy, colorNormal, colorHard, colorExtreme}

	c := anchors[len(anchors)-1]
	for i := 1; i < len(stops); i++ {
		if m <= stops[i] {
			c = blend(anchors[i-1], anchors[i], stops[i-1], stops[i], m)
			break
		}
	}
	return c.Clamped().Hex()
}

func blend(a, b colorful.Color, from, to, m float64) colorful.Color {
	if to <= from {
		return b
	}
	return a.BlendRgb(b, Clamp((m-from)/(to-from), 0, 1))
}
