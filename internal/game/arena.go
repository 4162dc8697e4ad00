package game

import "math"

// WallPiece is one static box of the arena boundary.
type WallPiece struct {
	Position   Vec2
	Angle      float64
	HalfWidth  float64
	HalfHeight float64
	Corner     bool
}

// cornerArc describes one rounded inside corner: the arc center and the
// angle range it sweeps (screen coordinates, y grows downwards).
type cornerArc struct {
	Center     Vec2
	StartAngle float64
	EndAngle   float64
}

// cornerArcs returns the four corner arcs in the order top-left, top-right,
// bottom-right, bottom-left.
func cornerArcs(s Settings) [4]cornerArc {
	w, h, r := s.ArenaWidth, s.ArenaHeight, s.CornerRadius
	return [4]cornerArc{
		{Center: Vec2{X: r, Y: r}, StartAngle: math.Pi, EndAngle: 1.5 * math.Pi},
		{Center: Vec2{X: w - r, Y: r}, StartAngle: 1.5 * math.Pi, EndAngle: 2 * math.Pi},
		{Center: Vec2{X: w - r, Y: h - r}, StartAngle: 0, EndAngle: 0.5 * math.Pi},
		{Center: Vec2{X: r, Y: h - r}, StartAngle: 0.5 * math.Pi, EndAngle: math.Pi},
	}
}

// CreateBoundary builds the arena boundary: four straight walls inset by the
// corner radius, plus CornerSegments thin pieces per corner that approximate
// a concave quarter arc. Balls reflect off the fan of segments, which gives a
// rounded inside corner instead of a sharp one.
func CreateBoundary(s Settings) []WallPiece {
	w, h, r, t := s.ArenaWidth, s.ArenaHeight, s.CornerRadius, s.WallThickness
	pieces := []WallPiece{
		// top, bottom, left, right
		{Position: Vec2{X: w / 2, Y: -t / 2}, HalfWidth: w/2 - r, HalfHeight: t / 2},
		{Position: Vec2{X: w / 2, Y: h + t/2}, HalfWidth: w/2 - r, HalfHeight: t / 2},
		{Position: Vec2{X: -t / 2, Y: h / 2}, HalfWidth: t / 2, HalfHeight: h/2 - r},
		{Position: Vec2{X: w + t/2, Y: h / 2}, HalfWidth: t / 2, HalfHeight: h/2 - r},
	}
	if r <= 0 {
		return pieces
	}

	n := s.CornerSegments
	for _, arc := range cornerArcs(s) {
		step := (arc.EndAngle - arc.StartAngle) / float64(n)
		for i := 0; i < n; i++ {
			mid := arc.StartAngle + (float64(i)+0.5)*step
			pieces = append(pieces, WallPiece{
				Position:   arc.Center.Plus(FromAngle(mid, r)),
				Angle:      mid + math.Pi/2, // tangent to the arc
				HalfWidth:  r * math.Sin(step/2),
				HalfHeight: s.SegmentThickness / 2,
				Corner:     true,
			})
		}
	}
	return pieces
}
