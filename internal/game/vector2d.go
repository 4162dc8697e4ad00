package game

import "math"

// Vec2 is a 2D vector in arena units (pixels, pixels per second).
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// fix rounds to 4 decimal places. Only used for wire output so clients see
// stable numbers; the simulation itself runs at full precision.
func fix(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return math.Round(n*10000) / 10000
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// TimesVec scales each component separately.
func (v Vec2) TimesVec(sx, sy float64) Vec2 {
	return Vec2{X: v.X * sx, Y: v.Y * sy}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector. The zero vector stays zero.
func (v Vec2) Normalize() Vec2 {
	m := v.Length()
	if m == 0 {
		return Vec2{}
	}
	return v.Times(1.0 / m)
}

func (v Vec2) LeftNormal() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Rotate rotates by the given angle in radians.
func (v Vec2) Rotate(rad float64) Vec2 {
	sin, cos := math.Sincos(rad)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// Reflect mirrors v about a surface with unit normal n.
func (v Vec2) Reflect(n Vec2) Vec2 {
	return v.Minus(n.Times(2 * v.Dot(n)))
}

// WithLength rescales v to the given length. The zero vector stays zero.
func (v Vec2) WithLength(length float64) Vec2 {
	return v.Normalize().Times(length)
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Fixed returns a copy rounded for serialization.
func (v Vec2) Fixed() Vec2 {
	return Vec2{X: fix(v.X), Y: fix(v.Y)}
}

// FromAngle builds a vector of the given length pointing at angle radians.
func FromAngle(angle, length float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{X: cos * length, Y: sin * length}
}

// AngleFromHorizontal returns the unsigned angle between v and the x axis,
// in [0, π/2]. The zero vector reports π/2 so it never looks "too flat".
func AngleFromHorizontal(v Vec2) float64 {
	if v.IsZero() {
		return math.Pi / 2
	}
	return math.Atan2(math.Abs(v.Y), math.Abs(v.X))
}

// EnforceMinAngle re-derives v so its angle from the horizontal axis is at
// least minAngle, keeping the speed and the sign of each component. A zero
// vertical component is treated as positive.
func EnforceMinAngle(v Vec2, minAngle float64) Vec2 {
	if v.IsZero() || AngleFromHorizontal(v) >= minAngle {
		return v
	}
	speed := v.Length()
	sx, sy := Sign(v.X), Sign(v.Y)
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	sin, cos := math.Sincos(minAngle)
	return Vec2{X: sx * cos * speed, Y: sy * sin * speed}
}

// Sign returns -1, 0 or 1.
func Sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

// Clamp limits f to [lo, hi].
func Clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// Lerp linearly interpolates from a to b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
