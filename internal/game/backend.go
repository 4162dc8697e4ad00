package game

import "math"

// BodyID identifies a body inside a Backend.
type BodyID int

// BodyType mirrors the usual rigid body classes.
type BodyType uint8

const (
	BodyStatic    BodyType = iota // never moves (walls, bricks)
	BodyKinematic                 // moved by velocity, unaffected by contacts (paddles)
	BodyDynamic                   // moved by velocity, reflected by contacts (balls)
)

// ShapeKind selects the collision shape of a body.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
)

// Collision categories. A pair collides only when each body's mask
// contains the other's category.
const (
	CategoryBall   uint16 = 1 << 0
	CategoryPaddle uint16 = 1 << 1
	CategoryBrick  uint16 = 1 << 2
	CategoryWall   uint16 = 1 << 3
)

// BodyDef describes a body to create.
type BodyDef struct {
	Type        BodyType
	Shape       ShapeKind
	Position    Vec2
	Angle       float64 // boxes only, radians
	Radius      float64 // circles
	HalfWidth   float64 // boxes
	HalfHeight  float64 // boxes
	Velocity    Vec2
	Restitution float64
	Friction    float64
	Category    uint16
	Mask        uint16
	Bullet      bool // sub-step this body so it cannot tunnel through thin shapes
}

// Contact is a begin-contact between a dynamic circle (A) and another body (B).
// Normal points from B towards A.
type Contact struct {
	A      BodyID
	B      BodyID
	Normal Vec2
	Point  Vec2
	Speed  float64 // approach speed along the normal
}

// Backend is the small physics surface the world depends on, so the game can
// run on any rigid body library that offers these calls.
type Backend interface {
	CreateBody(def BodyDef) BodyID
	DestroyBody(id BodyID)
	SetVelocity(id BodyID, v Vec2)
	Velocity(id BodyID) Vec2
	Position(id BodyID) Vec2
	SetPosition(id BodyID, p Vec2)
	Step(dt float64, velocityIterations, positionIterations int)
	// Contacts returns the contacts that began during the last Step, in
	// detection order.
	Contacts() []Contact
}

type body struct {
	id   BodyID
	def  BodyDef
	pos  Vec2
	vel  Vec2
	sin  float64
	cos  float64
	dead bool
}

type pairKey struct {
	a, b BodyID
}

// manifold is the result of a narrow phase test.
type manifold struct {
	normal Vec2 // from other towards the circle
	point  Vec2
	depth  float64
}

const (
	maxSubsteps    = 32
	contactSlop    = 0.01 // extra separation after a push
	touchSlop      = 2 * contactSlop
	substepTravel  = 0.5 // fraction of the smallest radius moved per substep
	restingSpeedEp = 1e-9
)

// ImpulseBackend is a small deterministic solver for circles against
// oriented boxes and other circles. Bodies are iterated in creation order so
// identical inputs always produce identical outputs.
type ImpulseBackend struct {
	bodies   []*body
	index    map[BodyID]*body
	nextID   BodyID
	touching map[pairKey]bool
	contacts []Contact
}

// NewImpulseBackend creates an empty backend.
func NewImpulseBackend() *ImpulseBackend {
	return &ImpulseBackend{
		index:    make(map[BodyID]*body),
		touching: make(map[pairKey]bool),
		nextID:   1,
	}
}

func (b *ImpulseBackend) CreateBody(def BodyDef) BodyID {
	id := b.nextID
	b.nextID++
	sin, cos := math.Sincos(def.Angle)
	bd := &body{id: id, def: def, pos: def.Position, vel: def.Velocity, sin: sin, cos: cos}
	if def.Type == BodyStatic {
		bd.vel = Vec2{}
	}
	b.bodies = append(b.bodies, bd)
	b.index[id] = bd
	return id
}

// DestroyBody removes a body. Unknown ids are ignored.
func (b *ImpulseBackend) DestroyBody(id BodyID) {
	bd, ok := b.index[id]
	if !ok {
		return
	}
	bd.dead = true
	delete(b.index, id)
	for k := range b.touching {
		if k.a == id || k.b == id {
			delete(b.touching, k)
		}
	}
	kept := b.bodies[:0]
	for _, o := range b.bodies {
		if !o.dead {
			kept = append(kept, o)
		}
	}
	b.bodies = kept
}

func (b *ImpulseBackend) SetVelocity(id BodyID, v Vec2) {
	if bd, ok := b.index[id]; ok && bd.def.Type != BodyStatic {
		bd.vel = v
	}
}

func (b *ImpulseBackend) Velocity(id BodyID) Vec2 {
	if bd, ok := b.index[id]; ok {
		return bd.vel
	}
	return Vec2{}
}

func (b *ImpulseBackend) Position(id BodyID) Vec2 {
	if bd, ok := b.index[id]; ok {
		return bd.pos
	}
	return Vec2{}
}

func (b *ImpulseBackend) SetPosition(id BodyID, p Vec2) {
	if bd, ok := b.index[id]; ok {
		bd.pos = p
	}
}

func (b *ImpulseBackend) Contacts() []Contact {
	return b.contacts
}

// Step advances every body by dt. Moving bodies are integrated in substeps
// small enough that a bullet circle never travels more than half its radius
// between contact checks.
func (b *ImpulseBackend) Step(dt float64, velocityIterations, positionIterations int) {
	b.contacts = nil
	if dt <= 0 {
		return
	}
	if velocityIterations < 1 {
		velocityIterations = 1
	}

	n := b.substeps(dt)
	h := dt / float64(n)
	touched := make(map[pairKey]bool)

	for i := 0; i < n; i++ {
		for _, bd := range b.bodies {
			if bd.def.Type != BodyStatic {
				bd.pos = bd.pos.Plus(bd.vel.Times(h))
			}
		}
		for it := 0; it < velocityIterations; it++ {
			if !b.solve(touched, true) {
				break
			}
		}
		for it := 0; it < positionIterations; it++ {
			if !b.solve(touched, false) {
				break
			}
		}
	}
	b.touching = touched
}

func (b *ImpulseBackend) substeps(dt float64) int {
	minRadius := math.Inf(1)
	maxTravel := 0.0
	for _, bd := range b.bodies {
		if bd.def.Type == BodyStatic {
			continue
		}
		if bd.def.Shape == ShapeCircle && bd.def.Bullet && bd.def.Radius < minRadius {
			minRadius = bd.def.Radius
		}
		if travel := bd.vel.Length() * dt; travel > maxTravel {
			maxTravel = travel
		}
	}
	if math.IsInf(minRadius, 1) || minRadius <= 0 {
		return 1
	}
	n := int(math.Ceil(maxTravel / (minRadius * substepTravel)))
	if n < 1 {
		n = 1
	}
	if n > maxSubsteps {
		n = maxSubsteps
	}
	return n
}

// solve runs one pass over all circle pairs. With applyVelocity it reflects
// approaching circles; it always separates overlaps. Reports whether any pair
// overlapped.
func (b *ImpulseBackend) solve(touched map[pairKey]bool, applyVelocity bool) bool {
	overlapped := false
	for _, c := range b.bodies {
		if c.def.Type != BodyDynamic || c.def.Shape != ShapeCircle {
			continue
		}
		for _, o := range b.bodies {
			if o == c || !collides(c, o) {
				continue
			}
			// Each circle pair is handled once, from the lower id.
			if o.def.Type == BodyDynamic && o.def.Shape == ShapeCircle && o.id < c.id {
				continue
			}
			m, ok := narrowPhase(c, o)
			if !ok {
				continue
			}
			if m.depth > 0 {
				overlapped = true
			}
			key := pairKey{c.id, o.id}
			if !touched[key] {
				touched[key] = true
				if !b.touching[key] {
					rel := c.vel.Minus(o.vel)
					b.contacts = append(b.contacts, Contact{
						A:      c.id,
						B:      o.id,
						Normal: m.normal,
						Point:  m.point,
						Speed:  math.Max(0, -rel.Dot(m.normal)),
					})
				}
			}
			resolve(c, o, m, applyVelocity)
		}
	}
	return overlapped
}

func collides(a, b *body) bool {
	return a.def.Mask&b.def.Category != 0 && b.def.Mask&a.def.Category != 0
}

func narrowPhase(c, o *body) (manifold, bool) {
	if o.def.Shape == ShapeCircle {
		return circleCircle(c, o)
	}
	return circleBox(c, o)
}

func circleCircle(c, o *body) (manifold, bool) {
	d := c.pos.Minus(o.pos)
	r := c.def.Radius + o.def.Radius
	distSq := d.LengthSquared()
	if distSq > (r+touchSlop)*(r+touchSlop) {
		return manifold{}, false
	}
	dist := math.Sqrt(distSq)
	n := Vec2{X: 0, Y: 1}
	if dist > 0 {
		n = d.Times(1 / dist)
	}
	return manifold{normal: n, point: o.pos.Plus(n.Times(o.def.Radius)), depth: r - dist}, true
}

func circleBox(c, o *body) (manifold, bool) {
	// Move the circle center into the box frame.
	d := c.pos.Minus(o.pos)
	local := Vec2{X: d.X*o.cos + d.Y*o.sin, Y: -d.X*o.sin + d.Y*o.cos}
	hw, hh := o.def.HalfWidth, o.def.HalfHeight
	closest := Vec2{X: Clamp(local.X, -hw, hw), Y: Clamp(local.Y, -hh, hh)}
	r := c.def.Radius

	var nLocal Vec2
	var depth float64
	if closest == local {
		// Center inside the box: leave through the nearest face.
		dx := hw - math.Abs(local.X)
		dy := hh - math.Abs(local.Y)
		if dx < dy {
			sx := Sign(local.X)
			if sx == 0 {
				sx = 1
			}
			nLocal = Vec2{X: sx}
			depth = r + dx
			closest.X = sx * hw
		} else {
			sy := Sign(local.Y)
			if sy == 0 {
				sy = 1
			}
			nLocal = Vec2{Y: sy}
			depth = r + dy
			closest.Y = sy * hh
		}
	} else {
		diff := local.Minus(closest)
		distSq := diff.LengthSquared()
		if distSq > (r+touchSlop)*(r+touchSlop) {
			return manifold{}, false
		}
		dist := math.Sqrt(distSq)
		nLocal = diff.Times(1 / dist)
		depth = r - dist
	}

	toWorld := func(v Vec2) Vec2 {
		return Vec2{X: v.X*o.cos - v.Y*o.sin, Y: v.X*o.sin + v.Y*o.cos}
	}
	return manifold{
		normal: toWorld(nLocal),
		point:  o.pos.Plus(toWorld(closest)),
		depth:  depth,
	}, true
}

func resolve(c, o *body, m manifold, applyVelocity bool) {
	e := math.Max(c.def.Restitution, o.def.Restitution)
	twoDynamic := o.def.Type == BodyDynamic

	if applyVelocity {
		rel := c.vel.Minus(o.vel)
		vn := rel.Dot(m.normal)
		if vn < -restingSpeedEp {
			if twoDynamic {
				// Equal masses.
				j := -(1 + e) * vn / 2
				c.vel = c.vel.Plus(m.normal.Times(j))
				o.vel = o.vel.Minus(m.normal.Times(j))
			} else {
				c.vel = c.vel.Minus(m.normal.Times((1 + e) * vn))
				if f := math.Max(c.def.Friction, o.def.Friction); f > 0 {
					t := m.normal.LeftNormal()
					vt := rel.Dot(t)
					impulse := math.Min(math.Abs(vt), f*(1+e)*math.Abs(vn))
					c.vel = c.vel.Minus(t.Times(Sign(vt) * impulse))
				}
			}
		}
	}

	if m.depth <= 0 {
		return
	}
	push := m.depth + contactSlop
	if twoDynamic {
		c.pos = c.pos.Plus(m.normal.Times(push / 2))
		o.pos = o.pos.Minus(m.normal.Times(push / 2))
		return
	}
	c.pos = c.pos.Plus(m.normal.Times(push))
}
