package game

import (
	"math"
	"sort"
)

// WorldContact is a begin-contact translated to entity ids. The ball is
// always the first participant.
type WorldContact struct {
	BallID    int
	OtherID   int
	OtherKind EntityKind
	Normal    Vec2
	Speed     float64
}

// World owns every simulated body and the single entity registry, keyed by
// integer id.
type World struct {
	settings    Settings
	backend     Backend
	entities    map[int]*Entity
	ids         []int // ascending, for deterministic iteration
	byBody      map[BodyID]int
	nextID      int
	initialized bool
}

// NewWorld creates an empty world on the given backend. Call Init before
// stepping.
func NewWorld(s Settings, backend Backend) *World {
	return &World{
		settings: s,
		backend:  backend,
		entities: make(map[int]*Entity),
		byBody:   make(map[BodyID]int),
		nextID:   1,
	}
}

// Init creates the arena boundary.
func (w *World) Init() {
	if w.initialized {
		return
	}
	for _, p := range CreateBoundary(w.settings) {
		w.addWall(p)
	}
	w.initialized = true
}

func (w *World) Initialized() bool {
	return w.initialized
}

func (w *World) Settings() Settings {
	return w.settings
}

func (w *World) register(kind EntityKind, body BodyID) *Entity {
	e := &Entity{ID: w.nextID, Kind: kind, Body: body}
	w.nextID++
	w.entities[e.ID] = e
	w.ids = append(w.ids, e.ID)
	w.byBody[body] = e.ID
	return e
}

func (w *World) addWall(p WallPiece) *Wall {
	body := w.backend.CreateBody(BodyDef{
		Type:        BodyStatic,
		Shape:       ShapeBox,
		Position:    p.Position,
		Angle:       p.Angle,
		HalfWidth:   p.HalfWidth,
		HalfHeight:  p.HalfHeight,
		Restitution: 1,
		Friction:    0,
		Category:    CategoryWall,
		Mask:        CategoryBall,
	})
	e := w.register(KindWall, body)
	e.Wall = &Wall{
		ID:         e.ID,
		Position:   p.Position,
		Angle:      p.Angle,
		HalfWidth:  p.HalfWidth,
		HalfHeight: p.HalfHeight,
		Corner:     p.Corner,
	}
	return e.Wall
}

// AddBall creates a bullet ball.
func (w *World) AddBall(pos, vel Vec2) *Ball {
	body := w.backend.CreateBody(BodyDef{
		Type:        BodyDynamic,
		Shape:       ShapeCircle,
		Position:    pos,
		Radius:      w.settings.BallRadius,
		Velocity:    vel,
		Restitution: 1,
		Category:    CategoryBall,
		Mask:        CategoryPaddle | CategoryBrick | CategoryWall,
		Bullet:      true,
	})
	e := w.register(KindBall, body)
	e.Ball = &Ball{ID: e.ID, Position: pos, Velocity: vel, Radius: w.settings.BallRadius}
	return e.Ball
}

// AddPaddle creates a side's kinematic paddle at the arena's horizontal center.
func (w *World) AddPaddle(side Side) *Paddle {
	pos := Vec2{X: w.settings.ArenaWidth / 2, Y: w.settings.PaddleY(side)}
	body := w.backend.CreateBody(BodyDef{
		Type:        BodyKinematic,
		Shape:       ShapeBox,
		Position:    pos,
		HalfWidth:   w.settings.PaddleHalfWidth,
		HalfHeight:  w.settings.PaddleHalfHeight,
		Restitution: 1,
		Category:    CategoryPaddle,
		Mask:        CategoryBall,
	})
	e := w.register(KindPaddle, body)
	e.Paddle = &Paddle{
		ID:         e.ID,
		Side:       side,
		Position:   pos,
		HalfWidth:  w.settings.PaddleHalfWidth,
		HalfHeight: w.settings.PaddleHalfHeight,
		PrevX:      pos.X,
	}
	return e.Paddle
}

// AddBrick creates a static brick in a side's grid cell.
func (w *World) AddBrick(owner Side, row, col int) *Brick {
	pos := w.settings.CellCenter(owner, row, col)
	body := w.backend.CreateBody(BodyDef{
		Type:        BodyStatic,
		Shape:       ShapeBox,
		Position:    pos,
		HalfWidth:   w.settings.BrickWidth / 2,
		HalfHeight:  w.settings.BrickHeight / 2,
		Restitution: 1,
		Category:    CategoryBrick,
		Mask:        CategoryBall,
	})
	e := w.register(KindBrick, body)
	e.Brick = &Brick{ID: e.ID, Row: row, Col: col, Position: pos, Owner: owner}
	return e.Brick
}

// Remove deletes an entity and detaches its body. Unknown ids are a no-op.
func (w *World) Remove(id int) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	w.backend.DestroyBody(e.Body)
	delete(w.byBody, e.Body)
	delete(w.entities, id)
	i := sort.SearchInts(w.ids, id)
	if i < len(w.ids) && w.ids[i] == id {
		w.ids = append(w.ids[:i], w.ids[i+1:]...)
	}
}

// Entity returns the entity with id, or nil.
func (w *World) Entity(id int) *Entity {
	return w.entities[id]
}

// Query returns all entities of a kind in id order.
func (w *World) Query(kind EntityKind) []*Entity {
	var out []*Entity
	for _, id := range w.ids {
		if e := w.entities[id]; e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (w *World) Balls() []*Ball {
	var out []*Ball
	for _, e := range w.Query(KindBall) {
		out = append(out, e.Ball)
	}
	return out
}

func (w *World) Paddle(side Side) *Paddle {
	for _, e := range w.Query(KindPaddle) {
		if e.Paddle.Side == side {
			return e.Paddle
		}
	}
	return nil
}

// Bricks returns the bricks in owner's field, fading ones included.
func (w *World) Bricks(owner Side) []*Brick {
	var out []*Brick
	for _, e := range w.Query(KindBrick) {
		if e.Brick.Owner == owner {
			out = append(out, e.Brick)
		}
	}
	return out
}

// Walls returns the boundary pieces.
func (w *World) Walls() []*Wall {
	var out []*Wall
	for _, e := range w.Query(KindWall) {
		out = append(out, e.Wall)
	}
	return out
}

// SetBallVelocity updates a ball's velocity. Unknown ids are a no-op.
func (w *World) SetBallVelocity(id int, v Vec2) {
	e, ok := w.entities[id]
	if !ok || e.Kind != KindBall {
		return
	}
	e.Ball.Velocity = v
	w.backend.SetVelocity(e.Body, v)
}

// SetBallPosition teleports a ball. Unknown ids are a no-op.
func (w *World) SetBallPosition(id int, p Vec2) {
	e, ok := w.entities[id]
	if !ok || e.Kind != KindBall {
		return
	}
	e.Ball.Position = p
	w.backend.SetPosition(e.Body, p)
}

// SetPaddleVelocity sets a paddle's horizontal velocity for the next step.
func (w *World) SetPaddleVelocity(id int, vx float64) {
	e, ok := w.entities[id]
	if !ok || e.Kind != KindPaddle {
		return
	}
	e.Paddle.Velocity = vx
	w.backend.SetVelocity(e.Body, Vec2{X: vx})
}

// Step advances the simulation by dt and returns this step's begin-contacts in
// detection order. dt must be the fixed timestep.
func (w *World) Step(dt float64) []WorldContact {
	if !Assert(w.initialized, "world stepped before Init") {
		return nil
	}

	lo, hi := w.settings.PaddleRange()
	for _, e := range w.Query(KindPaddle) {
		p := e.Paddle
		p.PrevX = p.Position.X
		// Stop at the range edge within this step instead of overshooting.
		if next := p.Position.X + p.Velocity*dt; next < lo || next > hi {
			p.Velocity = (Clamp(next, lo, hi) - p.Position.X) / dt
		}
		w.backend.SetVelocity(e.Body, Vec2{X: p.Velocity})
	}

	w.backend.Step(dt, w.settings.VelocityIterations, w.settings.PositionIterations)
	w.sync()

	var contacts []WorldContact
	for _, c := range w.backend.Contacts() {
		ballID, ok := w.byBody[c.A]
		if !ok {
			continue
		}
		otherID, ok := w.byBody[c.B]
		if !ok {
			continue
		}
		contacts = append(contacts, WorldContact{
			BallID:    ballID,
			OtherID:   otherID,
			OtherKind: w.entities[otherID].Kind,
			Normal:    c.Normal,
			Speed:     c.Speed,
		})
	}
	return contacts
}

// sync copies body state back into the entities, keeps paddles inside their
// range and balls inside the arena.
func (w *World) sync() {
	lo, hi := w.settings.PaddleRange()
	for _, id := range w.ids {
		e := w.entities[id]
		switch e.Kind {
		case KindBall:
			pos, vel := w.contain(w.backend.Position(e.Body), w.backend.Velocity(e.Body), e.Ball.Radius)
			if pos != w.backend.Position(e.Body) {
				w.backend.SetPosition(e.Body, pos)
				w.backend.SetVelocity(e.Body, vel)
			}
			e.Ball.Position = pos
			e.Ball.Velocity = vel
		case KindPaddle:
			p := e.Paddle
			pos := w.backend.Position(e.Body)
			if pos.X < lo-paddleRangeEps || pos.X > hi+paddleRangeEps {
				pos.X = Clamp(pos.X, lo, hi)
				p.Velocity = 0
				w.backend.SetPosition(e.Body, pos)
				w.backend.SetVelocity(e.Body, Vec2{})
			}
			p.Position = pos
		}
	}
}

const paddleRangeEps = 1e-9

// contain puts a ball that ended a step outside the arena back on the inner
// face of the wall it crossed, moving inwards. Nothing else can bring it back.
func (w *World) contain(pos, vel Vec2, r float64) (Vec2, Vec2) {
	s := w.settings
	switch {
	case pos.X < r:
		pos.X, vel.X = r, math.Abs(vel.X)
	case pos.X > s.ArenaWidth-r:
		pos.X, vel.X = s.ArenaWidth-r, -math.Abs(vel.X)
	}
	switch {
	case pos.Y < r:
		pos.Y, vel.Y = r, math.Abs(vel.Y)
	case pos.Y > s.ArenaHeight-r:
		pos.Y, vel.Y = s.ArenaHeight-r, -math.Abs(vel.Y)
	}
	return pos, vel
}

// ResetPaddles puts both paddles back at rest in the center.
func (w *World) ResetPaddles() {
	for _, e := range w.Query(KindPaddle) {
		pos := Vec2{X: w.settings.ArenaWidth / 2, Y: w.settings.PaddleY(e.Paddle.Side)}
		e.Paddle.Position = pos
		e.Paddle.PrevX = pos.X
		e.Paddle.Velocity = 0
		w.backend.SetPosition(e.Body, pos)
		w.backend.SetVelocity(e.Body, Vec2{})
	}
}
