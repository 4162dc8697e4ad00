package game

// Govern applies the per-step speed rules to one velocity, in order: hard
// clamp to MaxSpeed, hard floor to MinSpeed, soft decay towards BaseSpeed,
// minimum angle from the horizontal. Limits come first so the angle
// correction, which preserves speed, can never leave the band.
//
// A zero velocity is given MinSpeed along the launch angle, pointing away
// from fallback's end wall (the half the ball is in).
func Govern(s Settings, v Vec2, fallback Side) Vec2 {
	speed := v.Length()

	if speed == 0 {
		return FromAngle(s.LaunchAngle, s.MinSpeed).TimesVec(1, s.AwayFrom(fallback))
	}
	if speed > s.MaxSpeed {
		v = v.Times(s.MaxSpeed / speed)
		speed = s.MaxSpeed
	}
	if speed < s.MinSpeed {
		v = v.Times(s.MinSpeed / speed)
		speed = s.MinSpeed
	}
	if speed > s.DecayThreshold {
		decayed := speed * s.SpeedDecay
		if decayed < s.BaseSpeed {
			decayed = s.BaseSpeed
		}
		v = v.Times(decayed / speed)
	}

	return EnforceMinAngle(v, s.MinAngle)
}

// governBalls applies Govern to every ball in the world.
func governBalls(w *World) {
	s := w.Settings()
	for _, b := range w.Balls() {
		fallback := SideAI
		if b.Position.Y > s.ArenaHeight/2 {
			fallback = SideHuman
		}
		if next := Govern(s, b.Velocity, fallback); next != b.Velocity {
			w.SetBallVelocity(b.ID, next)
		}
	}
}
