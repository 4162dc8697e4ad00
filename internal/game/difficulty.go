package game

import "time"

// Difficulty is the closed-loop controller that scales the AI. It is updated
// on a clock cadence, not per physics step.
type Difficulty struct {
	settings   Settings
	multiplier float64
	lastUpdate time.Time
}

func NewDifficulty(s Settings, now time.Time) *Difficulty {
	d := &Difficulty{settings: s}
	d.Reset(now)
	return d
}

// Reset returns the multiplier to 1 (within bounds) and restarts the cadence.
func (d *Difficulty) Reset(now time.Time) {
	d.multiplier = Clamp(1, d.settings.MinDifficulty, d.settings.MaxDifficulty)
	d.lastUpdate = now
}

// Multiplier returns the current, smoothed multiplier.
func (d *Difficulty) Multiplier() float64 {
	return d.multiplier
}

// Color returns the display color for the current multiplier.
func (d *Difficulty) Color() string {
	return DifficultyColor(d.settings, d.multiplier)
}

// Target computes the multiplier the controller steers towards. diff is the
// AI's remaining targets minus the human's: positive means the AI is behind.
func (d *Difficulty) Target(diff int) float64 {
	s := d.settings
	switch {
	case diff > 0:
		return min(s.MaxDifficulty, 1+float64(diff)*s.IncreaseRate)
	case diff < 0:
		return max(s.MinDifficulty, 1+float64(diff)*s.DecreaseRate)
	}
	return Clamp(1, s.MinDifficulty, s.MaxDifficulty)
}

// Tick moves the multiplier one low-pass step towards Target(diff).
func (d *Difficulty) Tick(diff int) float64 {
	target := d.Target(diff)
	d.multiplier += (target - d.multiplier) * d.settings.DifficultyLerp
	d.multiplier = Clamp(d.multiplier, d.settings.MinDifficulty, d.settings.MaxDifficulty)
	return d.multiplier
}

// Update ticks the controller if at least one interval has passed since the
// previous update. It reports whether a tick happened.
func (d *Difficulty) Update(now time.Time, aiRemaining, humanRemaining int) bool {
	if now.Sub(d.lastUpdate) < d.settings.DifficultyEvery() {
		return false
	}
	d.lastUpdate = now
	d.Tick(aiRemaining - humanRemaining)
	return true
}
