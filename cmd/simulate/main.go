package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/game"
)

var (
	seed       = flag.Uint64("seed", 1, "Match seed")
	maxSeconds = flag.Float64("max-seconds", 300, "Stop after this much simulated play")
	tuningFile = flag.String("tuning", "", "Optional YAML tuning file (defaults to GAME_TUNING_FILE)")
	idle       = flag.Bool("idle", false, "Leave the human paddle still instead of tracking the ball")
)

// Report is printed as JSON once the run ends.
type Report struct {
	game.Summary
	Phase      game.Phase     `json:"phase"`
	Ticks      uint64         `json:"ticks"`
	Difficulty float64        `json:"difficulty"`
	Color      string         `json:"color"`
	Events     map[string]int `json:"events"`
	WallTime   string         `json:"wall_time"`
}

func main() {
	flag.Parse()

	path := *tuningFile
	if path == "" {
		path = config.Load().TuningFile
	}
	tuning, err := config.LoadTuning(path)
	if err != nil {
		log.Fatalf("Failed to load tuning: %v", err)
	}

	start := time.Now()
	report := run(game.NewSettings(tuning), *seed, *maxSeconds, !*idle)
	report.WallTime = time.Since(start).Round(time.Millisecond).String()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run plays one match headlessly, one fixed step at a time.
func run(s game.Settings, seed uint64, maxSeconds float64, track bool) Report {
	m := game.NewMatch(s, seed, nil)
	if err := m.StartCountdown(); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	counts := make(map[string]int)
	for m.Phase() != game.PhaseOver && m.State().Elapsed < maxSeconds {
		if track {
			m.SetInput(autopilot(m.World(), s))
		}
		for _, ev := range m.Step() {
			counts[string(ev.Kind)]++
		}
	}

	snap := m.Snapshot()
	return Report{
		Summary:    m.Summary(),
		Phase:      snap.Phase,
		Ticks:      m.State().Ticks,
		Difficulty: snap.Difficulty,
		Color:      snap.Color,
		Events:     counts,
	}
}
