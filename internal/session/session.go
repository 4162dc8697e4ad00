package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/brickduel/internal/game"
)

// Outbound message types
const (
	MsgSnapshot      = "snapshot"
	MsgEvents        = "events"
	MsgMatchOver     = "match_over"
	MsgSessionIdle   = "session_idle"
	MsgSessionClosed = "session_closed"
	MsgError         = "error"
)

// Commands accepted by Session.Command
const (
	CmdStart  = "start"
	CmdPause  = "pause"
	CmdResume = "resume"
	CmdReset  = "reset"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrUnknownCommand  = errors.New("unknown command")
)

// Message is what a session hands to its publisher.
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Publisher fans session messages out to connected clients.
type Publisher interface {
	Publish(sessionID string, msg Message)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, Message) {}

// Session hosts one human-vs-AI match and its real-time loop.
type Session struct {
	ID          string
	PlayerID    int
	DisplayName string
	CreatedAt   time.Time

	mgr *Manager

	mu         sync.Mutex
	match      *game.Match
	loop       *game.Loop
	lastActive time.Time
	lastPhase  game.Phase
	steps      int
	recorded   bool
	closed     bool

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(mgr *Manager, id string, playerID int, displayName string, match *game.Match) *Session {
	now := time.Now()
	return &Session{
		ID:          id,
		PlayerID:    playerID,
		DisplayName: displayName,
		CreatedAt:   now,
		mgr:         mgr,
		match:       match,
		loop:        game.NewLoop(match),
		lastActive:  now,
		lastPhase:   match.Phase(),
		done:        make(chan struct{}),
	}
}

// SetInput replaces the held human input.
func (s *Session) SetInput(in game.Input) {
	s.mu.Lock()
	s.match.SetInput(in)
	s.lastActive = time.Now()
	s.mu.Unlock()
	s.mgr.touch(s.ID)
}

// Command applies a lifecycle command. A command always produces a fresh
// snapshot for the client.
func (s *Session) Command(name string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	var err error
	switch name {
	case CmdStart:
		if s.match.Phase() == game.PhaseOver {
			s.resetLocked()
		}
		err = s.match.StartCountdown()
	case CmdPause:
		err = s.match.SetPaused(true)
	case CmdResume:
		err = s.match.SetPaused(false)
	case CmdReset:
		s.resetLocked()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	s.lastActive = time.Now()
	snap := s.match.Snapshot()
	s.lastPhase = snap.Phase
	s.mu.Unlock()

	s.mgr.touch(s.ID)
	if err != nil {
		return err
	}
	log.Printf("[SESSION] %s command=%s phase=%s", s.ID, name, snap.Phase)
	s.mgr.publisher().Publish(s.ID, Message{Type: MsgSnapshot, Data: snap})
	return nil
}

func (s *Session) resetLocked() {
	s.match.ResetMatch()
	s.loop.Reset()
	s.recorded = false
}

// Snapshot returns the current read-only view of the match.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Snapshot()
}

// Phase returns the current match phase.
func (s *Session) Phase() game.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Phase()
}

// IdleFor reports how long the session has gone without input or commands.
func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

// Done is closed once the session stops.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) run(hz int) {
	if hz <= 0 {
		hz = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.frame(now.Sub(last))
			last = now
		}
	}
}

// frame advances the match by a wall-clock delta and publishes the result.
// Menu, paused and finished matches are not advanced and publish nothing;
// commands publish their own snapshot.
func (s *Session) frame(delta time.Duration) {
	s.mu.Lock()
	if s.closed || !running(s.match.Phase()) {
		s.mu.Unlock()
		return
	}
	events := s.loop.Advance(delta)
	steps := s.loop.LastSteps()
	phase := s.match.Phase()
	changed := phase != s.lastPhase
	s.lastPhase = phase
	if steps == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.match.Snapshot()
	s.steps += steps
	cache := s.steps >= s.mgr.cacheEverySteps() || changed
	if cache {
		s.steps = 0
	}
	finished := phase == game.PhaseOver && !s.recorded
	if finished {
		s.recorded = true
	}
	summary := s.match.Summary()
	s.mu.Unlock()

	pub := s.mgr.publisher()
	if len(events) > 0 {
		pub.Publish(s.ID, Message{Type: MsgEvents, Data: events})
	}
	pub.Publish(s.ID, Message{Type: MsgSnapshot, Data: snap})
	if cache {
		s.mgr.cacheSnapshot(s.ID, snap)
	}
	if finished {
		s.mgr.finish(s, summary)
	}
}

func running(p game.Phase) bool {
	return p == game.PhaseCountdown || p == game.PhasePlaying
}

func (s *Session) stop() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		// Pending fade timers die with the match.
		s.match.ResetMatch()
		s.mu.Unlock()
		close(s.done)
	})
}
