package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/game"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []Message
}

func (f *fakePublisher) Publish(sessionID string, msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.SessionID = sessionID
	f.msgs = append(f.msgs, msg)
}

func (f *fakePublisher) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.msgs {
		if m.Type == kind {
			n++
		}
	}
	return n
}

type fakeSink struct {
	mu      sync.Mutex
	results []Result
}

func (f *fakeSink) RecordResult(_ context.Context, r Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, r)
	return nil
}

func testSettings() game.Settings {
	tune := game.DefaultTuning()
	tune.CountdownDuration = 0
	return game.NewSettings(tune)
}

// newTestSession builds a registered session without starting its loop so
// frames can be driven by hand.
func newTestSession(t *testing.T, cfg *config.Config, sink ResultSink) (*Manager, *Session, *fakePublisher) {
	t.Helper()
	m := NewManager(cfg, testSettings(), nil, sink)
	pub := &fakePublisher{}
	m.SetPublisher(pub)

	s := newSession(m, "session-1", 5, "ada", game.NewMatch(m.settings, 3, nil))
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return m, s, pub
}

func TestManagerCreateGetClose(t *testing.T) {
	cfg := &config.Config{BroadcastHz: 30, MatchSeed: 7}
	m := NewManager(cfg, testSettings(), nil, nil)

	s, err := m.Create(context.Background(), 1, "ada")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, game.PhaseMenu, s.Phase())
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	snap, err := m.LoadSnapshot(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseMenu, snap.Phase)

	require.NoError(t, m.Close(s.ID))
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session loop did not stop")
	}
	assert.Equal(t, 0, m.Count())

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(s.ID), ErrSessionNotFound)
	_, err = m.LoadSnapshot(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.Command(CmdStart), ErrSessionClosed)
}

func TestSessionCommands(t *testing.T) {
	_, s, pub := newTestSession(t, &config.Config{}, nil)

	assert.ErrorIs(t, s.Command(CmdPause), game.ErrInvalidPhase)
	require.NoError(t, s.Command(CmdStart))
	assert.Equal(t, game.PhaseCountdown, s.Phase())
	assert.ErrorIs(t, s.Command(CmdStart), game.ErrInvalidPhase)
	assert.ErrorIs(t, s.Command("jump"), ErrUnknownCommand)

	require.NoError(t, s.Command(CmdReset))
	assert.Equal(t, game.PhaseMenu, s.Phase())
	assert.Equal(t, 2, pub.count(MsgSnapshot), "only successful commands publish")
}

func TestSessionFramePublishesOnlyOnChange(t *testing.T) {
	_, s, pub := newTestSession(t, &config.Config{}, nil)

	// Menu phase: nothing steps, nothing is sent.
	s.frame(100 * time.Millisecond)
	assert.Equal(t, 0, pub.count(MsgSnapshot))

	require.NoError(t, s.Command(CmdStart))
	s.frame(20 * time.Millisecond)
	assert.Equal(t, game.PhasePlaying, s.Phase())
	assert.Equal(t, 2, pub.count(MsgSnapshot))
	assert.Equal(t, 1, pub.count(MsgEvents), "the phase change is an event")

	require.NoError(t, s.Command(CmdPause))
	before := pub.count(MsgSnapshot)
	s.frame(100 * time.Millisecond)
	assert.Equal(t, before, pub.count(MsgSnapshot))
}

func TestSessionRecordsResultOnce(t *testing.T) {
	sink := &fakeSink{}
	_, s, pub := newTestSession(t, &config.Config{}, sink)

	require.NoError(t, s.Command(CmdStart))
	s.frame(20 * time.Millisecond)
	require.Equal(t, game.PhasePlaying, s.Phase())

	// Clear the human's targets; the next tick ends the match.
	w := s.match.World()
	for _, b := range w.Bricks(game.SideAI) {
		w.Remove(b.ID)
	}
	s.frame(20 * time.Millisecond)
	require.Equal(t, game.PhaseOver, s.Phase())
	s.frame(20 * time.Millisecond)
	s.frame(20 * time.Millisecond)

	require.Len(t, sink.results, 1)
	r := sink.results[0]
	assert.Equal(t, "session-1", r.SessionID)
	assert.Equal(t, 5, r.PlayerID)
	require.NotNil(t, r.Summary.Winner)
	assert.Equal(t, game.SideHuman, *r.Summary.Winner)
	assert.Equal(t, "human", WinnerLabel(r.Summary.Winner))
	assert.Equal(t, 1, pub.count(MsgMatchOver))

	// Starting again rebuilds the match and allows a new record.
	require.NoError(t, s.Command(CmdStart))
	assert.Equal(t, game.PhaseCountdown, s.Phase())
	assert.False(t, s.recorded)
}

func TestReapIdle(t *testing.T) {
	m, s, pub := newTestSession(t, &config.Config{SessionIdleSeconds: 10}, nil)
	ctx := context.Background()

	require.NoError(t, s.Command(CmdStart))
	s.frame(20 * time.Millisecond)
	require.Equal(t, game.PhasePlaying, s.Phase())

	now := time.Now()
	s.mu.Lock()
	s.lastActive = now.Add(-5 * time.Second)
	s.mu.Unlock()
	m.reapIdle(ctx, now)
	assert.Equal(t, game.PhasePlaying, s.Phase(), "not idle long enough")

	s.mu.Lock()
	s.lastActive = now.Add(-15 * time.Second)
	s.mu.Unlock()
	m.reapIdle(ctx, now)
	assert.Equal(t, game.PhasePaused, s.Phase())
	assert.Equal(t, 1, pub.count(MsgSessionIdle))
	assert.InDelta(t, 15, s.IdleFor(now).Seconds(), 0.001, "pausing does not reset the idle clock")

	m.reapIdle(ctx, now.Add(10*time.Second))
	_, err := m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, pub.count(MsgSessionClosed))
}

func TestWinnerLabel(t *testing.T) {
	ai := game.SideAI
	assert.Equal(t, "ai", WinnerLabel(&ai))
	assert.Equal(t, "draw", WinnerLabel(nil))
}

func TestDecodeNotice(t *testing.T) {
	b, err := encodeNotice(Message{Type: MsgSessionIdle, SessionID: "abc", Data: map[string]string{"message": "x"}})
	require.NoError(t, err)

	msg, err := DecodeNotice(b)
	require.NoError(t, err)
	assert.Equal(t, MsgSessionIdle, msg.Type)
	assert.Equal(t, "abc", msg.SessionID)

	_, err = DecodeNotice([]byte(`{"type":"session_idle"}`))
	assert.Error(t, err)
	_, err = DecodeNotice([]byte(`not json`))
	assert.Error(t, err)
}
