package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/game"
)

const (
	idleSetKey       = "idle_sessions"
	snapshotTTL      = time.Hour
	recordTimeout    = 5 * time.Second
	snapshotKeyShape = "session:%s:snapshot"
)

// Result is what the sink receives when a hosted match ends.
type Result struct {
	SessionID   string
	PlayerID    int
	DisplayName string
	Summary     game.Summary
}

// ResultSink persists final match results.
type ResultSink interface {
	RecordResult(ctx context.Context, r Result) error
}

// Manager owns all live sessions.
type Manager struct {
	cfg      *config.Config
	settings game.Settings
	rdb      *redis.Client // optional
	sink     ResultSink    // optional

	sessions map[string]*Session
	pub      Publisher
	mu       sync.RWMutex
}

// NewManager creates a session manager. rdb and sink may be nil.
func NewManager(cfg *config.Config, settings game.Settings, rdb *redis.Client, sink ResultSink) *Manager {
	return &Manager{
		cfg:      cfg,
		settings: settings,
		rdb:      rdb,
		sink:     sink,
		sessions: make(map[string]*Session),
		pub:      noopPublisher{},
	}
}

// SetPublisher wires the fan-out target, usually the websocket hub.
func (m *Manager) SetPublisher(p Publisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.pub = p
}

func (m *Manager) publisher() Publisher {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pub
}

// Create starts a new session for the player. The match waits in the menu
// phase until the client sends a start command.
func (m *Manager) Create(ctx context.Context, playerID int, displayName string) (*Session, error) {
	seed := m.cfg.MatchSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	match := game.NewMatch(m.settings, seed, game.SystemClock{})

	s := newSession(m, uuid.NewString(), playerID, displayName, match)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.touch(s.ID)
	m.cacheSnapshot(s.ID, match.Snapshot())
	go s.run(m.cfg.BroadcastHz)

	log.Printf("[SESSION] created %s for player %d seed=%d", s.ID, playerID, seed)
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close stops the session loop and forgets the session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.stop()
	if m.rdb != nil {
		if err := m.rdb.ZRem(context.Background(), idleSetKey, id).Err(); err != nil {
			log.Printf("[REDIS] failed to drop idle entry for %s: %v", id, err)
		}
	}
	log.Printf("[SESSION] closed %s", id)
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		m.Close(id)
	}
}

// LoadSnapshot returns the live snapshot, or the last cached one when the
// session is not hosted by this process.
func (m *Manager) LoadSnapshot(ctx context.Context, id string) (game.Snapshot, error) {
	if s, err := m.Get(id); err == nil {
		return s.Snapshot(), nil
	}
	if m.rdb == nil {
		return game.Snapshot{}, ErrSessionNotFound
	}

	data, err := m.rdb.Get(ctx, fmt.Sprintf(snapshotKeyShape, id)).Bytes()
	if err == redis.Nil {
		return game.Snapshot{}, ErrSessionNotFound
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load cached snapshot: %w", err)
	}
	var snap game.Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, nil
}

func (m *Manager) cacheEverySteps() int {
	return max(1, int(1/m.settings.Timestep))
}

func (m *Manager) cacheSnapshot(id string, snap game.Snapshot) {
	if m.rdb == nil {
		return
	}
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		log.Printf("[REDIS] failed to encode snapshot for %s: %v", id, err)
		return
	}
	if err := m.rdb.SetEx(context.Background(), fmt.Sprintf(snapshotKeyShape, id), data, snapshotTTL).Err(); err != nil {
		log.Printf("[REDIS] failed to cache snapshot for %s: %v", id, err)
	}
}

// touch records activity in the idle index.
func (m *Manager) touch(id string) {
	if m.rdb == nil {
		return
	}
	now := time.Now().Unix()
	if err := m.rdb.ZAdd(context.Background(), idleSetKey, redis.Z{Score: float64(now), Member: id}).Err(); err != nil {
		log.Printf("[REDIS] failed to touch idle entry for %s: %v", id, err)
	}
}

func (m *Manager) finish(s *Session, summary game.Summary) {
	m.publisher().Publish(s.ID, Message{Type: MsgMatchOver, Data: summary})
	if m.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	err := m.sink.RecordResult(ctx, Result{
		SessionID:   s.ID,
		PlayerID:    s.PlayerID,
		DisplayName: s.DisplayName,
		Summary:     summary,
	})
	if err != nil {
		log.Printf("[DB] failed to record result for session %s: %v", s.ID, err)
	}
}

// notify delivers a lifecycle notice. With redis it goes through the
// match_events channel so every server instance sees it.
func (m *Manager) notify(ctx context.Context, id, kind, message string) {
	msg := Message{Type: kind, SessionID: id, Data: map[string]string{"message": message}}
	if m.rdb == nil {
		m.publisher().Publish(id, msg)
		return
	}
	b, err := encodeNotice(msg)
	if err != nil {
		log.Printf("[IDLE] failed to encode %s notice: %v", kind, err)
		return
	}
	if n, err := m.rdb.Publish(ctx, EventsChannel, b).Result(); err != nil {
		log.Printf("[IDLE] publish %s failed: session=%s err=%v", kind, id, err)
	} else {
		log.Printf("[IDLE] published %s: session=%s subscribers=%d", kind, id, n)
	}
}
