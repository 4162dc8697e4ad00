package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/brickduel/internal/game"
)

// EventsChannel is the redis pub/sub channel carrying session notices.
const EventsChannel = "match_events"

func encodeNotice(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeNotice parses a payload published on EventsChannel.
func DecodeNotice(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" || msg.SessionID == "" {
		return Message{}, fmt.Errorf("notice missing type or session_id")
	}
	return msg, nil
}

// StartIdleWorker pauses sessions idle past SessionIdleSeconds and closes
// them after twice that.
func StartIdleWorker(ctx context.Context, m *Manager) {
	if m == nil || m.cfg == nil {
		log.Println("[IDLE] manager or config missing; idle worker not started")
		return
	}
	poll := time.Duration(m.cfg.IdleWorkerPollSeconds) * time.Second
	if poll <= 0 {
		poll = 5 * time.Second
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case now := <-ticker.C:
				m.reapIdle(ctx, now)
			}
		}
	}()
}

func (m *Manager) idleLimit() time.Duration {
	secs := m.cfg.SessionIdleSeconds
	if secs <= 0 {
		secs = 120
	}
	return time.Duration(secs) * time.Second
}

// reapIdle runs one idle pass. Candidates come from the redis idle index
// when available, otherwise from the live sessions.
func (m *Manager) reapIdle(ctx context.Context, now time.Time) {
	limit := m.idleLimit()
	for _, id := range m.idleCandidates(ctx, now.Add(-limit)) {
		s, err := m.Get(id)
		if err != nil {
			// Hosted elsewhere or already gone.
			continue
		}

		idle := s.IdleFor(now)
		switch {
		case idle >= 2*limit:
			log.Printf("[IDLE] closing session %s idle for %s", id, idle.Round(time.Second))
			m.Close(id)
			m.notify(ctx, id, MsgSessionClosed, "Session closed after inactivity")
		case idle >= limit:
			if s.Phase() != game.PhasePlaying {
				continue
			}
			if err := s.Command(CmdPause); err != nil {
				log.Printf("[IDLE] failed to pause session %s: %v", id, err)
				continue
			}
			// The pause command counts as activity; keep the idle clock running.
			s.mu.Lock()
			s.lastActive = now.Add(-idle)
			s.mu.Unlock()
			m.rememberIdleSince(ctx, id, now.Add(-idle))
			m.notify(ctx, id, MsgSessionIdle, "Paused after inactivity")
		}
	}
}

func (m *Manager) idleCandidates(ctx context.Context, cutoff time.Time) []string {
	if m.rdb != nil {
		ids, err := m.rdb.ZRangeByScore(ctx, idleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", cutoff.Unix())}).Result()
		if err == nil {
			return ids
		}
		log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id, s := range m.sessions {
		if s.IdleFor(cutoff) >= 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m *Manager) rememberIdleSince(ctx context.Context, id string, since time.Time) {
	if m.rdb == nil {
		return
	}
	if err := m.rdb.ZAdd(ctx, idleSetKey, redis.Z{Score: float64(since.Unix()), Member: id}).Err(); err != nil {
		log.Printf("[REDIS] failed to restore idle entry for %s: %v", id, err)
	}
}
