package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/brickduel/internal/accounts"
	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/game"
	"github.com/playmatatu/brickduel/internal/session"
)

const testSecret = "test-secret"

type inbound struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecret: testSecret, BroadcastHz: 30, MatchSeed: 11}
	mgr := session.NewManager(cfg, game.NewSettings(game.DefaultTuning()), nil, nil)
	hub := NewHub()
	go hub.Run()
	mgr.SetPublisher(hub)
	t.Cleanup(mgr.Shutdown)

	router := gin.New()
	router.GET("/matches/:id/ws", HandleWebSocket(hub, mgr, cfg))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, mgr
}

func wsURL(srv *httptest.Server, id, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/matches/" + id + "/ws?token=" + token
}

// readUntil reads messages until one satisfies match or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(inbound) bool) inbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg inbound
		require.NoError(t, json.Unmarshal(raw, &msg))
		if match(msg) {
			return msg
		}
	}
}

func snapshotPhase(t *testing.T, msg inbound) game.Phase {
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	return snap.Phase
}

func TestWebSocketSession(t *testing.T) {
	srv, mgr := newTestServer(t)
	s, err := mgr.Create(context.Background(), 7, "ada")
	require.NoError(t, err)
	token, _, err := accounts.IssueToken(testSecret, 7, "ada", time.Hour)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, s.ID, token), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readUntil(t, conn, func(m inbound) bool { return true })
	assert.Equal(t, session.MsgSnapshot, first.Type)
	assert.Equal(t, s.ID, first.SessionID)
	assert.Equal(t, game.PhaseMenu, snapshotPhase(t, first))

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "command", "data": map[string]string{"name": "start"}}))
	started := readUntil(t, conn, func(m inbound) bool {
		return m.Type == session.MsgSnapshot && snapshotPhase(t, m) != game.PhaseMenu
	})
	assert.Contains(t, []game.Phase{game.PhaseCountdown, game.PhasePlaying}, snapshotPhase(t, started))

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "input", "data": map[string]bool{"right": true}}))
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "command", "data": map[string]string{"name": "jump"}}))
	errMsg := readUntil(t, conn, func(m inbound) bool { return m.Type == session.MsgError })
	assert.Contains(t, string(errMsg.Data), "unknown command")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "bogus"}))
	errMsg = readUntil(t, conn, func(m inbound) bool { return m.Type == session.MsgError })
	assert.Contains(t, string(errMsg.Data), "Unknown message type")
}

func TestWebSocketRejects(t *testing.T) {
	srv, mgr := newTestServer(t)
	s, err := mgr.Create(context.Background(), 7, "ada")
	require.NoError(t, err)

	other, _, err := accounts.IssueToken(testSecret, 8, "bob", time.Hour)
	require.NoError(t, err)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, s.ID, other), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	owner, _, err := accounts.IssueToken(testSecret, 7, "ada", time.Hour)
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "missing", owner), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, s.ID, "garbage"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, s.ID, ""), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHubPublishWithoutClient(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.Connected("nobody"))
	assert.NotPanics(t, func() {
		hub.Publish("nobody", session.Message{Type: session.MsgSnapshot})
	})
}
