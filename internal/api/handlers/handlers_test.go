package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/brickduel/internal/accounts"
	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/game"
	"github.com/playmatatu/brickduel/internal/models"
	"github.com/playmatatu/brickduel/internal/session"
)

type fakeBoard struct {
	entries []models.LeaderboardEntry
	err     error
	asked   int
}

func (f *fakeBoard) Leaderboard(_ context.Context, n int) ([]models.LeaderboardEntry, error) {
	f.asked = n
	return f.entries, f.err
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "secret", BroadcastHz: 30, LeaderboardSize: 5, TokenExpiryHour: 1}
}

func newRouter(cfg *config.Config, mgr *session.Manager, board LeaderboardSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", HealthCheck(mgr))
	r.POST("/players", RegisterPlayer(nil, cfg))
	r.POST("/login", Login(nil, cfg))
	r.GET("/leaderboard", GetLeaderboard(board, cfg))
	r.GET("/matches/:id", GetMatch(mgr))
	authed := r.Group("/", AuthMiddleware(cfg))
	authed.POST("/matches", CreateMatch(mgr))
	authed.DELETE("/matches/:id", CloseMatch(mgr))
	return r
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, cfg *config.Config, playerID int) string {
	t.Helper()
	token, _, err := accounts.IssueToken(cfg.JWTSecret, playerID, "ada", time.Hour)
	require.NoError(t, err)
	return token
}

func TestHealthCheck(t *testing.T) {
	r := newRouter(testConfig(), nil, &fakeBoard{})
	rec := do(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "brickduel-api", body["service"])
	assert.Equal(t, 0.0, body["live_sessions"])
}

func TestHealthCheckCountsSessions(t *testing.T) {
	cfg := testConfig()
	mgr := session.NewManager(cfg, game.NewSettings(game.DefaultTuning()), nil, nil)
	t.Cleanup(mgr.Shutdown)
	r := newRouter(cfg, mgr, &fakeBoard{})

	_, err := mgr.Create(context.Background(), 1, "ada")
	require.NoError(t, err)
	_, err = mgr.Create(context.Background(), 2, "bob")
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(do(r, http.MethodGet, "/health", "", "").Body.Bytes(), &body))
	assert.Equal(t, 2.0, body["live_sessions"])
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	mgr := session.NewManager(cfg, game.NewSettings(game.DefaultTuning()), nil, nil)
	t.Cleanup(mgr.Shutdown)
	r := newRouter(cfg, mgr, &fakeBoard{})

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/matches", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/matches", "", "garbage").Code)

	other, _, err := accounts.IssueToken("another-secret", 1, "ada", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/matches", "", other).Code)
}

func TestMatchLifecycle(t *testing.T) {
	cfg := testConfig()
	mgr := session.NewManager(cfg, game.NewSettings(game.DefaultTuning()), nil, nil)
	t.Cleanup(mgr.Shutdown)
	r := newRouter(cfg, mgr, &fakeBoard{})

	rec := do(r, http.MethodPost, "/matches", "", bearer(t, cfg, 3))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID       string        `json:"id"`
		WSPath   string        `json:"ws_path"`
		Snapshot game.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/v1/matches/"+created.ID+"/ws", created.WSPath)
	assert.Equal(t, game.PhaseMenu, created.Snapshot.Phase)
	assert.NotEmpty(t, created.Snapshot.Bricks)

	s, err := mgr.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, s.PlayerID)
	assert.Equal(t, "ada", s.DisplayName)

	rec = do(r, http.MethodGet, "/matches/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Balls, 2)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/matches/unknown", "", "").Code)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/matches/"+created.ID, "", bearer(t, cfg, 4)).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/matches/"+created.ID, "", bearer(t, cfg, 3)).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/matches/"+created.ID, "", bearer(t, cfg, 3)).Code)
	assert.Equal(t, 0, mgr.Count())
}

func TestRegisterAndLoginValidation(t *testing.T) {
	r := newRouter(testConfig(), nil, &fakeBoard{})

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/players", `{"display_name":"ada","pin":"12"}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/players", `{"display_name":"  ","pin":"1234"}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/players", `not json`, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/login", `{"display_name":"ada","pin":"abcd"}`, "").Code)
}

func TestGetLeaderboard(t *testing.T) {
	board := &fakeBoard{entries: []models.LeaderboardEntry{{PlayerID: 1, DisplayName: "ada", BestScore: 30, GamesWon: 2}}}
	r := newRouter(testConfig(), nil, board)

	rec := do(r, http.MethodGet, "/leaderboard", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, board.asked, "defaults to the configured size")
	var body struct {
		Entries []models.LeaderboardEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "ada", body.Entries[0].DisplayName)

	do(r, http.MethodGet, "/leaderboard?limit=500", "", "")
	assert.Equal(t, 100, board.asked)
	do(r, http.MethodGet, "/leaderboard?limit=3", "", "")
	assert.Equal(t, 3, board.asked)

	board.err = errors.New("down")
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/leaderboard", "", "").Code)
}
