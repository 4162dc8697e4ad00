package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/models"
	"github.com/playmatatu/brickduel/internal/session"
)

// LeaderboardSource answers the best-score table.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
}

// CreateMatch starts a hosted match for the authenticated player.
func CreateMatch(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := playerIDFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		name := c.GetString("display_name")

		s, err := mgr.Create(c.Request.Context(), playerID, name)
		if err != nil {
			log.Printf("[SESSION] create failed for player %d: %v", playerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":       s.ID,
			"ws_path":  "/api/v1/matches/" + s.ID + "/ws",
			"snapshot": s.Snapshot(),
		})
	}
}

// GetMatch returns the current snapshot of a match.
func GetMatch(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := mgr.LoadSnapshot(c.Request.Context(), c.Param("id"))
		if errors.Is(err, session.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		if err != nil {
			log.Printf("[SESSION] snapshot load failed for %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// CloseMatch ends a match owned by the authenticated player.
func CloseMatch(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := playerIDFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		s, err := mgr.Get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		if s.PlayerID != playerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "match belongs to another player"})
			return
		}
		// A concurrent idle close is fine; the match is gone either way.
		mgr.Close(s.ID)
		c.JSON(http.StatusOK, gin.H{"closed": true})
	}
}

// GetLeaderboard returns the top players by best score.
func GetLeaderboard(board LeaderboardSource, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		size := cfg.LeaderboardSize
		if size <= 0 {
			size = 20
		}
		n := queryInt(c, "limit", size, 100)

		entries, err := board.Leaderboard(c.Request.Context(), n)
		if err != nil {
			log.Printf("[DB] leaderboard failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}
