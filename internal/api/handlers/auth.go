package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/brickduel/internal/accounts"
	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/models"
)

type credentials struct {
	DisplayName string `json:"display_name"`
	PIN         string `json:"pin"`
}

func tokenResponse(c *gin.Context, status int, cfg *config.Config, p *models.Player) {
	ttl := time.Duration(cfg.TokenExpiryHour) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	signed, exp, err := accounts.IssueToken(cfg.JWTSecret, p.ID, p.DisplayName, ttl)
	if err != nil {
		log.Printf("[AUTH] Failed to sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{
		"token":      signed,
		"expires_at": exp.Format(time.RFC3339),
		"player":     p,
	})
}

// RegisterPlayer creates a player from a display name and 4-digit PIN and
// returns a bearer token.
func RegisterPlayer(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name and pin required"})
			return
		}

		p, err := accounts.CreatePlayer(db, req.DisplayName, strings.TrimSpace(req.PIN))
		switch {
		case errors.Is(err, accounts.ErrInvalidPIN), errors.Is(err, accounts.ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, accounts.ErrNameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil:
			log.Printf("[DB] RegisterPlayer failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		tokenResponse(c, http.StatusCreated, cfg, p)
	}
}

// Login verifies the PIN and returns a bearer token.
func Login(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name and pin required"})
			return
		}
		pin := strings.TrimSpace(req.PIN)
		if err := accounts.ValidatePIN(pin); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := accounts.Authenticate(db, req.DisplayName, pin)
		switch {
		case errors.Is(err, accounts.ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, accounts.ErrInvalidPIN):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid name or PIN"})
			return
		case err != nil:
			log.Printf("[DB] Login failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		tokenResponse(c, http.StatusOK, cfg, p)
	}
}

// AuthMiddleware validates the bearer JWT and sets player_id in context
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := accounts.ParseToken(cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(playerIDKey, claims.PlayerID)
		c.Set("display_name", claims.DisplayName)
		c.Next()
	}
}
