package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/brickduel/internal/api/handlers"
	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/middleware"
	"github.com/playmatatu/brickduel/internal/session"
	"github.com/playmatatu/brickduel/internal/ws"
)

// Deps are the services the routes are wired to.
type Deps struct {
	DB          *sqlx.DB
	Config      *config.Config
	Sessions    *session.Manager
	Hub         *ws.Hub
	Leaderboard handlers.LeaderboardSource
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Sessions))

		v1.POST("/players", handlers.RegisterPlayer(d.DB, cfg))
		v1.POST("/auth/login", handlers.Login(d.DB, cfg))
		v1.GET("/leaderboard", handlers.GetLeaderboard(d.Leaderboard, cfg))

		matches := v1.Group("/matches")
		{
			matches.GET("/:id", handlers.GetMatch(d.Sessions))
			// The websocket carries its token in the query string.
			matches.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), ws.HandleWebSocket(d.Hub, d.Sessions, cfg))

			authed := matches.Group("")
			authed.Use(handlers.AuthMiddleware(cfg))
			authed.POST("", handlers.CreateMatch(d.Sessions))
			authed.DELETE("/:id", handlers.CloseMatch(d.Sessions))
		}
	}
}
