package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/brickduel/internal/session"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck reports server health and how many matches are being hosted.
func HealthCheck(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		live := 0
		if mgr != nil {
			live = mgr.Count()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"service":       "brickduel-api",
			"version":       version,
			"uptime":        time.Since(startTime).String(),
			"live_sessions": live,
		})
	}
}
