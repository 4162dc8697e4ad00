package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const playerIDKey = "player_id"

// playerIDFrom returns the player id set by AuthMiddleware.
func playerIDFrom(c *gin.Context) (int, bool) {
	v, ok := c.Get(playerIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok && id > 0
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def, maxVal int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxVal)
}
