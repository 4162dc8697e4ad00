package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/playmatatu/brickduel/internal/accounts"
	"github.com/playmatatu/brickduel/internal/config"
	"github.com/playmatatu/brickduel/internal/game"
	"github.com/playmatatu/brickduel/internal/session"
)

// Inbound message types
const (
	MsgInput    = "input"
	MsgCommand  = "command"
	MsgGetState = "get_state"
)

// CommandData is the payload of a command message.
type CommandData struct {
	Name string `json:"name"`
}

// HandleWebSocket upgrades GET /matches/:id/ws. The bearer token travels in
// the token query parameter and must belong to the session owner.
func HandleWebSocket(hub *Hub, mgr *session.Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		claims, err := accounts.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		s, err := mgr.Get(sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		if s.PlayerID != claims.PlayerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "match belongs to another player"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:       hub,
			conn:      conn,
			session:   s,
			sessionID: s.ID,
			playerID:  claims.PlayerID,
			send:      make(chan []byte, sendBuffer),
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads inbound messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] unexpected close for session %s: %v", c.sessionID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage applies one inbound message to the session.
func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case MsgInput:
		var in game.Input
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			c.sendError("Invalid input data")
			return
		}
		c.session.SetInput(in)

	case MsgCommand:
		var data CommandData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.Name == "" {
			c.sendError("Invalid command data")
			return
		}
		if err := c.session.Command(data.Name); err != nil {
			if !errors.Is(err, session.ErrUnknownCommand) && !errors.Is(err, game.ErrInvalidPhase) {
				log.Printf("[WS] command %s failed for session %s: %v", data.Name, c.sessionID, err)
			}
			c.sendError(err.Error())
		}

	case MsgGetState:
		c.sendMessage(session.Message{Type: session.MsgSnapshot, Data: c.session.Snapshot()})

	default:
		c.sendError("Unknown message type")
	}
}
