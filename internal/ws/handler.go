package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playmatatu/brickduel/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client is the websocket connection driving one session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	session   *session.Session
	sessionID string
	playerID  int
	send      chan []byte
}

// Hub maintains the connected clients, one per session
type Hub struct {
	clients    map[string]*Client // sessionID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, exists := h.clients[client.sessionID]; exists {
				log.Printf("[WS] Session %s reconnecting - closing old connection", client.sessionID)
				if err := old.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(5*time.Second)); err != nil {
					log.Printf("[WS] Error writing close control to old client of %s: %v", old.sessionID, err)
				}
				old.conn.Close()
				close(old.send)
			}
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			log.Printf("[WS] Player %d connected to session %s", client.playerID, client.sessionID)

			client.sendMessage(session.Message{Type: session.MsgSnapshot, Data: client.session.Snapshot()})

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.sessionID]; ok && cur == client {
				delete(h.clients, client.sessionID)
				close(client.send)
				log.Printf("[WS] Player %d disconnected from session %s", client.playerID, client.sessionID)
			}
			h.mu.Unlock()
		}
	}
}

// Publish sends a session message to the connected client, if any.
func (h *Hub) Publish(sessionID string, msg session.Message) {
	msg.SessionID = sessionID
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] Error marshaling %s message: %v", msg.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, exists := h.clients[sessionID]
	if !exists {
		return
	}
	select {
	case client.send <- data:
	default:
		// Snapshots are superseded by the next one; dropping is fine.
		log.Printf("[WS] Publish dropped %s for session %s (buffer full)", msg.Type, sessionID)
	}
}

// Connected reports whether a client is attached to the session.
func (h *Hub) Connected(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sessionID]
	return ok
}

// WSMessage is an inbound client message
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel; best-effort close frame.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for session %s: %v", c.sessionID, err)
				return
			}
		}
	}
}

// sendMessage queues a message for this client only. It is a no-op once the
// hub has dropped the client, so the send channel is never written after close.
func (c *Client) sendMessage(msg session.Message) {
	msg.SessionID = c.sessionID
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] Error marshaling %s message: %v", msg.Type, err)
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if cur, ok := c.hub.clients[c.sessionID]; !ok || cur != c {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] sendMessage dropped %s for session %s (buffer full)", msg.Type, c.sessionID)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendMessage(session.Message{Type: session.MsgError, Data: map[string]string{"message": message}})
}
