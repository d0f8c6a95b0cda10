package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

const (
	EventSessionRevoked  = "session_revoked"
	EventSessionReleased = "session_released"
)

// WSEvent is pushed to a session's connected clients.
type WSEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// connection is a single websocket client bound to one session.
type connection struct {
	userID    string
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

// Hub tracks websocket clients per user so a superseded session can be told
// to stop playback.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*connection]bool // userID -> connections
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]map[*connection]bool),
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.connections[c.userID]
	if !ok {
		conns = make(map[*connection]bool)
		h.connections[c.userID] = conns
	}
	conns[c] = true
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *connection) {
	conns, ok := h.connections[c.userID]
	if !ok || !conns[c] {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.connections, c.userID)
	}
	close(c.send)
}

// Notify sends eventType to every connection of the given session and then
// disconnects them. It returns how many connections were notified.
func (h *Hub) Notify(userID, sessionID, eventType string) int {
	data, err := json.Marshal(&WSEvent{Type: eventType, SessionID: sessionID})
	if err != nil {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for c := range h.connections[userID] {
		if c.sessionID != sessionID {
			continue
		}
		select {
		case c.send <- data:
			n++
		default:
			// client too slow, it is dropped anyway
		}
		h.removeLocked(c)
	}
	return n
}

// Count reports the open connections of a user.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// ServeWS registers conn for the session and blocks until it disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, userID, sessionID string) {
	c := &connection{
		userID:    userID,
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, 16),
	}

	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// readPump only drains control frames; clients have nothing to say.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
