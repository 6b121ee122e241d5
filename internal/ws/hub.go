// Package ws implements the live queue feed: a websocket hub that groups
// client connections by office and broadcasts token transition events to
// them. It is the in-process implementation of events.Publisher; delivery is
// best effort and slow clients are disconnected rather than waited on.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/janseva/go-queue-backend/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

// Hub keeps the client connections grouped by office ID and fans broadcast
// messages out to them. Run must be started once in its own goroutine.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}

	register   chan *client
	unregister chan *client
	broadcast  chan broadcastMsg
}

type broadcastMsg struct {
	officeID string
	payload  []byte
}

// NewHub constructs an idle hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan broadcastMsg, 64),
	}
}

// Run processes register/unregister/broadcast until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.officeID] == nil {
				h.clients[c.officeID] = make(map[*client]struct{})
			}
			h.clients[c.officeID][c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[c.officeID]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					close(c.send)
					if len(set) == 0 {
						delete(h.clients, c.officeID)
					}
				}
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients[msg.officeID] {
				select {
				case c.send <- msg.payload:
				default:
					// Slow client: drop it instead of blocking the hub.
					close(c.send)
					delete(h.clients[msg.officeID], c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish implements events.Publisher. It never blocks the transition that
// produced the event: when the broadcast channel is full the event is
// dropped and logged.
func (h *Hub) Publish(ev events.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("token_id", ev.TokenID).Msg("marshal transition event")
		return
	}
	select {
	case h.broadcast <- broadcastMsg{officeID: ev.OfficeID, payload: payload}:
	default:
		log.Warn().Str("office_id", ev.OfficeID).Msg("event feed saturated, dropping event")
	}
}

// Subscribers returns the number of connections listening for an office.
func (h *Hub) Subscribers(officeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[officeID])
}

// client is one websocket connection subscribed to a single office feed.
type client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	officeID string
}

func (c *client) readPump() {
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
		// Incoming messages are ignored; the read loop only detects closure.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API serves browser clients on other origins; CORS posture is
	// enforced at the HTTP layer.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades GET /ws/offices/:id to a websocket subscribed to that
// office's transition feed.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		officeID := c.Param("id")
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			return
		}
		cl := &client{
			hub:      h,
			conn:     conn,
			send:     make(chan []byte, sendBuffer),
			officeID: officeID,
		}
		h.register <- cl
		go cl.writePump()
		go cl.readPump()
	}
}
