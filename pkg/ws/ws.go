// Package ws pushes server events to connected users over gorilla/websocket.
//
// Each connection belongs to one user. The hub delivers a message to every
// connection of a user:
//
//	hub := ws.NewHub()
//	go hub.Run(ctx)
//
//	router.Handle("/ws/orders", "ws.orders", ws.Handler(hub))
//	hub.SendTo(userID, payload)
package ws

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins by default; restrict with SetCheckOrigin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client is a single connection of a user.
type Client struct {
	hub    *Hub
	userID uint
	conn   *websocket.Conn
	send   chan []byte
}

// readPump only services control frames; the feed is server to client.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
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

// ─── Hub ──────────────────────────────────────────────────────────────────────

type addressed struct {
	userID uint
	data   []byte
}

// Hub tracks connections by user. All maps are owned by the Run loop.
type Hub struct {
	users      map[uint]map[*Client]struct{}
	direct     chan addressed
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	total      atomic.Int64
}

// NewHub creates a new Hub. Call hub.Run(ctx) in a goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		users:      make(map[uint]map[*Client]struct{}),
		direct:     make(chan addressed, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub event loop and returns when ctx is done, closing every
// connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.users {
				for c := range clients {
					close(c.send)
				}
			}
			h.users = make(map[uint]map[*Client]struct{})
			h.total.Store(0)
			return

		case c := <-h.register:
			if h.users[c.userID] == nil {
				h.users[c.userID] = make(map[*Client]struct{})
			}
			h.users[c.userID][c] = struct{}{}
			h.total.Add(1)
			logger.Debug("ws: client connected", "user_id", c.userID, "total", h.total.Load())

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.direct:
			for c := range h.users[msg.userID] {
				select {
				case c.send <- msg.data:
				default:
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	clients, ok := h.users[c.userID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.users, c.userID)
	}
	close(c.send)
	h.total.Add(-1)
	logger.Debug("ws: client disconnected", "user_id", c.userID, "total", h.total.Load())
}

// SendTo queues data for every connection of userID. It never blocks; when
// the hub is saturated the message is dropped and false is returned.
func (h *Hub) SendTo(userID uint, data []byte) bool {
	select {
	case h.direct <- addressed{userID: userID, data: data}:
		return true
	default:
		return false
	}
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int { return int(h.total.Load()) }

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Handler upgrades authenticated requests and registers the connection under
// the caller's user id. Anonymous callers get 401 before any upgrade.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := auth.FromContext(r.Context())
		if !id.Authenticated() {
			response.Unauthorized(w)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithCtx(r.Context()).Warn("ws: upgrade failed", "error", err)
			return
		}
		client := &Client{hub: hub, userID: id.UserID, conn: conn, send: make(chan []byte, 64)}
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}
		go client.writePump()
		go client.readPump()
	}
}
