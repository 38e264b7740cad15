package room

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// roomMessage is a marshaled message addressed to one room.
type roomMessage struct {
	roomID string
	data   []byte
}

// Hub manages room-scoped WebSocket connections and event fan-out.
// It implements Notifier.
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan roomMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// Client represents one member's WebSocket connection to a room.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	id     string
	roomID string
}

// NewHub creates a new room hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan roomMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With().Str("component", "hub").Logger(),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			members, ok := h.rooms[client.roomID]
			if !ok {
				members = make(map[*Client]bool)
				h.rooms[client.roomID] = members
			}
			members[client] = true
			h.mu.Unlock()

			h.logger.Debug().
				Str("clientID", client.id).
				Str("roomID", client.roomID).
				Msg("client joined room")

		case client := <-h.unregister:
			h.mu.Lock()
			if members, ok := h.rooms[client.roomID]; ok {
				if _, ok := members[client]; ok {
					delete(members, client)
					close(client.send)
					if len(members) == 0 {
						delete(h.rooms, client.roomID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[msg.roomID] {
				select {
				case client.send <- msg.data:
				default:
					// Slow member: drop it rather than block the room.
					close(client.send)
					delete(h.rooms[msg.roomID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish sends an event to all members currently joined to roomID.
// Delivery is fire and forget; members that are attached when the hub
// processes the message receive it at least once, in publish order.
func (h *Hub) Publish(roomID string, event Event) error {
	data, err := json.Marshal(Message{
		Type:  MessageTypeRoomEvent,
		Event: event,
	})
	if err != nil {
		return err
	}
	h.broadcast <- roomMessage{roomID: roomID, data: data}
	return nil
}

// MemberCount returns the number of clients joined to a room.
func (h *Hub) MemberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// HandleWebSocket handles WebSocket connection upgrade and joins the
// client to the room named by the roomId query parameter.
func (h *Hub) HandleWebSocket(c echo.Context) error {
	roomID := c.QueryParam("roomId")
	if roomID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Missing or empty 'roomId' parameter",
		})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		id:     uuid.NewString(),
		roomID: roomID,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
// The core only listens for liveness; inbound payloads are discarded.
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
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().
					Err(err).
					Str("clientID", c.id).
					Msg("unexpected close")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
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
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Send any queued messages as separate frames
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
