package ws

import (
	"encoding/json" // Event marshaling
	"net/http"      // Upgrade request

	"github.com/techadnank9/alien-miniapp-uber/internal/domain" // Ride records

	"github.com/gorilla/websocket" // WebSocket transport
	"github.com/sirupsen/logrus"   // Logging library
)

// sendBuffer bounds each client's outbound queue; clients that fall this far
// behind are disconnected rather than allowed to block the fan-out.
const sendBuffer = 32

// upgrader accepts connections from any origin, matching the open CORS policy
// of the HTTP surface.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// rideEvent is the single event type carried on the realtime channel.
type rideEvent struct {
	Event string       `json:"event"` // Always "ride:update"
	Ride  *domain.Ride `json:"ride"`  // Full updated ride record
}

// client is one connected subscriber.
type client struct {
	conn *websocket.Conn // Underlying connection
	send chan []byte     // Buffered outbound queue
}

// Hub fans ride updates out to every connected subscriber. Delivery is
// best-effort and at-most-once: no acknowledgment, no replay for late joiners.
type Hub struct {
	clients    map[*client]struct{} // Connected subscribers
	register   chan *client         // Pending registrations
	unregister chan *client         // Pending removals
	broadcast  chan []byte          // Frames to fan out
}

// NewHub creates a Hub. Run must be started on its own goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run owns the client set; all membership changes and fan-out go through here.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{} // Add subscriber
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c) // Remove subscriber
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg: // Queue for delivery
				default:
					// Slow consumer: drop it instead of stalling everyone
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// BroadcastRideUpdate publishes the full ride record to all subscribers.
// Never blocks the caller; an overflowing broadcast queue drops the event.
func (h *Hub) BroadcastRideUpdate(ride *domain.Ride) {
	msg, err := json.Marshal(rideEvent{Event: "ride:update", Ride: ride})
	if err != nil {
		logrus.WithField("ride_id", ride.ID).Error("Ride event marshal failed")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logrus.WithField("ride_id", ride.ID).Warn("Broadcast queue full, ride event dropped")
	}
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("WebSocket upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register <- c
	go c.writeLoop()
	go c.readLoop(h)
}

// writeLoop drains the send queue onto the connection.
func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return // Connection gone; readLoop handles unregistration
		}
	}
	// Hub closed the queue
	_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
}

// readLoop discards inbound frames (subscribers only listen) and detects closes.
func (c *client) readLoop(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
