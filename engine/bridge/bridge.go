// Package bridge mirrors panel events to websocket clients. Feature activations and projected
// feature positions are broadcast as JSON; clients may ask for a feature to be activated.
//
// Network goroutines never touch a panel. Activation requests are queued and drained on the frame
// loop through Drain.
package bridge

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-sphere/engine/overlay"
	"github.com/Carmen-Shannon/oxy-sphere/engine/panel"
	"github.com/gorilla/websocket"
)

const (
	// MessageFeatureActivated is sent when a feature is activated.
	MessageFeatureActivated = "featureActivated"
	// MessageProjection carries the latest projected features.
	MessageProjection = "projection"
	// MessageActivate is sent by clients to activate a feature by ID.
	MessageActivate = "activate"

	writeWait   = 5 * time.Second
	sendBacklog = 32
)

// Message is the envelope for every bridge message in both directions.
type Message struct {
	Type     string                     `json:"type"`
	Event    *panel.FeatureEvent        `json:"event,omitempty"`
	Features []overlay.ProjectedFeature `json:"features,omitempty"`
	ID       int                        `json:"id,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks websocket clients and fans out panel events.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	last     []byte
	requests chan int
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHub creates a hub.
//
// Parameters:
//   - logger: destination for connection logs; nil uses log.Default
//
// Returns:
//   - *Hub: the hub
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:  make(map[*client]struct{}),
		requests: make(chan int, sendBacklog),
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Attach subscribes the hub to a panel's activation and projection events.
//
// Parameters:
//   - p: the panel to mirror
func (h *Hub) Attach(p panel.Panel) {
	p.OnFeatureActivated(h.PublishActivation)
	p.OnProjected(h.PublishProjection)
}

// PublishActivation broadcasts a feature activation.
func (h *Hub) PublishActivation(ev panel.FeatureEvent) {
	h.broadcast(Message{Type: MessageFeatureActivated, Event: &ev}, false)
}

// PublishProjection broadcasts projected features when they differ from the previous broadcast.
// New clients receive the latest projection on connect.
func (h *Hub) PublishProjection(features []overlay.ProjectedFeature) {
	h.broadcast(Message{Type: MessageProjection, Features: features}, true)
}

func (h *Hub) broadcast(msg Message, remember bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("[Bridge] marshal %s: %v", msg.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if remember {
		if string(data) == string(h.last) {
			return
		}
		h.last = data
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Printf("[Bridge] dropping slow client %s", c.conn.RemoteAddr())
			h.removeLocked(c)
		}
	}
}

// Drain hands every queued activation request to fn. Call it from the frame loop.
//
// Parameters:
//   - fn: receives each requested feature ID
//
// Returns:
//   - int: the number of requests handled
func (h *Hub) Drain(fn func(id int)) int {
	n := 0
	for {
		select {
		case id := <-h.requests:
			fn(id)
			n++
		default:
			return n
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[Bridge] upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBacklog)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("[Bridge] discarding malformed message from %s: %v", c.conn.RemoteAddr(), err)
			continue
		}
		if msg.Type != MessageActivate {
			continue
		}
		select {
		case h.requests <- msg.ID:
		default:
			h.logger.Printf("[Bridge] activation queue full, dropping feature %d", msg.ID)
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// removeLocked drops a client and stops its writer. Caller must hold the mutex.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}
