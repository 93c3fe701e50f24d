package server

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/aiobridge/internal/logging"
)

// sendBuffer is the per-client queue length. A client that falls this far
// behind is disconnected.
const sendBuffer = 256

// Message is one state update on the feed
type Message struct {
	Key   string    `json:"key"`
	Value string    `json:"value"`
	Time  time.Time `json:"time"`
}

// client is one feed subscriber
type client struct {
	send chan []byte
}

// Hub keeps the latest value of every key and fans updates out to clients.
// It is safe for concurrent use.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	latest  map[string]Message
	closed  bool
	now     func() time.Time
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		latest:  make(map[string]Message),
		now:     time.Now,
	}
}

// SetState records value and broadcasts it to every client
func (h *Hub) SetState(key, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := Message{Key: key, Value: value, Time: h.now()}
	h.latest[key] = msg

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logging.Warn("Dropping slow feed client", zap.String("key", key))
			close(c.send)
			delete(h.clients, c)
		}
	}
	return nil
}

// Snapshot returns the latest message of every key, sorted by key
func (h *Hub) Snapshot() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *Hub) snapshotLocked() []Message {
	msgs := make([]Message, 0, len(h.latest))
	for _, m := range h.latest {
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Key < msgs[j].Key })
	return msgs
}

// Values returns the latest value of every key
func (h *Hub) Values() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	values := make(map[string]string, len(h.latest))
	for k, m := range h.latest {
		values[k] = m.Value
	}
	return values
}

// register adds a client and returns the snapshot it must be sent first.
// Both happen under the lock so no update falls between them.
func (h *Hub) register() (*client, []Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, nil, false
	}
	c := &client{send: make(chan []byte, sendBuffer)}
	h.clients[c] = struct{}{}
	return c, h.snapshotLocked(), true
}

// unregister removes c if the hub still holds it
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
