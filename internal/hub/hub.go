// Package hub fans events out to the live websocket connections of each topic.
package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"purecerts-console/internal/session"
)

// TopicAuth carries session changes to every open console page.
const TopicAuth = "auth"

type Writer interface {
	Write(message []byte) error
	Close() error
}

type Connection struct {
	ID     string
	Topic  string
	Writer Writer
}

// NewConnection gives the connection a random ID for logging.
func NewConnection(topic string, w Writer) *Connection {
	return &Connection{ID: uuid.NewString(), Topic: topic, Writer: w}
}

type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{}
}

func New() *Hub {
	return &Hub{connections: make(map[string]map[*Connection]struct{})}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[conn.Topic] == nil {
		h.connections[conn.Topic] = make(map[*Connection]struct{})
	}
	h.connections[conn.Topic][conn] = struct{}{}
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.connections[conn.Topic]
	if set == nil {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.connections, conn.Topic)
	}
}

func (h *Hub) Len(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[topic])
}

// Broadcast writes message to every connection of topic. Connections whose
// write fails are closed and dropped.
func (h *Hub) Broadcast(topic string, message []byte) {
	h.mu.RLock()
	set := h.connections[topic]
	conns := make([]*Connection, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var failed []*Connection
	for _, c := range conns {
		if err := c.Writer.Write(message); err != nil {
			log.Printf("hub: drop %s connection %s: %v", c.Topic, c.ID, err)
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		_ = c.Writer.Close()
		h.Unregister(c)
	}
}

// AuthEvent is the message pages receive on TopicAuth.
type AuthEvent struct {
	Type          string `json:"type"`
	Authenticated bool   `json:"authenticated"`
	Loading       bool   `json:"loading"`
}

func NewAuthEvent(st session.AuthState) AuthEvent {
	return AuthEvent{Type: TopicAuth, Authenticated: st.IsAuthenticated(), Loading: st.Loading}
}

// PublishAuth is shaped for session.Store.Subscribe.
func (h *Hub) PublishAuth(st session.AuthState) {
	data, err := json.Marshal(NewAuthEvent(st))
	if err != nil {
		log.Printf("hub: encode auth event: %v", err)
		return
	}
	h.Broadcast(TopicAuth, data)
}
