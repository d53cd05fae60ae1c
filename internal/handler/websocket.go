package handler

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"purecerts-console/internal/hub"
	"purecerts-console/internal/middleware"
	"purecerts-console/internal/session"
)

const (
	pongWait  = 60 * time.Second
	writeWait = 10 * time.Second
)

// StateSource gives a new connection the state it should compare against.
type StateSource interface {
	State() session.AuthState
}

// WebSocketHandler keeps every open page informed of session changes so the
// page can reload and let the route guard decide again.
type WebSocketHandler struct {
	Hub     *hub.Hub
	Session StateSource
}

type clientMessage struct {
	Type string `json:"type"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: middleware.SameOriginRequest,
}

type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) Write(message []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, message)
}

func (w *wsWriter) Close() error {
	return w.conn.Close()
}

func (h *WebSocketHandler) Serve(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	writer := &wsWriter{conn: ws}
	conn := hub.NewConnection(hub.TopicAuth, writer)
	h.Hub.Register(conn)
	defer func() {
		h.Hub.Unregister(conn)
		_ = ws.Close()
	}()

	// The page may have rendered before the latest change; send the current
	// state so it can catch up.
	if out, err := json.Marshal(hub.NewAuthEvent(h.Session.State())); err == nil {
		if err := writer.Write(out); err != nil {
			log.Printf("ws: initial state to %s: %v", conn.ID, err)
			return
		}
	}

	ws.SetReadLimit(4096)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() {
		closeOnce.Do(func() {
			close(done)
		})
	}
	defer closeDone()

	go func() {
		ticker := time.NewTicker(pongWait * 9 / 10)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					_ = ws.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			_ = writer.Write([]byte(`{"type":"pong"}`))
		}
	}
}
