package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"purecerts-console/internal/hub"
)

func dialAuth(t *testing.T, tc *testConsole) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(tc.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/auth"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) hub.AuthEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev hub.AuthEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return ev
}

func TestWebSocket_SendsCurrentStateOnConnect(t *testing.T) {
	tc := newTestConsole(t)
	conn := dialAuth(t, tc)

	ev := readEvent(t, conn)
	if ev.Type != "auth" || !ev.Loading || ev.Authenticated {
		t.Fatalf("unexpected initial event %+v", ev)
	}
}

func TestWebSocket_PushesSessionChanges(t *testing.T) {
	tc := newTestConsole(t)
	tc.initialize(t)
	conn := dialAuth(t, tc)

	if ev := readEvent(t, conn); ev.Authenticated || ev.Loading {
		t.Fatalf("unexpected initial event %+v", ev)
	}

	// Registration happens before the initial write, so the hub already knows the connection.
	if n := tc.hub.Len(hub.TopicAuth); n != 1 {
		t.Fatalf("expected 1 registered connection, got %d", n)
	}

	tc.signIn(t)
	if ev := readEvent(t, conn); !ev.Authenticated {
		t.Fatalf("expected authenticated event, got %+v", ev)
	}

	tc.store.SignOut(context.Background())
	if ev := readEvent(t, conn); ev.Authenticated {
		t.Fatalf("expected signed-out event, got %+v", ev)
	}
}

func TestWebSocket_PingPong(t *testing.T) {
	tc := newTestConsole(t)
	conn := dialAuth(t, tc)
	readEvent(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var resp map[string]any
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if resp["type"] != "pong" {
		t.Fatalf("expected pong, got %v", resp)
	}
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	tc := newTestConsole(t)
	srv := httptest.NewServer(tc.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/auth"
	header := http.Header{"Origin": {"https://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		_ = conn.Close()
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", resp)
	}
}
