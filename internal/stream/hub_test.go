package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server, origin string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBroadcast(t *testing.T) {
	h := NewHub("*")
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	a := dial(t, srv, "")
	b := dial(t, srv, "")
	waitForClients(t, h, 2)

	h.Broadcast("analysis", map[string]string{"symbol": "TCS"})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var ev struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type != "analysis" || ev.Data["symbol"] != "TCS" {
			t.Fatalf("unexpected event %s", msg)
		}
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	h := NewHub("")
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn := dial(t, srv, "")
	waitForClients(t, h, 1)
	conn.Close()
	waitForClients(t, h, 0)
}

func TestRunClosesClientsOnShutdown(t *testing.T) {
	h := NewHub("")
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn := dial(t, srv, "")
	waitForClients(t, h, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { h.Run(ctx); close(done) }()
	cancel()
	<-done

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
	if h.Clients() != 0 {
		t.Fatalf("clients left after shutdown: %d", h.Clients())
	}
}

func TestOriginCheck(t *testing.T) {
	h := NewHub("https://desk.example.com")
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": {"https://evil.example.com"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("expected upgrade to be refused for foreign origin")
	}
	dial(t, srv, "https://desk.example.com")
	waitForClients(t, h, 1)
}
