package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/middleware"
	"asistencia-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	srv := httptest.NewServer(HandleWebSocket(hub))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.GetClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNotifyReachesEveryDashboard(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv)
	b := dial(t, srv)
	waitForClients(t, hub, 2)

	hub.Notify(context.Background(), dashboard.Event{
		Type:   dashboard.EventSnapshotUpdated,
		Action: "entrada",
		Cedula: "100",
		Stats:  models.Stats{Total: 3, Present: 1},
	})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var ev dashboard.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type != dashboard.EventSnapshotUpdated || ev.Cedula != "100" || ev.Stats.Total != 3 {
			t.Fatalf("unexpected event: %+v", ev)
		}
	}
}

func TestPingGetsPong(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"pong"`) {
		t.Fatalf("expected pong, got %s", data)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestViewerFromTokenCookie(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	srv := httptest.NewServer(middleware.OptionalAuth("test-secret")(HandleWebSocket(hub)))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "jefe@example.com"}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Cookie": {middleware.TokenCookie + "=" + tok}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	dial(t, srv)
	waitForClients(t, hub, 2)

	hub.mu.RLock()
	viewers := map[string]bool{}
	for _, c := range hub.clients {
		viewers[c.Viewer] = true
	}
	hub.mu.RUnlock()
	if !viewers["jefe@example.com"] || !viewers["anonimo"] {
		t.Fatalf("unexpected viewers: %v", viewers)
	}
}
