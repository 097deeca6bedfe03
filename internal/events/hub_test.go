package events

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"blogspace/internal/common/logger"
)

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial hub: %v", err)
	}
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		n := len(hub.clients)
		hub.mu.Unlock()
		if n == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d registered clients", want)
}

func TestHub_BroadcastsPostsChanged(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	hub := NewHub(log)
	defer hub.Close()

	server := httptest.NewServer(hub.Handler())
	defer server.Close()

	conn := dialHub(t, server)
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.PostsChanged()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if event.Type != "posts_changed" {
		t.Errorf("expected posts_changed, got %q", event.Type)
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	hub := NewHub(log)
	defer hub.Close()

	server := httptest.NewServer(hub.Handler())
	defer server.Close()

	first := dialHub(t, server)
	defer first.Close()
	second := dialHub(t, server)
	defer second.Close()
	waitForClients(t, hub, 2)

	hub.PostsChanged()

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		if event.Type != "posts_changed" {
			t.Errorf("expected posts_changed, got %q", event.Type)
		}
	}
}

func TestHub_ClosedHubRejectsClients(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	hub := NewHub(log)

	server := httptest.NewServer(hub.Handler())
	defer server.Close()

	hub.Close()

	conn := dialHub(t, server)
	defer conn.Close()

	// the hub closes the connection instead of registering it
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed by the hub")
	}
}
