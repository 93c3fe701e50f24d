package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialFeed(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + FeedPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestFeed_SnapshotThenLive(t *testing.T) {
	hub := NewHub()
	_ = hub.SetState("a", "1")
	_ = hub.SetState("b", "2")

	ts := httptest.NewServer(New(&Config{}, hub).Handler())
	defer ts.Close()

	conn := dialFeed(t, ts)
	_ = hub.SetState("c", "3")

	want := []Message{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "c", Value: "3"}}
	for _, w := range want {
		got := readMessage(t, conn)
		if got.Key != w.Key || got.Value != w.Value {
			t.Errorf("message = %s=%s, want %s=%s", got.Key, got.Value, w.Key, w.Value)
		}
		if got.Time.IsZero() {
			t.Errorf("message %s has no time", got.Key)
		}
	}
}

func TestFeed_HubCloseDisconnects(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(New(&Config{}, hub).Handler())
	defer ts.Close()

	conn := dialFeed(t, ts)

	// Wait until the handler has registered the client
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going-away close", err)
	}
}

func TestState(t *testing.T) {
	hub := NewHub()
	_ = hub.SetState("info.connection", "true")
	_ = hub.SetState("id07", "7")

	ts := httptest.NewServer(New(&Config{}, hub).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + StatePath)
	if err != nil {
		t.Fatalf("GET %s error = %v", StatePath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var values map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&values); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if values["info.connection"] != "true" || values["id07"] != "7" {
		t.Errorf("state = %v", values)
	}
}

func TestState_MethodNotAllowed(t *testing.T) {
	ts := httptest.NewServer(New(&Config{}, NewHub()).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+StatePath, "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestServe_ShutdownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	hub := NewHub()
	srv := New(&Config{}, hub)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + StatePath)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	if _, _, ok := hub.register(); ok {
		t.Error("hub should be closed after shutdown")
	}
}
