package monitor

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/aiobridge/internal/server"
)

func feedServer(t *testing.T, hub *server.Hub) string {
	t.Helper()
	ts := httptest.NewServer(server.New(&server.Config{}, hub).Handler())
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + server.FeedPath
}

func TestConnect_ReadsSnapshot(t *testing.T) {
	hub := server.NewHub()
	_ = hub.SetState("info.connection", "true")
	url := feedServer(t, hub)

	feed, err := Connect(context.Background(), url)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() { _ = feed.Close() }()

	msg, err := feed.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if msg.Key != "info.connection" || msg.Value != "true" {
		t.Errorf("Next() = %+v", msg)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	if _, err := Connect(context.Background(), "ws://127.0.0.1:1/ws"); err == nil {
		t.Error("Connect() to a closed port should fail")
	}
}

func TestRunPlain(t *testing.T) {
	hub := server.NewHub()
	_ = hub.SetState("receivedIrData", "abc123")
	_ = hub.SetState("id07", "7")
	url := feedServer(t, hub)

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- RunPlain(context.Background(), url, &out) }()

	// The snapshot is written before any close, so ending the feed as soon
	// as the client is registered still delivers both values
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunPlain() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunPlain() did not return after the feed closed")
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("RunPlain() wrote %d lines, want 2:\n%s", len(lines), out.String())
	}
	if !strings.HasSuffix(lines[0], " id07=7") || !strings.HasSuffix(lines[1], " receivedIrData=abc123") {
		t.Errorf("lines = %q", lines)
	}
}

func TestModel_Update(t *testing.T) {
	m := NewModel(context.Background(), "ws://bridge:8089/ws")

	if !strings.Contains(m.View(), "Connecting") {
		t.Error("View() before connect should show the spinner line")
	}

	next, _ := m.Update(connectedMsg{feed: &Feed{}})
	m = next.(Model)
	if !strings.Contains(m.View(), "gateway not connected") {
		t.Error("View() without info.connection should show not connected")
	}

	for _, s := range []server.Message{
		{Key: "info.connection", Value: "true", Time: time.Now()},
		{Key: "receivedIrData", Value: "abc123", Time: time.Now()},
		{Key: "receivedIrData", Value: "def456", Time: time.Now()},
	} {
		next, _ = m.Update(stateMsg{msg: s})
		m = next.(Model)
	}

	view := m.View()
	for _, want := range []string{"gateway connected", "receivedIrData", "def456", "3 updates"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "abc123") {
		t.Error("View() should only show the latest IR code")
	}
}

func TestModel_FeedClosed(t *testing.T) {
	m := NewModel(context.Background(), "ws://bridge:8089/ws")
	next, cmd := m.Update(feedClosedMsg{err: errors.New("connection refused")})
	m = next.(Model)

	if cmd != nil {
		t.Error("a closed feed should not schedule more reads")
	}
	if !strings.Contains(m.View(), "connection refused") {
		t.Errorf("View() should show the close reason:\n%s", m.View())
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(context.Background(), "ws://bridge:8089/ws")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
