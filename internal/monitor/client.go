package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/aiobridge/internal/server"
)

// DefaultDialTimeout bounds the WebSocket handshake
const DefaultDialTimeout = 5 * time.Second

// Feed is a connection to a bridge state feed
type Feed struct {
	conn *websocket.Conn
}

// Connect dials the feed at url
func Connect(ctx context.Context, url string) (*Feed, error) {
	dialer := websocket.Dialer{HandshakeTimeout: DefaultDialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to feed %s: %w", url, err)
	}
	return &Feed{conn: conn}, nil
}

// Next blocks until the next state update arrives
func (f *Feed) Next() (server.Message, error) {
	var msg server.Message
	if err := f.conn.ReadJSON(&msg); err != nil {
		return server.Message{}, err
	}
	return msg, nil
}

// Close closes the connection
func (f *Feed) Close() error {
	_ = f.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return f.conn.Close()
}
