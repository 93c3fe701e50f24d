package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/aiobridge/internal/discovery"
	"github.com/muurk/aiobridge/internal/logging"
)

const (
	// FeedPath is the WebSocket endpoint
	FeedPath = "/ws"
	// StatePath is the JSON snapshot endpoint
	StatePath = "/state"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Config holds the feed server configuration
type Config struct {
	Listen    string // e.g. ":8089"
	Advertise bool   // Register the feed over mDNS
	Instance  string // mDNS instance name, defaults to the hostname
}

// Server represents the live state feed server
type Server struct {
	config   *Config
	hub      *Hub
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

// New creates a feed server serving hub
func New(config *Config, hub *Hub) *Server {
	return &Server{
		config: config,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler of the feed
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(FeedPath, s.serveFeed)
	mux.HandleFunc(StatePath, s.serveState)
	return mux
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Feed server listening", zap.String("addr", ln.Addr().String()))

	if s.config.Advertise {
		if adv := s.advertise(ln.Addr()); adv != nil {
			defer adv.Shutdown()
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		return s.shutdown(httpServer)
	case err := <-errChan:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// advertise registers the feed over mDNS. Failure only costs discoverability.
func (s *Server) advertise(addr net.Addr) discovery.Advertiser {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil
	}
	instance := s.config.Instance
	if instance == "" {
		instance, _ = os.Hostname()
	}
	if instance == "" {
		instance = "aiobridge"
	}

	adv, err := discovery.AdvertiseFeed(instance, tcpAddr.Port, FeedPath)
	if err != nil {
		logging.Warn("Feed mDNS advertisement failed", zap.Error(err))
		return nil
	}
	logging.Info("Feed advertised over mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.FeedServiceType),
		zap.Int("port", tcpAddr.Port),
	)
	return adv
}

// shutdown stops accepting requests and disconnects every feed client
func (s *Server) shutdown(httpServer *http.Server) error {
	logging.Info("Shutting down feed server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := httpServer.Shutdown(ctx)
	s.hub.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All feed clients closed gracefully")
	case <-ctx.Done():
		logging.Warn("Feed shutdown timeout, forcing close")
	}
	return err
}

// serveState writes the current values as a JSON object
func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.hub.Values()); err != nil {
		logging.Debug("Failed to write state snapshot", zap.Error(err))
	}
}

// serveFeed upgrades the request and streams the snapshot then live updates
func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Failed to upgrade feed connection",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c, snapshot, ok := s.hub.register()
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	logging.Info("Feed client connected", zap.String("remote_addr", r.RemoteAddr))

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.writePump(conn, c, snapshot)
	}()
	go func() {
		defer s.wg.Done()
		s.readPump(conn, c)
	}()
}

// readPump discards client messages and notices when the client goes away
func (s *Server) readPump(conn *websocket.Conn, c *client) {
	defer func() {
		s.hub.unregister(c)
		_ = conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("Feed client read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump is the only writer on conn
func (s *Server) writePump(conn *websocket.Conn, c *client, snapshot []Message) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for _, msg := range snapshot {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}

	for {
		select {
		case data, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
