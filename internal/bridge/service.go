package bridge

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/muurk/aiobridge/internal/discovery"
	"github.com/muurk/aiobridge/internal/events"
	"github.com/muurk/aiobridge/internal/gateway"
	"github.com/muurk/aiobridge/internal/logging"
	"github.com/muurk/aiobridge/internal/session"
	"github.com/muurk/aiobridge/internal/store"
	"github.com/muurk/aiobridge/internal/wire"
)

// commandBuffer lets store callbacks hand over writes while the owner loop
// is busy publishing
const commandBuffer = 16

// Config holds the service configuration
type Config struct {
	Target           session.Target
	EventPort        int    // Defaults to wire.EventPort
	DiscoveryPort    int    // Defaults to wire.DiscoveryPort
	BroadcastAddress string // Defaults to wire.BroadcastAddress

	// Pre-bound sockets. When set the service uses them instead of binding
	// its own, and closes them when Run returns.
	EventConn     net.PacketConn
	DiscoveryConn net.PacketConn
	ProbeAddr     net.Addr
}

// Stats counts what the service has handled
type Stats struct {
	Replies          int64 // Discovery replies received
	Events           int64 // Event datagrams received
	EventsDropped    int64 // Event datagrams that failed to decode
	CommandsRelayed  int64
	CommandsDropped  int64 // Commands received while unbound
	SysVarsPublished int64
}

// Service is the gateway session. A Service runs once.
type Service struct {
	config *Config
	store  store.Store
	client *gateway.Client

	commands chan string
	wg       sync.WaitGroup

	mu       sync.Mutex
	snapshot session.Snapshot

	replies, evts, evtsDropped         atomic.Int64
	relayed, dropped, sysVarsPublished atomic.Int64
}

// New creates a Service publishing to st and talking HTTP through client
func New(config *Config, st store.Store, client *gateway.Client) *Service {
	cfg := *config
	config = &cfg
	if config.EventPort == 0 {
		config.EventPort = wire.EventPort
	}
	if config.DiscoveryPort == 0 {
		config.DiscoveryPort = wire.DiscoveryPort
	}
	if config.BroadcastAddress == "" {
		config.BroadcastAddress = wire.BroadcastAddress
	}
	if client == nil {
		client = gateway.NewClient()
	}

	return &Service{
		config:   config,
		store:    st,
		client:   client,
		commands: make(chan string, commandBuffer),
		snapshot: session.NewState(config.Target).Snapshot(),
	}
}

// Session returns a copy of the current session state
func (s *Service) Session() session.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Stats returns the current counters
func (s *Service) Stats() Stats {
	return Stats{
		Replies:          s.replies.Load(),
		Events:           s.evts.Load(),
		EventsDropped:    s.evtsDropped.Load(),
		CommandsRelayed:  s.relayed.Load(),
		CommandsDropped:  s.dropped.Load(),
		SysVarsPublished: s.sysVarsPublished.Load(),
	}
}

// Run binds the sockets, sends the discovery probe and serves until ctx is
// cancelled. It only returns an error when startup fails.
func (s *Service) Run(ctx context.Context) error {
	eventConn, discoveryConn, probeAddr, err := s.openSockets()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)

	var readers sync.WaitGroup
	defer func() {
		cancel()
		closeConn(eventConn, discovery.SocketEvents)
		closeConn(discoveryConn, discovery.SocketDiscovery)
		readers.Wait()
		s.wg.Wait()
		logging.Info("Gateway service stopped", zap.Any("stats", s.Stats()))
	}()

	state := session.NewState(s.config.Target)
	s.updateSnapshot(state)

	logging.Info("Starting gateway service",
		zap.Stringer("target", s.config.Target),
		zap.String("event_addr", eventConn.LocalAddr().String()),
		zap.String("probe_addr", probeAddr.String()),
	)
	if s.config.Target.Mode == session.ModeNone {
		logging.Error("No gateway detection method configured, the bridge will stay unbound")
	}

	if err := s.prepareStore(ctx); err != nil {
		return err
	}

	replies := make(chan discovery.Packet)
	eventPackets := make(chan discovery.Packet)

	readers.Add(3)
	go func() {
		defer readers.Done()
		defer close(replies)
		if err := discovery.ReadPackets(ctx, discoveryConn, discovery.SocketDiscovery, replies); err != nil {
			logging.Error("Discovery reader stopped", zap.Error(err))
		}
	}()
	go func() {
		defer readers.Done()
		defer close(eventPackets)
		if err := discovery.ReadPackets(ctx, eventConn, discovery.SocketEvents, eventPackets); err != nil {
			logging.Error("Event reader stopped", zap.Error(err))
		}
	}()
	go func() {
		defer readers.Done()
		for pkt := range eventPackets {
			s.handleEvent(pkt)
		}
	}()

	if err := discovery.SendProbe(discoveryConn, probeAddr); err != nil {
		logging.Warn("Discovery probe failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case pkt, ok := <-replies:
			if !ok {
				// Discovery socket failed; events and commands are still served
				replies = nil
				continue
			}
			s.handleReply(ctx, state, pkt)
		case code := <-s.commands:
			s.handleCommand(ctx, state, code)
		}
	}
}

// openSockets returns the configured sockets, binding the missing ones. On
// failure everything opened so far is closed.
func (s *Service) openSockets() (net.PacketConn, net.PacketConn, net.Addr, error) {
	eventConn, discoveryConn := s.config.EventConn, s.config.DiscoveryConn
	fail := func(err error) (net.PacketConn, net.PacketConn, net.Addr, error) {
		closeConn(eventConn, discovery.SocketEvents)
		closeConn(discoveryConn, discovery.SocketDiscovery)
		return nil, nil, nil, err
	}

	var err error
	if eventConn == nil {
		if eventConn, err = discovery.ListenEvents(s.config.EventPort); err != nil {
			return fail(err)
		}
	}
	if discoveryConn == nil {
		if discoveryConn, err = discovery.ListenDiscovery(); err != nil {
			return fail(err)
		}
	}

	probeAddr := s.config.ProbeAddr
	if probeAddr == nil {
		addr, err := discovery.ProbeAddr(s.config.BroadcastAddress, s.config.DiscoveryPort)
		if err != nil {
			return fail(err)
		}
		probeAddr = addr
	}
	return eventConn, discoveryConn, probeAddr, nil
}

// prepareStore declares the fixed states, resets the connection flag and
// subscribes to outbound commands.
func (s *Service) prepareStore(ctx context.Context) error {
	for _, def := range []store.Definition{
		store.ConnectionDefinition,
		store.ReceivedIRDefinition,
		store.SendIRDefinition,
	} {
		if err := s.store.Declare(def); err != nil {
			logging.Warn("Failed to declare state", zap.String("key", def.Key), zap.Error(err))
		}
	}

	s.publish(store.KeyConnection, store.BoolValue(false))

	return s.store.Subscribe(store.KeySendIR, func(value string) {
		logging.Info("State changed", zap.String("key", store.KeySendIR), zap.String("value", value))
		select {
		case s.commands <- value:
		case <-ctx.Done():
		}
	})
}

// handleReply matches one discovery reply against the target and binds on a
// match. Only the owner loop calls it.
func (s *Service) handleReply(ctx context.Context, state *session.State, pkt discovery.Packet) {
	defer s.replies.Add(1)

	reply, err := wire.ParseDiscoveryReply(pkt.Data)
	if err != nil {
		logging.Warn("Ignoring discovery reply",
			zap.String("remote_addr", pkt.From.String()),
			zap.Error(err),
		)
		return
	}
	if reply.IP == "" {
		logging.Warn("Ignoring gateway reply without an IP address",
			zap.String("remote_addr", pkt.From.String()),
			zap.String("mac", reply.MAC),
		)
		return
	}

	if session.Match(s.config.Target, reply, state) != session.Bind {
		logging.Debug("Discovery reply does not select a new session",
			zap.String("reply", reply.String()),
			zap.Stringer("phase", state.Phase()),
		)
		return
	}

	if err := state.Bind(reply.IP, reply.MAC); err != nil {
		logging.Error("Failed to bind session", zap.Error(err))
		return
	}
	s.updateSnapshot(state)

	logging.Info("Bound to gateway",
		zap.String("ip", reply.IP),
		zap.String("mac", reply.MAC),
	)
	s.publish(store.KeyConnection, store.BoolValue(true))

	if err := state.MarkSysVarsLoaded(); err != nil {
		logging.Debug("System variables already requested", zap.Error(err))
		return
	}
	s.updateSnapshot(state)
	s.loadSysVars(ctx, reply.IP)
}

// handleCommand relays code to the bound gateway, or drops it while unbound
func (s *Service) handleCommand(ctx context.Context, state *session.State, code string) {
	if !state.IsBound() {
		s.dropped.Add(1)
		logging.Debug("Dropping command, no gateway bound", zap.String("code", code))
		return
	}

	ip := state.BoundIP()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.client.SendCode(ctx, ip, code); err != nil {
			logDeviceError("Command relay failed", err)
			return
		}
		s.relayed.Add(1)
		logging.Debug("Command relayed", zap.String("ip", ip), zap.String("code", code))
	}()
}

// loadSysVars reads every system variable from the gateway once and
// publishes it under id<adr>
func (s *Service) loadSysVars(ctx context.Context, ip string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		records, err := s.client.GetStates(ctx, ip)
		if err != nil {
			logDeviceError("Bulk system variable read failed", err)
			return
		}

		logging.Info("System variables loaded", zap.Int("count", len(records)))
		for _, rec := range records {
			if err := s.store.Declare(store.SysVarDefinition(rec.Adr)); err != nil {
				logging.Warn("Failed to declare state", zap.String("key", store.SysVarKey(rec.Adr)), zap.Error(err))
			}
			s.publish(store.SysVarKey(rec.Adr), rec.State)
			s.sysVarsPublished.Add(1)
		}
	}()
}

// handleEvent decodes one event datagram and publishes what it carries
func (s *Service) handleEvent(pkt discovery.Packet) {
	s.evts.Add(1)

	if !wire.HasEventPrefix(pkt.Data) {
		s.evtsDropped.Add(1)
		logging.Debug("Ignoring non-event packet", zap.String("remote_addr", pkt.From.String()))
		return
	}

	ev, err := wire.ParseEvent(pkt.Data)
	if err != nil {
		s.evtsDropped.Add(1)
		logging.Warn("Dropping malformed event",
			zap.String("remote_addr", pkt.From.String()),
			zap.Error(err),
		)
		return
	}

	logging.Debug("Event received", zap.Stringer("event", ev))
	for _, u := range events.Route(ev) {
		s.publish(u.Key, u.Value)
	}
}

// publish writes one state value, logging failures
func (s *Service) publish(key, value string) {
	logging.LogStatePublish(key, value)
	if err := s.store.SetState(key, value); err != nil {
		logging.Warn("Failed to publish state",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *Service) updateSnapshot(state *session.State) {
	s.mu.Lock()
	s.snapshot = state.Snapshot()
	s.mu.Unlock()
}

// logDeviceError logs err at the level its category calls for
func logDeviceError(msg string, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		logging.Debug(msg, zap.Error(err))
	case gateway.IsRejection(err):
		logging.Error(msg, zap.Error(err))
	case gateway.IsDecodeError(err):
		logging.Warn(msg, zap.Error(err))
	case gateway.IsTransportError(err):
		logging.Debug(msg, zap.Error(err))
	default:
		logging.Warn(msg, zap.Error(err))
	}
}

func closeConn(conn net.PacketConn, socket string) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		logging.Debug("Error closing socket", zap.String("socket", socket), zap.Error(err))
	}
}
