package discovery

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/aiobridge/internal/logging"
	"github.com/muurk/aiobridge/internal/wire"
)

// DefaultScanTimeout is the default duration of a one-shot scan
const DefaultScanTimeout = 3 * time.Second

// ScanOptions configures Scan
type ScanOptions struct {
	Timeout   time.Duration
	Broadcast string // Defaults to wire.BroadcastAddress
	Port      int    // Defaults to wire.DiscoveryPort

	// Conn overrides the discovery socket; Scan takes ownership and closes it
	Conn net.PacketConn
}

// Scan sends one probe and returns every distinct gateway that answers
// before the timeout. Non-gateway replies are skipped.
func Scan(ctx context.Context, opts ScanOptions) ([]*wire.DiscoveryReply, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultScanTimeout
	}
	if opts.Broadcast == "" {
		opts.Broadcast = wire.BroadcastAddress
	}
	if opts.Port == 0 {
		opts.Port = wire.DiscoveryPort
	}

	conn := opts.Conn
	if conn == nil {
		var err error
		if conn, err = ListenDiscovery(); err != nil {
			return nil, err
		}
	}
	defer func() { _ = conn.Close() }()

	addr, err := ProbeAddr(opts.Broadcast, opts.Port)
	if err != nil {
		return nil, err
	}
	if err := SendProbe(conn, addr); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	deadline, _ := ctx.Deadline()
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	packets := make(chan Packet)
	readErr := make(chan error, 1)
	go func() {
		readErr <- ReadPackets(ctx, conn, SocketDiscovery, packets)
		close(packets)
	}()

	seen := make(map[string]bool)
	var replies []*wire.DiscoveryReply
	for pkt := range packets {
		reply, err := wire.ParseDiscoveryReply(pkt.Data)
		if err != nil {
			logging.Debug("Skipping non-gateway reply", zap.String("remote_addr", pkt.From.String()))
			continue
		}
		id := reply.MAC + "|" + reply.IP
		if seen[id] {
			continue
		}
		seen[id] = true
		replies = append(replies, reply)
	}

	if err := <-readErr; err != nil {
		var netErr net.Error
		if !errors.As(err, &netErr) || !netErr.Timeout() {
			return replies, err
		}
	}
	return replies, nil
}
