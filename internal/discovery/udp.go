package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/muurk/aiobridge/internal/logging"
	"github.com/muurk/aiobridge/internal/wire"
)

// Socket names used in logs
const (
	SocketEvents    = "events"
	SocketDiscovery = "discovery"
)

// maxDatagramSize is the largest IPv4 UDP payload. Long learned IR codes
// exceed a few kilobytes and must arrive whole.
const maxDatagramSize = 65507

// Packet is one received datagram
type Packet struct {
	Data []byte
	From net.Addr
}

// ListenEvents binds the socket gateways push events to. Port 0 picks an
// ephemeral port, which only tests want.
func ListenEvents(port int) (net.PacketConn, error) {
	conn, err := net.ListenPacket("udp4", ":"+strconv.Itoa(port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind event socket on port %d: %w", port, err)
	}
	return conn, nil
}

// ListenDiscovery binds the broadcast socket on an ephemeral port. Go enables
// SO_BROADCAST on IPv4 datagram sockets, so no extra socket option is needed.
func ListenDiscovery() (net.PacketConn, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind discovery socket: %w", err)
	}
	return conn, nil
}

// ProbeAddr resolves the destination of the discovery probe
func ProbeAddr(broadcast string, port int) (*net.UDPAddr, error) {
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(broadcast, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve probe address %s:%d: %w", broadcast, port, err)
	}
	return addr, nil
}

// SendProbe writes the discovery probe to addr
func SendProbe(conn net.PacketConn, addr net.Addr) error {
	probe := wire.DiscoveryProbe()
	logging.LogPacket(SocketDiscovery, "out", addr.String(), probe)
	if _, err := conn.WriteTo(probe, addr); err != nil {
		return fmt.Errorf("failed to send discovery probe to %s: %w", addr, err)
	}
	return nil
}

// ReadPackets reads datagrams from conn into out until the socket is closed or
// ctx is done. A closed socket ends the loop with a nil error.
func ReadPackets(ctx context.Context, conn net.PacketConn, socket string, out chan<- Packet) error {
	buf := make([]byte, maxDatagramSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return err
			}
			return fmt.Errorf("read from %s socket: %w", socket, err)
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		logging.LogPacket(socket, "in", from.String(), data)

		select {
		case out <- Packet{Data: data, From: from}:
		case <-ctx.Done():
			return nil
		}
	}
}
