package wire

import (
	"fmt"
	"strings"
)

// Protocol constants
const (
	// DiscoveryPort is the UDP port gateways listen on for the probe
	DiscoveryPort = 1901

	// EventPort is the fixed local UDP port gateways push events to
	EventPort = 1902

	// GatewayName is the NAME value every AIO gateway announces
	GatewayName = "AIO GATEWAY"

	// BroadcastAddress is the default destination of the discovery probe
	BroadcastAddress = "255.255.255.255"
)

// Discovery reply keys
const (
	KeyIP   = "IP"
	KeyMAC  = "MAC"
	KeyName = "NAME"
)

// DiscoveryProbe returns the probe payload sent to DiscoveryPort
func DiscoveryProbe() []byte {
	return []byte("GET\n")
}

// DiscoveryReply is a parsed gateway announcement
type DiscoveryReply struct {
	IP         string
	MAC        string
	DeviceName string

	// Fields holds every KEY:VALUE line of the reply, including IP, MAC and NAME
	Fields map[string]string
}

// String returns a human-readable representation of the reply
func (r *DiscoveryReply) String() string {
	return fmt.Sprintf("%s at %s (mac %s)", r.DeviceName, r.IP, r.MAC)
}

// ParseDiscoveryReply parses a broadcast reply. Line order is irrelevant and
// later duplicates win. Replies without the exact line NAME:AIO GATEWAY yield
// ErrNotGateway.
func ParseDiscoveryReply(raw []byte) (*DiscoveryReply, error) {
	reply := &DiscoveryReply{Fields: make(map[string]string)}
	gateway := false

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSuffix(line, "\r")
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		reply.Fields[key] = value

		switch key {
		case KeyIP:
			reply.IP = value
		case KeyMAC:
			reply.MAC = value
		case KeyName:
			if value == GatewayName {
				gateway = true
				reply.DeviceName = value
			}
		}
	}

	if !gateway {
		return nil, ErrNotGateway
	}
	return reply, nil
}
