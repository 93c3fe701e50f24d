// Package discovery owns the bridge's UDP sockets and its mDNS presence.
//
// # Gateway Discovery
//
// AIO gateways are located with a broadcast handshake:
//  1. The bridge binds a broadcast-capable UDP socket on an ephemeral port
//  2. It sends the probe "GET\n" to 255.255.255.255:1901
//  3. Gateways answer on that same socket with KEY:VALUE lines
//  4. Gateways push events at any time to UDP port 1902 on the bridge
//
// The bridge sends the probe once. Gateways also announce themselves
// periodically, so later replies keep arriving on the discovery socket.
//
// # One-shot Scan
//
// Scan sends a probe and collects every distinct gateway reply until the
// timeout, for diagnostics:
//
//	replies, err := discovery.Scan(ctx, discovery.ScanOptions{Timeout: 3 * time.Second})
//
// # Feed Advertisement
//
// When the live state feed is enabled, it is advertised over mDNS as
// "_aiobridge._tcp" so the monitor can find it without an address.
//
// # Network Requirements
//
//   - The bridge must share a broadcast domain with the gateway
//   - UDP 1902 must be free and reachable from the gateway
//   - Multicast (UDP 5353) for the optional mDNS advertisement
package discovery
