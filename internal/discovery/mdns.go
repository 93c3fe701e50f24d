package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// FeedServiceType is the mDNS service type of the live state feed
	FeedServiceType = "_aiobridge._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultFeedPath is the WebSocket path advertised when TXT carries none
	DefaultFeedPath = "/ws"

	// DefaultBrowseTimeout is the default time to wait for a feed to answer
	DefaultBrowseTimeout = 5 * time.Second
)

// Feed is a bridge state feed found over mDNS
type Feed struct {
	Instance string
	Hostname string
	IP       string
	Port     int
	Path     string
	Metadata map[string]string
}

// URL returns the WebSocket address of the feed
func (f *Feed) URL() string {
	return "ws://" + net.JoinHostPort(f.IP, strconv.Itoa(f.Port)) + f.Path
}

// Advertiser publishes the feed over mDNS until shut down
type Advertiser interface {
	Shutdown()
}

// AdvertiseFeed registers the feed listening on port under the given
// instance name. Call Shutdown on the result to withdraw it.
func AdvertiseFeed(instance string, port int, path string) (Advertiser, error) {
	if path == "" {
		path = DefaultFeedPath
	}
	txt := []string{"path=" + path}
	server, err := zeroconf.Register(instance, FeedServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to advertise feed over mDNS: %w", err)
	}
	return server, nil
}

// FeedBrowser finds bridge feeds over mDNS
type FeedBrowser struct {
	// Timeout is the maximum time to wait for a feed
	Timeout time.Duration
}

// NewFeedBrowser creates a browser with default settings
func NewFeedBrowser() *FeedBrowser {
	return &FeedBrowser{Timeout: DefaultBrowseTimeout}
}

// FindFeed returns the first feed that answers before the timeout
func (b *FeedBrowser) FindFeed(ctx context.Context) (*Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, FeedServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return nil, fmt.Errorf("no %s service found within %s", FeedServiceType, b.Timeout)
			}
			if feed := parseServiceEntry(entry); feed != nil {
				return feed, nil
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("no %s service found within %s", FeedServiceType, b.Timeout)
		}
	}
}

// parseServiceEntry converts a zeroconf service entry to a Feed
// Returns nil if the entry has no usable address or port
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Feed {
	if entry == nil || entry.Port == 0 {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	path := metadata["path"]
	if path == "" {
		path = DefaultFeedPath
	}

	return &Feed{
		Instance: entry.Instance,
		Hostname: entry.HostName,
		IP:       ip,
		Port:     entry.Port,
		Path:     path,
		Metadata: metadata,
	}
}
