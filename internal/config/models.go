package config

import (
	"errors"
	"time"

	"github.com/muurk/aiobridge/internal/session"
	"github.com/muurk/aiobridge/internal/wire"
)

// CurrentVersion is the only configuration file version understood
const CurrentVersion = 1

// ErrNoDetectionMethod is returned by Resolve when no detection method is
// enabled. The bridge then never binds.
var ErrNoDetectionMethod = errors.New("no gateway detection method configured (enable auto_detect, find_by_mac or find_by_ip)")

// Config represents the entire user configuration file.
type Config struct {
	Version   int        `yaml:"version"`
	LogLevel  string     `yaml:"log_level,omitempty"`
	Detection *Detection `yaml:"detection"`
	Network   *Network   `yaml:"network"`
	MQTT      *MQTT      `yaml:"mqtt"`
	Feed      *Feed      `yaml:"feed"`
}

// Detection selects which gateway the bridge binds to.
type Detection struct {
	AutoDetect bool   `yaml:"auto_detect"`
	FindByMAC  bool   `yaml:"find_by_mac"`
	MAC        string `yaml:"mac"`
	FindByIP   bool   `yaml:"find_by_ip"`
	IP         string `yaml:"ip"`
}

// Network holds socket and HTTP settings.
type Network struct {
	EventPort        int           `yaml:"event_port"`
	DiscoveryPort    int           `yaml:"discovery_port"`
	BroadcastAddress string        `yaml:"broadcast_address"`
	HTTPTimeout      time.Duration `yaml:"http_timeout"` // 0 disables the timeout
}

// MQTT configures the broker the bridge publishes state to.
type MQTT struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
}

// Feed configures the live WebSocket state feed.
type Feed struct {
	Enabled   bool   `yaml:"enabled"`
	Listen    string `yaml:"listen"`
	Advertise bool   `yaml:"advertise"` // Publish the feed over mDNS
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{Version: CurrentVersion, LogLevel: "info"}
	c.fillDefaults()
	return c
}

// fillDefaults populates sections missing from a loaded file.
func (c *Config) fillDefaults() {
	if c.Detection == nil {
		c.Detection = &Detection{AutoDetect: true}
	}
	if c.Network == nil {
		c.Network = &Network{}
	}
	if c.Network.EventPort == 0 {
		c.Network.EventPort = wire.EventPort
	}
	if c.Network.DiscoveryPort == 0 {
		c.Network.DiscoveryPort = wire.DiscoveryPort
	}
	if c.Network.BroadcastAddress == "" {
		c.Network.BroadcastAddress = wire.BroadcastAddress
	}
	if c.MQTT == nil {
		c.MQTT = &MQTT{}
	}
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = "tcp://localhost:1883"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "aiobridge"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "aiobridge"
	}
	if c.Feed == nil {
		c.Feed = &Feed{Listen: ":8089", Advertise: true}
	}
	if c.Feed.Listen == "" {
		c.Feed.Listen = ":8089"
	}
}

// Resolve picks the gateway target: auto detect first, then MAC, then IP.
func (c *Config) Resolve() (session.Target, error) {
	d := c.Detection
	switch {
	case d == nil:
		return session.Target{}, ErrNoDetectionMethod
	case d.AutoDetect:
		return session.AnyTarget(), nil
	case d.FindByMAC:
		return session.ByMAC(d.MAC), nil
	case d.FindByIP:
		return session.ByIP(d.IP), nil
	default:
		return session.Target{}, ErrNoDetectionMethod
	}
}

// ApplyEnv overlays environment overrides read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvMQTTBroker); v != "" {
		c.MQTT.Broker = v
		c.MQTT.Enabled = true
	}
	if v := getenv(EnvMQTTUser); v != "" {
		c.MQTT.Username = v
	}
	if v := getenv(EnvMQTTPass); v != "" {
		c.MQTT.Password = v
	}
	if v := getenv(EnvMAC); v != "" {
		c.Detection.AutoDetect = false
		c.Detection.FindByMAC = true
		c.Detection.MAC = v
	}
	if v := getenv(EnvIP); v != "" {
		c.Detection.AutoDetect = false
		c.Detection.FindByIP = true
		c.Detection.IP = v
	}
}
