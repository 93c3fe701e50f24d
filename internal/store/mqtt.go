package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/aiobridge/internal/logging"
)

const (
	// DefaultTopicPrefix is the topic root for bridge states
	DefaultTopicPrefix = "aiobridge"

	// DefaultClientID is the MQTT client id of the bridge
	DefaultClientID = "aiobridge"

	statusOnline  = "online"
	statusOffline = "offline"

	// disconnectQuiesce is how long Disconnect lets in-flight work finish, in ms
	disconnectQuiesce = 250
)

// MQTTConfig holds the broker connection settings
type MQTTConfig struct {
	Broker      string // e.g. "tcp://localhost:1883"
	Username    string
	Password    string
	ClientID    string
	TopicPrefix string
	QoS         byte
}

// MQTT is a Store backed by an MQTT broker. States are retained topics
// <prefix>/<key>; external writes arrive on <prefix>/<key>/set.
type MQTT struct {
	config MQTTConfig
	client mqtt.Client

	mu   sync.Mutex
	subs map[string]func(string)
}

// NewMQTT creates an MQTT store. Call Connect before use.
func NewMQTT(config MQTTConfig) *MQTT {
	if config.TopicPrefix == "" {
		config.TopicPrefix = DefaultTopicPrefix
	}
	if config.ClientID == "" {
		config.ClientID = DefaultClientID
	}

	m := &MQTT{
		config: config,
		subs:   make(map[string]func(string)),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	if config.Username != "" {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
	}
	opts.SetAutoReconnect(true)
	// Write handlers hand values to the bridge loop, which may itself be
	// waiting on a publish acknowledgement
	opts.SetOrderMatters(false)
	opts.SetWill(m.StatusTopic(), statusOffline, config.QoS, true)
	opts.SetOnConnectHandler(m.handleConnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logging.Warn("MQTT connection lost", zap.Error(err))
	})

	m.client = mqtt.NewClient(opts)
	return m
}

// newMQTTWithClient wires an existing client, used by tests
func newMQTTWithClient(config MQTTConfig, client mqtt.Client) *MQTT {
	if config.TopicPrefix == "" {
		config.TopicPrefix = DefaultTopicPrefix
	}
	return &MQTT{
		config: config,
		client: client,
		subs:   make(map[string]func(string)),
	}
}

// Connect connects to the broker, giving up when ctx is done. A failed first
// attempt is returned; later drops reconnect in the background.
func (m *MQTT) Connect(ctx context.Context) error {
	token := m.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker %s: %w", m.config.Broker, err)
	}
	logging.Info("Connected to MQTT broker", zap.String("broker", m.config.Broker))
	return nil
}

// StateTopic returns the topic holding key
func (m *MQTT) StateTopic(key string) string {
	return m.config.TopicPrefix + "/" + key
}

// SetTopic returns the topic external writers publish key to
func (m *MQTT) SetTopic(key string) string {
	return m.StateTopic(key) + "/set"
}

// ConfigTopic returns the topic carrying the definition of key
func (m *MQTT) ConfigTopic(key string) string {
	return m.StateTopic(key) + "/config"
}

// StatusTopic returns the bridge availability topic
func (m *MQTT) StatusTopic() string {
	return m.config.TopicPrefix + "/bridge/status"
}

// handleConnect runs on every (re)connect: announce availability and restore
// subscriptions
func (m *MQTT) handleConnect(c mqtt.Client) {
	if err := wait(c.Publish(m.StatusTopic(), m.config.QoS, true, statusOnline)); err != nil {
		logging.Warn("Failed to publish bridge status", zap.Error(err))
	}

	m.mu.Lock()
	subs := make(map[string]func(string), len(m.subs))
	for k, fn := range m.subs {
		subs[k] = fn
	}
	m.mu.Unlock()

	for key, fn := range subs {
		if err := m.subscribe(c, key, fn); err != nil {
			logging.Warn("Failed to subscribe", zap.String("key", key), zap.Error(err))
		}
	}
}

func (m *MQTT) subscribe(c mqtt.Client, key string, fn func(string)) error {
	topic := m.SetTopic(key)
	return wait(c.Subscribe(topic, m.config.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		logging.Debug("MQTT write received",
			zap.String("topic", msg.Topic()),
			zap.ByteString("payload", msg.Payload()),
		)
		fn(string(msg.Payload()))
	}))
}

// Declare publishes the definition of a state as retained JSON
func (m *MQTT) Declare(def Definition) error {
	payload, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal definition %s: %w", def.Key, err)
	}
	return wait(m.client.Publish(m.ConfigTopic(def.Key), m.config.QoS, true, payload))
}

// SetState publishes value retained on the state topic of key
func (m *MQTT) SetState(key, value string) error {
	if err := wait(m.client.Publish(m.StateTopic(key), m.config.QoS, true, value)); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

// Subscribe registers fn for writes to key. The subscription survives reconnects.
func (m *MQTT) Subscribe(key string, fn func(value string)) error {
	m.mu.Lock()
	m.subs[key] = fn
	m.mu.Unlock()

	if !m.client.IsConnected() {
		return nil
	}
	return m.subscribe(m.client, key, fn)
}

// Close marks the bridge offline and disconnects
func (m *MQTT) Close() error {
	if m.client.IsConnected() {
		_ = wait(m.client.Publish(m.StatusTopic(), m.config.QoS, true, statusOffline))
	}
	m.client.Disconnect(disconnectQuiesce)
	return nil
}

// publishTimeout bounds every broker round trip
const publishTimeout = 10 * time.Second

func wait(token mqtt.Token) error {
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("MQTT operation timed out after %s", publishTimeout)
	}
	return token.Error()
}
