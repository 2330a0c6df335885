// Package publish mirrors session output to an MQTT broker.
package publish

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/metrics"
)

const connectTimeout = 5 * time.Second

// Config selects the broker and topics.
type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
	// StateEvery publishes every Nth frame on the state topic.
	StateEvery int
}

// Client is the part of mqtt.Client the publisher uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// IntentMessage is the payload on <prefix>/intent.
type IntentMessage struct {
	Sequence  uint64             `json:"seq"`
	Timestamp time.Time          `json:"timestamp"`
	Mode      interaction.Mode   `json:"mode"`
	Intent    interaction.Intent `json:"intent"`
}

// MQTTPublisher is an app.Sink publishing:
//
//	<prefix>/state   every StateEvery-th FrameResult
//	<prefix>/intent  one message per intent
//	<prefix>/mode    the mode name, retained, on change
type MQTTPublisher struct {
	client  Client
	cfg     Config
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu     sync.Mutex
	frames int
	mode   interaction.Mode
}

// Connect dials the broker and returns a publisher.
func Connect(cfg Config, m *metrics.Metrics, logger *slog.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connecting to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Broker, err)
	}

	p := New(client, cfg, m, logger)
	p.logger.Info("connected to MQTT broker", "broker", cfg.Broker, "prefix", cfg.TopicPrefix)
	return p, nil
}

// New wraps an already connected client.
func New(client Client, cfg Config, m *metrics.Metrics, logger *slog.Logger) *MQTTPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.StateEvery < 1 {
		cfg.StateEvery = 1
	}
	return &MQTTPublisher{client: client, cfg: cfg, metrics: m, logger: logger}
}

// StateTopic returns <prefix>/state.
func (p *MQTTPublisher) StateTopic() string { return p.cfg.TopicPrefix + "/state" }

// IntentTopic returns <prefix>/intent.
func (p *MQTTPublisher) IntentTopic() string { return p.cfg.TopicPrefix + "/intent" }

// ModeTopic returns <prefix>/mode.
func (p *MQTTPublisher) ModeTopic() string { return p.cfg.TopicPrefix + "/mode" }

// Publish implements app.Sink. It never waits for the broker.
func (p *MQTTPublisher) Publish(r app.FrameResult) {
	p.mu.Lock()
	p.frames++
	sendState := p.frames%p.cfg.StateEvery == 0
	modeChanged := p.frames == 1 || r.Mode != p.mode
	p.mode = r.Mode
	p.mu.Unlock()

	if sendState {
		p.send(p.StateTopic(), 0, false, r)
	}
	if modeChanged {
		p.sendRaw(p.ModeTopic(), 1, true, []byte(r.Mode.String()))
	}
	for _, in := range r.Intents {
		p.send(p.IntentTopic(), p.cfg.QoS, false, IntentMessage{
			Sequence:  r.Sequence,
			Timestamp: r.Timestamp,
			Mode:      r.Mode,
			Intent:    in,
		})
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

func (p *MQTTPublisher) send(topic string, qos byte, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.metrics.RecordSinkError("mqtt")
		p.logger.Error("encoding MQTT payload", "topic", topic, "error", err)
		return
	}
	p.sendRaw(topic, qos, retained, payload)
}

func (p *MQTTPublisher) sendRaw(topic string, qos byte, retained bool, payload []byte) {
	token := p.client.Publish(topic, qos, retained, payload)
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			p.metrics.RecordSinkError("mqtt")
			p.logger.Warn("MQTT publish failed", "topic", topic, "error", err)
		}
	}()
}
