package input

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// MQTTConf selects the broker and topic carrying text lines.
type MQTTConf struct {
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
	User     string
	Password string
}

// queueDepth bounds lines waiting to be rendered; extra lines are dropped.
const queueDepth = 64

// MQTT is a line source fed by messages on one topic. A payload may hold
// several '\n'-separated lines.
type MQTT struct {
	cfg    MQTTConf
	log    zerolog.Logger
	client mqtt.Client

	lines     chan string
	closeOnce sync.Once
	done      chan struct{}
}

// DialMQTT connects and subscribes. It returns once the first connection is
// up or ctx ends.
func DialMQTT(ctx context.Context, cfg MQTTConf, log zerolog.Logger) (*MQTT, error) {
	m := newMQTT(cfg, log)
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.User).
		SetPassword(cfg.Password).
		SetOnConnectHandler(m.connectHandler).
		SetConnectionLostHandler(m.connectLostHandler).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)
	m.client = mqtt.NewClient(opts)

	token := m.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
		}
	case <-ctx.Done():
		m.client.Disconnect(250)
		return nil, ctx.Err()
	}
	return m, nil
}

func newMQTT(cfg MQTTConf, log zerolog.Logger) *MQTT {
	return &MQTT{
		cfg:   cfg,
		log:   log.With().Str("component", "mqtt").Str("topic", cfg.Topic).Logger(),
		lines: make(chan string, queueDepth),
		done:  make(chan struct{}),
	}
}

func (m *MQTT) String() string { return "mqtt:" + m.cfg.Topic }

// connectHandler (re)subscribes on every connection.
func (m *MQTT) connectHandler(c mqtt.Client) {
	m.log.Info().Str("broker", m.cfg.Broker).Msg("connected")
	token := c.Subscribe(m.cfg.Topic, m.cfg.QoS, m.messageHandler)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			m.log.Error().Err(err).Msg("subscribe failed")
			return
		}
		m.log.Debug().Msg("subscribed")
	}()
}

func (m *MQTT) connectLostHandler(_ mqtt.Client, err error) {
	m.log.Warn().Err(err).Msg("connection lost")
}

func (m *MQTT) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	m.push(msg.Payload())
}

// push queues each line of payload without blocking the client.
func (m *MQTT) push(payload []byte) {
	text := strings.TrimSuffix(string(payload), "\n")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		select {
		case <-m.done:
			return
		case m.lines <- line:
		default:
			m.log.Warn().Int("queued", len(m.lines)).Msg("line dropped, queue full")
		}
	}
}

func (m *MQTT) Next(ctx context.Context) (string, error) {
	select {
	case line := <-m.lines:
		return line, nil
	case <-m.done:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *MQTT) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		if m.client != nil {
			m.client.Disconnect(250)
		}
	})
	return nil
}
