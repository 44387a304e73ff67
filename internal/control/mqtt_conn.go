package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/genricoloni/photoframe/internal/domain"
	"go.uber.org/zap"
)

const (
	mqttKeepAlive   = 5 * time.Second
	mqttWaitTimeout = 10 * time.Second
	mqttQueueSize   = 10
)

var errConnectionLost = errors.New("connection lost")

// MQTTConfig holds broker coordinates and credentials
type MQTTConfig struct {
	Broker   string // host:port
	ClientID string
	Username string
	Password string
}

// MQTTDialer opens paho connections with automatic reconnection disabled;
// reconnects are driven by Client so the retry budget stays in one place.
type MQTTDialer struct {
	logger *zap.Logger
	cfg    MQTTConfig
}

// NewMQTTDialer creates a dialer for the given broker
func NewMQTTDialer(logger *zap.Logger, cfg MQTTConfig) *MQTTDialer {
	return &MQTTDialer{logger: logger, cfg: cfg}
}

// Dial connects to the broker and returns a pollable connection
func (d *MQTTDialer) Dial(ctx context.Context) (domain.ControlConn, error) {
	conn := &mqttConn{
		logger:   d.logger,
		messages: make(chan domain.ControlNotification, mqttQueueSize),
		lost:     make(chan error, 1),
		done:     make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", d.cfg.Broker))
	opts.SetClientID(d.cfg.ClientID)
	if d.cfg.Username != "" {
		opts.SetUsername(d.cfg.Username)
		opts.SetPassword(d.cfg.Password)
	}
	opts.SetKeepAlive(mqttKeepAlive)
	opts.SetCleanSession(false)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(mqttWaitTimeout)
	opts.SetDefaultPublishHandler(conn.onMessage)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if err == nil {
			err = errConnectionLost
		}
		select {
		case conn.lost <- err:
		default:
		}
	})

	d.logger.Debug("Connecting to MQTT broker", zap.String("broker", d.cfg.Broker), zap.String("clientId", d.cfg.ClientID))

	client := mqtt.NewClient(opts)
	if err := wait(ctx, client.Connect()); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connection failed: %w", err)
	}
	conn.client = client

	d.logger.Info("MQTT connection established", zap.String("broker", d.cfg.Broker))
	return conn, nil
}

type mqttConn struct {
	logger   *zap.Logger
	client   mqtt.Client
	messages chan domain.ControlNotification
	lost     chan error
	done     chan struct{}
	once     sync.Once
}

// Subscribe registers the topic at QoS 0
func (c *mqttConn) Subscribe(ctx context.Context, topic string) error {
	if err := wait(ctx, c.client.Subscribe(topic, 0, c.onMessage)); err != nil {
		return fmt.Errorf("mqtt subscribe to %s failed: %w", topic, err)
	}
	return nil
}

// Poll returns the next inbound publish or the reason the connection dropped
func (c *mqttConn) Poll(ctx context.Context) (domain.ControlNotification, error) {
	select {
	case n := <-c.messages:
		return n, nil
	case err := <-c.lost:
		return domain.ControlNotification{}, err
	case <-c.done:
		return domain.ControlNotification{}, errConnectionLost
	case <-ctx.Done():
		return domain.ControlNotification{}, ctx.Err()
	}
}

// Disconnect closes the connection, later calls do nothing
func (c *mqttConn) Disconnect() {
	c.once.Do(func() {
		close(c.done)
		if c.client != nil {
			c.client.Disconnect(250)
		}
	})
}

// onMessage runs on a paho goroutine; it blocks until Poll takes the message or the connection closes
func (c *mqttConn) onMessage(_ mqtt.Client, m mqtt.Message) {
	n := domain.ControlNotification{
		Topic:   m.Topic(),
		Payload: append([]byte(nil), m.Payload()...),
	}
	select {
	case c.messages <- n:
	case <-c.done:
		c.logger.Debug("Dropping message on closed connection", zap.String("topic", n.Topic))
	}
}

// wait blocks on a paho token with a timeout and honours ctx
func wait(ctx context.Context, token mqtt.Token) error {
	timer := time.NewTimer(mqttWaitTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return fmt.Errorf("timeout after %s", mqttWaitTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
