package transport

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/openmarine/gopico/internal/logging"
	"github.com/openmarine/gopico/internal/protocol"
)

// DefaultMQTTBroker is the vendor cloud bridge the Pico connects to when
// it has internet access.
const DefaultMQTTBroker = "tcp://simarinemqtt.uksouth.cloudapp.azure.com:1883"

// MQTT carries the request/response exchange over the vendor cloud
// bridge. The device subscribes to /{serial}_APP and publishes on
// /{serial}_DEV; there is still no correlation id, so this transport is
// first-response-wins and, like TCP, single in-flight.
type MQTT struct {
	client   mqtt.Client
	pubTopic string
	subTopic string
	timeout  time.Duration
	inbox    chan []byte
}

// DialMQTT connects to the broker and subscribes to the device's
// response topic. The serial is the system serial number from discovery
// or a previous SYSTEM_INFO exchange.
func DialMQTT(broker string, serial uint32, timeout time.Duration) (*MQTT, error) {
	if broker == "" {
		broker = DefaultMQTTBroker
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	m := &MQTT{
		pubTopic: fmt.Sprintf("/%d_APP", serial),
		subTopic: fmt.Sprintf("/%d_DEV", serial),
		timeout:  timeout,
		inbox:    make(chan []byte, 1),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("gopico-%d-%d", serial, time.Now().UnixNano())).
		SetConnectTimeout(timeout)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(timeout) || token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to broker %s: %w", broker, tokenErr(token))
	}

	if token := client.Subscribe(m.subTopic, 0, m.onMessage); !token.WaitTimeout(timeout) || token.Error() != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("failed to subscribe to %s: %w", m.subTopic, tokenErr(token))
	}

	logging.Debug("MQTT transport connected",
		zap.String("broker", broker),
		zap.String("topic", m.subTopic),
	)

	m.client = client
	return m, nil
}

func (m *MQTT) onMessage(_ mqtt.Client, msg mqtt.Message) {
	select {
	case m.inbox <- msg.Payload():
	default:
		logging.Warn("MQTT inbox full, dropping message", zap.Int("length", len(msg.Payload())))
	}
}

// Request publishes one message and waits for the next payload on the
// device topic. Stale responses queued before the request are discarded
// first.
func (m *MQTT) Request(ctx context.Context, msgType protocol.MessageType, fields []protocol.Field) (*protocol.Message, error) {
	if m.client == nil {
		return nil, ErrClosed
	}

	// Discard a stale response left over from an abandoned request.
	select {
	case <-m.inbox:
	default:
	}

	req := &protocol.Message{Type: msgType, Fields: fields}
	wire := req.Encode()
	logging.Frame("MQTT request", wire)

	if token := m.client.Publish(m.pubTopic, 0, false, wire); !token.WaitTimeout(m.timeout) || token.Error() != nil {
		return nil, fmt.Errorf("failed to publish to %s: %w", m.pubTopic, tokenErr(token))
	}

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case raw := <-m.inbox:
		logging.Frame("MQTT response", raw)
		resp, err := protocol.Decode(raw)
		if err != nil {
			return nil, err
		}
		if resp.Type != msgType {
			return nil, fmt.Errorf("%w: sent %s, got %s", protocol.ErrUnexpectedType, msgType, resp.Type)
		}
		return resp, nil
	case <-timer.C:
		return nil, fmt.Errorf("timed out waiting for response on %s", m.subTopic)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close disconnects from the broker. Safe to call more than once.
func (m *MQTT) Close() error {
	if m.client == nil {
		return nil
	}
	m.client.Disconnect(250)
	m.client = nil
	return nil
}

func tokenErr(token mqtt.Token) error {
	if err := token.Error(); err != nil {
		return err
	}
	return fmt.Errorf("operation timed out")
}
