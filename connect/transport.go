package connect

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Transport is the message-transport collaborator: the raw retained
// pub/sub primitives the client composes. The production implementation
// wraps paho.mqtt.golang; tests substitute a scripted fake.
//
// Retained semantics: a retained publish replaces the broker's stored
// value at the topic, and a subsequent Subscribe immediately redelivers
// it through the message callback.
type Transport interface {
	// Publish sends a payload to a topic and blocks until the broker
	// acknowledges it (per QoS).
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a pattern with the broker. Retained values
	// matching the pattern are redelivered immediately.
	Subscribe(pattern string, qos byte) error

	// Unsubscribe releases a pattern at the broker.
	Unsubscribe(pattern string) error

	// Disconnect tears down the connection.
	Disconnect()

	// IsConnected reports the transport's current connection state.
	IsConnected() bool
}

// transportCallbacks are the client-side hooks a Transport drives.
type transportCallbacks struct {
	onMessage  func(topic string, payload []byte, meta Delivery)
	onConnect  func()
	onConnLost func(err error)
}

// pahoTransport implements Transport over paho.mqtt.golang.
type pahoTransport struct {
	client pahomqtt.Client
}

// newPahoTransport builds a transport wired to the client's callbacks.
// No connection is made until connect is called.
func newPahoTransport(uri string, opts *Options, cb transportCallbacks) *pahoTransport {
	pahoOpts := pahomqtt.NewClientOptions()
	pahoOpts.AddBroker(uri)
	pahoOpts.SetClientID(opts.ClientID)

	if opts.Username != "" {
		pahoOpts.SetUsername(opts.Username)
		pahoOpts.SetPassword(opts.Password)
	}

	// Clean session: subscription state is restored by the client on
	// reconnect, not by the broker.
	pahoOpts.SetCleanSession(true)
	pahoOpts.SetAutoReconnect(true)
	pahoOpts.SetConnectTimeout(opts.ConnectTimeout)

	// Ordered, synchronous handler invocation: one paho router goroutine
	// delivers messages so dispatch passes never overlap at the source.
	pahoOpts.SetOrderMatters(true)

	pahoOpts.SetDefaultPublishHandler(func(_ pahomqtt.Client, msg pahomqtt.Message) {
		cb.onMessage(msg.Topic(), msg.Payload(), Delivery{
			QoS:       msg.Qos(),
			Retained:  msg.Retained(),
			Duplicate: msg.Duplicate(),
		})
	})
	pahoOpts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		cb.onConnect()
	})
	pahoOpts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		cb.onConnLost(err)
	})

	return &pahoTransport{client: pahomqtt.NewClient(pahoOpts)}
}

// connect blocks until the initial connection succeeds or the timeout
// elapses.
func (t *pahoTransport) connect(timeout time.Duration) error {
	token := t.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return nil
}

func (t *pahoTransport) Publish(topic string, payload []byte, qos byte, retained bool) error {
	token := t.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultRequestTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultRequestTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

func (t *pahoTransport) Subscribe(pattern string, qos byte) error {
	// No per-subscription handler: all delivery funnels through the
	// default publish handler into the client's dispatcher.
	token := t.client.Subscribe(pattern, qos, nil)
	if !token.WaitTimeout(defaultRequestTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultRequestTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

func (t *pahoTransport) Unsubscribe(pattern string) error {
	token := t.client.Unsubscribe(pattern)
	if !token.WaitTimeout(defaultRequestTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultRequestTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}
	return nil
}

func (t *pahoTransport) Disconnect() {
	t.client.Disconnect(defaultDisconnectQuiesce)
}

func (t *pahoTransport) IsConnected() bool {
	return t.client.IsConnected()
}

var _ Transport = (*pahoTransport)(nil)
