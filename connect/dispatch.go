package connect

import (
	"errors"

	"github.com/nerrad567/gray-logic-connect/topics"
)

// Delivery is the metadata accompanying each delivered message.
type Delivery struct {
	// QoS is the delivery-assurance level the message arrived with.
	QoS byte

	// Retained reports whether the broker delivered this as a stored
	// retained value (true on redelivery at subscribe time).
	Retained bool

	// Duplicate reports a possible QoS 1 redelivery.
	Duplicate bool
}

// onMessage is the single entry point for inbound messages from the
// transport. One message's handler pass completes before the next
// message is processed; the dispatch mutex enforces that regardless of
// the transport's own goroutine model.
func (c *Client) onMessage(topic string, payload []byte, meta Delivery) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	// Stable snapshot: subscriptions added or removed by a handler below
	// affect future messages only, never this pass.
	for _, sub := range c.registry.snapshot() {
		if !topics.Match(sub.pattern, topic) {
			continue
		}

		value, err := decodePayload(topic, payload, sub.raw)
		if err != nil {
			// Absorbed: garbled retained data must not crash unrelated
			// subscribers. Diagnostic carries topic and raw payload.
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				c.warn("discarding malformed payload",
					"topic", topic,
					"payload", string(decodeErr.Payload),
					"error", decodeErr.Err,
				)
			}
			continue
		}

		c.invoke(sub, value, topic, meta)
	}
}

// invoke runs one handler with panic recovery.
func (c *Client) invoke(sub *subscription, value any, topic string, meta Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.logError("handler panic recovered",
				"topic", topic,
				"pattern", sub.pattern,
				"panic", r,
			)
		}
	}()

	sub.handler(value, topic, meta)
}
