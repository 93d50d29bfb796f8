package connect

import "fmt"

// Subscribe registers a handler for a topic pattern.
//
// Patterns may use wildcards: + matches exactly one segment, a trailing
// # matches all remaining segments. Multiple handlers may share a
// pattern; each is independent and all receive matching messages.
//
// Subscribing immediately delivers every currently retained value
// matching the pattern to the new handler, exactly as if it had just
// arrived: the transport subscription is (re)issued and the broker's
// retained redelivery flows through the normal dispatch path. Existing
// handlers on an overlapping pattern see that redelivery too, flagged
// with Delivery.Retained.
//
// Parameters:
//   - pattern: The topic pattern to subscribe to
//   - opts: Per-call options; nil takes the defaults (JSON decoding on)
//   - handler: Callback invoked for each matching message
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Subscribe(pattern string, opts *SubscribeOptions, handler Handler) error {
	if opts == nil {
		opts = NewSubscribeOptions()
	}

	if pattern == "" {
		return ErrInvalidTopic
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if err := c.requireConnected(); err != nil {
		return err
	}

	sub := c.registry.add(pattern, opts.Raw, handler)

	if err := c.transport.Subscribe(pattern, DefaultQoS); err != nil {
		// Roll back the registration since the broker never saw it.
		c.registry.remove(sub.pattern, handler)
		return err
	}

	return nil
}

// Unsubscribe removes one handler from a pattern.
//
// Only the first subscription with exactly this (pattern, handler) pair
// is removed; other handlers on the same pattern keep receiving
// messages. Removing a handler that is not registered is a no-op. When
// the last handler for a pattern is removed, the transport-level
// subscription is released so dead wildcard subscriptions do not
// accumulate at the broker.
//
// Parameters:
//   - pattern: The pattern passed to Subscribe
//   - handler: The handler passed to Subscribe
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Unsubscribe(pattern string, handler Handler) error {
	if pattern == "" {
		return ErrInvalidTopic
	}
	if err := c.requireConnected(); err != nil {
		return err
	}

	removed, remaining := c.registry.remove(pattern, handler)
	if !removed || remaining > 0 {
		return nil
	}

	return c.transport.Unsubscribe(pattern)
}

// SubscriptionCount returns the number of active subscriptions.
// Useful for monitoring and debugging.
func (c *Client) SubscriptionCount() int {
	return len(c.registry.snapshot())
}
