package connect

import (
	"context"
	"errors"
)

// maxTreeDepth bounds the subtree expansion used by UnpublishRecursively.
// Gray Logic topic hierarchies are shallow; 16 levels is far beyond any
// real deployment.
const maxTreeDepth = 16

// Publish stores a value at a topic as the broker's retained message.
//
// The value is JSON-encoded unless opts.Raw is set, in which case it
// must already be a string or []byte. Every publish from this client is
// retained: the broker replaces its stored value at the topic and
// redelivers it to future subscribers. The call returns once the broker
// acknowledges delivery per the QoS level.
//
// Parameters:
//   - topic: The topic to publish to (no wildcards)
//   - value: The value to store; nil publishes JSON null
//   - opts: Per-call options; nil takes the defaults (QoS 2, JSON on)
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, value any, opts *PublishOptions) error {
	if opts == nil {
		opts = NewPublishOptions()
	}

	if topic == "" {
		return ErrInvalidTopic
	}
	if opts.QoS > maxQoS {
		return ErrInvalidQoS
	}
	if err := c.requireConnected(); err != nil {
		return err
	}

	payload, err := encodePayload(value, opts.Raw)
	if err != nil {
		return err
	}

	return c.transport.Publish(topic, payload, opts.QoS, true)
}

// Unpublish removes the retained value at exactly topic (non-recursive).
//
// It publishes an empty retained payload, the broker's deletion marker.
// Live subscribers matching the topic receive the NoValue sentinel via
// normal dispatch; subsequent queries of the topic no longer report a
// payload for it.
func (c *Client) Unpublish(topic string) error {
	return c.Publish(topic, NoValue, nil)
}

// UnpublishRecursively removes the retained value at topic and at every
// descendant topic found via a tree store query rooted at topic.
//
// An already-empty subtree (no retained value, no descendants) is
// success: the root is still unpublished to clear any empty marker.
//
// Parameters:
//   - ctx: Context for the tree store query
//   - topic: Root of the subtree to clear
//
// Returns:
//   - error: nil on success, or the first query/publish failure
func (c *Client) UnpublishRecursively(ctx context.Context, topic string) error {
	res, err := c.Query(ctx, topic, NewQueryOptions().SetDepth(maxTreeDepth).SetRaw(true))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Unpublish(topic)
		}
		return err
	}

	return c.unpublishTree(res, topic)
}

// unpublishTree unpublishes every node of a query result, depth first,
// and always clears the root even if it held no payload.
func (c *Client) unpublishTree(res *Result, root string) error {
	for _, child := range res.Children {
		if err := c.unpublishTree(child, root); err != nil {
			return err
		}
	}

	if res.Payload == nil && res.Topic != root {
		// Intermediate node with no retained value of its own.
		return nil
	}
	return c.Unpublish(res.Topic)
}
