package connect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nerrad567/gray-logic-connect/topics"
)

// maxQueryResponseSize bounds tree store response bodies (10 MB).
const maxQueryResponseSize = 10 << 20

// Result is one node of a tree store query response.
//
// A leaf query (depth 0) yields a single Result with a Payload. With a
// depth bound, Children enumerates the depth-bounded descendants; a node
// that holds a retained value of its own carries a Payload as well.
type Result struct {
	// Topic is the node's full topic.
	Topic string `json:"topic"`

	// Payload is the decoded retained value (JSON-decoded, or []byte in
	// raw mode), or nil when the node holds no retained value of its own.
	Payload any `json:"payload,omitempty"`

	// Children are the node's descendants, present only when the query
	// supplied a depth bound.
	Children []*Result `json:"children,omitempty"`
}

// wireResult mirrors the tree store's JSON with the payload left raw so
// the codec's decode policy can be applied per query options.
type wireResult struct {
	Topic    string          `json:"topic"`
	Payload  json.RawMessage `json:"payload"`
	Children []*wireResult   `json:"children"`
}

// Query returns the retained subtree rooted at topic from the tree store.
//
// With no depth bound the result is the topic's own retained value as a
// leaf. With opts.Depth > 0 the result additionally enumerates up to
// Depth levels of descendants; the root's own payload is reported either
// way. Leaf payloads are JSON-decoded unless opts.Raw is set; a payload
// that fails decoding is logged and reported as nil, matching the
// dispatcher's degrade policy.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - topic: Root topic of the query (no wildcards)
//   - opts: Per-call options; nil takes the defaults (depth 0, JSON on)
//
// Returns:
//   - *Result: The query result tree
//   - error: *NotFoundError when the topic has no retained value and no
//     descendants; otherwise a wrapped transport/backend failure
func (c *Client) Query(ctx context.Context, topic string, opts *QueryOptions) (*Result, error) {
	if opts == nil {
		opts = NewQueryOptions()
	}

	if topic == "" {
		return nil, ErrInvalidTopic
	}
	if c.queryURL == "" {
		return nil, fmt.Errorf("%w: no query endpoint configured", ErrQueryFailed)
	}
	if err := c.requireConnected(); err != nil {
		return nil, err
	}

	endpoint := c.queryURL + "/" + escapeTopic(topic)
	if opts.Depth > 0 {
		endpoint += "?depth=" + strconv.Itoa(opts.Depth)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrQueryFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQueryResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrQueryFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Topic: topic, Code: http.StatusNotFound}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: HTTP %d", ErrQueryFailed, resp.StatusCode)
	}

	var wire wireResult
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %w", ErrQueryFailed, err)
	}

	return c.buildResult(&wire, opts.Raw), nil
}

// escapeTopic escapes each topic segment for use in a URL path while
// keeping the / separators intact.
func escapeTopic(topic string) string {
	segments := topics.Split(topic)
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return topics.Join(segments)
}

// buildResult converts a wire node tree into Results, applying the
// codec's decode policy to each payload.
func (c *Client) buildResult(wire *wireResult, raw bool) *Result {
	res := &Result{Topic: wire.Topic}

	if len(wire.Payload) > 0 {
		if raw {
			res.Payload = []byte(wire.Payload)
		} else {
			var value any
			if err := json.Unmarshal(wire.Payload, &value); err != nil {
				// Degrade like the dispatcher: diagnostic, payload dropped.
				c.warn("discarding malformed payload in query result",
					"topic", wire.Topic,
					"payload", string(wire.Payload),
					"error", err,
				)
			} else {
				res.Payload = value
			}
		}
	}

	for _, child := range wire.Children {
		res.Children = append(res.Children, c.buildResult(child, raw))
	}
	return res
}
