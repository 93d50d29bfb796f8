package connect

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Connection constants.
const (
	// DefaultQoS is the delivery-assurance level used when none is given.
	// Retained state updates default to exactly-once delivery.
	DefaultQoS byte = 2

	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultRequestTimeout is the maximum time to wait for broker
	// acknowledgment of a publish, subscribe, or unsubscribe.
	defaultRequestTimeout = 5 * time.Second

	// defaultQueryTimeout is the HTTP client timeout for tree store queries
	// issued without a caller deadline.
	defaultQueryTimeout = 10 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations
	// on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// maxQoS is the maximum QoS level supported.
	maxQoS byte = 2

	// clientIDPrefix prefixes generated client IDs.
	clientIDPrefix = "gl-connect"
)

// Options configures the client connection.
//
// The zero value is usable; Connect fills unset fields with defaults.
// A nil *Options passed to Connect behaves like NewOptions().
type Options struct {
	// ClientID identifies this client to the broker.
	// Default: "gl-connect-" plus a random UUID suffix.
	ClientID string

	// Username and Password are broker credentials. Empty means anonymous.
	Username string
	Password string

	// ConnectTimeout bounds the initial connection attempt.
	// Default: 10s.
	ConnectTimeout time.Duration

	// Logger receives diagnostics (decode failures, handler panics).
	// If nil, diagnostics are dropped.
	Logger Logger
}

// NewOptions returns Options carrying the documented defaults.
func NewOptions() *Options {
	return &Options{
		ClientID:       fmt.Sprintf("%s-%s", clientIDPrefix, uuid.NewString()[:8]),
		ConnectTimeout: defaultConnectTimeout,
	}
}

// withDefaults fills unset fields, accepting a nil receiver.
func (o *Options) withDefaults() *Options {
	out := NewOptions()
	if o == nil {
		return out
	}
	if o.ClientID != "" {
		out.ClientID = o.ClientID
	}
	if o.ConnectTimeout > 0 {
		out.ConnectTimeout = o.ConnectTimeout
	}
	out.Username = o.Username
	out.Password = o.Password
	out.Logger = o.Logger
	return out
}

// PublishOptions configures a single Publish call.
//
// Build it with NewPublishOptions to pick up the documented defaults;
// a nil *PublishOptions behaves the same way.
type PublishOptions struct {
	// QoS is the delivery-assurance level (0, 1, or 2). Default: 2.
	QoS byte

	// Raw disables JSON encoding: the value must already be a string or
	// []byte and is handed to the transport unchanged. Default: false
	// (values are JSON-encoded).
	Raw bool
}

// NewPublishOptions returns PublishOptions with defaults (QoS 2, JSON on).
func NewPublishOptions() *PublishOptions {
	return &PublishOptions{QoS: DefaultQoS}
}

// SetQoS sets the delivery-assurance level and returns the options for chaining.
func (o *PublishOptions) SetQoS(qos byte) *PublishOptions {
	o.QoS = qos
	return o
}

// SetRaw disables or enables JSON encoding and returns the options for chaining.
func (o *PublishOptions) SetRaw(raw bool) *PublishOptions {
	o.Raw = raw
	return o
}

// SubscribeOptions configures a single Subscribe call.
//
// The zero value carries the defaults; a nil *SubscribeOptions behaves
// the same way.
type SubscribeOptions struct {
	// Raw disables JSON decoding: handlers receive the payload as []byte
	// and decode failures cannot occur. Default: false (payloads are
	// JSON-decoded).
	Raw bool
}

// NewSubscribeOptions returns SubscribeOptions with defaults (JSON on).
func NewSubscribeOptions() *SubscribeOptions {
	return &SubscribeOptions{}
}

// SetRaw disables or enables JSON decoding and returns the options for chaining.
func (o *SubscribeOptions) SetRaw(raw bool) *SubscribeOptions {
	o.Raw = raw
	return o
}

// QueryOptions configures a single Query call.
//
// The zero value carries the defaults; a nil *QueryOptions behaves the
// same way.
type QueryOptions struct {
	// Depth is how many descendant levels to expand. 0 queries the topic
	// as a single leaf; n > 0 additionally enumerates up to n levels of
	// descendants as children. Default: 0.
	Depth int

	// Raw disables JSON decoding of leaf payloads. Default: false.
	Raw bool
}

// NewQueryOptions returns QueryOptions with defaults (leaf query, JSON on).
func NewQueryOptions() *QueryOptions {
	return &QueryOptions{}
}

// SetDepth sets the descendant expansion bound and returns the options for chaining.
func (o *QueryOptions) SetDepth(depth int) *QueryOptions {
	o.Depth = depth
	return o
}

// SetRaw disables or enables JSON decoding and returns the options for chaining.
func (o *QueryOptions) SetRaw(raw bool) *QueryOptions {
	o.Raw = raw
	return o
}
