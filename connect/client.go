package connect

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// Logger interface for optional diagnostics.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// state is the client lifecycle state.
type state int

const (
	stateDisconnected state = iota
	stateConnecting
	stateConnected
)

// Client is the retained pub/sub facade.
//
// It composes the transport connection, the subscription registry, the
// dispatcher, and the tree store query adapter behind one surface.
// Create it with Connect and release it with Disconnect.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Handler dispatch is serialized: one inbound message's handlers all
//     run before the next message is processed.
type Client struct {
	transport Transport
	registry  *registry
	opts      *Options

	// queryURL is the tree store base URI; empty disables Query.
	queryURL   string
	httpClient *http.Client

	// state tracks the lifecycle: disconnected → connecting → connected.
	state   state
	stateMu sync.RWMutex

	// dispatchMu serializes dispatch passes (see onMessage).
	dispatchMu sync.Mutex

	// Callbacks for connection events (optional, set via SetOnConnect/SetOnDisconnect).
	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex
}

// Connect establishes a connection to the broker and returns a ready client.
//
// It performs the following setup:
//  1. Builds transport options (client ID, credentials, timeouts)
//  2. Dials the broker and waits for readiness
//  3. Wires inbound messages into the dispatcher
//  4. Arranges subscription restoration on reconnect
//
// Parameters:
//   - transportURI: Broker URI (e.g. "tcp://127.0.0.1:1883")
//   - queryURI: Tree store query base URI (e.g. "http://127.0.0.1:8082/query");
//     empty disables Query
//   - opts: Connection options; nil takes the defaults
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the initial connection fails within the timeout
func Connect(transportURI, queryURI string, opts *Options) (*Client, error) {
	c := newClient(nil, queryURI, opts)
	c.setState(stateConnecting)

	t := newPahoTransport(transportURI, c.opts, transportCallbacks{
		onMessage:  c.onMessage,
		onConnect:  c.handleTransportUp,
		onConnLost: c.handleTransportDown,
	})
	c.transport = t

	if err := t.connect(c.opts.ConnectTimeout); err != nil {
		c.transport = nil
		c.setState(stateDisconnected)
		return nil, err
	}

	// The OnConnect callback runs asynchronously and may not have fired
	// yet; set the state here so IsConnected is true on return.
	c.setState(stateConnected)
	return c, nil
}

// newClient assembles a client around an existing transport.
// Tests use it to substitute a scripted transport for the broker.
func newClient(transport Transport, queryURI string, opts *Options) *Client {
	return &Client{
		transport:  transport,
		registry:   newRegistry(),
		opts:       opts.withDefaults(),
		queryURL:   queryURI,
		httpClient: &http.Client{Timeout: defaultQueryTimeout},
	}
}

// handleTransportUp runs on initial connect and on every reconnect.
func (c *Client) handleTransportUp() {
	c.setState(stateConnected)

	// Restore transport subscriptions for every registered pattern.
	// Clean sessions mean the broker forgot them across a reconnect.
	for _, pattern := range c.registry.patterns() {
		if c.transport == nil {
			break
		}
		if err := c.transport.Subscribe(pattern, DefaultQoS); err != nil {
			c.logError("restoring subscription failed", "pattern", pattern, "error", err)
		}
	}

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleTransportDown runs when the connection is lost.
func (c *Client) handleTransportDown(err error) {
	c.setState(stateConnecting)

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// Disconnect clears all subscriptions and tears down the transport.
//
// Pending future deliveries are invalidated; operations that already
// completed keep their outcome. Disconnecting an already-disconnected
// client is a no-op.
func (c *Client) Disconnect() {
	c.stateMu.Lock()
	if c.state == stateDisconnected {
		c.stateMu.Unlock()
		return
	}
	c.state = stateDisconnected
	c.stateMu.Unlock()

	c.registry.removeAll()
	if c.transport != nil {
		c.transport.Disconnect()
	}
}

// IsConnected reports whether the client is currently connected.
func (c *Client) IsConnected() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state == stateConnected && c.transport != nil && c.transport.IsConnected()
}

// HealthCheck verifies the connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("connect health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// SetOnConnect sets a callback invoked when the connection is established.
// This is called on initial connect and on every reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback invoked when the connection is lost.
// The error parameter describes why the connection was lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

func (c *Client) setState(s state) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// requireConnected gates operations that need a live connection.
func (c *Client) requireConnected() error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

func (c *Client) logError(msg string, args ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Error(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Warn(msg, args...)
	}
}
