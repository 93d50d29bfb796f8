package connect

import (
	"errors"
	"fmt"
)

// Domain-specific errors for client operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("connect: client not connected")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("connect: connection failed")

	// ErrPublishFailed is returned when a publish operation fails.
	ErrPublishFailed = errors.New("connect: publish failed")

	// ErrSubscribeFailed is returned when a subscribe operation fails.
	ErrSubscribeFailed = errors.New("connect: subscribe failed")

	// ErrUnsubscribeFailed is returned when an unsubscribe operation fails.
	ErrUnsubscribeFailed = errors.New("connect: unsubscribe failed")

	// ErrInvalidQoS is returned when an invalid QoS level is specified.
	// Valid QoS levels are 0, 1, or 2.
	ErrInvalidQoS = errors.New("connect: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned when an empty or invalid topic is provided.
	ErrInvalidTopic = errors.New("connect: topic cannot be empty")

	// ErrEncodeFailed is returned when a value cannot be encoded for transport.
	ErrEncodeFailed = errors.New("connect: payload encoding failed")

	// ErrQueryFailed is returned when a tree store query fails for a reason
	// other than the topic not existing.
	ErrQueryFailed = errors.New("connect: query failed")

	// ErrNotFound is returned when a query targets a topic with no retained
	// value and no descendants. Errors carrying it are *NotFoundError.
	ErrNotFound = errors.New("connect: topic not found")
)

// NotFoundError reports a query against a topic the tree store does not
// hold: no retained value and no descendants.
//
// It unwraps to ErrNotFound, so errors.Is(err, ErrNotFound) works.
type NotFoundError struct {
	// Topic is the queried topic.
	Topic string

	// Code is the HTTP status reported by the tree store (always 404).
	Code int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("connect: query %q: not found (HTTP %d)", e.Topic, e.Code)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DecodeError reports a payload that failed JSON parsing under a
// JSON-expecting subscription. The dispatcher absorbs it (the handler is
// skipped and a diagnostic is logged); it is exported so tests and custom
// transports can construct and inspect it.
type DecodeError struct {
	// Topic is the topic the payload arrived on.
	Topic string

	// Payload is the raw payload that failed to parse.
	Payload []byte

	// Err is the underlying JSON parse error.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("connect: malformed JSON payload on %q: %v", e.Topic, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
