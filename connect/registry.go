package connect

import (
	"reflect"
	"sync"
)

// Handler is the callback signature for delivered values.
//
// Handlers run synchronously in registration order for a given message;
// dispatch of distinct messages is sequential, so handlers never race
// each other within one client. A handler may call Subscribe or
// Unsubscribe; such changes take effect from the next message onward.
//
// Parameters:
//   - value: The decoded payload, []byte in raw mode, or NoValue
//   - topic: The concrete topic the message arrived on (wildcards expanded)
//   - meta: Delivery metadata (QoS, retained flag)
type Handler func(value any, topic string, meta Delivery)

// subscription is one (pattern, handler, options) registration.
// Multiple subscriptions may share a pattern; each is independently
// removable.
type subscription struct {
	pattern string
	raw     bool
	handler Handler
}

// registry owns the client's subscription bookkeeping.
//
// Dispatch iterates over snapshot() copies, so a handler adding or
// removing subscriptions mid-dispatch neither skips a sibling handler
// nor retriggers itself within the same pass.
type registry struct {
	mu   sync.Mutex
	subs []*subscription
}

func newRegistry() *registry {
	return &registry{}
}

// add appends a subscription and returns it.
func (r *registry) add(pattern string, raw bool, handler Handler) *subscription {
	sub := &subscription{pattern: pattern, raw: raw, handler: handler}

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()

	return sub
}

// remove deletes the first subscription with exactly this (pattern,
// handler) pair and reports how many subscriptions remain for the
// pattern. Removing a handler that is not registered is a no-op.
//
// Handlers are funcs and not comparable with ==; identity is compared
// via the function pointer, matching "the handler passed to Subscribe".
func (r *registry) remove(pattern string, handler Handler) (removed bool, remaining int) {
	target := reflect.ValueOf(handler).Pointer()

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, sub := range r.subs {
		if sub.pattern == pattern && reflect.ValueOf(sub.handler).Pointer() == target {
			idx = i
			break
		}
	}
	if idx >= 0 {
		r.subs = append(r.subs[:idx:idx], r.subs[idx+1:]...)
	}

	for _, sub := range r.subs {
		if sub.pattern == pattern {
			remaining++
		}
	}
	return idx >= 0, remaining
}

// removeAll clears every subscription. Used on disconnect.
func (r *registry) removeAll() {
	r.mu.Lock()
	r.subs = nil
	r.mu.Unlock()
}

// snapshot returns a stable copy of the active subscriptions, in
// registration order, for one dispatch pass.
func (r *registry) snapshot() []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*subscription, len(r.subs))
	copy(out, r.subs)
	return out
}

// patterns returns the distinct patterns with at least one subscription,
// in first-registration order. Used to restore transport subscriptions
// after a reconnect.
func (r *registry) patterns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(r.subs))
	var out []string
	for _, sub := range r.subs {
		if !seen[sub.pattern] {
			seen[sub.pattern] = true
			out = append(out, sub.pattern)
		}
	}
	return out
}

// count returns the number of subscriptions for a pattern.
func (r *registry) count(pattern string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, sub := range r.subs {
		if sub.pattern == pattern {
			n++
		}
	}
	return n
}
