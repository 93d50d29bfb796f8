package treestore

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/nerrad567/gray-logic-connect/connect"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-connect/topics"
)

// Node is one node of the retained topic tree as served by the query API.
type Node struct {
	// Topic is the node's full topic.
	Topic string `json:"topic"`

	// Payload is the retained value. Valid JSON payloads are embedded
	// verbatim; anything else is reported as a JSON string.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Children are the depth-bounded descendants, present only when the
	// query supplied a depth.
	Children []*Node `json:"children,omitempty"`
}

// Subscriber is the slice of the connect client the store needs.
type Subscriber interface {
	Subscribe(pattern string, opts *connect.SubscribeOptions, handler connect.Handler) error
}

// Store is the in-memory retained topic tree.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Store struct {
	mu       sync.RWMutex
	retained map[string][]byte
	logger   *logging.Logger
}

// New creates an empty store.
func New(logger *logging.Logger) *Store {
	return &Store{
		retained: make(map[string][]byte),
		logger:   logger,
	}
}

// Attach subscribes the store to the full retained stream.
//
// The subscription is raw: payloads are stored byte-for-byte, and an
// empty payload (the broker's deletion marker) removes the topic.
func (s *Store) Attach(bus Subscriber) error {
	return bus.Subscribe(topics.MultiLevel, connect.NewSubscribeOptions().SetRaw(true), s.handleMessage)
}

// handleMessage applies one bus message to the tree.
func (s *Store) handleMessage(value any, topic string, _ connect.Delivery) {
	payload, ok := value.([]byte)
	if !ok {
		return
	}
	s.Set(topic, payload)
}

// Set stores a retained payload at a topic. An empty payload deletes
// the topic. The payload is copied; callers may reuse the slice.
func (s *Store) Set(topic string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(payload) == 0 {
		delete(s.retained, topic)
		return
	}
	s.retained[topic] = append([]byte(nil), payload...)
}

// Get returns the retained payload at exactly topic.
func (s *Store) Get(topic string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.retained[topic]
	return payload, ok
}

// Len returns the number of retained topics.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.retained)
}

// Export returns a copy of the retained map, for snapshot persistence.
func (s *Store) Export() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.retained))
	for topic, payload := range s.retained {
		out[topic] = append([]byte(nil), payload...)
	}
	return out
}

// Import replaces the tree with previously exported state. Used at
// startup before the broker has redelivered the retained set.
func (s *Store) Import(data map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.retained = make(map[string][]byte, len(data))
	for topic, payload := range data {
		if len(payload) == 0 {
			continue
		}
		s.retained[topic] = append([]byte(nil), payload...)
	}
}

// Query returns the subtree rooted at topic.
//
// A retained payload at the root is always reported; depth bounds only
// how many descendant levels are expanded (0 means none). A topic with
// no retained value and no descendants yields ErrNotFound.
//
// Parameters:
//   - topic: Root topic of the query (no wildcards)
//   - depth: Descendant levels to expand (>= 0)
//
// Returns:
//   - *Node: The subtree, children sorted by topic
//   - error: ErrNotFound when the subtree is empty
func (s *Store) Query(topic string, depth int) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, held := s.retained[topic]
	if !held && !s.hasDescendants(topic) {
		return nil, ErrNotFound
	}

	node := &Node{Topic: topic}
	if held {
		node.Payload = nodePayload(payload)
	}
	if depth > 0 {
		node.Children = s.children(topic, depth)
	}
	return node, nil
}

// hasDescendants reports whether any retained topic lies below topic.
// Callers must hold at least a read lock.
func (s *Store) hasDescendants(topic string) bool {
	for t := range s.retained {
		if topics.IsChild(topic, t) {
			return true
		}
	}
	return false
}

// children builds the immediate child nodes of topic, expanding
// depth-1 further levels. Callers must hold at least a read lock.
func (s *Store) children(topic string, depth int) []*Node {
	prefix := topic + topics.Separator

	seen := make(map[string]bool)
	var segments []string
	for t := range s.retained {
		if !strings.HasPrefix(t, prefix) {
			continue
		}
		segment := t[len(prefix):]
		if i := strings.Index(segment, topics.Separator); i >= 0 {
			segment = segment[:i]
		}
		if !seen[segment] {
			seen[segment] = true
			segments = append(segments, segment)
		}
	}
	sort.Strings(segments)

	var nodes []*Node
	for _, segment := range segments {
		child := prefix + segment
		node := &Node{Topic: child}
		if payload, held := s.retained[child]; held {
			node.Payload = nodePayload(payload)
		}
		if depth > 1 {
			node.Children = s.children(child, depth-1)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// nodePayload renders a stored payload for the JSON response: valid
// JSON is embedded verbatim, anything else becomes a JSON string.
func nodePayload(payload []byte) json.RawMessage {
	if json.Valid(payload) {
		return json.RawMessage(payload)
	}
	quoted, err := json.Marshal(string(payload))
	if err != nil {
		return json.RawMessage(`null`)
	}
	return json.RawMessage(quoted)
}
