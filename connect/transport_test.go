package connect

import (
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-connect/topics"
)

// fakeTransport is a scripted Transport standing in for the broker.
//
// It keeps a retained-value map with broker semantics: a retained
// publish replaces the stored value (empty payload deletes it) and a
// Subscribe immediately redelivers matching retained values. Live
// publishes are delivered to the client when any subscribed pattern
// matches.
type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	failNext  error

	retained   map[string][]byte
	subscribed []string

	publishes []publishCall
	unsubs    []string

	// deliver feeds messages into the client's dispatcher.
	deliver func(topic string, payload []byte, meta Delivery)
}

type publishCall struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		connected: true,
		retained:  make(map[string][]byte),
	}
}

func (f *fakeTransport) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	if err := f.failNext; err != nil {
		f.failNext = nil
		f.mu.Unlock()
		return err
	}

	f.publishes = append(f.publishes, publishCall{topic, payload, qos, retained})
	if retained {
		if len(payload) == 0 {
			delete(f.retained, topic)
		} else {
			f.retained[topic] = payload
		}
	}

	matched := false
	for _, pattern := range f.subscribed {
		if topics.Match(pattern, topic) {
			matched = true
			break
		}
	}
	deliver := f.deliver
	f.mu.Unlock()

	if matched && deliver != nil {
		deliver(topic, payload, Delivery{QoS: qos})
	}
	return nil
}

func (f *fakeTransport) Subscribe(pattern string, _ byte) error {
	f.mu.Lock()
	if err := f.failNext; err != nil {
		f.failNext = nil
		f.mu.Unlock()
		return err
	}
	f.subscribed = append(f.subscribed, pattern)

	var redeliver []publishCall
	for topic, payload := range f.retained {
		if topics.Match(pattern, topic) {
			redeliver = append(redeliver, publishCall{topic: topic, payload: payload})
		}
	}
	deliver := f.deliver
	f.mu.Unlock()

	if deliver != nil {
		for _, msg := range redeliver {
			deliver(msg.topic, msg.payload, Delivery{QoS: DefaultQoS, Retained: true})
		}
	}
	return nil
}

func (f *fakeTransport) Unsubscribe(pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.unsubs = append(f.unsubs, pattern)
	for i, p := range f.subscribed {
		if p == pattern {
			f.subscribed = append(f.subscribed[:i], f.subscribed[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.publishes)
}

func (f *fakeTransport) lastPublish(t *testing.T) publishCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.publishes) == 0 {
		t.Fatal("no publishes recorded")
	}
	return f.publishes[len(f.publishes)-1]
}

var _ Transport = (*fakeTransport)(nil)

// newTestClient wires a connected client around a fake transport.
func newTestClient(t *testing.T, queryURL string) (*Client, *fakeTransport) {
	t.Helper()

	ft := newFakeTransport()
	c := newClient(ft, queryURL, nil)
	ft.deliver = c.onMessage
	c.setState(stateConnected)
	return c, ft
}
