// Package connect provides the client-side retained pub/sub facade for the
// Gray Logic stack.
//
// This package manages:
//   - Connection lifecycle against the MQTT broker (via paho.mqtt.golang)
//   - Retained publishing with automatic JSON encoding
//   - Pattern subscriptions with +/# wildcards and multiple handlers
//   - Unpublish and recursive unpublish of retained subtrees
//   - Queries against the retained tree store's HTTP API
//
// # Architecture
//
// The broker holds a retained value per topic; every publish from this
// client is retained, so the bus doubles as the current-state store.
// The tree store daemon (cmd/graystore) mirrors that state and serves it
// as a topic tree over HTTP, which Query consumes.
//
//	Gray Logic services ↔ MQTT Broker ↔ graystore (HTTP query API)
//
// Every inbound message is matched against all registered patterns and
// decoded per subscription before handlers run. Messages are dispatched
// one at a time; handlers for one message all complete before the next
// message is processed, so handlers never race each other within a
// client. A handler may subscribe or unsubscribe during dispatch; such
// changes apply to subsequent messages only.
//
// Values are JSON-encoded on publish and JSON-decoded on delivery by
// default. A payload that fails JSON parsing never reaches handlers; it
// is logged with its topic and raw payload and delivery continues with
// the next message. An empty retained payload (the result of Unpublish)
// is delivered as the NoValue sentinel, which is distinct from a
// published JSON null.
//
// # Usage
//
//	client, err := connect.Connect("tcp://127.0.0.1:1883", "http://127.0.0.1:8082/query", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	err = client.Subscribe("hub/status/#", nil, func(value any, topic string, meta connect.Delivery) {
//	    if value == connect.NoValue {
//	        log.Printf("%s deleted", topic)
//	        return
//	    }
//	    log.Printf("%s = %v", topic, value)
//	})
//
//	err = client.Publish("hub/status/lamp", map[string]any{"on": true}, nil)
//
// # Related Documents
//
//   - docs/protocols/mqtt.md — Topic structure and message formats
//   - docs/architecture/retained-state.md — Retained values as state store
package connect
