// Package topics provides the topic and pattern model shared by the
// Gray Logic Connect client and the retained tree store.
//
// Topics are strings of /-separated segments identifying a retained value
// slot on the broker. Subscription patterns may additionally use MQTT
// wildcards:
//   - + matches exactly one segment at its position
//   - # matches all remaining segments (only valid as the final segment)
//
// All functions in this package are pure and safe for concurrent use.
//
// # Usage
//
//	topics.Match("hub/status/+", "hub/status/lamp")   // true
//	topics.Match("hub/#", "hub")                      // true
//	topics.Match("hub/+", "hub/status/lamp")          // false
//
// # Related Documents
//
//   - docs/protocols/mqtt.md — Topic structure and message formats
package topics
