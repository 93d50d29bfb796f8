package connect

import (
	"encoding/json"
	"fmt"
)

// noValue is the type of the NoValue sentinel. It is unexported so the
// sentinel is the only value of its type.
type noValue struct{}

func (noValue) String() string { return "<no value>" }

// NoValue is delivered to handlers when a topic's retained payload is
// absent or empty, which is what Unpublish produces. It is distinct from
// a published JSON null, which decodes to untyped nil: callers may
// legitimately publish null as a payload.
var NoValue = noValue{}

// encodePayload converts a value into a transport payload.
//
// With raw disabled (the default) the value is serialized to its JSON
// text representation. With raw enabled the value must already be
// transport-compatible (string or []byte) and passes through unchanged.
// NoValue and nil-with-raw encode to an empty payload, the broker's
// deletion marker.
func encodePayload(value any, raw bool) ([]byte, error) {
	if _, ok := value.(noValue); ok {
		return nil, nil
	}

	if raw {
		switch v := value.(type) {
		case nil:
			return nil, nil
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		default:
			return nil, fmt.Errorf("%w: raw payload must be string or []byte, got %T", ErrEncodeFailed, value)
		}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	return data, nil
}

// decodePayload converts a transport payload into a handler value.
//
// With raw disabled (the default) the payload is JSON-parsed; note that
// the literal text "42" parses to the number 42, so numeric-looking
// strings round-trip as numbers. A parse failure returns a *DecodeError
// carrying the topic and the offending payload; the dispatcher absorbs
// it rather than invoking handlers. An absent or empty payload decodes
// to the NoValue sentinel.
//
// With raw enabled the payload is returned unchanged as []byte and parse
// errors cannot occur.
func decodePayload(topic string, payload []byte, raw bool) (any, error) {
	if raw {
		return payload, nil
	}

	if len(payload) == 0 {
		return NoValue, nil
	}

	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, &DecodeError{Topic: topic, Payload: payload, Err: err}
	}
	return value, nil
}
