package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed marks payloads that could not be parsed into an Envelope or
// into the data shape their type requires.
var ErrMalformed = errors.New("malformed envelope")

// Encode renders an envelope for the wire.
func Encode(env Envelope) ([]byte, error) {
	if env.Type == "" {
		return nil, fmt.Errorf("encode envelope: empty type")
	}
	return json.Marshal(env)
}

// Decode parses a single wire message.
func Decode(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty message", ErrMalformed)
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env, nil
}

// DecodeData parses the data field of env into T.
func DecodeData[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, fmt.Errorf("%w: empty data for type %q", ErrMalformed, env.Type)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("%w: data for type %q: %v", ErrMalformed, env.Type, err)
	}
	return out, nil
}

// mustData marshals the fixed payload structs declared in this package, none
// of which can fail to encode.
func mustData(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("protocol: marshal %T: %v", v, err))
	}
	return b
}
