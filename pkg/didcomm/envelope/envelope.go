/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package envelope builds the plaintext messages exchanged with a Verity agent.
//
// An Envelope is a JSON object carrying at least a derived "@type" and a fresh "@id". Envelopes are
// value objects: they are built per call, sent, and dropped once the response is processed.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/msgtype"
)

// Reserved keys of every envelope.
const (
	JSONType = "@type"
	JSONID   = "@id"
)

var (
	// ErrInvalidState is returned when caller supplied state is missing or malformed and no well-formed
	// envelope can be built from it.
	ErrInvalidState = errors.New("invalid state")

	errNotObject = errors.New("envelope is not a JSON object")
)

// Fields holds operation specific envelope fields.
type Fields map[string]interface{}

// Envelope is a plaintext DIDComm message.
type Envelope map[string]interface{}

// Build creates a new envelope for the given operation. The type is looked up from the operation
// registry and the id is freshly generated. Every key listed in required must be present in fields
// and must not be nil or an empty string.
func Build(op msgtype.Operation, fields Fields, required ...string) (Envelope, error) {
	id, err := msgtype.Lookup(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	for _, key := range required {
		if isBlank(fields[key]) {
			return nil, fmt.Errorf("%w: %s requires field '%s'", ErrInvalidState, op, key)
		}
	}

	env := Envelope{
		JSONType: id.String(),
		JSONID:   NewID(),
	}

	for k, v := range fields {
		if k == JSONType || k == JSONID {
			return nil, fmt.Errorf("%w: field '%s' is reserved", ErrInvalidState, k)
		}

		env[k] = v
	}

	return env, nil
}

// NewID generates a message id.
func NewID() string {
	return uuid.New().String()
}

func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}

// FromJSON parses a plaintext envelope. The body must be a JSON object with a string "@type".
func FromJSON(data []byte) (Envelope, error) {
	var env Envelope

	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	if env == nil {
		return nil, errNotObject
	}

	if _, ok := env[JSONType].(string); !ok {
		return nil, fmt.Errorf("parse envelope: missing '%s'", JSONType)
	}

	return env, nil
}

// ID returns the message id, or an empty string if it is not set.
func (e Envelope) ID() string {
	if e == nil {
		return ""
	}

	id, _ := e[JSONID].(string) //nolint:errcheck

	return id
}

// Type returns the type identifier, or an empty string if it is not set.
func (e Envelope) Type() string {
	if e == nil {
		return ""
	}

	t, _ := e[JSONType].(string) //nolint:errcheck

	return t
}

// Identity parses the type identifier of the envelope.
func (e Envelope) Identity() (msgtype.Identity, error) {
	return msgtype.Parse(e.Type())
}

// Is reports whether the envelope has exactly the type of the given operation.
func (e Envelope) Is(op msgtype.Operation) bool {
	_, err := msgtype.Match(e.Type(), op)

	return err == nil
}

// StringField returns the value of a string field, or an empty string.
func (e Envelope) StringField(key string) string {
	s, _ := e[key].(string) //nolint:errcheck

	return s
}

// Clone returns a shallow copy of the envelope.
func (e Envelope) Clone() Envelope {
	if e == nil {
		return nil
	}

	c := make(Envelope, len(e))
	for k, v := range e {
		c[k] = v
	}

	return c
}

// Bytes marshals the envelope.
func (e Envelope) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// Decode copies the envelope into the struct v using its json tags.
func (e Envelope) Decode(v interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           v,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(e)
}

// Validate checks that the envelope carries a well-formed type identifier and a non-empty id.
func (e Envelope) Validate() error {
	if _, err := e.Identity(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if e.ID() == "" {
		return fmt.Errorf("%w: missing '%s'", ErrInvalidState, JSONID)
	}

	return nil
}
