/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package forward wraps messages in routing FORWARD envelopes and peels them off again.
//
// A forward envelope addresses a relay: {"@type": ".../routing/1.0/FORWARD", "@id": ..., "to": ..., "msg": ...}.
// Its msg is an opaque payload, usually another encrypted envelope, which can itself hold a forward for the
// next hop. The codec builds the forward shapes and hands them to a Crypter for sealing; it never encrypts
// anything by itself.
package forward

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/msgtype"
)

// Forward envelope fields.
const (
	JSONTo  = "to"
	JSONMsg = "msg"
)

// DefaultMaxDepth is the number of forward layers Unwrap accepts by default.
const DefaultMaxDepth = 8

var logger = log.New("aries-verity/forward")

var (
	// ErrSerialization is matched by every SerializationError.
	ErrSerialization = errors.New("serialization error")

	// ErrTooDeeplyNested is returned when a blob holds more forward layers than the codec accepts.
	ErrTooDeeplyNested = errors.New("envelope too deeply nested")
)

// SerializationError reports a layer that could not be opened or parsed. Depth is the number of forward
// layers peeled off before the failing one.
type SerializationError struct {
	Depth int
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization error at depth %d: %v", e.Depth, e.Err)
}

// Unwrap returns the cause.
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSerialization) hold for every SerializationError.
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// Crypter seals envelopes for a recipient key and opens received blobs. It is provided by the
// execution context.
type Crypter interface {
	Encrypt(env envelope.Envelope, recipientKey string) ([]byte, error)
	Decrypt(blob []byte) (envelope.Envelope, error)
}

// Hop is one relay of a route: the routing id the forward is addressed to, and the key the forward is
// sealed for.
type Hop struct {
	To           string
	RecipientKey string
}

// Forward is the typed view of a forward envelope.
type Forward struct {
	Type string                 `json:"@type"`
	ID   string                 `json:"@id"`
	To   string                 `json:"to"`
	Msg  map[string]interface{} `json:"msg"`
}

// Option configures a Codec.
type Option func(c *Codec)

// WithMaxDepth sets the number of forward layers Unwrap accepts. Values below zero are ignored.
func WithMaxDepth(depth int) Option {
	return func(c *Codec) {
		if depth >= 0 {
			c.maxDepth = depth
		}
	}
}

// Codec wraps and unwraps forward envelopes. It holds no mutable state and is safe for concurrent use
// when its Crypter is.
type Codec struct {
	crypter  Crypter
	maxDepth int
}

// New creates a Codec sealing and opening layers with the given crypter.
func New(crypter Crypter, opts ...Option) *Codec {
	c := &Codec{
		crypter:  crypter,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// MaxDepth returns the number of forward layers Unwrap accepts.
func (c *Codec) MaxDepth() int {
	return c.maxDepth
}

// Wrap builds a forward envelope addressed to the routing id with inner as its payload.
func Wrap(inner interface{}, to string) (envelope.Envelope, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: forward requires a payload", envelope.ErrInvalidState)
	}

	return envelope.Build(msgtype.Forward, envelope.Fields{JSONTo: to, JSONMsg: inner}, JSONTo)
}

// Seal wraps the inner envelope, which must be a JSON object, in a forward to the routing id and seals the
// forward for recipientKey.
func (c *Codec) Seal(inner []byte, to, recipientKey string) ([]byte, error) {
	var payload map[string]interface{}

	if err := json.Unmarshal(inner, &payload); err != nil || payload == nil {
		return nil, fmt.Errorf("%w: forward payload is not a JSON object", envelope.ErrInvalidState)
	}

	fwd, err := Wrap(payload, to)
	if err != nil {
		return nil, err
	}

	sealed, err := c.crypter.Encrypt(fwd, recipientKey)
	if err != nil {
		return nil, fmt.Errorf("seal forward to '%s': %w", to, err)
	}

	logger.Debugf("sealed forward %s to %s", fwd.ID(), to)

	return sealed, nil
}

// SealRoute wraps inner once per hop. The first hop is the innermost wrapper, the last hop the outermost.
func (c *Codec) SealRoute(inner []byte, hops ...Hop) ([]byte, error) {
	msg := inner

	for i, hop := range hops {
		var err error

		msg, err = c.Seal(msg, hop.To, hop.RecipientKey)
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", i+1, err)
		}
	}

	return msg, nil
}

// Unwrap opens the blob and keeps opening the payload of every forward it finds until it reaches an
// envelope that is not a forward, which is returned. A blob without forward layers is returned as opened.
func (c *Codec) Unwrap(blob []byte) (envelope.Envelope, error) {
	for depth := 0; ; depth++ {
		env, err := c.crypter.Decrypt(blob)
		if err != nil {
			return nil, &SerializationError{Depth: depth, Err: err}
		}

		if !env.Is(msgtype.Forward) {
			logger.Debugf("unwrapped %s after %d forward layers", env.Type(), depth)

			return env, nil
		}

		if depth >= c.maxDepth {
			return nil, fmt.Errorf("%w: more than %d forward layers", ErrTooDeeplyNested, c.maxDepth)
		}

		fwd, err := Decode(env)
		if err != nil {
			return nil, &SerializationError{Depth: depth, Err: err}
		}

		blob, err = json.Marshal(fwd.Msg)
		if err != nil {
			return nil, &SerializationError{Depth: depth, Err: err}
		}
	}
}

// UnwrapExpect unwraps the blob and checks that the innermost envelope is one of the expected operations.
func (c *Codec) UnwrapExpect(blob []byte, expected ...msgtype.Operation) (envelope.Envelope, msgtype.Operation, error) {
	env, err := c.Unwrap(blob)
	if err != nil {
		return nil, 0, err
	}

	op, err := msgtype.Match(env.Type(), expected...)
	if err != nil {
		return nil, 0, err
	}

	return env, op, nil
}

// Decode validates a forward envelope: it must carry a non-empty string "to" and an object "msg".
func Decode(env envelope.Envelope) (*Forward, error) {
	if !env.Is(msgtype.Forward) {
		return nil, fmt.Errorf("%w: '%s' is not a forward", msgtype.ErrTypeMismatch, env.Type())
	}

	to, ok := env[JSONTo].(string)
	if !ok || to == "" {
		return nil, fmt.Errorf("forward %s: missing '%s'", env.ID(), JSONTo)
	}

	msg, ok := env[JSONMsg].(map[string]interface{})
	if !ok {
		if inner, isEnv := env[JSONMsg].(envelope.Envelope); isEnv && inner != nil {
			msg = inner
		} else {
			return nil, fmt.Errorf("forward %s: missing '%s'", env.ID(), JSONMsg)
		}
	}

	return &Forward{
		Type: env.Type(),
		ID:   env.ID(),
		To:   to,
		Msg:  msg,
	}, nil
}

// Plaintext is a Crypter that marshals envelopes without encryption. Layers sealed with it can be read
// by anyone; it is meant for inspecting routes.
type Plaintext struct{}

// Encrypt marshals the envelope. The recipient key is ignored.
func (Plaintext) Encrypt(env envelope.Envelope, _ string) ([]byte, error) {
	return env.Bytes()
}

// Decrypt parses the blob as a plaintext envelope.
func (Plaintext) Decrypt(blob []byte) (envelope.Envelope, error) {
	return envelope.FromJSON(blob)
}
