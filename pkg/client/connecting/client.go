/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connecting

import (
	"context"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/dispatcher"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/msgtype"
)

// Message fields of the connecting family.
const (
	SourceIDField         = "sourceId"
	PhoneNumberField      = "phoneNo"
	IncludePublicDIDField = "includePublicDID"
)

// ErrInvalidState is returned when a message cannot be built from the connection request.
var ErrInvalidState = envelope.ErrInvalidState

// Provider contains dependencies for the connecting client and is typically created by using
// context.Acquire().
type Provider interface {
	dispatcher.Provider
}

// Option configures a single Connect or Status call.
type Option func(opts *options)

type options struct {
	transmit dispatcher.TransmitFunc
}

// WithTransmit replaces the network call of the delivery.
func WithTransmit(fn dispatcher.TransmitFunc) Option {
	return func(opts *options) {
		opts.transmit = fn
	}
}

// Connecting holds a connection request. It is read-only once created.
type Connecting struct {
	SourceID         string
	PhoneNumber      string
	IncludePublicDID bool
}

// New creates a connection request.
func New(sourceID, phoneNumber string, includePublicDID bool) *Connecting {
	return &Connecting{
		SourceID:         sourceID,
		PhoneNumber:      phoneNumber,
		IncludePublicDID: includePublicDID,
	}
}

// Messages returns the type identifiers of the messages the client sends.
func (c *Connecting) Messages() []string {
	return []string{
		msgtype.TypeOf(msgtype.CreateConnection),
		msgtype.TypeOf(msgtype.GetStatus),
	}
}

// ConnectMsg builds the create-connection message.
func (c *Connecting) ConnectMsg() (envelope.Envelope, error) {
	return envelope.Build(msgtype.CreateConnection, envelope.Fields{
		SourceIDField:         c.SourceID,
		PhoneNumberField:      c.PhoneNumber,
		IncludePublicDIDField: c.IncludePublicDID,
	}, SourceIDField, PhoneNumberField)
}

// StatusMsg builds the get-status message.
func (c *Connecting) StatusMsg() (envelope.Envelope, error) {
	return envelope.Build(msgtype.GetStatus, envelope.Fields{
		SourceIDField: c.SourceID,
	}, SourceIDField)
}

// ConnectMsgPacked builds the create-connection message and packs it for the Verity agency.
func (c *Connecting) ConnectMsgPacked(p Provider) ([]byte, error) {
	return pack(p, c.ConnectMsg)
}

// StatusMsgPacked builds the get-status message and packs it for the Verity agency.
func (c *Connecting) StatusMsgPacked(p Provider) ([]byte, error) {
	return pack(p, c.StatusMsg)
}

// Connect sends the create-connection message and returns the raw response.
func (c *Connecting) Connect(ctx context.Context, p Provider, opts ...Option) ([]byte, error) {
	return deliver(ctx, p, c.ConnectMsg, opts)
}

// Status sends the get-status message and returns the raw response.
func (c *Connecting) Status(ctx context.Context, p Provider, opts ...Option) ([]byte, error) {
	return deliver(ctx, p, c.StatusMsg, opts)
}

func pack(p Provider, build func() (envelope.Envelope, error)) ([]byte, error) {
	env, err := build()
	if err != nil {
		return nil, err
	}

	return dispatcher.NewGateway(p).Pack(env)
}

func deliver(ctx context.Context, p Provider, build func() (envelope.Envelope, error), opts []Option) ([]byte, error) {
	env, err := build()
	if err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	return dispatcher.NewGateway(p, dispatcher.WithTransmit(o.transmit)).Deliver(ctx, env)
}
