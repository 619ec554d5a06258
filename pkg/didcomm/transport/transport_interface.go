/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination ../../internal/gomocks/didcomm/transport/mocks.gen.go -package transport . OutboundTransport

package transport

import "context"

// Envelope holds the message and the keys of a packed DIDComm exchange.
type Envelope struct {
	Message    []byte
	FromVerKey string
	// ToVerKeys is the list of recipient verkeys of an outbound envelope.
	ToVerKeys []string
	// ToVerKey is the recipient verkey that opened an inbound envelope.
	ToVerKey string
}

// Packager packs and unpacks DIDComm envelopes.
type Packager interface {
	// PackMessage encrypts envelope.Message for envelope.ToVerKeys. An empty FromVerKey selects anonymous
	// encryption.
	PackMessage(envelope *Envelope) ([]byte, error)

	// UnpackMessage decrypts an envelope with a key held by the wallet.
	UnpackMessage(encMessage []byte) (*Envelope, error)
}

// OutboundTransport sends packed envelopes to a remote agent endpoint.
// This is the client side of the agent.
type OutboundTransport interface {
	// Send sends data to the endpoint url and returns the raw response body.
	Send(ctx context.Context, data []byte, url string) ([]byte, error)

	// Accept reports whether the transport can send to the url.
	Accept(url string) bool
}

// InboundMessageHandler handles the raw inbound payloads received on an endpoint.
type InboundMessageHandler func(payload []byte) error
