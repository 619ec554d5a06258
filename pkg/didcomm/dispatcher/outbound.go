/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dispatcher

import (
	"context"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
)

var logger = log.New("aries-verity/dispatcher")

// Option configures a Gateway.
type Option func(g *Gateway)

// WithTransmit replaces the network call of the gateway.
func WithTransmit(fn TransmitFunc) Option {
	return func(g *Gateway) {
		if fn != nil {
			g.transmit = fn
		}
	}
}

// Gateway delivers envelopes to the Verity agency of a relationship.
//
// Messages are authcrypted from the SDK pairwise key to the Verity pairwise key, wrapped in a forward
// addressed to the Verity pairwise DID, and the forward is anoncrypted for the Verity agency key.
type Gateway struct {
	prov     Provider
	transmit TransmitFunc
}

// NewGateway returns a gateway sending with prov.Transmit unless WithTransmit is given.
func NewGateway(prov Provider, opts ...Option) *Gateway {
	g := &Gateway{
		prov:     prov,
		transmit: prov.Transmit,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Pack returns the bytes Deliver would send for env.
func (g *Gateway) Pack(env envelope.Envelope) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}

	inner, err := g.prov.EncryptFrom(env, g.prov.SDKPairwiseVerkey(), g.prov.VerityPairwiseVerkey())
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", env.ID(), err)
	}

	packed, err := g.prov.Codec().Seal(inner, g.prov.VerityPairwiseDID(), g.prov.VerityPublicVerkey())
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", env.ID(), err)
	}

	return packed, nil
}

// Deliver packs env and sends it to the agency endpoint. The raw response is returned; the gateway
// does not retry.
func (g *Gateway) Deliver(ctx context.Context, env envelope.Envelope) ([]byte, error) {
	packed, err := g.Pack(env)
	if err != nil {
		return nil, err
	}

	endpoint := g.prov.AgencyEndpoint()

	logger.Debugf("delivering %s (%s) to %s", env.ID(), env.Type(), endpoint)

	resp, err := g.transmit(ctx, packed, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s to %s: %w", ErrDelivery, env.ID(), endpoint, err)
	}

	return resp, nil
}
