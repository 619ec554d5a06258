/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dispatcher

import (
	"context"
	"errors"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/forward"
)

// ErrDelivery wraps transport send and receive failures.
var ErrDelivery = errors.New("delivery failed")

// TransmitFunc sends packed bytes to an endpoint and returns the raw response.
type TransmitFunc func(ctx context.Context, data []byte, endpoint string) ([]byte, error)

// EchoTransmit is a TransmitFunc returning the request bytes instead of sending them. It lets the
// packed message be unwrapped locally without a Verity agency.
func EchoTransmit(_ context.Context, data []byte, _ string) ([]byte, error) {
	return data, nil
}

// Provider interface for outbound ctx.
type Provider interface {
	EncryptFrom(env envelope.Envelope, senderKey, recipientKey string) ([]byte, error)
	Codec() *forward.Codec
	Transmit(ctx context.Context, data []byte, endpoint string) ([]byte, error)
	AgencyEndpoint() string
	SDKPairwiseVerkey() string
	VerityPairwiseDID() string
	VerityPairwiseVerkey() string
	VerityPublicVerkey() string
}

// Outbound packs envelopes for the Verity agency and delivers them.
type Outbound interface {
	Pack(env envelope.Envelope) ([]byte, error)
	Deliver(ctx context.Context, env envelope.Envelope) ([]byte, error)
}
