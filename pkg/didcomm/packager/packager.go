/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"errors"
	"fmt"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer/legacy"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer/legacy/anoncrypt"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer/legacy/authcrypt"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
)

// Provider contains dependencies for the base packager and is typically created by using context.Acquire().
type Provider interface {
	KMS() packer.KeyStore
}

// Packager is the basic implementation of transport.Packager. Envelopes with a sender key are packed
// with authcrypt, envelopes without one with anoncrypt.
type Packager struct {
	authPacker packer.Packer
	anonPacker packer.Packer
	packers    map[string]packer.Packer
}

// New return new instance of Packager implementation of transport.Packager.
func New(ctx Provider) *Packager {
	return NewWithPackers(authcrypt.New(ctx), anoncrypt.New(ctx))
}

// NewWithPackers creates a Packager from explicit authenticated and anonymous packers.
func NewWithPackers(authPacker, anonPacker packer.Packer) *Packager {
	return &Packager{
		authPacker: authPacker,
		anonPacker: anonPacker,
		packers: map[string]packer.Packer{
			authPacker.Algorithm(): authPacker,
			anonPacker.Algorithm(): anonPacker,
		},
	}
}

// PackMessage Pack a message for one or more recipients.
func (bp *Packager) PackMessage(envelope *transport.Envelope) ([]byte, error) {
	if envelope == nil {
		return nil, errors.New("packMessage: envelope argument is nil")
	}

	p := bp.anonPacker
	if envelope.FromVerKey != "" {
		p = bp.authPacker
	}

	packed, err := p.Pack(envelope.Message, envelope.FromVerKey, envelope.ToVerKeys)
	if err != nil {
		return nil, fmt.Errorf("packMessage: failed to pack: %w", err)
	}

	return packed, nil
}

// UnpackMessage Unpack a message.
func (bp *Packager) UnpackMessage(encMessage []byte) (*transport.Envelope, error) {
	alg, err := legacy.Algorithm(encMessage)
	if err != nil {
		return nil, fmt.Errorf("unpackMessage: %w", err)
	}

	p, ok := bp.packers[alg]
	if !ok {
		return nil, fmt.Errorf("unpackMessage: algorithm '%s' not recognized", alg)
	}

	envelope, err := p.Unpack(encMessage)
	if err != nil {
		return nil, fmt.Errorf("unpackMessage: %w", err)
	}

	return envelope, nil
}
