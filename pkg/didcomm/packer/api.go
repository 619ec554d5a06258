/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packer

import (
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
)

// KeyStore gives packers access to the wallet key sets, addressed by base58 verkey.
type KeyStore interface {
	FindVerKey(candidates []string) (int, error)
	EncryptionKeyPair(verKey string) (pub, priv []byte, err error)
}

// Provider interface for Packer ctx.
type Provider interface {
	KMS() KeyStore
}

// Creator method to create new Packer service.
type Creator func(prov Provider) (Packer, error)

// Packer is an envelope packer/unpacker to support secure DIDComm exchange of envelopes between agents.
type Packer interface {
	// Pack a payload using the sender verkey and a list of recipient verkeys
	// returns:
	// 		[]byte containing the encrypted envelope
	//		error if encryption failed
	Pack(payload []byte, senderVerKey string, recipients []string) ([]byte, error)
	// Unpack an envelope.
	// 		The recipient's key will be the one found in the KeyStore that matches one of the list of recipients in
	//		the envelope
	//
	// returns:
	// 		Envelope containing the message, decryption key, and sender key
	//		error if decryption failed
	Unpack(envelope []byte) (*transport.Envelope, error)

	// Algorithm returns the `alg` protected header value handled by the packer.
	Algorithm() string
}
