/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncrypt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/btcsuite/btcutil/base58"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer/legacy"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/internal/cryptoutil"
)

// Packer represents an Anoncrypt Pack/Unpacker that outputs/reads legacy Aries envelopes.
// The sender stays anonymous; forward messages addressed to an agency are packed this way.
type Packer struct {
	randSource io.Reader
	kms        packer.KeyStore
}

// New will create a Packer that encrypts messages using the legacy Aries format.
func New(ctx packer.Provider) *Packer {
	return &Packer{
		randSource: rand.Reader,
		kms:        ctx.KMS(),
	}
}

// Algorithm returns the `alg` protected header value of anoncrypt envelopes.
func (p *Packer) Algorithm() string {
	return legacy.AlgAnoncrypt
}

// Pack will encode the payload for the recipients. The sender key is ignored.
func (p *Packer) Pack(payload []byte, _ string, recipients []string) ([]byte, error) {
	if err := legacy.CheckRecipients(recipients); err != nil {
		return nil, err
	}

	cek, err := legacy.NewCEK(p.randSource)
	if err != nil {
		return nil, err
	}

	encodedRecipients := make([]legacy.Recipient, 0, len(recipients))

	for i, recKey := range recipients {
		recPKCurve, e := cryptoutil.PublicEd25519toCurve25519(base58.Decode(recKey))
		if e != nil {
			return nil, fmt.Errorf("anoncrypt: recipient %d: %w", i+1, e)
		}

		encCEK, e := cryptoutil.SodiumBoxSeal(cek[:], recPKCurve, p.randSource)
		if e != nil {
			return nil, fmt.Errorf("anoncrypt: recipient %d: %w", i+1, e)
		}

		encodedRecipients = append(encodedRecipients, legacy.Recipient{
			EncryptedKey: base64.URLEncoding.EncodeToString(encCEK),
			Header:       legacy.RecipientHeader{KID: recKey},
		})
	}

	return legacy.Seal(cek, &legacy.Protected{
		Enc:        legacy.Enc,
		Typ:        legacy.EncodingType,
		Alg:        legacy.AlgAnoncrypt,
		Recipients: encodedRecipients,
	}, payload, p.randSource)
}

// Unpack will decode an anoncrypt envelope with a recipient key held by the wallet.
func (p *Packer) Unpack(envelope []byte) (*transport.Envelope, error) {
	envelopeData, protectedData, err := legacy.Parse(envelope, legacy.AlgAnoncrypt)
	if err != nil {
		return nil, err
	}

	recKeyIdx, err := p.kms.FindVerKey(protectedData.KIDs())
	if err != nil {
		return nil, fmt.Errorf("no key accessible: %w", err)
	}

	recip := protectedData.Recipients[recKeyIdx]

	recPub, recPriv, err := p.kms.EncryptionKeyPair(recip.Header.KID)
	if err != nil {
		return nil, err
	}

	encCEK, err := base64.URLEncoding.DecodeString(recip.EncryptedKey)
	if err != nil {
		return nil, err
	}

	cek, err := cryptoutil.SodiumBoxSealOpen(encCEK, recPub, recPriv)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt CEK: %w", err)
	}

	data, err := legacy.Open(cek, envelopeData)
	if err != nil {
		return nil, fmt.Errorf("decrypt payload: %w", err)
	}

	return &transport.Envelope{
		Message:  data,
		ToVerKey: recip.Header.KID,
	}, nil
}
