/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package authcrypt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/btcsuite/btcutil/base58"
	chacha "golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/box"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer/legacy"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/internal/cryptoutil"
)

// Packer represents an Authcrypt Pack/Unpacker that outputs/reads legacy Aries envelopes.
// The sender is authenticated to the recipients.
type Packer struct {
	randSource io.Reader
	kms        packer.KeyStore
}

// New will create a Packer that encrypts messages using the legacy Aries format.
// Note: legacy Packer does not support XChacha20Poly1035 (XC20P), only Chacha20Poly1035 (C20P).
func New(ctx packer.Provider) *Packer {
	return &Packer{
		randSource: rand.Reader,
		kms:        ctx.KMS(),
	}
}

// Algorithm returns the `alg` protected header value of authcrypt envelopes.
func (p *Packer) Algorithm() string {
	return legacy.AlgAuthcrypt
}

// Pack will encode the payload argument for the recipients, authenticated by senderVerKey.
// Using the protocol defined by Aries RFC 0019.
func (p *Packer) Pack(payload []byte, senderVerKey string, recipients []string) ([]byte, error) {
	if err := legacy.CheckRecipients(recipients); err != nil {
		return nil, err
	}

	if senderVerKey == "" {
		return nil, fmt.Errorf("authcrypt: %w: missing sender key", cryptoutil.ErrInvalidKey)
	}

	_, senderPriv, err := p.kms.EncryptionKeyPair(senderVerKey)
	if err != nil {
		return nil, fmt.Errorf("authcrypt: sender key: %w", err)
	}

	cek, err := legacy.NewCEK(p.randSource)
	if err != nil {
		return nil, err
	}

	encodedRecipients := make([]legacy.Recipient, 0, len(recipients))

	for i, recKey := range recipients {
		rec, e := p.buildRecipient(cek, senderVerKey, senderPriv, recKey)
		if e != nil {
			return nil, fmt.Errorf("authcrypt: recipient %d: %w", i+1, e)
		}

		encodedRecipients = append(encodedRecipients, *rec)
	}

	return legacy.Seal(cek, &legacy.Protected{
		Enc:        legacy.Enc,
		Typ:        legacy.EncodingType,
		Alg:        legacy.AlgAuthcrypt,
		Recipients: encodedRecipients,
	}, payload, p.randSource)
}

// buildRecipient encodes the necessary data for the recipient to decrypt the message
// encrypting the CEK and sender pub key.
func (p *Packer) buildRecipient(cek *[chacha.KeySize]byte, senderVerKey string, senderPriv []byte,
	recVerKey string) (*legacy.Recipient, error) {
	var nonce [cryptoutil.NonceSize]byte

	if _, err := io.ReadFull(p.randSource, nonce[:]); err != nil {
		return nil, err
	}

	recPKCurve, err := cryptoutil.PublicEd25519toCurve25519(base58.Decode(recVerKey))
	if err != nil {
		return nil, err
	}

	var recPub, sendPriv [cryptoutil.Curve25519KeySize]byte

	copy(recPub[:], recPKCurve)
	copy(sendPriv[:], senderPriv)

	encCEK := box.Seal(nil, cek[:], &nonce, &recPub, &sendPriv)

	encSender, err := cryptoutil.SodiumBoxSeal([]byte(senderVerKey), recPKCurve, p.randSource)
	if err != nil {
		return nil, err
	}

	return &legacy.Recipient{
		EncryptedKey: base64.URLEncoding.EncodeToString(encCEK),
		Header: legacy.RecipientHeader{
			KID:    recVerKey,
			Sender: base64.URLEncoding.EncodeToString(encSender),
			IV:     base64.URLEncoding.EncodeToString(nonce[:]),
		},
	}, nil
}
