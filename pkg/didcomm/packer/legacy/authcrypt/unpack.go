/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package authcrypt

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/nacl/box"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer/legacy"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/internal/cryptoutil"
)

// Unpack will decode the envelope using the legacy format
// Using (X)Chacha20 encryption algorithm and Poly1035 authenticator.
func (p *Packer) Unpack(envelope []byte) (*transport.Envelope, error) {
	envelopeData, protectedData, err := legacy.Parse(envelope, legacy.AlgAuthcrypt)
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

	senderVerKey, senderPubCurve, err := decodeSender(recip.Header.Sender, recPub, recPriv)
	if err != nil {
		return nil, err
	}

	cek, err := openCEK(&recip, senderPubCurve, recPriv)
	if err != nil {
		return nil, err
	}

	data, err := legacy.Open(cek, envelopeData)
	if err != nil {
		return nil, fmt.Errorf("decrypt payload: %w", err)
	}

	return &transport.Envelope{
		Message:    data,
		FromVerKey: senderVerKey,
		ToVerKey:   recip.Header.KID,
	}, nil
}

func openCEK(recip *legacy.Recipient, senderPubCurve, recPriv []byte) ([]byte, error) {
	nonceSlice, err := base64.URLEncoding.DecodeString(recip.Header.IV)
	if err != nil {
		return nil, err
	}

	if len(nonceSlice) != cryptoutil.NonceSize {
		return nil, fmt.Errorf("invalid recipient nonce size %d", len(nonceSlice))
	}

	encCEK, err := base64.URLEncoding.DecodeString(recip.EncryptedKey)
	if err != nil {
		return nil, err
	}

	var (
		nonce      [cryptoutil.NonceSize]byte
		sendPub    [cryptoutil.Curve25519KeySize]byte
		recPrivKey [cryptoutil.Curve25519KeySize]byte
	)

	copy(nonce[:], nonceSlice)
	copy(sendPub[:], senderPubCurve)
	copy(recPrivKey[:], recPriv)

	cek, ok := box.Open(nil, encCEK, &nonce, &sendPub, &recPrivKey)
	if !ok {
		return nil, errors.New("failed to decrypt CEK")
	}

	return cek, nil
}

func decodeSender(b64Sender string, recPub, recPriv []byte) (string, []byte, error) {
	encSender, err := base64.URLEncoding.DecodeString(b64Sender)
	if err != nil {
		return "", nil, err
	}

	senderVerKey, err := cryptoutil.SodiumBoxSealOpen(encSender, recPub, recPriv)
	if err != nil {
		return "", nil, fmt.Errorf("decrypt sender: %w", err)
	}

	senderPubCurve, err := cryptoutil.PublicEd25519toCurve25519(base58.Decode(string(senderVerKey)))
	if err != nil {
		return "", nil, err
	}

	return string(senderVerKey), senderPubCurve, nil
}
