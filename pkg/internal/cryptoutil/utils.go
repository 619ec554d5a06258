/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cryptoutil

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"

	"github.com/teserakt-io/golang-ed25519/extra25519"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/nacl/box"
)

// Curve25519KeySize number of bytes in a Curve25519 public or private key.
const Curve25519KeySize = 32

// NonceSize size of a nonce used by Box encryption (Xsalsa20Poly1305).
const NonceSize = 24

var (
	// ErrInvalidKey is used when a key is invalid.
	ErrInvalidKey = errors.New("invalid key")

	errOpenSealedBox = errors.New("failed to open sealed box")
)

// PublicEd25519toCurve25519 takes an Ed25519 public key and provides the corresponding Curve25519 public key.
func PublicEd25519toCurve25519(pub []byte) ([]byte, error) {
	if len(pub) == 0 {
		return nil, errors.New("key is nil")
	}

	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%d-byte key size is invalid", len(pub))
	}

	pkOut := new([Curve25519KeySize]byte)
	pKIn := new([Curve25519KeySize]byte)
	copy(pKIn[:], pub)

	success := extra25519.PublicKeyToCurve25519(pkOut, pKIn)
	if !success {
		return nil, errors.New("error converting public key")
	}

	return pkOut[:], nil
}

// SecretEd25519toCurve25519 converts a secret key from Ed25519 to curve25519 format.
func SecretEd25519toCurve25519(priv []byte) ([]byte, error) {
	if len(priv) == 0 {
		return nil, errors.New("key is nil")
	}

	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%d-byte key size is invalid", len(priv))
	}

	sKIn := new([ed25519.PrivateKeySize]byte)
	copy(sKIn[:], priv)

	sKOut := new([Curve25519KeySize]byte)
	extra25519.PrivateKeyToCurve25519(sKOut, sKIn)

	return sKOut[:], nil
}

// Nonce makes a nonce using blake2b, to match the format expected by libsodium.
func Nonce(pub1, pub2 []byte) (*[NonceSize]byte, error) {
	var nonce [NonceSize]byte

	nonceWriter, err := blake2b.New(NonceSize, nil)
	if err != nil {
		return nil, err
	}

	_, err = nonceWriter.Write(pub1)
	if err != nil {
		return nil, err
	}

	_, err = nonceWriter.Write(pub2)
	if err != nil {
		return nil, err
	}

	copy(nonce[:], nonceWriter.Sum(nil))

	return &nonce, nil
}

// SodiumBoxSeal encrypts msg to the recipient Curve25519 public key with an ephemeral sender key,
// equivalent to libsodium's crypto_box_seal(). The ephemeral public key is prepended to the output.
func SodiumBoxSeal(msg, recPub []byte, randSource io.Reader) ([]byte, error) {
	if len(recPub) != Curve25519KeySize {
		return nil, ErrInvalidKey
	}

	epk, esk, err := box.GenerateKey(randSource)
	if err != nil {
		return nil, err
	}

	nonce, err := Nonce(epk[:], recPub)
	if err != nil {
		return nil, err
	}

	var recPubBytes [Curve25519KeySize]byte

	copy(recPubBytes[:], recPub)

	out := make([]byte, Curve25519KeySize)
	copy(out, epk[:])

	return box.Seal(out, msg, nonce, &recPubBytes, esk), nil
}

// SodiumBoxSealOpen reverses SodiumBoxSeal with the recipient Curve25519 key pair.
func SodiumBoxSealOpen(cipherText, recPub, recPriv []byte) ([]byte, error) {
	if len(cipherText) < Curve25519KeySize {
		return nil, errOpenSealedBox
	}

	if len(recPub) != Curve25519KeySize || len(recPriv) != Curve25519KeySize {
		return nil, ErrInvalidKey
	}

	var epk, pub, priv [Curve25519KeySize]byte

	copy(epk[:], cipherText[:Curve25519KeySize])
	copy(pub[:], recPub)
	copy(priv[:], recPriv)

	nonce, err := Nonce(epk[:], pub[:])
	if err != nil {
		return nil, err
	}

	out, ok := box.Open(nil, cipherText[Curve25519KeySize:], nonce, &epk, &priv)
	if !ok {
		return nil, errOpenSealedBox
	}

	return out, nil
}
