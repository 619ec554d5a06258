/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package legacykms keeps the Ed25519 key sets of an SDK wallet.
//
// Keys are addressed by their base58 verification key, the format used by legacy (RFC 0019)
// envelopes. Key material lives in a store obtained from an spi/storage provider.
package legacykms

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcutil/base58"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/internal/cryptoutil"
)

// DefaultStoreName is the store name used when the wallet has no name.
const DefaultStoreName = "legacykms"

var logger = log.New("aries-verity/kms")

var (
	// ErrKeyNotFound is returned when none of the requested keys is held by the wallet.
	ErrKeyNotFound = errors.New("key not found")

	errInvalidSeed = fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
)

type keySet struct {
	VerKey  string `json:"verkey"`
	PrivKey string `json:"privkey"`
}

// Option configures the KeyManager.
type Option func(k *KeyManager)

// WithStoreName sets the name of the store holding the key sets.
func WithStoreName(name string) Option {
	return func(k *KeyManager) {
		if name != "" {
			k.storeName = name
		}
	}
}

// WithRandSource sets the randomness used to generate keys.
func WithRandSource(r io.Reader) Option {
	return func(k *KeyManager) {
		k.randSource = r
	}
}

// KeyManager creates and looks up Ed25519 key sets. It is safe for concurrent use as long as the
// underlying store is.
type KeyManager struct {
	store      storage.Store
	storeName  string
	randSource io.Reader
}

// New opens the key store of the given storage provider.
func New(p storage.Provider, opts ...Option) (*KeyManager, error) {
	k := &KeyManager{
		storeName:  DefaultStoreName,
		randSource: rand.Reader,
	}

	for _, opt := range opts {
		opt(k)
	}

	store, err := p.OpenStore(k.storeName)
	if err != nil {
		return nil, fmt.Errorf("open key store '%s': %w", k.storeName, err)
	}

	k.store = store

	return k, nil
}

// CreateKeySet generates a new key set and returns its base58 verification key.
func (k *KeyManager) CreateKeySet() (string, error) {
	_, priv, err := ed25519.GenerateKey(k.randSource)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	return k.ImportPrivateKey(priv)
}

// CreateKeySetFromSeed derives a key set from a 32 byte seed.
func (k *KeyManager) CreateKeySetFromSeed(seed []byte) (string, error) {
	if len(seed) != ed25519.SeedSize {
		return "", errInvalidSeed
	}

	return k.ImportPrivateKey(ed25519.NewKeyFromSeed(seed))
}

// ImportPrivateKey stores an existing Ed25519 private key.
func (k *KeyManager) ImportPrivateKey(priv ed25519.PrivateKey) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", cryptoutil.ErrInvalidKey
	}

	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return "", cryptoutil.ErrInvalidKey
	}

	verKey := base58.Encode(pub)

	data, err := json.Marshal(&keySet{VerKey: verKey, PrivKey: base58.Encode(priv)})
	if err != nil {
		return "", err
	}

	if err = k.store.Put(verKey, data); err != nil {
		return "", fmt.Errorf("store key set: %w", err)
	}

	logger.Debugf("stored key set %s", verKey)

	return verKey, nil
}

// HasKey reports whether the wallet holds the private key of verKey.
func (k *KeyManager) HasKey(verKey string) bool {
	_, err := k.store.Get(verKey)

	return err == nil
}

// FindVerKey returns the index of the first candidate key held by the wallet.
func (k *KeyManager) FindVerKey(candidates []string) (int, error) {
	for i, candidate := range candidates {
		_, err := k.store.Get(candidate)
		if err == nil {
			return i, nil
		}

		if !errors.Is(err, storage.ErrDataNotFound) {
			return -1, fmt.Errorf("find key: %w", err)
		}
	}

	return -1, ErrKeyNotFound
}

// SigningKey returns the Ed25519 private key of verKey.
func (k *KeyManager) SigningKey(verKey string) (ed25519.PrivateKey, error) {
	data, err := k.store.Get(verKey)
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, verKey)
		}

		return nil, fmt.Errorf("get key set: %w", err)
	}

	ks := &keySet{}

	if err = json.Unmarshal(data, ks); err != nil {
		return nil, fmt.Errorf("unmarshal key set: %w", err)
	}

	priv := base58.Decode(ks.PrivKey)
	if len(priv) != ed25519.PrivateKeySize {
		return nil, cryptoutil.ErrInvalidKey
	}

	return priv, nil
}

// EncryptionKeyPair returns the Curve25519 key pair derived from the key set of verKey.
func (k *KeyManager) EncryptionKeyPair(verKey string) (pub, priv []byte, err error) {
	signingKey, err := k.SigningKey(verKey)
	if err != nil {
		return nil, nil, err
	}

	priv, err = cryptoutil.SecretEd25519toCurve25519(signingKey)
	if err != nil {
		return nil, nil, err
	}

	pub, err = cryptoutil.PublicEd25519toCurve25519(base58.Decode(verKey))
	if err != nil {
		return nil, nil, err
	}

	return pub, priv, nil
}

// Close closes the key store.
func (k *KeyManager) Close() error {
	return k.store.Close()
}
