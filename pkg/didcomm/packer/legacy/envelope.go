/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package legacy holds the JSON envelope format shared by the legacy (Aries RFC 0019) packers.
package legacy

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	chacha "golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/poly1305"
)

// Protected header values.
const (
	EncodingType = "JWM/1.0"
	Enc          = "chacha20poly1305_ietf"
	AlgAuthcrypt = "Authcrypt"
	AlgAnoncrypt = "Anoncrypt"
)

var errEmptyRecipients = errors.New("empty recipients keys, must have at least one recipient")

// Envelope is the full payload envelope for the JSON message.
type Envelope struct {
	Protected  string `json:"protected,omitempty"`
	IV         string `json:"iv,omitempty"`
	CipherText string `json:"ciphertext,omitempty"`
	Tag        string `json:"tag,omitempty"`
}

// Protected is the protected header of the JSON envelope.
type Protected struct {
	Enc        string      `json:"enc,omitempty"`
	Typ        string      `json:"typ,omitempty"`
	Alg        string      `json:"alg,omitempty"`
	Recipients []Recipient `json:"recipients,omitempty"`
}

// Recipient holds the data for a recipient in the envelope header.
type Recipient struct {
	EncryptedKey string          `json:"encrypted_key,omitempty"`
	Header       RecipientHeader `json:"header,omitempty"`
}

// RecipientHeader holds the header data for a recipient.
type RecipientHeader struct {
	KID    string `json:"kid,omitempty"`
	Sender string `json:"sender,omitempty"`
	IV     string `json:"iv,omitempty"`
}

// KIDs lists the recipient key ids of the header.
func (p *Protected) KIDs() []string {
	kids := make([]string, 0, len(p.Recipients))

	for _, r := range p.Recipients {
		kids = append(kids, r.Header.KID)
	}

	return kids
}

// CheckRecipients fails on an empty recipient list.
func CheckRecipients(recipients []string) error {
	if len(recipients) == 0 {
		return errEmptyRecipients
	}

	return nil
}

// NewCEK generates a content encryption key.
func NewCEK(randSource io.Reader) (*[chacha.KeySize]byte, error) {
	cek := new([chacha.KeySize]byte)

	if _, err := io.ReadFull(randSource, cek[:]); err != nil {
		return nil, err
	}

	return cek, nil
}

// Seal encrypts payload with cek and assembles the envelope around the protected header.
func Seal(cek *[chacha.KeySize]byte, header *Protected, payload []byte, randSource io.Reader) ([]byte, error) {
	protectedBytes, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, chacha.NonceSize)

	if _, err = io.ReadFull(randSource, nonce); err != nil {
		return nil, err
	}

	chachaCipher, err := chacha.New(cek[:])
	if err != nil {
		return nil, err
	}

	aad := base64.URLEncoding.EncodeToString(protectedBytes)

	// Additional data is b64encode(jsonencode(protected))
	symPld := chachaCipher.Seal(nil, nonce, payload, []byte(aad))

	// symPld has a length of len(pld) + poly1035.TagSize
	tag := symPld[len(symPld)-poly1305.TagSize:]
	cipherText := symPld[0 : len(symPld)-poly1305.TagSize]

	return json.Marshal(&Envelope{
		Protected:  aad,
		IV:         base64.URLEncoding.EncodeToString(nonce),
		CipherText: base64.URLEncoding.EncodeToString(cipherText),
		Tag:        base64.URLEncoding.EncodeToString(tag),
	})
}

// Parse reads the envelope and its protected header, and checks the encoding type and algorithm.
func Parse(envelope []byte, alg string) (*Envelope, *Protected, error) {
	env := &Envelope{}

	if err := json.Unmarshal(envelope, env); err != nil {
		return nil, nil, fmt.Errorf("parse envelope: %w", err)
	}

	protectedBytes, err := base64.URLEncoding.DecodeString(env.Protected)
	if err != nil {
		return nil, nil, fmt.Errorf("decode protected header: %w", err)
	}

	prot := &Protected{}

	if err = json.Unmarshal(protectedBytes, prot); err != nil {
		return nil, nil, fmt.Errorf("parse protected header: %w", err)
	}

	if prot.Typ != EncodingType {
		return nil, nil, fmt.Errorf("message type %s not supported", prot.Typ)
	}

	if alg != "" && prot.Alg != alg {
		return nil, nil, fmt.Errorf("message format %s not supported", prot.Alg)
	}

	return env, prot, nil
}

// Algorithm returns the `alg` protected header value of an envelope.
func Algorithm(envelope []byte) (string, error) {
	_, prot, err := Parse(envelope, "")
	if err != nil {
		return "", err
	}

	return prot.Alg, nil
}

// Open decodes (from base64) and decrypts the cipher text using chacha20poly1305.
func Open(cek []byte, env *Envelope) ([]byte, error) {
	cipherText, err := base64.URLEncoding.DecodeString(env.CipherText)
	if err != nil {
		return nil, err
	}

	nonce, err := base64.URLEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, err
	}

	tag, err := base64.URLEncoding.DecodeString(env.Tag)
	if err != nil {
		return nil, err
	}

	chachaCipher, err := chacha.New(cek)
	if err != nil {
		return nil, err
	}

	if len(nonce) != chacha.NonceSize {
		return nil, fmt.Errorf("invalid nonce size %d", len(nonce))
	}

	payload := append(cipherText, tag...)

	return chachaCipher.Open(nil, nonce, payload, []byte(env.Protected))
}
