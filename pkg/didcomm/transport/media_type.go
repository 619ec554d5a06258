/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"mime"
	"strings"
)

const (
	// MediaTypeV1EncryptedEnvelope is the media type for DIDComm V1 encrypted envelopes as per Aries RFC 0044.
	MediaTypeV1EncryptedEnvelope = "application/didcomm-envelope-enc"
	// MediaTypeOctetStream is the media type a Verity agency expects for packed messages.
	MediaTypeOctetStream = "application/octet-stream"
	// MediaTypeJSON is accepted for plaintext and packed JWM envelopes.
	MediaTypeJSON = "application/json"
)

// AcceptsMediaType reports whether a Content-Type header names a media type that can carry a packed
// envelope. Parameters are ignored.
func AcceptsMediaType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	switch strings.ToLower(mt) {
	case MediaTypeV1EncryptedEnvelope, MediaTypeOctetStream, MediaTypeJSON:
		return true
	default:
		return false
	}
}
