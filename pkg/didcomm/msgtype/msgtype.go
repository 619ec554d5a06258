/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package msgtype names the message types of the protocol families spoken by this SDK.
//
// Every message type is identified by a qualifier, a family, a family version and a message name,
// rendered on the wire as "<qualifier>;spec/<family>/<version>/<name>". Types are never written by
// hand: they are looked up from a fixed registry of operations so that sender and receiver stay in
// agreement on family and version.
package msgtype

import (
	"errors"
	"fmt"
	"strings"
)

// EvernymQualifier is the qualifier of the message families defined by Verity.
const EvernymQualifier = "did:sov:123456789abcdefghi1234"

// Family names and versions.
const (
	ConnectingFamily  = "connecting"
	ConnectingVersion = "0.6"

	RoutingFamily  = "routing"
	RoutingVersion = "1.0"
)

const (
	specSeparator = ";spec/"
	pathSegments  = 3

	problemReportName = "problem-report"
)

var (
	// ErrTypeMismatch is returned when a message type does not match any of the expected operations.
	ErrTypeMismatch = errors.New("message type mismatch")

	// ErrMalformedType is returned when a message type string can't be parsed.
	ErrMalformedType = errors.New("malformed message type")

	// ErrUnknownOperation is returned when an operation is not in the registry.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Identity is the protocol identity tuple of a message type.
type Identity struct {
	Qualifier string
	Family    string
	Version   string
	Name      string
}

// String renders the type identifier, e.g. "did:sov:...;spec/connecting/0.6/GET_STATUS".
func (i Identity) String() string {
	return i.Qualifier + specSeparator + i.Family + "/" + i.Version + "/" + i.Name
}

// Parse splits a type identifier into its identity tuple.
func Parse(msgType string) (Identity, error) {
	idx := strings.Index(msgType, specSeparator)
	if idx <= 0 {
		return Identity{}, fmt.Errorf("%w: '%s' has no qualifier", ErrMalformedType, msgType)
	}

	parts := strings.Split(msgType[idx+len(specSeparator):], "/")
	if len(parts) != pathSegments {
		return Identity{}, fmt.Errorf("%w: '%s' must have family, version and name", ErrMalformedType, msgType)
	}

	for _, p := range parts {
		if p == "" {
			return Identity{}, fmt.Errorf("%w: '%s' has an empty segment", ErrMalformedType, msgType)
		}
	}

	return Identity{
		Qualifier: msgType[:idx],
		Family:    parts[0],
		Version:   parts[1],
		Name:      parts[2],
	}, nil
}

// IsProblemReport reports whether the type identifier names a problem report of any family.
func IsProblemReport(msgType string) bool {
	id, err := Parse(msgType)
	if err != nil {
		return false
	}

	return id.Name == problemReportName
}
