/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package msgtype

import "fmt"

// Operation is a message operation known to this SDK.
type Operation int

// Operations of the connecting and routing families.
const (
	CreateConnection Operation = iota + 1
	GetStatus
	ProblemReport
	Forward
)

type entry struct {
	family  string
	version string
	name    string
}

// registry is read-only after package initialization.
var registry = map[Operation]entry{ //nolint:gochecknoglobals
	CreateConnection: {ConnectingFamily, ConnectingVersion, "CREATE_CONNECTION"},
	GetStatus:        {ConnectingFamily, ConnectingVersion, "GET_STATUS"},
	ProblemReport:    {ConnectingFamily, ConnectingVersion, problemReportName},
	Forward:          {RoutingFamily, RoutingVersion, "FORWARD"},
}

// String returns the wire name of the operation.
func (o Operation) String() string {
	e, ok := registry[o]
	if !ok {
		return fmt.Sprintf("Operation(%d)", int(o))
	}

	return e.name
}

// Lookup returns the identity tuple of an operation.
func Lookup(op Operation) (Identity, error) {
	e, ok := registry[op]
	if !ok {
		return Identity{}, fmt.Errorf("%w: %d", ErrUnknownOperation, int(op))
	}

	return Identity{
		Qualifier: EvernymQualifier,
		Family:    e.family,
		Version:   e.version,
		Name:      e.name,
	}, nil
}

// TypeOf returns the type identifier of a registered operation. It panics on an unregistered
// operation, which can only come from a programming error.
func TypeOf(op Operation) string {
	id, err := Lookup(op)
	if err != nil {
		panic(err)
	}

	return id.String()
}

// Operations lists the registered operations of a family in declaration order.
func Operations(family string) []Operation {
	var ops []Operation

	for op := CreateConnection; op <= Forward; op++ {
		if registry[op].family == family {
			ops = append(ops, op)
		}
	}

	return ops
}

// Match resolves a type identifier to one of the expected operations. The whole identity tuple
// must match; no partial matches are accepted.
func Match(msgType string, expected ...Operation) (Operation, error) {
	for _, op := range expected {
		id, err := Lookup(op)
		if err != nil {
			return 0, err
		}

		if id.String() == msgType {
			return op, nil
		}
	}

	return 0, fmt.Errorf("%w: '%s'", ErrTypeMismatch, msgType)
}

// Resolve maps a type identifier to any registered operation.
func Resolve(msgType string) (Operation, error) {
	return Match(msgType, CreateConnection, GetStatus, ProblemReport, Forward)
}
