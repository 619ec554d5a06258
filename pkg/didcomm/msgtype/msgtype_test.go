/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package msgtype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentity_String(t *testing.T) {
	id, err := Lookup(CreateConnection)
	require.NoError(t, err)
	require.Equal(t, "did:sov:123456789abcdefghi1234;spec/connecting/0.6/CREATE_CONNECTION", id.String())

	id, err = Lookup(Forward)
	require.NoError(t, err)
	require.Equal(t, "did:sov:123456789abcdefghi1234;spec/routing/1.0/FORWARD", id.String())
}

func TestParse(t *testing.T) {
	t.Run("round trip for every registered operation", func(t *testing.T) {
		for _, op := range []Operation{CreateConnection, GetStatus, ProblemReport, Forward} {
			id, err := Lookup(op)
			require.NoError(t, err)

			parsed, err := Parse(id.String())
			require.NoError(t, err)
			require.Equal(t, id, parsed)
		}
	})

	tests := []struct {
		name    string
		msgType string
	}{
		{name: "empty", msgType: ""},
		{name: "no qualifier", msgType: ";spec/connecting/0.6/GET_STATUS"},
		{name: "missing family prefix", msgType: "https://didcomm.org/connecting/0.6/GET_STATUS"},
		{name: "missing name", msgType: EvernymQualifier + ";spec/connecting/0.6"},
		{name: "too many segments", msgType: EvernymQualifier + ";spec/connecting/0.6/GET_STATUS/extra"},
		{name: "empty version", msgType: EvernymQualifier + ";spec/connecting//GET_STATUS"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.msgType)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrMalformedType))
		})
	}
}

func TestLookup(t *testing.T) {
	_, err := Lookup(Operation(42))
	require.True(t, errors.Is(err, ErrUnknownOperation))
	require.Equal(t, "Operation(42)", Operation(42).String())
	require.Equal(t, "GET_STATUS", GetStatus.String())

	require.Panics(t, func() { TypeOf(Operation(0)) })
}

func TestOperations(t *testing.T) {
	require.Equal(t, []Operation{CreateConnection, GetStatus, ProblemReport}, Operations(ConnectingFamily))
	require.Equal(t, []Operation{Forward}, Operations(RoutingFamily))
	require.Empty(t, Operations("issue-credential"))
}

func TestMatch(t *testing.T) {
	op, err := Match(TypeOf(GetStatus), CreateConnection, GetStatus)
	require.NoError(t, err)
	require.Equal(t, GetStatus, op)

	t.Run("unexpected operation", func(t *testing.T) {
		_, err = Match(TypeOf(Forward), CreateConnection, GetStatus)
		require.True(t, errors.Is(err, ErrTypeMismatch))
	})

	t.Run("version drift is a mismatch", func(t *testing.T) {
		_, err = Match(EvernymQualifier+";spec/connecting/0.5/GET_STATUS", GetStatus)
		require.True(t, errors.Is(err, ErrTypeMismatch))
	})

	t.Run("qualifier drift is a mismatch", func(t *testing.T) {
		_, err = Match("did:sov:other;spec/connecting/0.6/GET_STATUS", GetStatus)
		require.True(t, errors.Is(err, ErrTypeMismatch))
	})

	t.Run("resolve any registered type", func(t *testing.T) {
		op, err = Resolve(TypeOf(Forward))
		require.NoError(t, err)
		require.Equal(t, Forward, op)
	})
}

func TestIsProblemReport(t *testing.T) {
	require.True(t, IsProblemReport(TypeOf(ProblemReport)))
	require.True(t, IsProblemReport("did:sov:xyz;spec/issue-credential/0.6/problem-report"))
	require.False(t, IsProblemReport(TypeOf(GetStatus)))
	require.False(t, IsProblemReport("problem-report"))
}
