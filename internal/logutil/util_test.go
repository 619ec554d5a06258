/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logutil

import (
	"testing"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/client/connecting"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
)

func TestCreateKeyValueString(t *testing.T) {
	require.Equal(t, "sourceId=[12345]", CreateKeyValueString("sourceId", "12345"))
	require.Equal(t, "endpoint=[]", CreateKeyValueString("endpoint", ""))
}

func TestMessageKeyValues(t *testing.T) {
	t.Run("status report", func(t *testing.T) {
		msg, err := connecting.New("12345", "", false).StatusMsg()
		require.NoError(t, err)

		require.Equal(t, []string{
			"id=[" + msg.ID() + "]",
			"type=[did:sov:123456789abcdefghi1234;spec/connecting/0.6/GET_STATUS]",
			"sourceId=[12345]",
		}, MessageKeyValues(msg))
	})

	t.Run("no source id", func(t *testing.T) {
		msg := envelope.Envelope{envelope.JSONType: "did:sov:123456789abcdefghi1234;spec/connecting/0.6/problem-report"}

		require.Equal(t, []string{
			"id=[]",
			"type=[did:sov:123456789abcdefghi1234;spec/connecting/0.6/problem-report]",
		}, MessageKeyValues(msg))
	})
}

func TestLogFunctions(t *testing.T) {
	logger := log.New("aries-verity/logutil-test")

	require.NotPanics(t, func() {
		LogInfo(logger, "connect", "deliver", "delivered", CreateKeyValueString("sourceId", "12345"))
		LogDebug(logger, "connect", "pack", "packed")
		LogError(logger, "status", "deliver", "connection refused", CreateKeyValueString("sourceId", "12345"))
	})
}
