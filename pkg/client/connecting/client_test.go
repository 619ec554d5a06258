/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connecting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/dispatcher"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/msgtype"
	mockprovider "github.com/hyperledger/aries-verity-sdk-go/pkg/internal/mock/provider"
)

const (
	sourceID         = "12345"
	phoneNumber      = "1234357890"
	includePublicDID = true

	connectType = "did:sov:123456789abcdefghi1234;spec/connecting/0.6/CREATE_CONNECTION"
	statusType  = "did:sov:123456789abcdefghi1234;spec/connecting/0.6/GET_STATUS"
)

func TestNew(t *testing.T) {
	c := New(sourceID, phoneNumber, includePublicDID)

	require.Equal(t, sourceID, c.SourceID)
	require.Equal(t, phoneNumber, c.PhoneNumber)
	require.Equal(t, includePublicDID, c.IncludePublicDID)
	require.Equal(t, []string{connectType, statusType}, c.Messages())
}

func TestConnectMsg(t *testing.T) {
	c := New(sourceID, phoneNumber, includePublicDID)

	msg, err := c.ConnectMsg()
	require.NoError(t, err)

	require.Len(t, msg, 5)
	require.Equal(t, connectType, msg[envelope.JSONType])
	require.NotEmpty(t, msg.ID())
	require.Equal(t, sourceID, msg[SourceIDField])
	require.Equal(t, phoneNumber, msg[PhoneNumberField])
	require.Equal(t, true, msg[IncludePublicDIDField])

	again, err := c.ConnectMsg()
	require.NoError(t, err)
	require.NotEqual(t, msg.ID(), again.ID())

	t.Run("disclosure flag off is kept", func(t *testing.T) {
		m, e := New(sourceID, phoneNumber, false).ConnectMsg()
		require.NoError(t, e)
		require.Equal(t, false, m[IncludePublicDIDField])
	})

	t.Run("missing fields", func(t *testing.T) {
		_, e := New("", phoneNumber, true).ConnectMsg()
		require.True(t, errors.Is(e, ErrInvalidState))

		_, e = New(sourceID, "", true).ConnectMsg()
		require.True(t, errors.Is(e, ErrInvalidState))
	})
}

func TestStatusMsg(t *testing.T) {
	msg, err := New(sourceID, phoneNumber, includePublicDID).StatusMsg()
	require.NoError(t, err)

	require.Len(t, msg, 3)
	require.Equal(t, statusType, msg[envelope.JSONType])
	require.NotEmpty(t, msg.ID())
	require.Equal(t, sourceID, msg[SourceIDField])

	t.Run("phone number is not needed", func(t *testing.T) {
		_, e := New(sourceID, "", false).StatusMsg()
		require.NoError(t, e)
	})

	t.Run("missing source id", func(t *testing.T) {
		_, e := New("", phoneNumber, true).StatusMsg()
		require.True(t, errors.Is(e, ErrInvalidState))
	})
}

func TestConnect(t *testing.T) {
	p, err := mockprovider.NewVerityContext()
	require.NoError(t, err)

	c := New(sourceID, phoneNumber, includePublicDID)
	ctx := context.Background()

	resp, err := c.Connect(ctx, p, WithTransmit(dispatcher.EchoTransmit))
	require.NoError(t, err)

	msg, op, err := p.Codec().UnwrapExpect(resp, msgtype.CreateConnection)
	require.NoError(t, err)
	require.Equal(t, msgtype.CreateConnection, op)

	require.Len(t, msg, 5)
	require.Equal(t, connectType, msg.Type())
	require.NotEmpty(t, msg.ID())
	require.Equal(t, sourceID, msg[SourceIDField])
	require.Equal(t, phoneNumber, msg[PhoneNumberField])
	require.Equal(t, includePublicDID, msg[IncludePublicDIDField])

	t.Run("ids differ between calls", func(t *testing.T) {
		second, e := c.Connect(ctx, p, WithTransmit(dispatcher.EchoTransmit))
		require.NoError(t, e)

		secondMsg, e := p.Codec().Unwrap(second)
		require.NoError(t, e)
		require.NotEqual(t, msg.ID(), secondMsg.ID())
	})

	t.Run("invalid request is not sent", func(t *testing.T) {
		sent := false
		spy := func(context.Context, []byte, string) ([]byte, error) {
			sent = true

			return nil, nil
		}

		_, e := New("", phoneNumber, true).Connect(ctx, p, WithTransmit(spy))
		require.True(t, errors.Is(e, ErrInvalidState))
		require.False(t, sent)
	})

	t.Run("transmit failure", func(t *testing.T) {
		failing := func(context.Context, []byte, string) ([]byte, error) {
			return nil, errors.New("connection refused")
		}

		_, e := c.Connect(ctx, p, WithTransmit(failing))
		require.True(t, errors.Is(e, dispatcher.ErrDelivery))
	})
}

func TestStatus(t *testing.T) {
	p, err := mockprovider.NewVerityContext()
	require.NoError(t, err)

	resp, err := New(sourceID, phoneNumber, includePublicDID).Status(context.Background(), p,
		WithTransmit(dispatcher.EchoTransmit))
	require.NoError(t, err)

	msg, _, err := p.Codec().UnwrapExpect(resp, msgtype.GetStatus)
	require.NoError(t, err)

	require.Len(t, msg, 3)
	require.Equal(t, statusType, msg.Type())
	require.NotEmpty(t, msg.ID())
	require.Equal(t, sourceID, msg[SourceIDField])

	_, _, err = p.Codec().UnwrapExpect(resp, msgtype.CreateConnection)
	require.True(t, errors.Is(err, msgtype.ErrTypeMismatch))
}

func TestMsgPacked(t *testing.T) {
	p, err := mockprovider.NewVerityContext()
	require.NoError(t, err)

	c := New(sourceID, phoneNumber, includePublicDID)

	packed, err := c.ConnectMsgPacked(p)
	require.NoError(t, err)

	msg, err := p.Codec().Unwrap(packed)
	require.NoError(t, err)
	require.Equal(t, connectType, msg.Type())

	packed, err = c.StatusMsgPacked(p)
	require.NoError(t, err)

	msg, err = p.Codec().Unwrap(packed)
	require.NoError(t, err)
	require.Equal(t, statusType, msg.Type())

	_, err = New("", "", false).StatusMsgPacked(p)
	require.True(t, errors.Is(err, ErrInvalidState))

	_, err = New("", "", false).ConnectMsgPacked(p)
	require.True(t, errors.Is(err, ErrInvalidState))
}
