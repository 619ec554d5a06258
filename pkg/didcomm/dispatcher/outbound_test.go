/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dispatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/forward"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/msgtype"
	fwcontext "github.com/hyperledger/aries-verity-sdk-go/pkg/framework/context"
	mocktransport "github.com/hyperledger/aries-verity-sdk-go/pkg/internal/gomocks/didcomm/transport"
	mockprovider "github.com/hyperledger/aries-verity-sdk-go/pkg/internal/mock/provider"
)

const agencyEndpoint = mockprovider.VerityURL + "/agency/msg"

func newEnvelope(t *testing.T) envelope.Envelope {
	t.Helper()

	env, err := envelope.Build(msgtype.GetStatus, envelope.Fields{"sourceId": "12345"})
	require.NoError(t, err)

	return env
}

func TestGateway_Pack(t *testing.T) {
	p, err := mockprovider.NewVerityContext()
	require.NoError(t, err)

	env := newEnvelope(t)

	packed, err := NewGateway(p).Pack(env)
	require.NoError(t, err)

	t.Run("outer layer is a forward anoncrypted for the agency", func(t *testing.T) {
		outer, e := p.Packager().UnpackMessage(packed)
		require.NoError(t, e)
		require.Empty(t, outer.FromVerKey)
		require.Equal(t, p.VerityPublicVerkey(), outer.ToVerKey)

		fwdEnv, e := envelope.FromJSON(outer.Message)
		require.NoError(t, e)

		fwd, e := forward.Decode(fwdEnv)
		require.NoError(t, e)
		require.Equal(t, mockprovider.VerityPairwiseDID, fwd.To)

		msg, e := envelope.Envelope(fwd.Msg).Bytes()
		require.NoError(t, e)

		inner, e := p.Packager().UnpackMessage(msg)
		require.NoError(t, e)
		require.Equal(t, p.SDKPairwiseVerkey(), inner.FromVerKey)
		require.Equal(t, p.VerityPairwiseVerkey(), inner.ToVerKey)
	})

	t.Run("unwraps to the original envelope", func(t *testing.T) {
		got, e := p.Codec().Unwrap(packed)
		require.NoError(t, e)
		require.Equal(t, env, got)
	})

	t.Run("invalid envelope", func(t *testing.T) {
		_, e := NewGateway(p).Pack(envelope.Envelope{"sourceId": "12345"})
		require.True(t, errors.Is(e, envelope.ErrInvalidState))
	})
}

func TestGateway_Deliver(t *testing.T) {
	ctx := context.Background()
	env := newEnvelope(t)

	t.Run("echo transmit returns the packed request", func(t *testing.T) {
		p, err := mockprovider.NewVerityContext()
		require.NoError(t, err)

		resp, err := NewGateway(p, WithTransmit(EchoTransmit)).Deliver(ctx, env)
		require.NoError(t, err)

		got, err := p.Codec().Unwrap(resp)
		require.NoError(t, err)
		require.Equal(t, env, got)
	})

	t.Run("default transmit uses the context transports", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ot := mocktransport.NewMockOutboundTransport(ctrl)
		ot.EXPECT().Accept(agencyEndpoint).Return(true)
		ot.EXPECT().Send(ctx, gomock.Any(), agencyEndpoint).Return([]byte("accepted"), nil)

		p, err := mockprovider.NewVerityContext(fwcontext.WithOutboundTransports(ot))
		require.NoError(t, err)

		resp, err := NewGateway(p, WithTransmit(nil)).Deliver(ctx, env)
		require.NoError(t, err)
		require.Equal(t, "accepted", string(resp))
	})

	t.Run("transmit failure", func(t *testing.T) {
		p, err := mockprovider.NewVerityContext()
		require.NoError(t, err)

		failing := func(context.Context, []byte, string) ([]byte, error) {
			return nil, context.DeadlineExceeded
		}

		_, err = NewGateway(p, WithTransmit(failing)).Deliver(ctx, env)
		require.True(t, errors.Is(err, ErrDelivery))
		require.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("pack failure is not a delivery error", func(t *testing.T) {
		p, err := mockprovider.NewVerityContext()
		require.NoError(t, err)

		_, err = NewGateway(p, WithTransmit(EchoTransmit)).Deliver(ctx, envelope.Envelope{})
		require.True(t, errors.Is(err, envelope.ErrInvalidState))
		require.False(t, errors.Is(err, ErrDelivery))
	})
}

func TestEchoTransmit(t *testing.T) {
	resp, err := EchoTransmit(context.Background(), []byte("data"), "")
	require.NoError(t, err)
	require.Equal(t, "data", string(resp))
}
