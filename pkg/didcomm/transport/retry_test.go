/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
	mocktransport "github.com/hyperledger/aries-verity-sdk-go/pkg/internal/gomocks/didcomm/transport"
)

const url = "http://verity.example.com/agency/msg"

func TestRetryTransport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	data := []byte("packed")

	t.Run("succeeds after failures", func(t *testing.T) {
		next := mocktransport.NewMockOutboundTransport(ctrl)
		gomock.InOrder(
			next.EXPECT().Send(ctx, data, url).Return(nil, errors.New("connection refused")).Times(2),
			next.EXPECT().Send(ctx, data, url).Return([]byte("ok"), nil),
		)

		rt := transport.NewRetryTransport(next, transport.WithRetryInterval(time.Millisecond))

		resp, err := rt.Send(ctx, data, url)
		require.NoError(t, err)
		require.Equal(t, "ok", string(resp))
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		next := mocktransport.NewMockOutboundTransport(ctrl)
		next.EXPECT().Send(ctx, data, url).Return(nil, errors.New("connection refused")).Times(3)

		rt := transport.NewRetryTransport(next,
			transport.WithRetryInterval(time.Millisecond), transport.WithMaxRetries(2))

		_, err := rt.Send(ctx, data, url)
		require.EqualError(t, err, "connection refused")
	})

	t.Run("context errors are not retried", func(t *testing.T) {
		next := mocktransport.NewMockOutboundTransport(ctrl)
		next.EXPECT().Send(ctx, data, url).Return(nil, context.DeadlineExceeded).Times(1)

		rt := transport.NewRetryTransport(next, transport.WithRetryInterval(time.Millisecond))

		_, err := rt.Send(ctx, data, url)
		require.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("accept delegates", func(t *testing.T) {
		next := mocktransport.NewMockOutboundTransport(ctrl)
		next.EXPECT().Accept(url).Return(true)
		next.EXPECT().Accept("ws://x").Return(false)

		rt := transport.NewRetryTransport(next)
		require.True(t, rt.Accept(url))
		require.False(t, rt.Accept("ws://x"))
	})
}

func TestAcceptsMediaType(t *testing.T) {
	require.True(t, transport.AcceptsMediaType("application/octet-stream"))
	require.True(t, transport.AcceptsMediaType("application/didcomm-envelope-enc"))
	require.True(t, transport.AcceptsMediaType("Application/JSON; charset=utf-8"))
	require.False(t, transport.AcceptsMediaType("text/plain"))
	require.False(t, transport.AcceptsMediaType(""))
}
