/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hyperledger/aries-framework-go/component/log"
)

const (
	defaultRetryInterval = time.Second
	defaultMaxRetries    = 3
)

var logger = log.New("aries-verity/transport")

// RetryOption configures a RetryTransport.
type RetryOption func(r *RetryTransport)

// WithMaxRetries sets how many times a failed send is repeated.
func WithMaxRetries(n uint64) RetryOption {
	return func(r *RetryTransport) {
		r.maxRetries = n
	}
}

// WithRetryInterval sets the constant delay between attempts.
func WithRetryInterval(d time.Duration) RetryOption {
	return func(r *RetryTransport) {
		r.interval = d
	}
}

// RetryTransport repeats failed sends of the transport it wraps. A canceled or expired context stops
// the retries.
type RetryTransport struct {
	next       OutboundTransport
	maxRetries uint64
	interval   time.Duration
}

// NewRetryTransport wraps next with retries.
func NewRetryTransport(next OutboundTransport, opts ...RetryOption) *RetryTransport {
	r := &RetryTransport{
		next:       next,
		maxRetries: defaultMaxRetries,
		interval:   defaultRetryInterval,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Send sends data with the wrapped transport until it succeeds or the retries are exhausted.
func (r *RetryTransport) Send(ctx context.Context, data []byte, url string) ([]byte, error) {
	var resp []byte

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(r.interval), r.maxRetries), ctx)

	err := backoff.RetryNotify(func() error {
		var err error

		resp, err = r.next.Send(ctx, data, url)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return backoff.Permanent(err)
		}

		return err
	}, b, func(err error, d time.Duration) {
		logger.Warnf("send to %s failed, retrying in %s: %v", url, d, err)
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Accept delegates to the wrapped transport.
func (r *RetryTransport) Accept(url string) bool {
	return r.next.Accept(url)
}
