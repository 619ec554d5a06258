/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
)

// DefaultTimeout bounds a single delivery when no client or timeout option is given.
const DefaultTimeout = 30 * time.Second

var logger = log.New("aries-verity/transport/http")

// outboundCommHTTPOpts holds options for the HTTP transport implementation of OutboundTransport.
type outboundCommHTTPOpts struct {
	client      *http.Client
	contentType string
}

// OutboundHTTPOpt is an outbound HTTP transport option.
type OutboundHTTPOpt func(opts *outboundCommHTTPOpts)

// WithOutboundHTTPClient option is for creating an Outbound HTTP transport using an http.Client instance.
func WithOutboundHTTPClient(client *http.Client) OutboundHTTPOpt {
	return func(opts *outboundCommHTTPOpts) {
		opts.client = client
	}
}

// WithOutboundTimeout option is for creating an Outbound HTTP transport using a client timeout value.
// The timeout is set on a copy of the configured client. Without a client the option does nothing.
func WithOutboundTimeout(timeout time.Duration) OutboundHTTPOpt {
	return func(opts *outboundCommHTTPOpts) {
		if opts.client == nil {
			return
		}

		client := *opts.client
		client.Timeout = timeout
		opts.client = &client
	}
}

// WithOutboundTLSConfig option is for creating an Outbound HTTP transport using a tls.Config instance.
func WithOutboundTLSConfig(tlsConfig *tls.Config) OutboundHTTPOpt {
	return func(opts *outboundCommHTTPOpts) {
		timeout := DefaultTimeout
		if opts.client != nil {
			timeout = opts.client.Timeout
		}

		opts.client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: tlsConfig,
			},
		}
	}
}

// WithContentType sets the Content-Type header of outbound requests.
func WithContentType(contentType string) OutboundHTTPOpt {
	return func(opts *outboundCommHTTPOpts) {
		opts.contentType = contentType
	}
}

// OutboundHTTPClient represents the Outbound HTTP transport instance.
type OutboundHTTPClient struct {
	client      *http.Client
	contentType string
}

// NewOutbound creates a new instance of Outbound HTTP transport to Post requests to a Verity agency.
// Without options the client times out after DefaultTimeout.
func NewOutbound(opts ...OutboundHTTPOpt) (*OutboundHTTPClient, error) {
	clOpts := &outboundCommHTTPOpts{
		client:      &http.Client{Timeout: DefaultTimeout},
		contentType: transport.MediaTypeOctetStream,
	}

	for _, opt := range opts {
		opt(clOpts)
	}

	if clOpts.client == nil {
		return nil, errors.New("creation of outbound transport requires an HTTP client")
	}

	return &OutboundHTTPClient{
		client:      clOpts.client,
		contentType: clOpts.contentType,
	}, nil
}

// Send posts the packed envelope to the url and returns the response body.
func (cs *OutboundHTTPClient) Send(ctx context.Context, data []byte, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid request to agent at [%s]", url)
	}

	req.Header.Set("Content-Type", cs.contentType)

	resp, err := cs.client.Do(req)
	if err != nil {
		logger.Errorf("posting DID envelope to agent at [%s] failed: %v", url, err)

		return nil, errors.Wrapf(err, "posting DID envelope to agent at [%s] failed", url)
	}

	defer func() {
		e := resp.Body.Close()
		if e != nil {
			logger.Errorf("closing response body failed: %v", e)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body failed")
	}

	isStatusSuccess := resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusOK
	if !isStatusSuccess {
		return nil, errors.Errorf("received unsuccessful POST HTTP status from agent at [%s]: status: %v, body: %s",
			url, resp.Status, body)
	}

	return body, nil
}

// Accept url.
func (cs *OutboundHTTPClient) Accept(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
