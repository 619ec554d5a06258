/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package http

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
)

type recorder struct {
	mu       sync.Mutex
	payloads []string
}

func (r *recorder) handle(payload []byte) error {
	if string(payload) == "reject" {
		return errors.New("rejected")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.payloads = append(r.payloads, string(payload))

	return nil
}

func post(t *testing.T, client *http.Client, url, contentType string, body []byte) int {
	t.Helper()

	rs, err := client.Post(url, contentType, bytes.NewBuffer(body))
	require.NoError(t, err)
	require.NoError(t, rs.Body.Close())

	return rs.StatusCode
}

func TestInboundHandler(t *testing.T) {
	// test inboundHandler with empty args should fail
	inHandler, err := NewInboundHandler(nil)
	require.Error(t, err)
	require.Nil(t, inHandler)

	rec := &recorder{}

	inHandler, err = NewInboundHandler(rec.handle)
	require.NoError(t, err)

	server := httptest.NewServer(inHandler)
	defer server.Close()

	client := server.Client()

	// GET is not supported
	rs, err := client.Get(server.URL + "/")
	require.NoError(t, err)
	require.NoError(t, rs.Body.Close())
	require.Equal(t, http.StatusMethodNotAllowed, rs.StatusCode)

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{name: "bad content type", contentType: "bad-content-type", body: "Hello World", status: http.StatusUnsupportedMediaType},
		{name: "empty body", contentType: transport.MediaTypeOctetStream, status: http.StatusBadRequest},
		{name: "rejected by handler", contentType: transport.MediaTypeJSON, body: "reject", status: http.StatusBadRequest},
		{name: "octet stream", contentType: transport.MediaTypeOctetStream, body: "one", status: http.StatusAccepted},
		{
			name:        "didcomm envelope",
			contentType: transport.MediaTypeV1EncryptedEnvelope + "; charset=utf-8",
			body:        "two",
			status:      http.StatusAccepted,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.status, post(t, client, server.URL+"/", tc.contentType, []byte(tc.body)))
		})
	}

	require.Equal(t, []string{"one", "two"}, rec.payloads)
}

func TestNewRouter(t *testing.T) {
	_, err := NewRouter("/webhook", nil)
	require.Error(t, err)

	rec := &recorder{}

	router, err := NewRouter("/webhook", rec.handle)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	defer server.Close()

	client := server.Client()

	require.Equal(t, http.StatusAccepted,
		post(t, client, server.URL+"/webhook", transport.MediaTypeOctetStream, []byte("msg")))
	require.Equal(t, http.StatusNotFound,
		post(t, client, server.URL+"/other", transport.MediaTypeOctetStream, []byte("msg")))

	rs, err := client.Get(server.URL + "/webhook")
	require.NoError(t, err)
	require.NoError(t, rs.Body.Close())
	require.Equal(t, http.StatusMethodNotAllowed, rs.StatusCode)

	require.Equal(t, []string{"msg"}, rec.payloads)
}
