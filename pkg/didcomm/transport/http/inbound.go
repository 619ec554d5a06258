/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
)

// maxPayloadSize bounds the body of an inbound request.
const maxPayloadSize = 10 << 20

// NewInboundHandler will create a new handler to enforce the DIDComm HTTP transport rules then routes
// processing to the mandatory 'msgHandler' argument.
//
// Arguments:
//   - 'msgHandler' is the handler function that will be executed with the inbound request payload.
//     A payload the handler rejects is answered with 400 Bad Request.
func NewInboundHandler(msgHandler transport.InboundMessageHandler) (http.Handler, error) {
	if msgHandler == nil {
		logger.Errorf("Error creating a new inbound handler: message handler function is nil")

		return nil, errors.New("failed to create NewInboundHandler")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		processPOSTRequest(w, r, msgHandler)
	}), nil
}

// NewRouter mounts the inbound handler at path for POST requests.
func NewRouter(path string, msgHandler transport.InboundMessageHandler) (*mux.Router, error) {
	handler, err := NewInboundHandler(msgHandler)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Handle(path, handler).Methods(http.MethodPost)
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "HTTP Method not allowed", http.StatusMethodNotAllowed)
	})

	return router, nil
}

func processPOSTRequest(w http.ResponseWriter, r *http.Request, messageHandler transport.InboundMessageHandler) {
	if valid := validateHTTPMethod(w, r); !valid {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		logger.Errorf("Error reading request body: %s - returning Code: %d", err, http.StatusInternalServerError)
		http.Error(w, "Failed to read payload", http.StatusInternalServerError)

		return
	}

	// empty payload should not be accepted
	if len(body) == 0 {
		http.Error(w, "Empty payload", http.StatusBadRequest)

		return
	}

	err = messageHandler(body)
	if err != nil {
		logger.Warnf("incoming message rejected: %s", err)
		http.Error(w, "Failed to handle message", http.StatusBadRequest)

		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// validateHTTPMethod validate HTTP method and content-type.
func validateHTTPMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "HTTP Method not allowed", http.StatusMethodNotAllowed)

		return false
	}

	ct := r.Header.Get("Content-type")
	if !transport.AcceptsMediaType(ct) {
		http.Error(w, fmt.Sprintf("Unsupported Content-type \"%s\"", ct), http.StatusUnsupportedMediaType)

		return false
	}

	return true
}
