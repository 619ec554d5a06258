/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package inbound

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/forward"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/msgtype"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
)

var logger = log.New("aries-verity/dispatcher/inbound")

const (
	// StatusField carries the status code of a Verity status report.
	StatusField = "status"

	defaultDedupSize = 1000
	defaultDedupTTL  = 10 * time.Minute
)

// HandlerFunc handles an unwrapped inbound message.
type HandlerFunc func(msg envelope.Envelope) error

type provider interface {
	Codec() *forward.Codec
}

type messageHandler struct {
	op     msgtype.Operation
	status *int
	fn     HandlerFunc
}

func (m *messageHandler) handles(msg envelope.Envelope) bool {
	if !msg.Is(m.op) {
		return false
	}

	if m.status == nil {
		return true
	}

	status, ok := statusOf(msg)

	return ok && status == *m.status
}

func statusOf(msg envelope.Envelope) (int, bool) {
	switch v := msg[StatusField].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

// Option configures a MessageHandler.
type Option func(h *MessageHandler)

// WithDedupWindow sets how many message ids are remembered and for how long. A size of zero disables
// deduplication.
func WithDedupWindow(size int, ttl time.Duration) Option {
	return func(h *MessageHandler) {
		h.dedupSize = size
		h.dedupTTL = ttl
	}
}

// MessageHandler unwraps inbound messages from Verity and dispatches them by message type.
//
// Every handler registered for the exact type of a message is called. A message no handler takes goes
// to the problem report handler when it is a problem report, and to the default handler otherwise.
type MessageHandler struct {
	codec *forward.Codec

	mu                   sync.RWMutex
	handlers             []*messageHandler
	problemReportHandler HandlerFunc
	defaultHandler       HandlerFunc

	dedupSize int
	dedupTTL  time.Duration
	seenMu    sync.Mutex
	seen      gcache.Cache
}

// NewInboundMessageHandler creates an inbound message handler opening messages with the codec of p.
func NewInboundMessageHandler(p provider, opts ...Option) *MessageHandler {
	h := &MessageHandler{
		codec:     p.Codec(),
		dedupSize: defaultDedupSize,
		dedupTTL:  defaultDedupTTL,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.dedupSize > 0 {
		h.seen = gcache.New(h.dedupSize).LRU().Expiration(h.dedupTTL).Build()
	}

	return h
}

// AddHandler registers fn for messages of the given operation.
func (h *MessageHandler) AddHandler(op msgtype.Operation, fn HandlerFunc) {
	h.add(&messageHandler{op: op, fn: fn})
}

// AddStatusHandler registers fn for messages of the given operation carrying the given status code.
func (h *MessageHandler) AddStatusHandler(op msgtype.Operation, status int, fn HandlerFunc) {
	h.add(&messageHandler{op: op, status: &status, fn: fn})
}

func (h *MessageHandler) add(m *messageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.handlers = append(h.handlers, m)
}

// AddProblemReportHandler sets the handler for problem reports no other handler takes.
func (h *MessageHandler) AddProblemReportHandler(fn HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.problemReportHandler = fn
}

// AddDefaultHandler sets the handler for messages no other handler takes.
func (h *MessageHandler) AddDefaultHandler(fn HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.defaultHandler = fn
}

// HandlerFunc returns the MessageHandler's transport.InboundMessageHandler function.
func (h *MessageHandler) HandlerFunc() transport.InboundMessageHandler {
	return h.HandleMessage
}

// HandleMessage unwraps a raw message received from Verity and dispatches it. Messages whose id was
// handled within the dedup window are dropped. A message nobody handles fails with
// msgtype.ErrTypeMismatch. The id of a message that fails is forgotten so that a redelivery is handled
// again.
func (h *MessageHandler) HandleMessage(raw []byte) error {
	msg, err := h.codec.Unwrap(raw)
	if err != nil {
		return err
	}

	if !h.claim(msg.ID()) {
		logger.Debugf("dropping redelivered message %s", msg.ID())

		return nil
	}

	if err = h.dispatch(msg); err != nil {
		h.release(msg.ID())

		return err
	}

	return nil
}

func (h *MessageHandler) dispatch(msg envelope.Envelope) error {
	h.mu.RLock()
	handlers := h.handlers
	problemReportHandler := h.problemReportHandler
	defaultHandler := h.defaultHandler
	h.mu.RUnlock()

	var (
		handled bool
		errs    []error
	)

	for _, m := range handlers {
		if m.handles(msg) {
			handled = true

			if e := m.fn(msg); e != nil {
				errs = append(errs, e)
			}
		}
	}

	if handled {
		return errors.Join(errs...)
	}

	switch {
	case msgtype.IsProblemReport(msg.Type()) && problemReportHandler != nil:
		return problemReportHandler(msg)
	case defaultHandler != nil:
		return defaultHandler(msg)
	default:
		return fmt.Errorf("%w: no handler for '%s'", msgtype.ErrTypeMismatch, msg.Type())
	}
}

// claim records the id and reports whether it was not seen before. Concurrent deliveries of one id are
// handled once.
func (h *MessageHandler) claim(id string) bool {
	if h.seen == nil || id == "" {
		return true
	}

	h.seenMu.Lock()
	defer h.seenMu.Unlock()

	if _, err := h.seen.GetIFPresent(id); err == nil {
		return false
	}

	if err := h.seen.Set(id, struct{}{}); err != nil {
		logger.Warnf("remember message id %s: %v", id, err)
	}

	return true
}

func (h *MessageHandler) release(id string) {
	if h.seen == nil || id == "" {
		return
	}

	h.seenMu.Lock()
	defer h.seenMu.Unlock()

	h.seen.Remove(id)
}
