/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package context creates the Provider context holding the wallet, the packager and the outbound
// transports of a Verity relationship, and provides simple accessor methods to those same services.
package context

import (
	goctx "context"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/forward"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packager"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport/http"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport/ws"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/kms/legacykms"
)

var logger = log.New("aries-verity/context")

// ErrNoTransport is returned by Transmit when no outbound transport accepts the endpoint.
var ErrNoTransport = errors.New("no outbound transport accepts the endpoint")

// Provider supplies the relationship configuration and services to client objects. It is immutable
// after Acquire and safe for concurrent use.
type Provider struct {
	config             Config
	storeProvider      storage.Provider
	kms                *legacykms.KeyManager
	packager           transport.Packager
	outboundTransports []transport.OutboundTransport
	codec              *forward.Codec
}

// ProviderOption configures the framework.
type ProviderOption func(opts *Provider) error

// Acquire validates the config, opens the wallet and builds the packager and outbound transports.
// The SDK pairwise key is derived from its seed when one is configured.
func Acquire(cfg Config, opts ...ProviderOption) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctxProvider := Provider{config: cfg.withDefaults()}

	for _, opt := range opts {
		err := opt(&ctxProvider)
		if err != nil {
			return nil, fmt.Errorf("option failed: %w", err)
		}
	}

	if ctxProvider.storeProvider == nil {
		ctxProvider.storeProvider = mem.NewProvider()
	}

	if ctxProvider.kms == nil {
		k, err := legacykms.New(ctxProvider.storeProvider, legacykms.WithStoreName(ctxProvider.config.WalletName))
		if err != nil {
			return nil, fmt.Errorf("open wallet: %w", err)
		}

		ctxProvider.kms = k
	}

	if err := ctxProvider.loadSDKKey(); err != nil {
		return nil, err
	}

	if ctxProvider.packager == nil {
		ctxProvider.packager = packager.New(&ctxProvider)
	}

	if ctxProvider.outboundTransports == nil {
		transports, err := defaultOutboundTransports(&ctxProvider.config)
		if err != nil {
			return nil, err
		}

		ctxProvider.outboundTransports = transports
	}

	var codecOpts []forward.Option
	if ctxProvider.config.MaxForwardDepth > 0 {
		codecOpts = append(codecOpts, forward.WithMaxDepth(ctxProvider.config.MaxForwardDepth))
	}

	ctxProvider.codec = forward.New(&ctxProvider, codecOpts...)

	logger.Debugf("acquired context for verity %s", ctxProvider.config.VerityURL)

	return &ctxProvider, nil
}

func (p *Provider) loadSDKKey() error {
	if p.config.SDKPairwiseSeed == "" {
		return nil
	}

	verKey, err := p.kms.CreateKeySetFromSeed([]byte(p.config.SDKPairwiseSeed))
	if err != nil {
		return fmt.Errorf("%w: sdk pairwise seed: %v", envelope.ErrInvalidState, err)
	}

	if p.config.SDKPairwiseVerkey != "" && p.config.SDKPairwiseVerkey != verKey {
		return fmt.Errorf("%w: sdk pairwise seed does not match 'sdkPairwiseVerkey'", envelope.ErrInvalidState)
	}

	p.config.SDKPairwiseVerkey = verKey

	return nil
}

func defaultOutboundTransports(cfg *Config) ([]transport.OutboundTransport, error) {
	httpTransport, err := http.NewOutbound(http.WithOutboundTimeout(cfg.DeliveryTimeout))
	if err != nil {
		return nil, fmt.Errorf("create http transport: %w", err)
	}

	transports := []transport.OutboundTransport{httpTransport, ws.NewOutbound()}

	if cfg.DeliveryRetries > 0 {
		for i, t := range transports {
			transports[i] = transport.NewRetryTransport(t, transport.WithMaxRetries(cfg.DeliveryRetries))
		}
	}

	return transports, nil
}

// Encrypt marshals the envelope and anoncrypts it for recipientKey.
func (p *Provider) Encrypt(env envelope.Envelope, recipientKey string) ([]byte, error) {
	return p.EncryptFrom(env, "", recipientKey)
}

// EncryptFrom marshals the envelope and authcrypts it from senderKey to recipientKey. An empty
// senderKey selects anoncrypt.
func (p *Provider) EncryptFrom(env envelope.Envelope, senderKey, recipientKey string) ([]byte, error) {
	msg, err := env.Bytes()
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	return p.packager.PackMessage(&transport.Envelope{
		Message:    msg,
		FromVerKey: senderKey,
		ToVerKeys:  []string{recipientKey},
	})
}

// Decrypt opens a packed envelope with a key held by the wallet and parses the plaintext.
func (p *Provider) Decrypt(blob []byte) (envelope.Envelope, error) {
	unpacked, err := p.packager.UnpackMessage(blob)
	if err != nil {
		return nil, err
	}

	return envelope.FromJSON(unpacked.Message)
}

// Transmit sends data with the first outbound transport accepting the endpoint and returns the raw
// response.
func (p *Provider) Transmit(ctx goctx.Context, data []byte, endpoint string) ([]byte, error) {
	for _, t := range p.outboundTransports {
		if t.Accept(endpoint) {
			return t.Send(ctx, data, endpoint)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoTransport, endpoint)
}

// Config returns a copy of the relationship configuration.
func (p *Provider) Config() Config {
	return p.config
}

// AgencyEndpoint returns the URL messages for the Verity agency are posted to.
func (p *Provider) AgencyEndpoint() string {
	return p.config.AgencyEndpoint()
}

// SDKPairwiseVerkey returns the verkey the SDK signs its messages with.
func (p *Provider) SDKPairwiseVerkey() string {
	return p.config.SDKPairwiseVerkey
}

// VerityPairwiseDID returns the routing id of the Verity pairwise agent.
func (p *Provider) VerityPairwiseDID() string {
	return p.config.VerityPairwiseDID
}

// VerityPairwiseVerkey returns the key of the Verity pairwise agent.
func (p *Provider) VerityPairwiseVerkey() string {
	return p.config.VerityPairwiseVerkey
}

// VerityPublicVerkey returns the key of the Verity agency.
func (p *Provider) VerityPublicVerkey() string {
	return p.config.VerityPublicVerkey
}

// KMS returns the wallet as the packers see it.
func (p *Provider) KMS() packer.KeyStore {
	return p.kms
}

// KeyManager returns the wallet.
func (p *Provider) KeyManager() *legacykms.KeyManager {
	return p.kms
}

// Packager returns the packager service.
func (p *Provider) Packager() transport.Packager {
	return p.packager
}

// OutboundTransports returns the outbound transports.
func (p *Provider) OutboundTransports() []transport.OutboundTransport {
	return p.outboundTransports
}

// StorageProvider return a storage provider.
func (p *Provider) StorageProvider() storage.Provider {
	return p.storeProvider
}

// Codec returns the forward codec sealing and opening layers with this provider.
func (p *Provider) Codec() *forward.Codec {
	return p.codec
}

// Close closes the wallet and the storage provider.
func (p *Provider) Close() error {
	if err := p.kms.Close(); err != nil {
		return fmt.Errorf("close wallet: %w", err)
	}

	if err := p.storeProvider.Close(); err != nil {
		return fmt.Errorf("close storage provider: %w", err)
	}

	return nil
}

// WithStorageProvider injects a storage provider into the context.
func WithStorageProvider(s storage.Provider) ProviderOption {
	return func(opts *Provider) error {
		opts.storeProvider = s
		return nil
	}
}

// WithKMS injects a wallet into the context.
func WithKMS(k *legacykms.KeyManager) ProviderOption {
	return func(opts *Provider) error {
		opts.kms = k
		return nil
	}
}

// WithPackager injects a packager into the context.
func WithPackager(p transport.Packager) ProviderOption {
	return func(opts *Provider) error {
		opts.packager = p
		return nil
	}
}

// WithOutboundTransports injects outbound transports into the context.
func WithOutboundTransports(transports ...transport.OutboundTransport) ProviderOption {
	return func(opts *Provider) error {
		opts.outboundTransports = append(opts.outboundTransports, transports...)
		return nil
	}
}
