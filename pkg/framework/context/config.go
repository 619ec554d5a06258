/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package context

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
)

// Defaults applied by Acquire to zero config values.
const (
	DefaultDeliveryTimeout = 30 * time.Second
	DefaultWalletName      = "verity-sdk"
)

// AgencyPath is appended to the Verity URL to form the delivery endpoint.
const AgencyPath = "/agency/msg"

// Config holds the parameters of a Verity relationship. Field names follow the SDK context JSON.
type Config struct {
	VerityURL            string        `json:"verityUrl" mapstructure:"verityUrl"`
	VerityPublicDID      string        `json:"verityPublicDID" mapstructure:"verityPublicDID"`
	VerityPublicVerkey   string        `json:"verityPublicVerkey" mapstructure:"verityPublicVerkey"`
	VerityPairwiseDID    string        `json:"verityPairwiseDID" mapstructure:"verityPairwiseDID"`
	VerityPairwiseVerkey string        `json:"verityPairwiseVerkey" mapstructure:"verityPairwiseVerkey"`
	SDKPairwiseDID       string        `json:"sdkPairwiseDID" mapstructure:"sdkPairwiseDID"`
	SDKPairwiseVerkey    string        `json:"sdkPairwiseVerkey" mapstructure:"sdkPairwiseVerkey"`
	SDKPairwiseSeed      string        `json:"sdkPairwiseSeed,omitempty" mapstructure:"sdkPairwiseSeed"`
	EndpointURL          string        `json:"endpointUrl" mapstructure:"endpointUrl"`
	WalletName           string        `json:"walletName" mapstructure:"walletName"`
	WalletKey            string        `json:"walletKey,omitempty" mapstructure:"walletKey"`
	DeliveryTimeout      time.Duration `json:"deliveryTimeout,omitempty" mapstructure:"deliveryTimeout"`
	DeliveryRetries      uint64        `json:"deliveryRetries,omitempty" mapstructure:"deliveryRetries"`
	MaxForwardDepth      int           `json:"maxForwardDepth,omitempty" mapstructure:"maxForwardDepth"`
}

// Validate checks that the fields needed to pack and deliver messages are set.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"verityUrl", c.VerityURL},
		{"verityPublicVerkey", c.VerityPublicVerkey},
		{"verityPairwiseDID", c.VerityPairwiseDID},
		{"verityPairwiseVerkey", c.VerityPairwiseVerkey},
	}

	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: config requires '%s'", envelope.ErrInvalidState, r.name)
		}
	}

	if c.SDKPairwiseVerkey == "" && c.SDKPairwiseSeed == "" {
		return fmt.Errorf("%w: config requires 'sdkPairwiseVerkey' or 'sdkPairwiseSeed'", envelope.ErrInvalidState)
	}

	if c.MaxForwardDepth < 0 {
		return fmt.Errorf("%w: 'maxForwardDepth' must not be negative", envelope.ErrInvalidState)
	}

	return nil
}

// AgencyEndpoint returns the URL messages for the Verity agency are posted to.
func (c *Config) AgencyEndpoint() string {
	return strings.TrimSuffix(c.VerityURL, "/") + AgencyPath
}

func (c *Config) withDefaults() Config {
	cfg := *c

	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = DefaultDeliveryTimeout
	}

	if cfg.WalletName == "" {
		cfg.WalletName = DefaultWalletName
	}

	return cfg
}
