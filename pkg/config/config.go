/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads a Verity context configuration from JSON, YAML or TOML with environment variable
// overrides. An override is named after the prefix and the upper-cased key, e.g. VERITY_VERITYURL.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/framework/context"
)

type options struct {
	envPrefix string
}

const (
	cmdRoot = "VERITY"
)

// keys lists every key of context.Config so that environment overrides apply without a file entry.
var keys = []string{
	"verityUrl", "verityPublicDID", "verityPublicVerkey", "verityPairwiseDID", "verityPairwiseVerkey",
	"sdkPairwiseDID", "sdkPairwiseVerkey", "sdkPairwiseSeed", "endpointUrl", "walletName", "walletKey",
	"deliveryTimeout", "deliveryRetries", "maxForwardDepth",
}

// Option configures the package.
type Option func(opts *options)

// ConfigProvider provides a config backend.
type ConfigProvider func() (*Backend, error)

// Backend holds a loaded configuration.
type Backend struct {
	configViper *viper.Viper
	opts        options
}

// FromReader loads configuration from in.
// configType can be "json", "yaml" or "toml".
func FromReader(in io.Reader, configType string, opts ...Option) ConfigProvider {
	return func() (*Backend, error) {
		return initFromReader(in, configType, opts...)
	}
}

// FromFile reads from named config file.
func FromFile(name string, opts ...Option) ConfigProvider {
	return func() (*Backend, error) {
		backend := newBackend(opts...)

		if name == "" {
			return nil, errors.New("filename is required")
		}

		backend.configViper.SetConfigFile(name)

		err := backend.configViper.MergeInConfig()
		if err != nil {
			return nil, fmt.Errorf("loading config file failed: %w", err)
		}

		return backend, nil
	}
}

// FromEnv uses environment variables only.
func FromEnv(opts ...Option) ConfigProvider {
	return func() (*Backend, error) {
		return newBackend(opts...), nil
	}
}

func initFromReader(in io.Reader, configType string, opts ...Option) (*Backend, error) {
	backend := newBackend(opts...)

	if configType == "" {
		return nil, errors.New("empty config type")
	}

	// read config from bytes array, but must set ConfigType
	// for viper to properly unmarshal the bytes array
	backend.configViper.SetConfigType(configType)

	err := backend.configViper.MergeConfig(in)
	if err != nil {
		return nil, fmt.Errorf("viper MergeConfig failed : %w", err)
	}

	return backend, nil
}

// WithEnvPrefix defines the prefix for environment variable overrides.
func WithEnvPrefix(prefix string) Option {
	return func(opts *options) {
		opts.envPrefix = prefix
	}
}

func newBackend(opts ...Option) *Backend {
	o := options{
		envPrefix: cmdRoot,
	}

	for _, option := range opts {
		option(&o)
	}

	return &Backend{
		configViper: newViper(o.envPrefix),
		opts:        o,
	}
}

func newViper(cmdRootPrefix string) *viper.Viper {
	myViper := viper.New()
	myViper.SetEnvPrefix(cmdRootPrefix)
	myViper.AutomaticEnv()
	myViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, k := range keys {
		// BindEnv only fails without a key.
		_ = myViper.BindEnv(k) //nolint:errcheck
	}

	return myViper
}

// Lookup gets the config item value by key.
func (c *Backend) Lookup(key string) (interface{}, bool) {
	value := c.configViper.Get(key)
	if value == nil {
		return nil, false
	}

	return value, true
}

// ContextConfig decodes the configuration. Durations may be given as Go duration strings.
func (c *Backend) ContextConfig() (context.Config, error) {
	var cfg context.Config

	if err := c.configViper.Unmarshal(&cfg); err != nil {
		return context.Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// Load runs the provider and decodes its configuration.
func Load(provider ConfigProvider) (context.Config, error) {
	backend, err := provider()
	if err != nil {
		return context.Config{}, err
	}

	return backend.ContextConfig()
}
