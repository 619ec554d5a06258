/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const jsonConfig = `{
  "verityUrl": "http://vas.example.com",
  "verityPublicDID": "CV65RFpeCtPu82hNF9i61G",
  "verityPublicVerkey": "ETLgZKeQEKxBW7gXA6FBn7nBwYhXFoogZLCCn5EeRSQV",
  "verityPairwiseDID": "NTvSuSXzygyxWrF3scrhdc",
  "verityPairwiseVerkey": "ULtgFQJe6bjiFbs7ke3NJD",
  "sdkPairwiseDID": "XNRkA8tboikwHD3x1Yh7Uz",
  "sdkPairwiseVerkey": "HZ3Ak6pj9ryFASKbA9fpwqjVh42F35UDiCLQ13J58Xoh",
  "endpointUrl": "http://sdk.example.com/webhook",
  "walletName": "sdk-wallet",
  "deliveryTimeout": "45s",
  "deliveryRetries": 2,
  "maxForwardDepth": 4
}`

func TestFromReader(t *testing.T) {
	cfg, err := Load(FromReader(strings.NewReader(jsonConfig), "json"))
	require.NoError(t, err)

	require.Equal(t, "http://vas.example.com", cfg.VerityURL)
	require.Equal(t, "CV65RFpeCtPu82hNF9i61G", cfg.VerityPublicDID)
	require.Equal(t, "NTvSuSXzygyxWrF3scrhdc", cfg.VerityPairwiseDID)
	require.Equal(t, "HZ3Ak6pj9ryFASKbA9fpwqjVh42F35UDiCLQ13J58Xoh", cfg.SDKPairwiseVerkey)
	require.Equal(t, "http://sdk.example.com/webhook", cfg.EndpointURL)
	require.Equal(t, "sdk-wallet", cfg.WalletName)
	require.Equal(t, 45*time.Second, cfg.DeliveryTimeout)
	require.Equal(t, uint64(2), cfg.DeliveryRetries)
	require.Equal(t, 4, cfg.MaxForwardDepth)
	require.NoError(t, cfg.Validate())

	t.Run("empty config type", func(t *testing.T) {
		_, err = Load(FromReader(strings.NewReader(jsonConfig), ""))
		require.EqualError(t, err, "empty config type")
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err = Load(FromReader(strings.NewReader("{"), "json"))
		require.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err = Load(FromReader(strings.NewReader(`{"deliveryTimeout": "soon"}`), "json"))
		require.Error(t, err)
	})
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlFile := filepath.Join(dir, "verity.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("verityUrl: http://vas.example.com\nmaxForwardDepth: 3\n"), 0o600))

	cfg, err := Load(FromFile(yamlFile))
	require.NoError(t, err)
	require.Equal(t, "http://vas.example.com", cfg.VerityURL)
	require.Equal(t, 3, cfg.MaxForwardDepth)

	tomlFile := filepath.Join(dir, "verity.toml")
	require.NoError(t, os.WriteFile(tomlFile, []byte("verityUrl = \"http://toml.example.com\"\n"), 0o600))

	cfg, err = Load(FromFile(tomlFile))
	require.NoError(t, err)
	require.Equal(t, "http://toml.example.com", cfg.VerityURL)

	_, err = Load(FromFile(""))
	require.EqualError(t, err, "filename is required")

	_, err = Load(FromFile(filepath.Join(dir, "missing.json")))
	require.Error(t, err)
	require.Contains(t, err.Error(), "loading config file failed")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TESTVERITY_VERITYURL", "http://env.example.com")
	t.Setenv("TESTVERITY_SDKPAIRWISESEED", "000000000000000000000000000Test1")

	cfg, err := Load(FromReader(strings.NewReader(jsonConfig), "json", WithEnvPrefix("TESTVERITY")))
	require.NoError(t, err)
	require.Equal(t, "http://env.example.com", cfg.VerityURL)
	require.Equal(t, "000000000000000000000000000Test1", cfg.SDKPairwiseSeed)

	cfg, err = Load(FromEnv(WithEnvPrefix("TESTVERITY")))
	require.NoError(t, err)
	require.Equal(t, "http://env.example.com", cfg.VerityURL)
	require.Empty(t, cfg.VerityPairwiseDID)

	backend, err := FromEnv(WithEnvPrefix("TESTVERITY"))()
	require.NoError(t, err)

	v, ok := backend.Lookup("verityUrl")
	require.True(t, ok)
	require.Equal(t, "http://env.example.com", v)

	_, ok = backend.Lookup("verityPairwiseDID")
	require.False(t, ok)
}
