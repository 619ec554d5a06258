/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package provider

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/framework/context"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/kms/legacykms"
)

// Identifiers used by NewVerityContext.
const (
	VerityURL         = "http://verity.example.com"
	VerityPublicDID   = "CV65RFpeCtPu82hNF9i61G"
	VerityPairwiseDID = "NTvSuSXzygyxWrF3scrhdc"
	SDKPairwiseDID    = "XNRkA8tboikwHD3x1Yh7Uz"
)

// NewVerityContext acquires a context whose wallet holds the Verity agency and pairwise keys next to
// the SDK key, so everything packed for Verity can be opened again locally.
func NewVerityContext(opts ...context.ProviderOption) (*context.Provider, error) {
	k, err := legacykms.New(mem.NewProvider())
	if err != nil {
		return nil, err
	}

	var keys [3]string

	for i := range keys {
		keys[i], err = k.CreateKeySet()
		if err != nil {
			return nil, fmt.Errorf("create key set: %w", err)
		}
	}

	cfg := context.Config{
		VerityURL:            VerityURL,
		VerityPublicDID:      VerityPublicDID,
		VerityPublicVerkey:   keys[0],
		VerityPairwiseDID:    VerityPairwiseDID,
		VerityPairwiseVerkey: keys[1],
		SDKPairwiseDID:       SDKPairwiseDID,
		SDKPairwiseVerkey:    keys[2],
	}

	return context.Acquire(cfg, append([]context.ProviderOption{context.WithKMS(k)}, opts...)...)
}
