/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package connecting asks a Verity agent to create a connection invitation and to report its status.
//
// Each call builds one envelope of the connecting 0.6 family, packs it for the Verity agency and
// delivers it. The client keeps no state between calls: whether a connection was created is up to the
// caller to track.
//
//	p, err := context.Acquire(cfg)
//	conn := connecting.New("12345", "1234357890", true)
//	resp, err := conn.Connect(ctx, p)
//	...
//	resp, err = conn.Status(ctx, p)
//
// Tests and offline tools can replace the network call:
//
//	packed, err := conn.Connect(ctx, p, connecting.WithTransmit(dispatcher.EchoTransmit))
//	env, err := p.Codec().Unwrap(packed)
package connecting
