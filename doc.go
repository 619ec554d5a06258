/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verity lets Go programs talk to a Verity agency over DIDComm v1.
//
// Packages for end developer usage
//
// pkg/framework/context: Holds the Verity and SDK identifiers together with the wallet, the packager and the
// outbound transports. Every client takes one.
//
// pkg/client/connecting: Builds, packs and sends the messages of the connecting protocol.
//
// pkg/didcomm/dispatcher/inbound: Opens the messages Verity posts to the SDK endpoint and dispatches them by
// message type.
//
// pkg/config: Loads the context configuration from a file or the environment.
//
// Basic workflow
//
//	1) Load a context.Config, e.g. with config.Load(config.FromFile("verity.json")).
//	2) Acquire a context with context.Acquire(cfg).
//	3) Create a client instance using its New func and call it with the context.
//	4) Serve an inbound.MessageHandler on the SDK endpoint to receive the answers.
//	5) Call Close() on the context to release resources.
package verity
