/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package logutil formats command log lines as command=[...] action=[...] key=[value] pairs.
package logutil

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-verity-sdk-go/pkg/client/connecting"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
)

// LogError logs a failed command action.
func LogError(logger *log.Log, command, action, errMsg string, data ...string) {
	logger.Errorf("command=[%s] action=[%s] %s errMsg=[%s]", command, action, data, errMsg)
}

// LogDebug logs a command action at debug level.
func LogDebug(logger *log.Log, command, action, msg string, data ...string) {
	logger.Debugf("command=[%s] action=[%s] %s msg=[%s]", command, action, data, msg)
}

// LogInfo logs a command action.
func LogInfo(logger *log.Log, command, action, msg string, data ...string) {
	logger.Infof("command=[%s] action=[%s] %s msg=[%s]", command, action, data, msg)
}

// CreateKeyValueString creates a concatenated string.
func CreateKeyValueString(key, val string) string {
	return fmt.Sprintf("%s=[%s]", key, val)
}

// MessageKeyValues describes a received message by id and type, plus the connection source id when
// the message carries one.
func MessageKeyValues(msg envelope.Envelope) []string {
	data := []string{
		CreateKeyValueString("id", msg.ID()),
		CreateKeyValueString("type", msg.Type()),
	}

	if sourceID := msg.StringField(connecting.SourceIDField); sourceID != "" {
		data = append(data, CreateKeyValueString(connecting.SourceIDField, sourceID))
	}

	return data
}
