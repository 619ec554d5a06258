/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verity-connect asks a Verity agency to create connections and receives its replies.
package main

import (
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-verity-sdk-go/cmd/verity-connect/startcmd"
)

// This is an application which talks to a Verity agency with the connecting protocol.
func main() {
	rootCmd := &cobra.Command{
		Use: "verity-connect",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	logger := log.New("aries-verity/verity-connect")

	rootCmd.AddCommand(startcmd.ConnectCmd(), startcmd.StatusCmd(), startcmd.ListenCmd(&startcmd.HTTPServer{}))

	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("Failed to run verity-connect: %s", err)
	}
}
