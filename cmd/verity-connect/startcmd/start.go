/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-verity-sdk-go/internal/logutil"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/client/connecting"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/config"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/dispatcher"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/dispatcher/inbound"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/envelope"
	verityhttp "github.com/hyperledger/aries-verity-sdk-go/pkg/didcomm/transport/http"
	"github.com/hyperledger/aries-verity-sdk-go/pkg/framework/context"
)

const (
	// config file flag.
	configFileFlagName      = "config-file"
	configFileEnvKey        = "VERITY_CONFIG_FILE"
	configFileFlagShorthand = "c"
	configFileFlagUsage     = "Path of a JSON, YAML or TOML file holding the Verity context." +
		" Keys missing from the file are read from VERITY_<KEY> environment variables." +
		" Alternatively, this can be set with the following environment variable: " + configFileEnvKey

	// log level.
	logLevelFlagName  = "log-level"
	logLevelEnvKey    = "VERITY_LOG_LEVEL"
	logLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey

	// echo flag.
	echoFlagName  = "echo"
	echoEnvKey    = "VERITY_ECHO"
	echoFlagUsage = "Print the packed message instead of sending it to Verity. Possible values [true] [false]." +
		" Defaults to false if not set." +
		" Alternatively, this can be set with the following environment variable: " + echoEnvKey

	// source id flag.
	sourceIDFlagName      = "source-id"
	sourceIDEnvKey        = "VERITY_SOURCE_ID"
	sourceIDFlagShorthand = "s"
	sourceIDFlagUsage     = "Identifier of the connection chosen by the caller." +
		" Alternatively, this can be set with the following environment variable: " + sourceIDEnvKey

	// phone number flag.
	phoneNoFlagName      = "phone-no"
	phoneNoEnvKey        = "VERITY_PHONE_NO"
	phoneNoFlagShorthand = "p"
	phoneNoFlagUsage     = "Phone number the invitation is sent to." +
		" Alternatively, this can be set with the following environment variable: " + phoneNoEnvKey

	// include public did flag.
	includePublicDIDFlagName  = "include-public-did"
	includePublicDIDEnvKey    = "VERITY_INCLUDE_PUBLIC_DID"
	includePublicDIDFlagUsage = "Include the public DID of the enterprise in the invitation." +
		" Possible values [true] [false]. Defaults to false if not set." +
		" Alternatively, this can be set with the following environment variable: " + includePublicDIDEnvKey

	// inbound host flag.
	inboundHostFlagName      = "inbound-host"
	inboundHostEnvKey        = "VERITY_INBOUND_HOST"
	inboundHostFlagShorthand = "i"
	inboundHostFlagUsage     = "Host Name:Port the messages sent by Verity are received on." +
		" Alternatively, this can be set with the following environment variable: " + inboundHostEnvKey

	// inbound path flag.
	inboundPathFlagName  = "inbound-path"
	inboundPathEnvKey    = "VERITY_INBOUND_PATH"
	inboundPathFlagUsage = "URL path the messages sent by Verity are posted to. Defaults to / if not set." +
		" Alternatively, this can be set with the following environment variable: " + inboundPathEnvKey

	tlsCertFileFlagName  = "tls-cert-file"
	tlsCertFileEnvKey    = "TLS_CERT_FILE"
	tlsCertFileFlagUsage = "tls certificate file." +
		" Alternatively, this can be set with the following environment variable: " + tlsCertFileEnvKey

	tlsKeyFileFlagName  = "tls-key-file"
	tlsKeyFileEnvKey    = "TLS_KEY_FILE"
	tlsKeyFileFlagUsage = "tls key file." +
		" Alternatively, this can be set with the following environment variable: " + tlsKeyFileEnvKey

	defaultInboundPath = "/"
)

var errMissingHost = errors.New("host not provided")

var logger = log.New("aries-verity/verity-connect")

type server interface {
	ListenAndServe(host string, router http.Handler, certFile, keyFile string) error
}

// HTTPServer represents an actual server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
func (s *HTTPServer) ListenAndServe(host string, router http.Handler, certFile, keyFile string) error {
	if certFile != "" && keyFile != "" {
		return http.ListenAndServeTLS(host, certFile, keyFile, router)
	}

	return http.ListenAndServe(host, router) //nolint:gosec
}

// ConnectCmd returns the Cobra command asking Verity to create a connection.
func ConnectCmd() *cobra.Command {
	connectCmd := &cobra.Command{
		Use:   "connect",
		Short: "Create a connection",
		Long:  `Ask Verity to create a connection and send the invitation to a phone number`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, err := getUserSetVar(cmd, sourceIDFlagName, sourceIDEnvKey, false)
			if err != nil {
				return err
			}

			phoneNo, err := getUserSetVar(cmd, phoneNoFlagName, phoneNoEnvKey, false)
			if err != nil {
				return err
			}

			includePublicDID, err := getBoolVar(cmd, includePublicDIDFlagName, includePublicDIDEnvKey)
			if err != nil {
				return err
			}

			return run(cmd, func(p *context.Provider, opts []connecting.Option) ([]byte, error) {
				return connecting.New(sourceID, phoneNo, includePublicDID).Connect(cmd.Context(), p, opts...)
			})
		},
	}

	createCommonFlags(connectCmd)
	connectCmd.Flags().StringP(sourceIDFlagName, sourceIDFlagShorthand, "", sourceIDFlagUsage)
	connectCmd.Flags().StringP(phoneNoFlagName, phoneNoFlagShorthand, "", phoneNoFlagUsage)
	connectCmd.Flags().StringP(includePublicDIDFlagName, "", "", includePublicDIDFlagUsage)

	return connectCmd
}

// StatusCmd returns the Cobra command asking Verity for the status of a connection.
func StatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Get connection status",
		Long:  `Ask Verity for the status of a connection. The answer is sent to the SDK endpoint`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, err := getUserSetVar(cmd, sourceIDFlagName, sourceIDEnvKey, false)
			if err != nil {
				return err
			}

			return run(cmd, func(p *context.Provider, opts []connecting.Option) ([]byte, error) {
				return connecting.New(sourceID, "", false).Status(cmd.Context(), p, opts...)
			})
		},
	}

	createCommonFlags(statusCmd)
	statusCmd.Flags().StringP(sourceIDFlagName, sourceIDFlagShorthand, "", sourceIDFlagUsage)

	return statusCmd
}

// ListenCmd returns the Cobra command receiving the messages Verity sends to the SDK endpoint.
func ListenCmd(server server) *cobra.Command {
	listenCmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive messages from Verity",
		Long:  `Serve the SDK endpoint and print every message Verity sends to it`,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := getUserSetVar(cmd, inboundHostFlagName, inboundHostEnvKey, false)
			if err != nil {
				return err
			}

			path, err := getUserSetVar(cmd, inboundPathFlagName, inboundPathEnvKey, true)
			if err != nil {
				return err
			}

			tlsCertFile, err := getUserSetVar(cmd, tlsCertFileFlagName, tlsCertFileEnvKey, true)
			if err != nil {
				return err
			}

			tlsKeyFile, err := getUserSetVar(cmd, tlsKeyFileFlagName, tlsKeyFileEnvKey, true)
			if err != nil {
				return err
			}

			p, err := createProvider(cmd)
			if err != nil {
				return err
			}

			defer closeProvider(p)

			return listen(&listenParameters{
				server:      server,
				host:        host,
				path:        path,
				tlsCertFile: tlsCertFile,
				tlsKeyFile:  tlsKeyFile,
				out:         cmd.OutOrStdout(),
			}, p)
		},
	}

	createCommonFlags(listenCmd)
	listenCmd.Flags().StringP(inboundHostFlagName, inboundHostFlagShorthand, "", inboundHostFlagUsage)
	listenCmd.Flags().StringP(inboundPathFlagName, "", "", inboundPathFlagUsage)
	listenCmd.Flags().StringP(tlsCertFileFlagName, "", "", tlsCertFileFlagUsage)
	listenCmd.Flags().StringP(tlsKeyFileFlagName, "", "", tlsKeyFileFlagUsage)

	return listenCmd
}

type listenParameters struct {
	server      server
	host        string
	path        string
	tlsCertFile string
	tlsKeyFile  string
	out         io.Writer
}

func listen(parameters *listenParameters, p *context.Provider) error {
	if parameters.host == "" {
		return errMissingHost
	}

	if parameters.path == "" {
		parameters.path = defaultInboundPath
	}

	printer := &messagePrinter{out: parameters.out}

	msgHandler := inbound.NewInboundMessageHandler(p)
	msgHandler.AddProblemReportHandler(func(msg envelope.Envelope) error {
		logutil.LogError(logger, "listen", "receive", msg.StringField("comment"), logutil.MessageKeyValues(msg)...)

		return printer.print(msg)
	})
	msgHandler.AddDefaultHandler(func(msg envelope.Envelope) error {
		logutil.LogInfo(logger, "listen", "receive", "message received", logutil.MessageKeyValues(msg)...)

		return printer.print(msg)
	})

	router, err := verityhttp.NewRouter(parameters.path, msgHandler.HandlerFunc())
	if err != nil {
		return err
	}

	handler := cors.New(
		cors.Options{
			AllowedMethods: []string{http.MethodPost, http.MethodHead},
			AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
		},
	).Handler(router)

	logger.Infof("Starting verity endpoint on host [%s] path [%s]", parameters.host, parameters.path)

	err = parameters.server.ListenAndServe(parameters.host, handler, parameters.tlsCertFile, parameters.tlsKeyFile)
	if err != nil {
		return fmt.Errorf("failed to start verity endpoint on host [%s], cause:  %w", parameters.host, err)
	}

	return nil
}

type messagePrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (m *messagePrinter) print(msg envelope.Envelope) error {
	b, err := msg.Bytes()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, err = fmt.Fprintln(m.out, string(b))

	return err
}

type sendFunc func(p *context.Provider, opts []connecting.Option) ([]byte, error)

func run(cmd *cobra.Command, send sendFunc) error {
	echo, err := getBoolVar(cmd, echoFlagName, echoEnvKey)
	if err != nil {
		return err
	}

	p, err := createProvider(cmd)
	if err != nil {
		return err
	}

	defer closeProvider(p)

	var opts []connecting.Option
	if echo {
		opts = append(opts, connecting.WithTransmit(dispatcher.EchoTransmit))
	}

	endpoint := logutil.CreateKeyValueString("endpoint", p.AgencyEndpoint())

	reply, err := send(p, opts)
	if err != nil {
		logutil.LogError(logger, cmd.Name(), "deliver", err.Error(), endpoint)

		return err
	}

	if len(reply) == 0 {
		logutil.LogInfo(logger, cmd.Name(), "deliver", "message delivered", endpoint)

		return nil
	}

	logutil.LogDebug(logger, cmd.Name(), "deliver", "printing reply", endpoint)

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(reply))

	return err
}

func createProvider(cmd *cobra.Command) (*context.Provider, error) {
	logLevel, err := getUserSetVar(cmd, logLevelFlagName, logLevelEnvKey, true)
	if err != nil {
		return nil, err
	}

	err = setLogLevel(logLevel)
	if err != nil {
		return nil, err
	}

	configFile, err := getUserSetVar(cmd, configFileFlagName, configFileEnvKey, true)
	if err != nil {
		return nil, err
	}

	provider := config.FromEnv()
	if configFile != "" {
		provider = config.FromFile(configFile)
	}

	cfg, err := config.Load(provider)
	if err != nil {
		return nil, err
	}

	p, err := context.Acquire(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire verity context: %w", err)
	}

	return p, nil
}

func closeProvider(p *context.Provider) {
	if err := p.Close(); err != nil {
		logger.Warnf("failed to close verity context: %s", err)
	}
}

func createCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(configFileFlagName, configFileFlagShorthand, "", configFileFlagUsage)
	cmd.Flags().StringP(logLevelFlagName, "", "", logLevelFlagUsage)
	cmd.Flags().StringP(echoFlagName, "", "", echoFlagUsage)
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func getBoolVar(cmd *cobra.Command, flagName, envKey string) (bool, error) {
	v, err := getUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return false, err
	}

	if v == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s '%s': %w", flagName, v, err)
	}

	return b, nil
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", logLevel, err)
		}

		log.SetLevel("", level)

		logger.Infof("logger level set to %s", logLevel)
	}

	return nil
}
