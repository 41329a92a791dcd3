package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfse-reader/internal/logger"
	"github.com/rezonia/nfse-reader/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server over the extraction core.

The API provides endpoints for:
  - POST /api/v1/extract   - Run a batch over server-side paths
  - POST /api/v1/scan      - List the .xml files under a directory
  - POST /api/v1/decode    - Decode an XML document sent as the body
  - POST /api/v1/info      - Outline an XML document sent as the body
  - POST /api/v1/batch     - Start a batch on the shared session
  - GET  /api/v1/batch     - Read the shared session state
  - GET  /health           - Health check

Flags override config.yaml and NFSE_* environment variables.

Examples:
  # Start server on default port
  nfse-reader serve

  # Start in debug mode on a custom port
  nfse-reader serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 2*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        cfg.Server.Debug,
		Concurrency:  cfg.Batch.Concurrency,
		Partial:      cfg.Batch.Partial,
	}
	flags := cmd.Flags()
	if flags.Changed("address") {
		config.Address = serverAddr
	}
	if flags.Changed("debug") {
		config.Debug = serverDebug
	}
	if flags.Changed("read-timeout") {
		config.ReadTimeout = readTimeout
	}
	if flags.Changed("write-timeout") {
		config.WriteTimeout = writeTimeout
	}

	// The server always logs
	level := cfg.Logging.Level
	if config.Debug || verbose {
		level = "debug"
	}
	serverLog, err := logger.NewLogger(level, cfg.Logging.Encoding)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer serverLog.Sync()

	srv := server.NewServer(config, server.WithLogger(serverLog))

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting server on %s\n", config.Address)
	return srv.Run(ctx)
}
