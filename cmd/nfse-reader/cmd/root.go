package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfse-reader/internal/config"
	"github.com/rezonia/nfse-reader/internal/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	configFile   string
	envFile      string

	// Loaded before every command
	cfg *config.Configuration
	log = logger.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "nfse-reader",
	Short: "Extract invoices from Brazilian NFSe XML files",
	Long: `NFSe Reader decodes ABRASF NFSe query responses (ConsultarNfseResposta
and municipal variants) into invoice records.

A batch is all-or-nothing by default: if any file fails to open, read or
decode, no records are shown and the error names the failing file.

Examples:
  # Extract one file
  nfse-reader extract nota.xml

  # Extract every .xml under a directory as a table
  nfse-reader extract notas/ -f table

  # Keep the files that parse and report the others
  nfse-reader extract notas/*.xml --partial

  # List the files a directory scan selects
  nfse-reader scan notas/`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file (default: ./.env)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(config.Options{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return err
	}
	cfg = loaded

	// The CLI only logs with --verbose
	if !verbose {
		log = logger.NewNop()
		return nil
	}
	log, err = logger.NewLogger("debug", cfg.Logging.Encoding)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
