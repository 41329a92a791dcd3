package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfse-reader/internal/extractor"
	"github.com/rezonia/nfse-reader/internal/processor"
)

var (
	partial     bool
	concurrency int
)

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract invoice records from NFSe files",
	Long: `Extract invoice records from one or more NFSe XML files.

Each argument may be a file, a directory (scanned recursively for .xml
files) or a glob pattern. Records are printed in file order, and in
document order within a file.

Examples:
  nfse-reader extract nota.xml
  nfse-reader extract notas/ -f csv
  nfse-reader extract a.xml b.xml --concurrency 4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&partial, "partial", false, "Keep records of files that parse and report the others")
	extractCmd.Flags().IntVar(&concurrency, "concurrency", 1, "Files parsed at once")
}

func runExtract(cmd *cobra.Command, args []string) error {
	paths, err := processor.CollectPaths(args)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		return fmt.Errorf("no files found to process")
	}

	printVerbose("Found %d files to process\n", len(paths))

	mode := processor.ModeAllOrNothing
	if partial || (!cmd.Flags().Changed("partial") && cfg.Batch.Partial) {
		mode = processor.ModePartial
	}
	workers := concurrency
	if !cmd.Flags().Changed("concurrency") {
		workers = cfg.Batch.Concurrency
	}

	runner := processor.NewRunner(
		processor.WithParser(extractor.New(extractor.WithLogger(log))),
		processor.WithMode(mode),
		processor.WithConcurrency(workers),
		processor.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := runner.Run(ctx, paths)
	if result.State == processor.StateFailed {
		return fmt.Errorf("%s", result.Message)
	}

	for _, failure := range result.Failures() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s: %s\n", failure.Path, failure.Error)
	}

	return outputRecords(cmd.OutOrStdout(), outputFormat, result.Records)
}
