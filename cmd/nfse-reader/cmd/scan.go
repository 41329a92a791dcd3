package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfse-reader/internal/processor"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "List the NFSe files a directory scan selects",
	Long: `Walk a directory recursively and list every file whose extension is
exactly ".xml". The match is case-sensitive and unreadable subdirectories
are skipped.

Examples:
  nfse-reader scan notas/
  nfse-reader scan notas/ -f json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	files, err := processor.ScanDir(args[0])
	if err != nil {
		return err
	}

	printVerbose("Selected %d files\n", len(files))

	if outputFormat == "json" {
		return outputJSON(cmd.OutOrStdout(), files)
	}
	for _, file := range files {
		fmt.Fprintln(cmd.OutOrStdout(), file)
	}
	return nil
}
