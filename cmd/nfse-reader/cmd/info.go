package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfse-reader/internal/inspect"
	"github.com/rezonia/nfse-reader/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [paths...]",
	Short: "Show information about NFSe files",
	Long: `Display information about NFSe files without extracting invoices.

Shows:
  - File size and modification time
  - Root element and namespace
  - Number of CompNfse envelopes
  - Embedded signatures and the signer certificate subject

Signatures are reported, not verified.

Examples:
  nfse-reader info nota.xml
  nfse-reader info notas/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// FileInfo is the json form of one info entry
type FileInfo struct {
	File     string           `json:"file"`
	Size     int64            `json:"size"`
	Modified time.Time        `json:"modified"`
	Outline  *inspect.Outline `json:"outline,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := processor.CollectPaths(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	infos := make([]FileInfo, 0, len(files))
	for _, file := range files {
		infos = append(infos, describeFile(file))
	}

	if outputFormat == "json" {
		return outputJSON(cmd.OutOrStdout(), infos)
	}
	for _, info := range infos {
		printFileInfo(cmd.OutOrStdout(), info)
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func describeFile(filePath string) FileInfo {
	result := FileInfo{File: filePath}

	info, err := os.Stat(filePath)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Size = info.Size()
	result.Modified = info.ModTime()

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read file: %v", err)
		return result
	}

	outline, err := inspect.Inspect(data)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Outline = outline
	return result
}

func printFileInfo(w io.Writer, info FileInfo) {
	fmt.Fprintf(w, "File: %s\n", info.File)
	if info.Modified.IsZero() {
		fmt.Fprintf(w, "  Error: %s\n", info.Error)
		return
	}

	fmt.Fprintf(w, "  Size: %d bytes\n", info.Size)
	fmt.Fprintf(w, "  Modified: %s\n", info.Modified.Format("2006-01-02 15:04:05"))
	if info.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", info.Error)
		return
	}

	o := info.Outline
	root := o.Root
	if o.Namespace != "" {
		root += " (" + o.Namespace + ")"
	}
	fmt.Fprintf(w, "  Root: %s\n", root)
	fmt.Fprintf(w, "  Byte order mark: %s\n", yesNo(o.HasBOM))
	if o.HasList {
		fmt.Fprintf(w, "  Envelopes: %d\n", o.Envelopes)
	} else {
		fmt.Fprintln(w, "  Envelopes: no ListaNfse element")
	}
	fmt.Fprintf(w, "  Signatures: %d\n", o.Signatures)
	if o.Signer != nil {
		fmt.Fprintf(w, "  Signer: %s\n", o.Signer.Name)
		if o.Signer.Organization != "" {
			fmt.Fprintf(w, "  Organization: %s\n", o.Signer.Organization)
		}
		fmt.Fprintf(w, "  Certificate valid: %s to %s\n",
			o.Signer.ValidFrom.Format("2006-01-02"),
			o.Signer.ValidTo.Format("2006-01-02"),
		)
	}
	if len(o.Warnings) > 0 {
		fmt.Fprintf(w, "  Warnings: %s\n", strings.Join(o.Warnings, "; "))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
