// =============================================================================
// SAT Extrato - Render Command
// =============================================================================
//
// This file defines the 'render' command, which lays out the receipt of a
// single document on the text preview printer.
//
// COMMAND USAGE:
//   extrato render FILE [flags]
//
// FLAGS:
//   --original       : The sale cancelled by FILE (cancellations only)
//   --output         : Write the preview to a file instead of stdout
//   --trace          : Print the printer operations instead of the preview
//   --encoding       : Code page of the preview (cp850, iso-8859-1, ...)
//   --summary        : Leave the line items out of sale receipts
//   --barcode-parts  : Split the key barcode into segments
//   --no-cutter      : Feed paper instead of cutting
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/sat-extrato/internal/cfe"
	"github.com/ginjaninja78/sat-extrato/internal/extrato"
	"github.com/ginjaninja78/sat-extrato/internal/sink"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	originalPath string
	outputPath   string
	trace        bool
	encodingName string
	renderLayout layoutFlags
)

// =============================================================================
// RENDER COMMAND DEFINITION
// =============================================================================

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Render the receipt of one CF-e document",
	Long: `The render command prints the receipt of a CF-e-SAT document on a text
preview of the receipt printer.

A cancellation (root element CFeCanc) needs the sale it cancels, given with
--original; the access key in its chCanc attribute must match the sale.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	flags := renderCmd.Flags()
	flags.StringVar(&originalPath, "original", "", "The sale cancelled by FILE")
	flags.StringVarP(&outputPath, "output", "o", "", "Write the preview to this file")
	flags.BoolVar(&trace, "trace", false, "Print printer operations instead of the preview")
	flags.StringVar(&encodingName, "encoding", "", "Code page of the preview, e.g. cp850 (default UTF-8)")
	renderLayout.register(flags)
}

// =============================================================================
// MAIN RENDER FUNCTION
// =============================================================================

func runRender(cmd *cobra.Command, path string) error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := renderLayout.apply(cmd.Flags(), conf); err != nil {
		return err
	}
	cm, err := sink.CharmapByName(encodingName)
	if err != nil {
		return err
	}
	log := newLogger(conf)

	// =========================================================================
	// STEP 2: LOAD DOCUMENTS AND SELECT THE VARIANT
	// =========================================================================

	doc, err := cfe.ParseFile(path)
	if err != nil {
		return err
	}
	var original *cfe.Document
	if originalPath != "" {
		if original, err = cfe.ParseFile(originalPath); err != nil {
			return fmt.Errorf("original: %w", err)
		}
	}

	receipt, err := extrato.Select(doc, original, conf.Batch.Summary)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: RENDER
	// =========================================================================

	out := cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if trace {
		rec := sink.NewRecorder()
		rec.Cutter = conf.Batch.PrinterHasCutter
		renderErr := extrato.Render(rec, conf, receipt, extrato.WithLogger(log))
		if _, err := io.WriteString(out, rec.String()); err != nil {
			return err
		}
		return renderErr
	}

	printer := sink.NewPreview(out, conf.Columns,
		sink.WithCutter(conf.Batch.PrinterHasCutter),
		sink.WithCharmap(cm),
	)
	return extrato.Render(printer, conf, receipt, extrato.WithLogger(log))
}
