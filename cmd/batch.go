// =============================================================================
// SAT Extrato - Batch Command
// =============================================================================
//
// This file defines the 'batch' command, which renders every CF-e document
// of the input directory.
//
// COMMAND USAGE:
//   extrato batch [flags]
//
// FLAGS:
//   --dry-run        : Render without writing receipts, reports or archives
//   --summary        : Leave the line items out of sale receipts
//   --barcode-parts  : Split the key barcode into segments
//   --no-cutter      : Feed paper instead of cutting
//
// PROCESSING PIPELINE:
//   1. Load the configuration
//   2. Discover and parse the XML documents of batch.input_dir
//   3. Match cancellations to their sales by access key
//   4. Render the receipts concurrently (batch.max_concurrency)
//   5. Archive rendered inputs, write the XLSX summary and the error log
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/sat-extrato/internal/converter"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun simulates processing without writing output files.
var dryRun bool

var batchLayout layoutFlags

// =============================================================================
// BATCH COMMAND DEFINITION
// =============================================================================

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render the receipts of every document in the input directory",
	Long: `The batch command scans the input directory for CF-e XML documents and
writes the receipt preview of each one to the output directory.

Cancellations are matched with their sales by access key, so both files
must be in the same run. Errors in one document do not stop the others.

On success:
  - The receipt is written to the output directory
  - The XML is moved to the input archive
On error:
  - The XML stays in the input directory
  - The error is written to the error log
In both cases the document is listed in the XLSX summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Render without writing receipts, reports or archives",
	)
	batchLayout.register(batchCmd.Flags())
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runBatch(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := batchLayout.apply(cmd.Flags(), conf); err != nil {
		return err
	}

	fmt.Fprintln(out, "=== SAT Extrato ===")
	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing will be written.")
	}

	batch := converter.NewBatch(conf,
		converter.WithLogger(newLogger(conf)),
		converter.WithDryRun(dryRun),
	)
	outcome, err := batch.Run(cmd.Context())

	for _, result := range outcome.Results {
		name := filepath.Base(result.FilePath)
		switch {
		case result.Success && result.OutputFile != "":
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, filepath.Base(result.OutputFile))
		case result.Success:
			fmt.Fprintf(out, "  ✓ %s (%s)\n", name, result.Stats.Kind)
		default:
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		}
	}

	summary := outcome.Summary
	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(outcome.Results))
	fmt.Fprintf(out, "Successful:      %d\n", summary.Succeeded())
	fmt.Fprintf(out, "Errors:          %d\n", summary.Failed())
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime))
	if outcome.ReportFile != "" {
		fmt.Fprintf(out, "Report:          %s\n", outcome.ReportFile)
	}
	if outcome.ErrorLog != "" {
		fmt.Fprintf(out, "Error log:       %s\n", outcome.ErrorLog)
	}

	if err != nil {
		return err
	}
	if n := summary.Failed(); n > 0 {
		return fmt.Errorf("%d document(s) failed", n)
	}
	return nil
}
