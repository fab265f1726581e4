// =============================================================================
// SAT Extrato - Version Command
// =============================================================================
//
// This file defines the 'version' command. Besides the build information it
// lists the receipt variants this build lays out and the default column
// profile of the printer, so a support request can be matched to a release.
//
// COMMAND USAGE:
//   extrato version
//
// OUTPUT:
//   SAT Extrato
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//   Receipts:   venda, resumo, cancelamento
//   Columns:    48 normal, 57 condensed, 24 expanded
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ginjaninja78/sat-extrato/internal/config"
	"github.com/ginjaninja78/sat-extrato/internal/extrato"
	"github.com/spf13/cobra"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// Set at build time:
//   go build -ldflags "-X 'github.com/ginjaninja78/sat-extrato/cmd.Version=1.2.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// receiptKinds are the variants extrato.Select can produce.
var receiptKinds = []string{extrato.KindSale, extrato.KindSummary, extrato.KindCancellation}

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version and receipt layout of this build",
	Long: `Display the version and build date, the receipt variants laid out by
this build (sale, summary sale and cancellation) and the default column
profile of the 80 mm roll: 48 columns in normal mode, 57 condensed and 24
expanded. The profile can be changed in the configuration file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cols := config.Default().Columns

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "SAT Extrato")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "Receipts:   %s\n", strings.Join(receiptKinds, ", "))
		fmt.Fprintf(out, "Columns:    %d normal, %d condensed, %d expanded\n",
			cols.Normal, cols.Condensed, cols.Expanded)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
