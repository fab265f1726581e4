// =============================================================================
// SAT Extrato - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (extrato)
//   ├── renderCmd   (extrato render FILE)
//   ├── batchCmd    (extrato batch)
//   ├── validateCmd (extrato validate)
//   └── versionCmd  (extrato version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose). Commands
//   load the configuration through loadConfig and build their logger with
//   newLogger.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ginjaninja78/sat-extrato/internal/config"
	"github.com/ginjaninja78/sat-extrato/internal/logging"
	"github.com/ginjaninja78/sat-extrato/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigFile is read when present; its absence means stock settings.
const defaultConfigFile = "extrato.yaml"

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "extrato",
	Short: "SAT Extrato - Print the receipt of CF-e-SAT documents",
	Long: `SAT Extrato lays out the receipt ("extrato") of CF-e-SAT sales and
cancellations for 80mm receipt printers.

Key Features:
  - Sale, summary and cancellation receipts
  - Access key barcode split into configurable segments
  - QR code and footer note
  - Batch rendering of a directory with an XLSX summary

Example Usage:
  extrato render cfe.xml                       # Preview a sale on stdout
  extrato render canc.xml --original cfe.xml   # Preview a cancellation
  extrato batch --config ./extrato.yaml        # Render the input directory
  extrato validate                             # Check the configuration`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main(). An interrupt
// cancels the context of the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadConfig reads the configuration file. The default file may be absent,
// a file named with --config may not.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if f := cmd.Flag("config"); (f == nil || !f.Changed) && !utils.FileExists(cfgFile) {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

// newLogger writes to stderr at the configured level, or debug with
// --verbose.
func newLogger(conf *config.Config) logging.Logger {
	level := conf.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(os.Stderr, level)
}
