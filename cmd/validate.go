package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// printConfig dumps the effective configuration after validation.
var printConfig bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration, apply the defaults and check every setting.
All problems are reported at once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration is valid.")
		if !printConfig {
			return nil
		}
		data, err := conf.Marshal()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&printConfig, "print", false, "Print the effective configuration")
}
