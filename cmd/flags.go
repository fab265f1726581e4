package cmd

import (
	"fmt"

	"github.com/ginjaninja78/sat-extrato/internal/config"
	"github.com/spf13/pflag"
)

// layoutFlags are the configuration overrides shared by render and batch.
type layoutFlags struct {
	summary      bool
	barcodeParts string
	noCutter     bool
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.summary, "summary", false, "Leave the line items out of sale receipts")
	fs.StringVar(&f.barcodeParts, "barcode-parts", "",
		`Split the key barcode into segments, e.g. "10,10,10,10,4"`)
	fs.BoolVar(&f.noCutter, "no-cutter", false, "Feed paper instead of cutting")
}

// apply writes the flags given on the command line over conf.
func (f *layoutFlags) apply(fs *pflag.FlagSet, conf *config.Config) error {
	if fs.Changed("summary") {
		conf.Batch.Summary = f.summary
	}
	if fs.Changed("barcode-parts") {
		parts, err := config.ParseBarcodeParts(f.barcodeParts)
		if err != nil {
			return fmt.Errorf("--barcode-parts: %w", err)
		}
		conf.Barcode.Policy = config.BarcodeSplit
		conf.Barcode.Parts = parts
	}
	if fs.Changed("no-cutter") {
		conf.Batch.PrinterHasCutter = !f.noCutter
	}
	return conf.Validate()
}
