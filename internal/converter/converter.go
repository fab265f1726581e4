// =============================================================================
// SAT Extrato - Converter Module
// =============================================================================
//
// This module turns one CF-e document into a receipt preview file. It is the
// unit of work of the batch command.
//
// CONVERSION PIPELINE:
//   1. Load the document (unless it was parsed by the caller)
//   2. Collect the statistics reported for it
//   3. Select the receipt variant; cancellations need their original sale
//   4. Render the receipt on a preview printer
//   5. Write the output file
//   6. Archive the input file
//
// CONCURRENCY:
//   A Converter renders on its own printer and session. Documents handed to
//   it are only read, so one original sale may serve several cancellations
//   rendered at the same time.
//
// =============================================================================

package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/sat-extrato/internal/cfe"
	"github.com/ginjaninja78/sat-extrato/internal/config"
	"github.com/ginjaninja78/sat-extrato/internal/extrato"
	"github.com/ginjaninja78/sat-extrato/internal/logging"
	"github.com/ginjaninja78/sat-extrato/internal/sink"
	"github.com/ginjaninja78/sat-extrato/pkg/utils"
	"github.com/shopspring/decimal"
)

// Pipeline stages, as reported in Result.Stage.
const (
	StageParse   = "parse"
	StageSelect  = "select"
	StageRender  = "render"
	StageWrite   = "write"
	StageArchive = "archive"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the receipt preview. It is empty if
	// processing failed or ran dry.
	OutputFile string

	// ArchivePath is where the input was moved to, if it was.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Stage is the pipeline stage that failed.
	Stage string

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Kind is the receipt variant, see extrato.Kind*.
	Kind string

	// Key is the access key of the document.
	Key string

	// Total is the total amount of the document.
	Total decimal.Decimal

	// Items is the number of line items.
	Items int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// FieldPath returns the path of the field that made processing fail, or "".
func (r Result) FieldPath() string {
	var fe *cfe.FieldError
	if errors.As(r.Error, &fe) {
		return fe.Path
	}
	return ""
}

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a Converter or a Batch.
type Option func(*options)

type options struct {
	logger   logging.Logger
	dryRun   bool
	doc      *cfe.Document
	original *cfe.Document
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDryRun renders without writing or archiving anything.
func WithDryRun(on bool) Option {
	return func(o *options) { o.dryRun = on }
}

// WithDocument hands an already parsed document to a Converter.
func WithDocument(doc *cfe.Document) Option {
	return func(o *options) { o.doc = doc }
}

// WithOriginal sets the sale a cancellation refers to.
func WithOriginal(doc *cfe.Document) Option {
	return func(o *options) { o.original = doc }
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter renders the receipt of a single CF-e file.
type Converter struct {
	// path is the path to the input XML file.
	path string

	// conf is the layout and batch configuration.
	conf *config.Config

	// files names, writes and archives the files.
	files *utils.FileManager

	opts options
}

// New creates a Converter for the document at path.
func New(path string, conf *config.Config, files *utils.FileManager, opts ...Option) *Converter {
	return &Converter{
		path:  path,
		conf:  conf,
		files: files,
		opts:  buildOptions(opts),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline. It never panics on bad input; every
// failure is reported in the Result.
func (c *Converter) Run() Result {
	startTime := time.Now()
	log := logging.With(c.opts.logger, "file", filepath.Base(c.path))

	result := Result{FilePath: c.path}
	fail := func(stage string, err error) Result {
		result.Stage = stage
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Warn("%s failed: %v", stage, err)
		return result
	}

	// =========================================================================
	// STEP 1: LOAD THE DOCUMENT
	// =========================================================================

	doc := c.opts.doc
	if doc == nil {
		var err error
		doc, err = cfe.ParseFile(c.path)
		if err != nil {
			return fail(StageParse, err)
		}
	}

	// =========================================================================
	// STEP 2: COLLECT STATISTICS
	// =========================================================================
	// Missing fields are not fatal here; the render reports them with their
	// path.

	result.Stats.Key, _ = doc.AccessKey()
	result.Stats.Total, _ = doc.Total()
	result.Stats.Items = len(doc.Inf.Det)

	// =========================================================================
	// STEP 3: SELECT THE RECEIPT VARIANT
	// =========================================================================

	receipt, err := extrato.Select(doc, c.opts.original, c.conf.Batch.Summary)
	if err != nil {
		return fail(StageSelect, err)
	}
	result.Stats.Kind = receipt.Kind()
	log.Debug("selected %s receipt for key %s", receipt.Kind(), result.Stats.Key)

	// =========================================================================
	// STEP 4: RENDER
	// =========================================================================

	var buf bytes.Buffer
	printer := sink.NewPreview(&buf, c.conf.Columns, sink.WithCutter(c.conf.Batch.PrinterHasCutter))
	if err := extrato.Render(printer, c.conf, receipt, extrato.WithLogger(log)); err != nil {
		return fail(StageRender, err)
	}

	if c.opts.dryRun {
		log.Info("dry run: rendered %d bytes", buf.Len())
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 5: WRITE THE OUTPUT FILE
	// =========================================================================

	name := utils.GenerateOutputFileName(c.conf.Batch.OutputFormat, map[string]string{
		"kind":     result.Stats.Kind,
		"key":      result.Stats.Key,
		"original": strings.TrimSuffix(filepath.Base(c.path), filepath.Ext(c.path)),
	})
	outputPath := filepath.Join(c.files.OutputDir, name)

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fail(StageWrite, fmt.Errorf("failed to write receipt: %w", err))
	}
	result.OutputFile = outputPath

	// =========================================================================
	// STEP 6: ARCHIVE THE INPUT
	// =========================================================================
	// The receipt exists at this point; a failed archive still fails the file
	// so it is looked at, and the input stays in place for the next run.

	archivePath, err := c.files.ArchiveInputFile(c.path)
	if err != nil {
		return fail(StageArchive, err)
	}
	if archivePath != c.path {
		result.ArchivePath = archivePath
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	log.Info("wrote %s", filepath.Base(outputPath))
	return result
}
