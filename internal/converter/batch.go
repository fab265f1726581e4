package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ginjaninja78/sat-extrato/internal/cfe"
	"github.com/ginjaninja78/sat-extrato/internal/config"
	"github.com/ginjaninja78/sat-extrato/internal/logging"
	"github.com/ginjaninja78/sat-extrato/internal/report"
	"github.com/ginjaninja78/sat-extrato/pkg/utils"
)

// Batch renders every document of the input directory.
//
// All documents are parsed before any is rendered, so a cancellation finds
// its original sale wherever the two files sort.
type Batch struct {
	conf  *config.Config
	files *utils.FileManager
	opts  options
}

// Outcome is what a batch run produced.
type Outcome struct {
	Results []Result
	Summary report.Summary

	// ReportFile and ErrorLog are the paths written, or "".
	ReportFile string
	ErrorLog   string
}

// NewBatch creates a Batch over the directories of conf.Batch.
func NewBatch(conf *config.Config, opts ...Option) *Batch {
	files := utils.NewFileManager(conf.Batch.InputDir, conf.Batch.OutputDir, conf.Batch.InputArchiveDir)
	files.ArchiveOnSuccess = conf.Batch.ArchiveOnSuccess
	return &Batch{conf: conf, files: files, opts: buildOptions(opts)}
}

// Run processes the input directory. Failures of single documents are
// reported in the outcome; the error is for problems that stop the whole
// run, including cancellation of ctx.
func (b *Batch) Run(ctx context.Context) (Outcome, error) {
	startTime := time.Now()
	log := b.opts.logger
	var out Outcome

	// =========================================================================
	// STEP 1: PREPARE DIRECTORIES
	// =========================================================================

	if !b.opts.dryRun {
		if err := b.files.EnsureDirectories(); err != nil {
			return out, err
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	paths, err := b.files.DiscoverInputFiles("")
	if err != nil {
		return out, err
	}
	log.Info("found %d document(s) in %s", len(paths), b.files.InputDir)
	if len(paths) == 0 {
		return out, nil
	}

	// =========================================================================
	// STEP 3: PARSE AND INDEX
	// =========================================================================

	docs := make(map[string]*cfe.Document, len(paths))
	var failed []Result
	for _, path := range paths {
		doc, err := cfe.ParseFile(path)
		if err != nil {
			log.Warn("%s: %v", filepath.Base(path), err)
			failed = append(failed, Result{FilePath: path, Stage: StageParse, Error: err})
			continue
		}
		docs[path] = doc
	}
	sales := indexSales(docs, log)

	// =========================================================================
	// STEP 4: RENDER CONCURRENTLY
	// =========================================================================
	// At most MaxConcurrency converters run at once. Once ctx is done the
	// remaining documents are not started.

	var wg sync.WaitGroup
	results := make(chan Result, len(docs))
	slots := make(chan struct{}, b.conf.Batch.MaxConcurrency)

	for _, path := range paths {
		doc, ok := docs[path]
		if !ok {
			continue
		}

		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			results <- Result{FilePath: path, Stage: StageRender, Error: ctx.Err()}
			continue
		}

		wg.Add(1)
		go func(path string, doc *cfe.Document) {
			defer wg.Done()
			defer func() { <-slots }()

			conv := New(path, b.conf, b.files,
				WithDocument(doc),
				WithOriginal(originalOf(doc, sales)),
				WithLogger(log),
				WithDryRun(b.opts.dryRun),
			)
			results <- conv.Run()
		}(path, doc)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 5: COLLECT RESULTS
	// =========================================================================

	out.Results = failed
	for result := range results {
		out.Results = append(out.Results, result)
	}
	sort.Slice(out.Results, func(i, j int) bool {
		return out.Results[i].FilePath < out.Results[j].FilePath
	})

	out.Summary = summarize(out.Results, startTime, time.Now())
	log.Info("rendered %d of %d document(s)", out.Summary.Succeeded(), len(out.Results))

	if err := ctx.Err(); err != nil {
		return out, err
	}

	// =========================================================================
	// STEP 6: WRITE REPORTS
	// =========================================================================

	if b.opts.dryRun {
		return out, nil
	}

	var errs []error
	if name := b.conf.Batch.ReportFile; name != "" {
		path := filepath.Join(b.files.OutputDir, name)
		if err := report.Write(path, out.Summary); err != nil {
			errs = append(errs, err)
		} else {
			out.ReportFile = path
		}
	}

	logPath, err := utils.WriteErrorLog(errorEntries(out.Results), b.files.OutputDir)
	if err != nil {
		errs = append(errs, err)
	}
	out.ErrorLog = logPath

	return out, errors.Join(errs...)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// indexSales maps the access key of every sale to its document. When two
// files carry the same key the first one wins.
func indexSales(docs map[string]*cfe.Document, log logging.Logger) map[string]*cfe.Document {
	paths := make([]string, 0, len(docs))
	for path := range docs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	sales := make(map[string]*cfe.Document)
	for _, path := range paths {
		doc := docs[path]
		if doc.Kind != cfe.KindSale {
			continue
		}
		key, err := doc.AccessKey()
		if err != nil {
			continue
		}
		if _, dup := sales[key]; dup {
			log.Warn("%s: duplicate sale %s ignored", filepath.Base(path), key)
			continue
		}
		sales[key] = doc
	}
	return sales
}

// originalOf returns the sale cancelled by doc, or nil.
func originalOf(doc *cfe.Document, sales map[string]*cfe.Document) *cfe.Document {
	if doc.Kind != cfe.KindCancellation {
		return nil
	}
	key, err := doc.CancelledKey()
	if err != nil {
		return nil
	}
	return sales[key]
}

func summarize(results []Result, started, finished time.Time) report.Summary {
	s := report.Summary{Started: started, Finished: finished}
	for _, r := range results {
		row := report.Row{
			File:    filepath.Base(r.FilePath),
			Kind:    r.Stats.Kind,
			Key:     r.Stats.Key,
			Total:   r.Stats.Total,
			Items:   r.Stats.Items,
			Output:  filepath.Base(r.OutputFile),
			Elapsed: r.Stats.ProcessingTime,
		}
		if r.OutputFile == "" {
			row.Output = ""
		}
		if !r.Success {
			row.Err = fmt.Errorf("%s: %w", r.Stage, r.Error)
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func errorEntries(results []Result) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry
	for _, r := range results {
		if r.Success {
			continue
		}
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     filepath.Base(r.FilePath),
			ErrorType:    r.Stage,
			ErrorMessage: r.Error.Error(),
			FieldPath:    r.FieldPath(),
		})
	}
	return entries
}
