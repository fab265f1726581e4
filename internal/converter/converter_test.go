package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/sat-extrato/internal/cfe"
	"github.com/ginjaninja78/sat-extrato/internal/cfe/cfetest"
	"github.com/ginjaninja78/sat-extrato/internal/config"
	"github.com/ginjaninja78/sat-extrato/internal/extrato"
	"github.com/ginjaninja78/sat-extrato/internal/logging"
	"github.com/ginjaninja78/sat-extrato/pkg/utils"
)

// workspace lays out input, output and archive directories under a temp
// dir and copies the named fixtures into input.
func workspace(t *testing.T, fixtures ...string) *config.Config {
	t.Helper()
	root := t.TempDir()

	conf := config.Default()
	conf.Batch.InputDir = filepath.Join(root, "input")
	conf.Batch.OutputDir = filepath.Join(root, "output")
	conf.Batch.InputArchiveDir = filepath.Join(root, "archive")
	conf.Batch.OutputFormat = "{kind}_{original}.txt"

	for _, dir := range []string{conf.Batch.InputDir, conf.Batch.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range fixtures {
		writeInput(t, conf, name, cfetest.Bytes(t, name))
	}
	return conf
}

func writeInput(t *testing.T, conf *config.Config, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(conf.Batch.InputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fileManager(conf *config.Config) *utils.FileManager {
	fm := utils.NewFileManager(conf.Batch.InputDir, conf.Batch.OutputDir, conf.Batch.InputArchiveDir)
	fm.ArchiveOnSuccess = conf.Batch.ArchiveOnSuccess
	return fm
}

func TestConverterRun(t *testing.T) {
	conf := workspace(t, cfetest.Sale)
	input := filepath.Join(conf.Batch.InputDir, cfetest.Sale)

	result := New(input, conf, fileManager(conf)).Run()
	if !result.Success {
		t.Fatalf("run failed at %s: %v", result.Stage, result.Error)
	}

	wantOutput := filepath.Join(conf.Batch.OutputDir, "venda_sale.txt")
	if result.OutputFile != wantOutput {
		t.Errorf("output = %q, want %q", result.OutputFile, wantOutput)
	}
	if result.ArchivePath != filepath.Join(conf.Batch.InputArchiveDir, cfetest.Sale) {
		t.Errorf("archive = %q", result.ArchivePath)
	}
	if utils.FileExists(input) {
		t.Error("input was not archived")
	}

	stats := result.Stats
	if stats.Kind != extrato.KindSale || stats.Key != cfetest.SaleKey || stats.Items != 1 {
		t.Errorf("stats = %+v", stats)
	}

	data, err := os.ReadFile(result.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	receipt := string(data)
	for _, want := range []string{"Extrato No. 000000", "CUPOM FISCAL ELETRONICO - SAT", "= TESTE =", "8< "} {
		if !strings.Contains(receipt, want) {
			t.Errorf("receipt lacks %q", want)
		}
	}
}

func TestConverterSummary(t *testing.T) {
	conf := workspace(t, cfetest.ComplexSale)
	conf.Batch.Summary = true
	conf.Batch.ArchiveOnSuccess = false
	input := filepath.Join(conf.Batch.InputDir, cfetest.ComplexSale)

	result := New(input, conf, fileManager(conf)).Run()
	if !result.Success {
		t.Fatalf("run failed at %s: %v", result.Stage, result.Error)
	}
	if result.Stats.Kind != extrato.KindSummary {
		t.Errorf("kind = %q, want %q", result.Stats.Kind, extrato.KindSummary)
	}
	if !utils.FileExists(input) || result.ArchivePath != "" {
		t.Error("input moved with archiving disabled")
	}
	if filepath.Base(result.OutputFile) != "resumo_sale_complex.txt" {
		t.Errorf("output = %q", result.OutputFile)
	}
}

func TestConverterDryRun(t *testing.T) {
	conf := workspace(t, cfetest.Sale)
	input := filepath.Join(conf.Batch.InputDir, cfetest.Sale)

	result := New(input, conf, fileManager(conf), WithDryRun(true)).Run()
	if !result.Success {
		t.Fatalf("run failed at %s: %v", result.Stage, result.Error)
	}
	if result.OutputFile != "" {
		t.Errorf("dry run wrote %q", result.OutputFile)
	}
	entries, _ := os.ReadDir(conf.Batch.OutputDir)
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries", len(entries))
	}
	if !utils.FileExists(input) {
		t.Error("dry run archived the input")
	}
}

func TestConverterFailures(t *testing.T) {
	conf := workspace(t, cfetest.Cancellation)

	broken := writeInput(t, conf, "broken.xml", []byte("<CFe><infCFe>"))
	missingName := writeInput(t, conf, "noname.xml",
		[]byte(strings.NewReplacer("<xNome>", "<xFoo>", "</xNome>", "</xFoo>").Replace(string(cfetest.Bytes(t, cfetest.Sale)))))
	cancellation := filepath.Join(conf.Batch.InputDir, cfetest.Cancellation)

	tests := []struct {
		name      string
		path      string
		wantStage string
		wantErr   error
		wantField string
	}{
		{"malformed", broken, StageParse, cfe.ErrMalformed, ""},
		{"missing original", cancellation, StageSelect, extrato.ErrMissingOriginal, ""},
		{"missing field", missingName, StageRender, cfe.ErrFieldMissing, "infCFe/emit/xNome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(tt.path, conf, fileManager(conf)).Run()
			if result.Success {
				t.Fatal("run succeeded")
			}
			if result.Stage != tt.wantStage {
				t.Errorf("stage = %q, want %q", result.Stage, tt.wantStage)
			}
			if !errors.Is(result.Error, tt.wantErr) {
				t.Errorf("error = %v, want %v", result.Error, tt.wantErr)
			}
			if got := result.FieldPath(); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
			if !utils.FileExists(tt.path) {
				t.Error("failed input was moved")
			}
		})
	}
}

func TestBatchRun(t *testing.T) {
	conf := workspace(t, cfetest.Sale, cfetest.ComplexSale, cfetest.Cancellation)
	writeInput(t, conf, "broken.xml", []byte("not xml"))
	conf.Batch.MaxConcurrency = 2

	out, err := NewBatch(conf).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(out.Results) != 4 {
		t.Fatalf("got %d results, want 4", len(out.Results))
	}
	byFile := map[string]Result{}
	for _, r := range out.Results {
		byFile[filepath.Base(r.FilePath)] = r
	}

	if r := byFile["broken.xml"]; r.Success || r.Stage != StageParse {
		t.Errorf("broken.xml: success %v stage %q", r.Success, r.Stage)
	}
	for name, kind := range map[string]string{
		cfetest.Sale:         extrato.KindSale,
		cfetest.ComplexSale:  extrato.KindSale,
		cfetest.Cancellation: extrato.KindCancellation,
	} {
		r := byFile[name]
		if !r.Success {
			t.Errorf("%s failed at %s: %v", name, r.Stage, r.Error)
			continue
		}
		if r.Stats.Kind != kind {
			t.Errorf("%s kind = %q, want %q", name, r.Stats.Kind, kind)
		}
		if !utils.FileExists(r.OutputFile) {
			t.Errorf("%s: %s not written", name, r.OutputFile)
		}
	}

	if out.Summary.Succeeded() != 3 || out.Summary.Failed() != 1 {
		t.Errorf("summary: %d ok, %d failed", out.Summary.Succeeded(), out.Summary.Failed())
	}
	if out.ReportFile == "" || !utils.FileExists(out.ReportFile) {
		t.Errorf("report %q not written", out.ReportFile)
	}
	if out.ErrorLog == "" || !utils.FileExists(out.ErrorLog) {
		t.Errorf("error log %q not written", out.ErrorLog)
	}

	archived, _ := os.ReadDir(conf.Batch.InputArchiveDir)
	if len(archived) != 3 {
		t.Errorf("archived %d files, want 3", len(archived))
	}
	left, _ := os.ReadDir(conf.Batch.InputDir)
	if len(left) != 1 || left[0].Name() != "broken.xml" {
		t.Errorf("input dir keeps %v", left)
	}
}

func TestBatchDryRun(t *testing.T) {
	conf := workspace(t, cfetest.Sale, cfetest.Cancellation)

	out, err := NewBatch(conf, WithDryRun(true)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.Summary.Succeeded() != 2 {
		t.Errorf("succeeded %d, want 2", out.Summary.Succeeded())
	}
	if out.ReportFile != "" || out.ErrorLog != "" {
		t.Errorf("dry run wrote %q %q", out.ReportFile, out.ErrorLog)
	}
	entries, _ := os.ReadDir(conf.Batch.OutputDir)
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries", len(entries))
	}
}

func TestBatchCancelled(t *testing.T) {
	conf := workspace(t, cfetest.Sale)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBatch(conf).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want %v", err, context.Canceled)
	}
}

func TestBatchEmptyInput(t *testing.T) {
	conf := workspace(t)
	out, err := NewBatch(conf).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 0 || out.ReportFile != "" {
		t.Errorf("empty run produced %+v", out)
	}
}

func TestIndexSales(t *testing.T) {
	sale := cfetest.Load(t, cfetest.Sale)
	cancellation := cfetest.Load(t, cfetest.Cancellation)

	sales := indexSales(map[string]*cfe.Document{
		"a.xml": sale,
		"b.xml": cfetest.Load(t, cfetest.Sale),
		"c.xml": cancellation,
	}, logging.Discard())
	if len(sales) != 1 || sales[cfetest.SaleKey] != sale {
		t.Fatalf("index = %v", sales)
	}
	if originalOf(cancellation, sales) != sale {
		t.Error("cancellation did not find its sale")
	}
	if originalOf(sale, sales) != nil {
		t.Error("a sale has no original")
	}
}
