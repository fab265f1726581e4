// =============================================================================
// SAT Extrato - Batch Report
// =============================================================================
//
// This module writes the XLSX summary of a batch run. The workbook has two
// sheets:
//
//   Summary   : run times, document counts and amounts per receipt kind
//   Documents : one row per input file with its outcome
//
// =============================================================================

package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SummarySheet   = "Summary"
	DocumentsSheet = "Documents"
)

// Row is the outcome of one input file.
type Row struct {
	File    string
	Kind    string
	Key     string
	Total   decimal.Decimal
	Items   int
	Output  string
	Elapsed time.Duration

	// Err is nil when the receipt was written.
	Err error
}

// Status returns "ok" or "failed".
func (r Row) Status() string {
	if r.Err != nil {
		return "failed"
	}
	return "ok"
}

// Summary is a whole batch run.
type Summary struct {
	Started  time.Time
	Finished time.Time
	Rows     []Row
}

// Succeeded counts the rows without error.
func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Rows {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts the rows with an error.
func (s Summary) Failed() int {
	return len(s.Rows) - s.Succeeded()
}

// kindTotals sums the successful rows per receipt kind, sorted by kind.
func (s Summary) kindTotals() []kindTotal {
	byKind := map[string]*kindTotal{}
	for _, r := range s.Rows {
		if r.Err != nil || r.Kind == "" {
			continue
		}
		kt, ok := byKind[r.Kind]
		if !ok {
			kt = &kindTotal{kind: r.Kind}
			byKind[r.Kind] = kt
		}
		kt.count++
		kt.amount = kt.amount.Add(r.Total)
	}

	totals := make([]kindTotal, 0, len(byKind))
	for _, kt := range byKind {
		totals = append(totals, *kt)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].kind < totals[j].kind })
	return totals
}

type kindTotal struct {
	kind   string
	count  int
	amount decimal.Decimal
}

// =============================================================================
// WORKBOOK
// =============================================================================

// Write saves s as an XLSX workbook at path.
func Write(path string, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9D9D9"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSummary(f, s, header); err != nil {
		return err
	}

	if _, err := f.NewSheet(DocumentsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeDocuments(f, s.Rows, header); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, s Summary, header int) error {
	rows := [][]any{
		{"Started", s.Started.Format("2006-01-02 15:04:05")},
		{"Finished", s.Finished.Format("2006-01-02 15:04:05")},
		{"Duration", s.Finished.Sub(s.Started).String()},
		{"Documents", len(s.Rows)},
		{"Succeeded", s.Succeeded()},
		{"Failed", s.Failed()},
		{},
		{"Kind", "Receipts", "Amount R$"},
	}
	kindHeader := len(rows)
	for _, kt := range s.kindTotals() {
		rows = append(rows, []any{kt.kind, kt.count, kt.amount.InexactFloat64()})
	}

	if err := setRows(f, SummarySheet, rows); err != nil {
		return err
	}
	for _, cell := range []string{"A1", "A2", "A3", "A4", "A5", "A6"} {
		if err := f.SetCellStyle(SummarySheet, cell, cell, header); err != nil {
			return fmt.Errorf("failed to style summary: %w", err)
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, kindHeader)
	last, _ := excelize.CoordinatesToCellName(3, kindHeader)
	if err := f.SetCellStyle(SummarySheet, first, last, header); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "C", 18)
}

func writeDocuments(f *excelize.File, docs []Row, header int) error {
	rows := make([][]any, 0, len(docs)+1)
	rows = append(rows, []any{"File", "Kind", "Key", "Total R$", "Items", "Output", "Status", "Error", "Time"})

	for _, r := range docs {
		msg := ""
		if r.Err != nil {
			msg = r.Err.Error()
		}
		rows = append(rows, []any{
			r.File, r.Kind, r.Key, r.Total.InexactFloat64(), r.Items,
			r.Output, r.Status(), msg, r.Elapsed.String(),
		})
	}

	if err := setRows(f, DocumentsSheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(DocumentsSheet, "A1", "I1", header); err != nil {
		return fmt.Errorf("failed to style documents: %w", err)
	}
	if err := f.SetColWidth(DocumentsSheet, "A", "I", 16); err != nil {
		return err
	}
	return f.SetColWidth(DocumentsSheet, "C", "C", 48)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
