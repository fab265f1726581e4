package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("<CFe/>"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xml", "a.XML", "notes.txt"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.xml"), 0755); err != nil {
		t.Fatal(err)
	}

	fm := NewFileManager(dir, t.TempDir(), t.TempDir())
	files, err := fm.DiscoverInputFiles("")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{filepath.Join(dir, "a.XML"), filepath.Join(dir, "b.xml")}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestDiscoverInputFilesMissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "absent"), "", "")
	if _, err := fm.DiscoverInputFiles(""); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(root, filepath.Join(root, "out"), filepath.Join(root, "archive"))
	if err := fm.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{fm.OutputDir, fm.InputArchiveDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s was not created", dir)
		}
	}

	fm.InputDir = filepath.Join(root, "absent")
	if err := fm.EnsureDirectories(); err == nil {
		t.Error("expected an error for a missing input directory")
	}
}

func TestArchiveInputFile(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "cfe.xml")

	tests := []struct {
		name      string
		archive   bool
		subdirs   bool
		wantPath  string
		wantMoved bool
	}{
		{"disabled", false, false, input, false},
		{"flat", true, false, filepath.Join(root, "archive", "cfe.xml"), true},
		{"dated", true, true, filepath.Join(root, "archive", "2024", "01", "05", "cfe.xml"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			touch(t, input)
			fm := NewFileManager(root, root, filepath.Join(root, "archive"))
			fm.ArchiveOnSuccess = tt.archive
			fm.UseTimestampSubdirs = tt.subdirs
			fm.now = func() time.Time { return time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC) }

			got, err := fm.ArchiveInputFile(input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.wantPath {
				t.Errorf("path = %q, want %q", got, tt.wantPath)
			}
			if FileExists(input) == tt.wantMoved {
				t.Errorf("input exists = %v after archiving", !tt.wantMoved)
			}
			if !FileExists(got) {
				t.Errorf("%s does not exist", got)
			}
		})
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	params := map[string]string{
		"kind":     "venda",
		"key":      "35150461099008000141599000017900000015450903",
		"original": "cfe-001",
	}

	tests := []struct {
		format string
		want   string
	}{
		{"{kind}_{key}.txt", "venda_35150461099008000141599000017900000015450903.txt"},
		{"{original}.txt", "cfe-001.txt"},
		{"{kind}/{original}.txt", "venda_cfe-001.txt"},
		{"receipt", "receipt"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := GenerateOutputFileName(tt.format, params); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	got := GenerateOutputFileName("{kind}_{uuid}_{timestamp}.txt", params)
	pattern := regexp.MustCompile(`^venda_[0-9a-f-]{36}_\d{8}_\d{6}\.txt$`)
	if !pattern.MatchString(got) {
		t.Errorf("got %q, want match for %s", got, pattern)
	}
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir)
	if err != nil || path != "" {
		t.Fatalf("empty log: path %q, err %v", path, err)
	}

	entries := []ErrorLogEntry{
		{FileName: "a.xml", ErrorType: "parse", ErrorMessage: "bad root"},
		{FileName: "b.xml", ErrorType: "render", ErrorMessage: "missing", FieldPath: "infCFe/emit/xNome"},
	}
	var buf bytes.Buffer
	if err := writeErrorLog(&buf, entries); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Total Errors: 2", "Error #2", "File:       b.xml", "Field:      infCFe/emit/xNome"} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "Field:") != 1 {
		t.Errorf("field line printed for an entry without a path:\n%s", out)
	}

	path, err = WriteErrorLog(entries, dir)
	if err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Errorf("%s was not written", path)
	}
}
