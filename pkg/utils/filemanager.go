// =============================================================================
// SAT Extrato - File Manager Utility
// =============================================================================
//
// This module provides the file handling of the batch command:
//   - Directory management
//   - Discovery of CF-e XML documents
//   - Archival of rendered inputs
//   - Output file naming
//   - Error log generation
//
// ARCHIVAL STRATEGY:
//   - Inputs are moved to input_archive after their receipt is written
//   - Failed inputs stay where they are so they can be fixed and retried
//   - The error log is written to the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the batch command.
type FileManager struct {
	// InputDir is scanned for documents.
	InputDir string

	// OutputDir receives the receipts, the report and the error log.
	OutputDir string

	// InputArchiveDir receives the inputs rendered successfully.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/cfe.xml
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether inputs are archived at all.
	ArchiveOnSuccess bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output and archive directories. The input
// directory must already exist.
func (fm *FileManager) EnsureDirectories() error {
	if _, err := os.Stat(fm.InputDir); err != nil {
		return fmt.Errorf("input directory: %w", err)
	}

	dirs := []string{fm.OutputDir}
	if fm.ArchiveOnSuccess {
		dirs = append(dirs, fm.InputArchiveDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles returns the files of the input directory matching
// pattern, sorted by name. An empty pattern means "*.xml". Matching ignores
// case so that exports named CFE.XML are found too.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.xml"
	}
	pattern = strings.ToLower(pattern)

	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := filepath.Match(pattern, strings.ToLower(entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if matched {
			result = append(result, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory and returns
// its new path. With ArchiveOnSuccess off the file stays in place.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		if fm.now != nil {
			now = fm.now()
		}
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands the placeholders of format.
//
// PLACEHOLDERS:
//   {uuid}      - A random UUID
//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//   {date}      - Current date (YYYYMMDD)
//   {time}      - Current time (HHMMSS)
//   {<name>}    - Any entry of params, e.g. {kind}, {key}, {original}
//
// EXAMPLE:
//   format: "{kind}_{key}.txt"
//   params: {"kind": "venda", "key": "3515..."}
//   output: "venda_3515....txt"
//
// Path separators in the result are replaced by underscores so a name never
// escapes the output directory.
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	pairs := make([]string, 0, 2*len(replacements))
	for placeholder, value := range replacements {
		pairs = append(pairs, placeholder, value)
	}
	result := strings.NewReplacer(pairs...).Replace(format)

	return strings.NewReplacer("/", "_", `\`, "_").Replace(result)
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one failed document.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string

	// FieldPath is the path of the missing or invalid field, if any.
	FieldPath string
}

// WriteErrorLog writes entries to a timestamped log in outputDir and returns
// its path. Nothing is written when entries is empty.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir,
		fmt.Sprintf("error_log_%s.txt", time.Now().Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	if err := writeErrorLog(file, entries); err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}
	return logPath, nil
}

func writeErrorLog(w io.Writer, entries []ErrorLogEntry) error {
	const rule = "================================================================================\n"

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "SAT Extrato - Error Log\nGenerated: %s\nTotal Errors: %d\n%s\n",
		time.Now().Format("2006-01-02 15:04:05"), len(entries), rule)

	for i, entry := range entries {
		fmt.Fprintf(bw, "Error #%d\n", i+1)
		fmt.Fprintf(bw, "  Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(bw, "  File:       %s\n", entry.FileName)
		fmt.Fprintf(bw, "  Error Type: %s\n", entry.ErrorType)
		fmt.Fprintf(bw, "  Message:    %s\n", entry.ErrorMessage)
		if entry.FieldPath != "" {
			fmt.Fprintf(bw, "  Field:      %s\n", entry.FieldPath)
		}
		bw.WriteString("\n")
	}

	bw.WriteString(rule + "End of Error Log\n")
	return bw.Flush()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
