// =============================================================================
// SAT Extrato - Configuration Module
// =============================================================================
//
// This module loads the print settings used to lay out a receipt. A single
// YAML file holds everything; every key is optional and falls back to the
// values of Default().
//
// LOADING SEQUENCE:
//   1. Start from Default()
//   2. Unmarshal the YAML document over it (absent keys keep their default)
//   3. Fill empty enumerations (applyDefaults)
//   4. Validate; any problem fails the load with ErrInvalidConfig
//
// A loaded Config is a read-only snapshot. The layout engine receives it as
// an explicit argument and never mutates it.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/sat-extrato/internal/accesskey"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the receipt layout settings plus the batch pipeline settings.
type Config struct {
	// Columns is the number of characters per line in each print mode.
	Columns Columns `yaml:"columns"`

	// Layout tunes the two-sided bordered lines.
	Layout Layout `yaml:"layout"`

	// FooterNote is printed condensed at the very end of the receipt.
	// Both sides empty disables the note.
	FooterNote FooterNote `yaml:"footer_note"`

	// ItemsCondensed prints line items in condensed mode.
	// Default: true
	ItemsCondensed bool `yaml:"items_condensed"`

	// FeedLines is the number of blank lines fed after the receipt when the
	// paper is not cut.
	// Default: 10
	FeedLines int `yaml:"feed_lines"`

	// Cut controls the paper cutter.
	Cut Cut `yaml:"cut"`

	// ShowConsumerName prints dest/xNome below the consumer tax id.
	// Default: false
	ShowConsumerName bool `yaml:"show_consumer_name"`

	// Barcode controls the Code128 rendering of the access key.
	Barcode Barcode `yaml:"barcode"`

	// QRCode controls the QR code symbol and the message printed below it.
	QRCode QRCode `yaml:"qrcode"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// Batch configures the directory pipeline of the batch command.
	Batch Batch `yaml:"batch"`
}

// Columns is the column profile of the paper roll.
type Columns struct {
	Normal    int `yaml:"normal"`
	Condensed int `yaml:"condensed"`
	Expanded  int `yaml:"expanded"`
}

// Layout holds the bordered line policy.
type Layout struct {
	// MinGutter is the minimum number of blanks between both sides.
	// Default: 4
	MinGutter int `yaml:"min_gutter"`

	// TruncationBias is the side that receives the odd column when both
	// sides must be truncated: "right" or "left".
	// Default: "right"
	TruncationBias string `yaml:"truncation_bias"`
}

// FavorRight reports whether the right side wins the odd column.
func (l Layout) FavorRight() bool {
	return l.TruncationBias != BiasLeft
}

// Truncation bias values.
const (
	BiasRight = "right"
	BiasLeft  = "left"
)

// FooterNote is the two-sided note at the end of the receipt.
type FooterNote struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// Empty reports whether both sides are blank.
func (f FooterNote) Empty() bool {
	return f.Left == "" && f.Right == ""
}

// Cut holds the paper cutter settings.
type Cut struct {
	// Enabled cuts the paper when the printer has a cutter.
	Enabled bool `yaml:"enabled"`

	// Partial requests a partial cut instead of a full one.
	Partial bool `yaml:"partial"`

	// Feed is the number of lines fed before cutting.
	Feed int `yaml:"feed"`
}

// BarcodePolicy selects how the access key is turned into Code128 symbols.
type BarcodePolicy string

const (
	// BarcodeSingle prints the 44 digits as one symbol.
	BarcodeSingle BarcodePolicy = "single"

	// BarcodeHalves prints two symbols of 22 digits.
	BarcodeHalves BarcodePolicy = "halves"

	// BarcodeSplit prints one symbol per entry of Barcode.Parts.
	BarcodeSplit BarcodePolicy = "split"

	// BarcodeTruncate prints the first Barcode.Truncate digits.
	BarcodeTruncate BarcodePolicy = "truncate"

	// BarcodeIgnore prints no barcode at all.
	BarcodeIgnore BarcodePolicy = "ignore"
)

// Barcode holds the Code128 settings.
type Barcode struct {
	Policy   BarcodePolicy `yaml:"policy"`
	Parts    []int         `yaml:"parts"`
	Truncate int           `yaml:"truncate"`

	// Height is in printer dots. 96 dots is about 12mm at 0.125mm per dot.
	Height int `yaml:"height"`

	// Width is the module width multiplier (1..6).
	Width int `yaml:"width"`

	// HRI prints the human readable digits below the bars.
	HRI bool `yaml:"hri"`
}

// Segments returns the digit strings to encode for key according to the
// policy. The ignore policy yields no segment.
func (b Barcode) Segments(key string) ([]string, error) {
	switch b.Policy {
	case BarcodeIgnore:
		return nil, nil
	case BarcodeHalves:
		return accesskey.Partition(key, accesskey.Halves())
	case BarcodeSplit:
		return accesskey.Partition(key, b.Parts)
	case BarcodeTruncate:
		if b.Truncate > len(key) {
			return nil, fmt.Errorf("%w: truncate %d exceeds key length %d", ErrInvalidConfig, b.Truncate, len(key))
		}
		return []string{key[:b.Truncate]}, nil
	default:
		return []string{key}, nil
	}
}

// QRCode holds the QR code settings.
type QRCode struct {
	// ModuleSize is the size of one QR module in printer dots (1..16).
	// Default: 4
	ModuleSize int `yaml:"module_size"`

	// ErrorCorrection is one of "L", "M", "Q", "H".
	// Default: "L"
	ErrorCorrection string `yaml:"error_correction"`

	// Message is printed below the QR code. Empty disables it.
	Message string `yaml:"message"`

	// MessageCondensed prints Message in condensed mode.
	// Default: true
	MessageCondensed bool `yaml:"message_condensed"`
}

// Batch holds the settings of the batch command.
type Batch struct {
	// InputDir is scanned for *.xml documents.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the rendered receipts and the report.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives the XML files rendered successfully.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveOnSuccess moves rendered inputs to InputArchiveDir.
	// Default: true
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// OutputFormat names each rendered receipt.
	// Placeholders:
	//   {kind}      - "venda", "resumo" or "cancelamento"
	//   {key}       - the 44-digit access key
	//   {original}  - the input file name without extension
	//   {uuid}      - a random UUID
	//   {timestamp} - current timestamp (YYYYMMDD_HHMMSS)
	// Default: "{kind}_{key}_{uuid}.txt"
	OutputFormat string `yaml:"output_format"`

	// ReportFile is the XLSX summary written to OutputDir. Empty disables it.
	// Default: "summary.xlsx"
	ReportFile string `yaml:"report_file"`

	// MaxConcurrency is the number of receipts rendered at the same time.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// PrinterHasCutter tells the preview printer to advertise a cutter.
	// Default: true
	PrinterHasCutter bool `yaml:"printer_has_cutter"`

	// Summary renders sales without the item list.
	// Default: false
	Summary bool `yaml:"summary"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultQRMessage is printed below the QR code unless configured otherwise.
const DefaultQRMessage = `Consulte o QR Code pelo aplicativo "De olho na nota", ` +
	`disponível na AppStore (Apple) e PlayStore (Android)`

// Default returns the stock configuration for an 80mm paper roll.
func Default() *Config {
	return &Config{
		Columns: Columns{Normal: 48, Condensed: 57, Expanded: 24},
		Layout:  Layout{MinGutter: 4, TruncationBias: BiasRight},
		FooterNote: FooterNote{
			Left:  "Extrato SAT-CF-e",
			Right: "http://git.io/vJRRk",
		},
		ItemsCondensed:   true,
		FeedLines:        10,
		Cut:              Cut{Enabled: true, Partial: true, Feed: 0},
		ShowConsumerName: false,
		Barcode: Barcode{
			Policy: BarcodeSingle,
			Parts:  accesskey.Halves(),
			Height: 96,
			Width:  2,
		},
		QRCode: QRCode{
			ModuleSize:       4,
			ErrorCorrection:  "L",
			Message:          DefaultQRMessage,
			MessageCondensed: true,
		},
		LogLevel: "info",
		Batch: Batch{
			InputDir:         "./input",
			OutputDir:        "./output",
			InputArchiveDir:  "./input_archive",
			ArchiveOnSuccess: true,
			OutputFormat:     "{kind}_{key}_{uuid}.txt",
			ReportFile:       "summary.xlsx",
			MaxConcurrency:   4,
			PrinterHasCutter: true,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	conf, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

// LoadBytes parses and validates a YAML document.
func LoadBytes(data []byte) (*Config, error) {
	conf := Default()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(conf)

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// applyDefaults fills enumerations left blank in the file.
func applyDefaults(c *Config) {
	if c.Layout.TruncationBias == "" {
		c.Layout.TruncationBias = BiasRight
	}
	if c.Barcode.Policy == "" {
		c.Barcode.Policy = BarcodeSingle
	}
	if c.QRCode.ErrorCorrection == "" {
		c.QRCode.ErrorCorrection = "L"
	}
	c.QRCode.ErrorCorrection = strings.ToUpper(c.QRCode.ErrorCorrection)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Batch.OutputFormat == "" {
		c.Batch.OutputFormat = "{kind}_{key}_{uuid}.txt"
	}
	if c.Batch.MaxConcurrency == 0 {
		c.Batch.MaxConcurrency = 4
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Columns.Normal <= 0 || c.Columns.Condensed <= 0 || c.Columns.Expanded <= 0 {
		fail("columns must be positive, got %d/%d/%d",
			c.Columns.Normal, c.Columns.Condensed, c.Columns.Expanded)
	}

	if c.Layout.MinGutter < 0 {
		fail("layout.min_gutter must not be negative, got %d", c.Layout.MinGutter)
	}
	if c.Layout.TruncationBias != BiasRight && c.Layout.TruncationBias != BiasLeft {
		fail("layout.truncation_bias must be %q or %q, got %q", BiasRight, BiasLeft, c.Layout.TruncationBias)
	}

	if c.FeedLines < 0 {
		fail("feed_lines must not be negative, got %d", c.FeedLines)
	}
	if c.Cut.Feed < 0 {
		fail("cut.feed must not be negative, got %d", c.Cut.Feed)
	}

	// Parts are validated whenever given, whatever the policy.
	if len(c.Barcode.Parts) > 0 || c.Barcode.Policy == BarcodeSplit {
		if err := accesskey.ValidateParts(c.Barcode.Parts); err != nil {
			fail("barcode.parts: %w", err)
		}
	}
	switch c.Barcode.Policy {
	case BarcodeSingle, BarcodeHalves, BarcodeIgnore, BarcodeSplit:
	case BarcodeTruncate:
		n := c.Barcode.Truncate
		if n <= 0 || n > accesskey.Digits || n%2 != 0 {
			fail("barcode.truncate must be even and between 2 and %d, got %d", accesskey.Digits, n)
		}
	default:
		fail("barcode.policy %q is unknown", c.Barcode.Policy)
	}
	if c.Barcode.Height <= 0 {
		fail("barcode.height must be positive, got %d", c.Barcode.Height)
	}
	if c.Barcode.Width < 1 || c.Barcode.Width > 6 {
		fail("barcode.width must be between 1 and 6, got %d", c.Barcode.Width)
	}

	if c.QRCode.ModuleSize < 1 || c.QRCode.ModuleSize > 16 {
		fail("qrcode.module_size must be between 1 and 16, got %d", c.QRCode.ModuleSize)
	}
	switch c.QRCode.ErrorCorrection {
	case "L", "M", "Q", "H":
	default:
		fail("qrcode.error_correction must be one of L, M, Q, H, got %q", c.QRCode.ErrorCorrection)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fail("log_level %q is unknown", c.LogLevel)
	}

	if c.Batch.MaxConcurrency < 1 {
		fail("batch.max_concurrency must be at least 1, got %d", c.Batch.MaxConcurrency)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ParseBarcodeParts reads a parts list as written on the command line and
// validates it.
func ParseBarcodeParts(s string) ([]int, error) {
	parts, err := accesskey.ParseParts(s)
	if err != nil {
		return nil, fmt.Errorf("%w: barcode parts: %w", ErrInvalidConfig, err)
	}
	return parts, nil
}
