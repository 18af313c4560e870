// =============================================================================
// CSV to QDC Codebook Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file.
//
// CONFIGURATION FILE (config.yaml):
//   import_dir: import                 # one sub-directory per project
//   export_dir: export                 # <export>/<project>/<timestamp>.qdc
//   errors_dir: export/errors          # <errors>/<project>.txt
//   log_level: info
//   generic_list: top-level-codes      # list whose rows become bare codes
//   palette: ["#00FF00", "#FF0000"]    # category colours, cycled
//   fallback_colour: "#C0C0C0"         # colour of malformed child rows
//   child_names: plain                 # plain | prefixed
//   inherit_category_colour: false
//   escape_text: false
//   timestamp_format: 20060102-150405
//   output_extension: .qdc
//   max_concurrency: 1
//   csv_settings:
//     delimiter: ","
//   xlsx_settings:
//     sheet: ""
//
// A missing configuration file is not an error: every key has a default.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// Child name policies.
const (
	// ChildNamesPlain renders a child code with its own label only.
	ChildNamesPlain = "plain"

	// ChildNamesPrefixed renders a child code as "<Category> - <Code>".
	ChildNamesPrefixed = "prefixed"
)

// DefaultPalette is the category colour cycle:
// LIME, RED, YELLOW, BLUE, TEAL, AQUA, FUCHSIA, GREEN.
var DefaultPalette = []string{
	"#00FF00", "#FF0000", "#FFFF00", "#0000FF",
	"#008080", "#00FFFF", "#FF00FF", "#008000",
}

var colourPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// ImportDir holds one sub-directory per project, each containing the
	// project's code-list files.
	// Default: "import"
	ImportDir string `yaml:"import_dir"`

	// ExportDir is where codebooks are written, one sub-directory per project.
	// Default: "export"
	ExportDir string `yaml:"export_dir"`

	// ErrorsDir receives one error log per project.
	// Default: "export/errors"
	ErrorsDir string `yaml:"errors_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// CODEBOOK SETTINGS
	// =========================================================================

	// GenericList is the reserved code-list name whose rows become bare codes
	// instead of a category.
	// Default: "top-level-codes"
	GenericList string `yaml:"generic_list"`

	// Palette is the ordered list of category colours.
	Palette []string `yaml:"palette"`

	// FallbackColour marks child codes built from malformed rows.
	// Default: "#C0C0C0"
	FallbackColour string `yaml:"fallback_colour"`

	// ChildNames selects how child codes are named: "plain" or "prefixed".
	// Default: "plain"
	ChildNames string `yaml:"child_names"`

	// InheritCategoryColour gives well-formed child codes their category's
	// colour. When false they are uncoloured.
	InheritCategoryColour bool `yaml:"inherit_category_colour"`

	// EscapeText XML-escapes labels and descriptions. When false, input text is
	// written verbatim and must already be XML-safe.
	EscapeText bool `yaml:"escape_text"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// TimestampFormat is the Go time layout used for output file names.
	// Default: "20060102-150405"
	TimestampFormat string `yaml:"timestamp_format"`

	// OutputExtension is appended to the timestamp.
	// Default: ".qdc"
	OutputExtension string `yaml:"output_extension"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of projects processed at once.
	// Default: 1 (sequential)
	MaxConcurrency int `yaml:"max_concurrency"`

	// CSVSettings contains settings for reading code-list CSV files.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// XLSXSettings contains settings for reading code-list XLSX files.
	XLSXSettings XLSXSettings `yaml:"xlsx_settings"`
}

// CSVSettings contains settings for parsing code-list CSV files.
type CSVSettings struct {
	// Delimiter separates fields. "tab" and "\t" are accepted for tabs.
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// XLSXSettings contains settings for reading code-list workbooks.
type XLSXSettings struct {
	// Sheet is the sheet to read. Empty selects the first sheet.
	Sheet string `yaml:"sheet"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - The configuration with defaults applied. If the file does not exist,
//     the defaults alone are returned.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration document.
func Parse(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.ImportDir == "" {
		config.ImportDir = "import"
	}
	if config.ExportDir == "" {
		config.ExportDir = "export"
	}
	if config.ErrorsDir == "" {
		config.ErrorsDir = "export/errors"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.GenericList == "" {
		config.GenericList = "top-level-codes"
	}
	if len(config.Palette) == 0 {
		config.Palette = append([]string(nil), DefaultPalette...)
	}
	if config.FallbackColour == "" {
		config.FallbackColour = "#C0C0C0"
	}
	if config.ChildNames == "" {
		config.ChildNames = ChildNamesPlain
	}
	if config.TimestampFormat == "" {
		config.TimestampFormat = "20060102-150405"
	}
	if config.OutputExtension == "" {
		config.OutputExtension = ".qdc"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 1
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	for i, colour := range config.Palette {
		if !colourPattern.MatchString(colour) {
			return fmt.Errorf("palette[%d]: %q is not a #RRGGBB colour", i, colour)
		}
	}

	if !colourPattern.MatchString(config.FallbackColour) {
		return fmt.Errorf("fallback_colour: %q is not a #RRGGBB colour", config.FallbackColour)
	}

	switch config.ChildNames {
	case ChildNamesPlain, ChildNamesPrefixed:
	default:
		return fmt.Errorf("child_names: unknown policy %q (want %q or %q)",
			config.ChildNames, ChildNamesPlain, ChildNamesPrefixed)
	}

	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", config.LogLevel)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	if strings.ContainsAny(config.GenericList, `/\`) {
		return fmt.Errorf("generic_list: %q must be a bare file name", config.GenericList)
	}

	if _, err := config.CSVSettings.Comma(); err != nil {
		return err
	}

	return nil
}

// Comma resolves the delimiter to the rune encoding/csv expects.
func (s CSVSettings) Comma() (rune, error) {
	switch s.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "pipe", "PIPE":
		return '|', nil
	case "semicolon":
		return ';', nil
	}

	if utf8.RuneCountInString(s.Delimiter) != 1 {
		return 0, fmt.Errorf("csv_settings.delimiter: %q must be a single character", s.Delimiter)
	}

	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	return r, nil
}
