package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"

	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "harsanitizer"

	// DefaultBatchSize is the number of documents sanitized concurrently.
	// Each document is held in memory several times while its text is
	// rewritten, so large captures favor a small value.
	DefaultBatchSize = 4

	// RedactedSuffix replaces the extension of an input to name its output.
	RedactedSuffix = ".redacted.har"

	// Stdio stands for standard input as an input and standard output as
	// an output.
	Stdio = "-"

	// DefaultOTLPEndpoint is the OTLP/gRPC collector address used when
	// tracing is enabled without an endpoint.
	DefaultOTLPEndpoint = "localhost:4317"

	// DefaultSamplingRatio traces every run.
	DefaultSamplingRatio = 1.0
)

// TracingConfig configures OpenTelemetry trace export.
type TracingConfig struct {
	// Enabled turns span export on.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/gRPC collector address in "host:port" form.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure,omitempty"`

	// SamplingRatio is the fraction of runs traced, between 0 and 1.
	SamplingRatio float64 `yaml:"samplingRatio,omitempty"`
}

// Config holds all configuration options for a harsanitizer invocation.
// It is populated from CLI flags, merged with the configuration file and
// passed down explicitly rather than kept in global state.
type Config struct {
	// Inputs are the HAR files to sanitize. "-" reads standard input.
	Inputs []string

	// Words are added to the default word list.
	Words []string

	// ContentTypes are added to the default content list.
	ContentTypes []string

	// AllCookies, AllHeaders, AllParams and AllMimeTypes are the redact-all
	// switches of sanitizer.Options.
	AllCookies   bool
	AllHeaders   bool
	AllParams    bool
	AllMimeTypes bool

	// Output is the destination of the sanitized document for a single
	// input. "-" writes to standard output.
	Output string

	// OutputDir receives the sanitized documents. When empty each output is
	// written next to its input.
	OutputDir string

	// Compact writes the sanitized documents without indentation.
	Compact bool

	// BatchSize is the number of documents sanitized concurrently.
	BatchSize int

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stderr.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .harsanitizer in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Verbose enables debug log output. Otherwise only warnings and errors
	// are logged.
	Verbose bool

	// LogJSON switches the log output to JSON.
	LogJSON bool

	// NoHistory disables saving runs to the history database.
	NoHistory bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/harsanitizer on Linux).
	DBDir string

	// Tracing configures OpenTelemetry trace export.
	Tracing TracingConfig
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize: DefaultBatchSize,
		DBDir:     XDGDataDir(),
		Tracing: TracingConfig{
			Endpoint:      DefaultOTLPEndpoint,
			SamplingRatio: DefaultSamplingRatio,
		},
	}
}

// XDGDataDir returns the XDG data directory for harsanitizer.
// On Linux: ~/.local/share/harsanitizer
// On macOS: ~/Library/Application Support/harsanitizer
// On Windows: %LOCALAPPDATA%\harsanitizer
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for harsanitizer.
// On Linux: ~/.config/harsanitizer
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	if len(c.Inputs) > 1 && slices.Contains(c.Inputs, Stdio) {
		return ErrStdinWithMultipleInputs
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Output != "" && c.OutputDir != "" {
		return ErrConflictingOutputs
	}

	if c.Output != "" && len(c.Inputs) > 1 {
		return ErrOutputWithMultipleInputs
	}

	if err := c.validateOutputPaths(); err != nil {
		return err
	}

	if c.Tracing.SamplingRatio < 0 || c.Tracing.SamplingRatio > 1 {
		return ErrInvalidSamplingRatio
	}

	return nil
}

// validateOutputPaths rejects inputs whose sanitized documents would be
// written to the same file.
func (c *Config) validateOutputPaths() error {
	seen := make(map[string]string, len(c.Inputs))
	for _, in := range c.Inputs {
		out := filepath.Clean(c.OutputPathFor(in))
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateOutputPath, prev, in, out)
		}
		seen[out] = in
	}
	return nil
}

// SanitizerOptions returns the redaction options of the configuration.
func (c *Config) SanitizerOptions() sanitizer.Options {
	return sanitizer.Options{
		Words:        slices.Clone(c.Words),
		ContentTypes: slices.Clone(c.ContentTypes),
		AllCookies:   c.AllCookies,
		AllHeaders:   c.AllHeaders,
		AllParams:    c.AllParams,
		AllMimeTypes: c.AllMimeTypes,
	}
}

// SaveHistory reports whether runs are recorded in the history database.
func (c *Config) SaveHistory() bool {
	return !c.NoHistory && c.DBDir != ""
}

// OutputPathFor returns where the sanitized document of input is written.
// Standard input goes to standard output unless Output says otherwise.
// Other inputs get their extension replaced by RedactedSuffix, in OutputDir
// when set and next to the input otherwise.
func (c *Config) OutputPathFor(input string) string {
	if c.Output != "" {
		return c.Output
	}
	if input == Stdio {
		if c.OutputDir != "" {
			return filepath.Join(c.OutputDir, "stdin"+RedactedSuffix)
		}
		return Stdio
	}

	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + RedactedSuffix

	dir := c.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}

// ApplyFile merges the values of a configuration file into c.
//
// Lists are appended after the flag values. The switches are enabled when
// either the flag or the file enables them. History is disabled when the
// file says so. Tracing settings come from the file, except that a tracing
// flag already enabled stays enabled.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}

	c.Words = sanitizer.MergeLists(c.Words, f.Wordlist)
	c.ContentTypes = sanitizer.MergeLists(c.ContentTypes, f.ContentList)

	c.AllCookies = c.AllCookies || f.AllCookies
	c.AllHeaders = c.AllHeaders || f.AllHeaders
	c.AllParams = c.AllParams || f.AllParams
	c.AllMimeTypes = c.AllMimeTypes || f.AllMimeTypes
	c.Compact = c.Compact || f.Compact

	if f.History != nil && !*f.History {
		c.NoHistory = true
	}

	if f.Tracing != nil {
		c.Tracing.Enabled = c.Tracing.Enabled || f.Tracing.Enabled
		if f.Tracing.Endpoint != "" {
			c.Tracing.Endpoint = f.Tracing.Endpoint
		}
		c.Tracing.Insecure = c.Tracing.Insecure || f.Tracing.Insecure
		if f.Tracing.SamplingRatio != 0 {
			c.Tracing.SamplingRatio = f.Tracing.SamplingRatio
		}
	}
}
