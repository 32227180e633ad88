package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// TestNewConfig verifies the default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.BatchSize != 4 {
		t.Errorf("expected BatchSize 4, got %d", cfg.BatchSize)
	}
	if cfg.DBDir != XDGDataDir() {
		t.Errorf("expected DBDir %s, got %s", XDGDataDir(), cfg.DBDir)
	}
	if cfg.Tracing.Enabled || cfg.Tracing.Endpoint != DefaultOTLPEndpoint || cfg.Tracing.SamplingRatio != 1 {
		t.Errorf("unexpected tracing defaults: %+v", cfg.Tracing)
	}
	if !cfg.SaveHistory() {
		t.Error("history is on by default")
	}
}

// TestConfigValidate tests each validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Inputs = []string{"capture.har"}
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"valid config", func(*Config) {}, nil},
		{"valid batch with output dir", func(c *Config) { c.Inputs = []string{"a.har", "b.har"}; c.OutputDir = "out" }, nil},
		{"no input", func(c *Config) { c.Inputs = nil }, ErrNoInput},
		{"stdin with other inputs", func(c *Config) { c.Inputs = []string{"-", "a.har"} }, ErrStdinWithMultipleInputs},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"negative batch size", func(c *Config) { c.BatchSize = -1 }, ErrInvalidBatchSize},
		{"json and markdown", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"output and output dir", func(c *Config) { c.Output = "x.har"; c.OutputDir = "out" }, ErrConflictingOutputs},
		{"output with several inputs", func(c *Config) { c.Inputs = []string{"a.har", "b.har"}; c.Output = "x.har" }, ErrOutputWithMultipleInputs},
		{"same name in output dir", func(c *Config) { c.Inputs = []string{"a/cap.har", "b/cap.har"}; c.OutputDir = "out" }, ErrDuplicateOutputPath},
		{"same name next to inputs", func(c *Config) { c.Inputs = []string{"a/cap.har", "b/cap.har"} }, nil},
		{"same input twice", func(c *Config) { c.Inputs = []string{"cap.har", "./cap.har"} }, ErrDuplicateOutputPath},
		{"sampling ratio above one", func(c *Config) { c.Tracing.SamplingRatio = 1.5 }, ErrInvalidSamplingRatio},
		{"negative sampling ratio", func(c *Config) { c.Tracing.SamplingRatio = -0.1 }, ErrInvalidSamplingRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("expected nil, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestOutputPathFor tests output naming.
func TestOutputPathFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		input  string
		expect string
	}{
		{"next to input", Config{}, filepath.Join("dir", "capture.har"), filepath.Join("dir", "capture.redacted.har")},
		{"other extension", Config{}, "trace.json", "trace.redacted.har"},
		{"output dir", Config{OutputDir: "out"}, filepath.Join("dir", "capture.har"), filepath.Join("out", "capture.redacted.har")},
		{"explicit output", Config{Output: "clean.har"}, "capture.har", "clean.har"},
		{"stdin to stdout", Config{}, "-", "-"},
		{"stdin to output dir", Config{OutputDir: "out"}, "-", filepath.Join("out", "stdin.redacted.har")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cfg.OutputPathFor(tt.input); got != tt.expect {
				t.Errorf("OutputPathFor(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// TestSanitizerOptions tests the mapping to redaction options.
func TestSanitizerOptions(t *testing.T) {
	t.Parallel()

	cfg := &Config{Words: []string{"sid"}, ContentTypes: []string{"image/png"}, AllHeaders: true, AllMimeTypes: true}
	opts := cfg.SanitizerOptions()

	if !slices.Equal(opts.Words, []string{"sid"}) || !slices.Equal(opts.ContentTypes, []string{"image/png"}) {
		t.Errorf("unexpected lists: %+v", opts)
	}
	if !opts.AllHeaders || !opts.AllMimeTypes || opts.AllCookies || opts.AllParams {
		t.Errorf("unexpected switches: %+v", opts)
	}

	opts.Words[0] = "changed"
	if cfg.Words[0] != "sid" {
		t.Error("options must not share the word slice")
	}
}

// writeConfigFile writes content to a .harsanitizer file in a new directory.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// TestLoadConfigFile tests YAML parsing.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("parses every key", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `
wordlist:
  - sid
  - csrf
contentList:
  - image/png
allCookies: true
allParams: true
compact: true
history: false
tracing:
  enabled: true
  endpoint: collector:4317
  insecure: true
  samplingRatio: 0.25
`)
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(f.Wordlist, []string{"sid", "csrf"}) || !slices.Equal(f.ContentList, []string{"image/png"}) {
			t.Errorf("unexpected lists: %+v", f)
		}
		if !f.AllCookies || f.AllHeaders || !f.AllParams || !f.Compact {
			t.Errorf("unexpected switches: %+v", f)
		}
		if f.History == nil || *f.History {
			t.Error("history should be explicitly false")
		}
		if f.Tracing == nil || f.Tracing.Endpoint != "collector:4317" || f.Tracing.SamplingRatio != 0.25 {
			t.Errorf("unexpected tracing: %+v", f.Tracing)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "wordlist: [unclosed")
		_, err := LoadConfigFile(path)
		if err == nil || !strings.Contains(err.Error(), path) {
			t.Errorf("expected parse error naming the file, got %v", err)
		}
	})
}

// TestApplyFile tests merging a file into flag values.
func TestApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("merges lists and switches", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Words = []string{"sid", "csrf"}
		cfg.AllHeaders = true

		history := false
		cfg.ApplyFile(&File{
			Wordlist:   []string{"csrf", "otp"},
			AllCookies: true,
			History:    &history,
			Tracing:    &TracingConfig{Enabled: true, Endpoint: "collector:4317"},
		})

		if !slices.Equal(cfg.Words, []string{"sid", "csrf", "otp"}) {
			t.Errorf("unexpected words: %v", cfg.Words)
		}
		if !cfg.AllCookies || !cfg.AllHeaders {
			t.Error("switches from flags and file should both be on")
		}
		if cfg.SaveHistory() {
			t.Error("file disabled history")
		}
		if !cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "collector:4317" || cfg.Tracing.SamplingRatio != 1 {
			t.Errorf("unexpected tracing: %+v", cfg.Tracing)
		}
	})

	t.Run("nil file is ignored", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil)
		if cfg.AllCookies || cfg.NoHistory {
			t.Error("nil file changed the config")
		}
	})
}

// TestLoad tests finding and applying the configuration file.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ConfigFilePath = writeConfigFile(t, "allMimeTypes: true\n")

		path, err := cfg.Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != cfg.ConfigFilePath || !cfg.AllMimeTypes {
			t.Errorf("file not applied: %q %+v", path, cfg)
		}
	})

	t.Run("explicit path that does not exist", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ConfigFilePath = filepath.Join(t.TempDir(), "missing.yaml")

		if _, err := cfg.Load(); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// TestFindConfigFile tests config file search with explicit paths.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")
	if got := FindConfigFile(path); got != path {
		t.Errorf("expected %s, got %s", path, got)
	}
	if got := FindConfigFile(filepath.Join(t.TempDir(), "absent")); got != "" {
		t.Errorf("expected empty path, got %s", got)
	}
}

// TestXDGDirs tests that XDG directories end with the application name.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for _, dir := range []string{XDGDataDir(), XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("expected %s to end with %s", dir, AppName)
		}
	}
}
