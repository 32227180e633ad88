package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/harsanitizer/internal/config"
	"github.com/nao1215/harsanitizer/internal/database"
	"github.com/nao1215/harsanitizer/internal/har"
	"github.com/nao1215/harsanitizer/internal/model"
	"github.com/nao1215/harsanitizer/internal/observability"
	"github.com/nao1215/harsanitizer/internal/pipeline"
	"github.com/nao1215/harsanitizer/internal/report"
)

// stageWrite is recorded when a sanitized document could not be written.
const stageWrite = "write"

// tracerName is the instrumentation scope of CLI spans.
const tracerName = "github.com/nao1215/harsanitizer"

// shutdownTimeout bounds the final trace flush.
const shutdownTimeout = 5 * time.Second

// ErrDocumentsFailed is returned when at least one document of a run
// could not be sanitized or written.
var ErrDocumentsFailed = errors.New("sanitization failed")

// NewSanitizeCmd creates the sanitize command.
func NewSanitizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sanitize [file.har|-]...",
		Short: "Remove secrets from HAR files",
		Long: `Sanitize removes secrets from one or more HAR files.

For every document it:
- Replaces passwords embedded in URLs
- Replaces response bodies of sensitive content types
- Redacts values of cookies, headers, query string and form parameters
  whose names are on the word list
- Audits the result for leftover values and image metadata

Each sanitized file is written next to its input as <name>.redacted.har
unless --output or --output-dir says otherwise. Use "-" to read standard
input; its result goes to standard output.

Examples:
  # Sanitize a capture
  harsanitizer sanitize capture.har

  # Redact every cookie and add custom names to the word list
  harsanitizer sanitize --all-cookies -w session_id -w x-csrf-token capture.har

  # Sanitize many files into a directory, four at a time
  harsanitizer sanitize --output-dir clean/ -b 4 *.har

  # Pipe through standard input and output
  cat capture.har | harsanitizer sanitize - > clean.har

  # Write a Markdown report
  harsanitizer sanitize -m --report-file report.md capture.har`,
		Args: cobra.ArbitraryArgs,
		RunE: runSanitizeCmd,
	}

	// Redaction flags
	cmd.Flags().StringSliceP("word", "w", nil,
		"Additional field names to redact (repeatable)")
	cmd.Flags().StringSliceP("content", "C", nil,
		"Additional content types whose bodies are replaced (repeatable)")
	cmd.Flags().Bool("all-cookies", false, "Redact every cookie value")
	cmd.Flags().Bool("all-headers", false, "Redact every header value")
	cmd.Flags().Bool("all-params", false, "Redact every query string and form parameter value")
	cmd.Flags().Bool("all-mimetypes", false, "Replace every response body")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		`Output path for a single input ("-" for standard output)`)
	cmd.Flags().String("output-dir", "",
		"Directory for sanitized files (default: next to each input)")
	cmd.Flags().Bool("compact", false, "Write sanitized files without indentation")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of documents sanitized concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .harsanitizer in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false, "Do not record runs in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runSanitizeCmd executes the sanitize command.
func runSanitizeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON, cfg.SanitizerOptions().WordList()...)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSanitize(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildConfig creates a Config from cobra command flags and merges the
// configuration file into it.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Words, err = flags.GetStringSlice("word"); err != nil {
		return nil, err
	}
	if cfg.ContentTypes, err = flags.GetStringSlice("content"); err != nil {
		return nil, err
	}

	switches := []struct {
		name   string
		target *bool
	}{
		{"all-cookies", &cfg.AllCookies},
		{"all-headers", &cfg.AllHeaders},
		{"all-params", &cfg.AllParams},
		{"all-mimetypes", &cfg.AllMimeTypes},
		{"compact", &cfg.Compact},
		{"json", &cfg.JSONReport},
		{"markdown", &cfg.MarkdownReport},
		{"no-history", &cfg.NoHistory},
	}
	for _, s := range switches {
		if *s.target, err = flags.GetBool(s.name); err != nil {
			return nil, err
		}
	}

	if cfg.Output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")
	cfg.Inputs = args

	// An explicit --config that does not exist is an error; a missing
	// default file is not.
	if _, err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	return cfg, nil
}

// runSanitize sanitizes every input, writes the results and the report,
// and records the runs. It fails when any document failed.
func runSanitize(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) error {
	logger.Info("starting sanitization",
		"inputs", len(cfg.Inputs),
		"batchSize", cfg.BatchSize,
		"saveHistory", cfg.SaveHistory(),
		"tracing", cfg.Tracing.Enabled,
	)

	tp, err := observability.NewTracerProvider(ctx, observability.TracingConfig{
		Enabled:       cfg.Tracing.Enabled,
		ServiceName:   config.AppName,
		Version:       getVersion(),
		Endpoint:      cfg.Tracing.Endpoint,
		Insecure:      cfg.Tracing.Insecure,
		SamplingRatio: cfg.Tracing.SamplingRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	var db *database.HistoryDB
	if cfg.SaveHistory() {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Debug("history database opened", "path", db.Path())
	}

	tracer := tp.Tracer(tracerName)
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline([]pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithTracer(tracer),
			})
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithOptions(cfg.SanitizerOptions()),
		pipeline.WithBatchLogger(logger),
		pipeline.WithReader(sourceReader(stdin)),
	)

	// Documents are written as soon as their run ends; the mutex keeps
	// writes to a shared standard output from interleaving.
	reports := make([]*model.SanitizeReport, len(cfg.Inputs))
	var mu sync.Mutex
	batchErr := bp.ProcessBatchWithCallback(ctx, cfg.Inputs, func(r *model.SanitizeReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		finishRun(ctx, cfg, r, stdout, db, logger)
		reports[index] = r
	})

	reportOut := stdout
	if writesToStdout(cfg) {
		reportOut = stderr
	}
	if err := outputReports(cfg, reports, reportOut); err != nil {
		logger.Error("report failed", "error", err)
		return fmt.Errorf("failed to write report: %w", err)
	}

	if batchErr != nil {
		return batchErr
	}

	if failed := countFailed(reports); failed > 0 {
		return fmt.Errorf("%w: %d of %d documents", ErrDocumentsFailed, failed, len(cfg.Inputs))
	}
	return nil
}

// finishRun writes the sanitized document of a successful run, closes the
// run and saves it to the history database.
func finishRun(ctx context.Context, cfg *config.Config, r *model.SanitizeReport, stdout io.Writer, db *database.HistoryDB, logger *slog.Logger) {
	var written []byte
	if !r.Failed() {
		data, err := writeDocument(cfg, r, stdout)
		if err != nil {
			logger.Error("failed to write sanitized document", "source", r.Source, "error", err)
			r.Fail(stageWrite, err)
		} else {
			written = data
		}
	}
	r.Finish(written)

	if err := saveRun(ctx, db, r, logger); err != nil {
		logger.Error("failed to save run", "source", r.Source, "error", err)
	}
}

// sourceReader reads "-" from stdin and every other source from disk.
func sourceReader(stdin io.Reader) pipeline.ReadFunc {
	return func(source string) ([]byte, error) {
		if source == config.Stdio {
			return io.ReadAll(stdin)
		}
		return os.ReadFile(source) //nolint:gosec // Input paths come from the user
	}
}

// encodeDocument serializes a sanitized document with a trailing newline.
func encodeDocument(doc *har.Value, compact bool) []byte {
	var data []byte
	if compact {
		data = har.Marshal(doc)
	} else {
		data = har.MarshalIndent(doc, "  ")
	}
	return append(data, '\n')
}

// writeDocument writes the sanitized document of r to its output path and
// returns the bytes written.
func writeDocument(cfg *config.Config, r *model.SanitizeReport, stdout io.Writer) ([]byte, error) {
	if r.Document == nil {
		return nil, errors.New("no sanitized document")
	}

	data := encodeDocument(r.Document, cfg.Compact)
	path := cfg.OutputPathFor(r.Source)

	if path == config.Stdio {
		if _, err := stdout.Write(data); err != nil {
			return nil, err
		}
		return data, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Sanitized captures still describe internal endpoints, so only the
	// owner can read them.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return data, nil
}

// writesToStdout reports whether a sanitized document goes to standard
// output, in which case the report is moved to standard error.
func writesToStdout(cfg *config.Config) bool {
	return slices.ContainsFunc(cfg.Inputs, func(in string) bool {
		return cfg.OutputPathFor(in) == config.Stdio
	})
}

// outputReports writes the run reports in the requested format to the
// report file, or to out when no file is set.
func outputReports(cfg *config.Config, reports []*model.SanitizeReport, out io.Writer) error {
	started := slices.DeleteFunc(slices.Clone(reports), func(r *model.SanitizeReport) bool {
		return r == nil
	})

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		// Reports name redacted fields and hosts; keep them owner-readable.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if cfg.JSONReport {
		w := report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
		if len(cfg.Inputs) == 1 && len(started) == 1 {
			_, err := w.Write(started[0])
			return err
		}
		_, err := w.WriteBatch(started)
		return err
	}

	var w report.Writer
	if cfg.MarkdownReport {
		w = report.NewMarkdownWriter(out)
	} else {
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}

	for _, r := range started {
		if _, err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// saveRun saves the run to the history database.
// If db is nil, this function is a no-op.
func saveRun(ctx context.Context, db *database.HistoryDB, r *model.SanitizeReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// A cancelled run is still recorded.
	if err := db.SaveRun(context.WithoutCancel(ctx), r); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Debug("run saved to history", "source", r.Source, "runID", r.RunID)
	return nil
}

// countFailed returns the number of failed runs plus the number of
// documents that never started.
func countFailed(reports []*model.SanitizeReport) int {
	n := 0
	for _, r := range reports {
		if r == nil || r.Failed() {
			n++
		}
	}
	return n
}
