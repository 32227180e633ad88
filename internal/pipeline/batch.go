package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/harsanitizer/internal/model"
	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// DefaultConcurrency is the number of documents sanitized at once.
const DefaultConcurrency = 4

// ReadFunc loads the raw content of a source.
type ReadFunc func(source string) ([]byte, error)

// BatchProcessor sanitizes many documents concurrently.
// Every document is read, sanitized and reported by a single goroutine;
// documents never share working state.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each document.
	pipelineFactory func() *Pipeline

	// options are the redaction options applied to every document.
	options sanitizer.Options

	// read loads a source. os.ReadFile is used by default.
	read ReadFunc

	// concurrency is the maximum number of concurrent runs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Values below one are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithOptions sets the redaction options for every document.
func WithOptions(opts sanitizer.Options) BatchOption {
	return func(b *BatchProcessor) {
		b.options = opts
	}
}

// WithReader replaces the function used to load sources.
func WithReader(read ReadFunc) BatchOption {
	return func(b *BatchProcessor) {
		if read != nil {
			b.read = read
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each document so that no
// pipeline state is shared between runs.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
		read:            os.ReadFile,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch sanitizes every source and returns one report per source,
// in input order. A failed document does not stop the others; its report
// carries the error.
//
// The returned error is non-nil only when ctx was cancelled; documents
// that had not started by then have a nil report.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.SanitizeReport, error) {
	bp.logger.Info("starting batch processing",
		"total_documents", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each run writes only its own index.
	results := make([]*model.SanitizeReport, len(sources))
	err := bp.run(ctx, sources, func(report *model.SanitizeReport, i int) {
		results[i] = report
	})

	bp.logger.Info("batch processing complete",
		"total_documents", len(sources),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// ProcessBatchWithCallback sanitizes every source and calls callback with
// each report as soon as its run ends.
//
// The callback receives the report and the index of the source. It is
// called from the goroutine that processed the document, so it must be
// safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(report *model.SanitizeReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_documents", len(sources),
		"concurrency", bp.concurrency,
	)
	return bp.run(ctx, sources, callback)
}

func (bp *BatchProcessor) run(
	ctx context.Context,
	sources []string,
	done func(report *model.SanitizeReport, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("sanitizing document",
				"source", source,
				"index", i+1,
				"total", len(sources),
			)

			done(bp.process(ctx, source), i)
			return nil
		})
	}

	return g.Wait()
}

// process reads and sanitizes one source. The returned report is never nil.
func (bp *BatchProcessor) process(ctx context.Context, source string) *model.SanitizeReport {
	data, err := bp.read(source)
	report := model.NewSanitizeReport(source, data, bp.options)
	if err != nil {
		report.Fail(sanitizer.StageLoad, fmt.Errorf("read %s: %w", source, err))
		bp.logger.Warn("sanitization failed", "source", source, "error", report.Error)
		return report
	}

	if err := bp.pipelineFactory().Execute(ctx, report); err != nil {
		bp.logger.Warn("sanitization failed",
			"source", source,
			"stage", report.FailedStage,
			"error", err,
		)
		return report
	}

	bp.logger.Info("sanitization completed", "source", source)
	return report
}
