package pipeline

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nao1215/harsanitizer/internal/model"
)

// tracerName is the instrumentation scope of pipeline spans.
const tracerName = "github.com/nao1215/harsanitizer/internal/pipeline"

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the report
// filled by the previous ones.
type Step interface {
	// Do executes the pipeline step.
	// A returned error stops the run; the pipeline records it in the report.
	Do(ctx context.Context, report *model.SanitizeReport) error

	// Name returns the step's name. It doubles as the stage name recorded
	// for a failed run.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// tracer starts the run and step spans.
	tracer trace.Tracer
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithTracer sets the tracer used for spans.
// If not set, the tracer of the global OpenTelemetry provider is used.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = tracer
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
//
// Cancellation is checked before each step. The first failing step ends
// the run: its error is recorded with report.Fail, which also drops the
// working document, and returned.
func (p *Pipeline) Execute(ctx context.Context, report *model.SanitizeReport) error {
	ctx, runSpan := p.tracer.Start(ctx, "sanitize", trace.WithAttributes(
		attribute.String("harsanitizer.source", report.Source),
		attribute.String("harsanitizer.run_id", report.RunID),
	))
	defer runSpan.End()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"source", report.Source,
				"reason", ctx.Err(),
			)
			report.Fail(step.Name(), ctx.Err())
			runSpan.SetStatus(codes.Error, "cancelled")
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"source", report.Source,
		)

		if err := p.runStep(ctx, step, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", report.Source,
				"error", err,
			)
			report.Fail(step.Name(), err)
			runSpan.SetStatus(codes.Error, step.Name()+" failed")
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"source", report.Source,
		)
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
}

// runStep executes one step inside its own span.
func (p *Pipeline) runStep(ctx context.Context, step Step, report *model.SanitizeReport) error {
	ctx, span := p.tracer.Start(ctx, step.Name())
	defer span.End()

	if err := step.Do(ctx, report); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
