package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/nao1215/harsanitizer/internal/audit"
	"github.com/nao1215/harsanitizer/internal/model"
	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// errNoDocument is returned by steps that run before a document was loaded.
var errNoDocument = errors.New("no document loaded")

// LoadStep parses and validates the raw input.
type LoadStep struct{}

// NewLoadStep creates a new load step.
func NewLoadStep() *LoadStep {
	return &LoadStep{}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return sanitizer.StageLoad
}

// Do parses report.Input into report.Document.
func (s *LoadStep) Do(_ context.Context, report *model.SanitizeReport) error {
	doc, err := sanitizer.Load(report.Input)
	if err != nil {
		return err
	}
	report.Document = doc
	return nil
}

// URLCredentialStep removes passwords embedded in URLs.
type URLCredentialStep struct{}

// NewURLCredentialStep creates a new URL credential step.
func NewURLCredentialStep() *URLCredentialStep {
	return &URLCredentialStep{}
}

// Name returns the step name.
func (s *URLCredentialStep) Name() string {
	return sanitizer.StageURLCredentials
}

// Do replaces every URL password in the document.
func (s *URLCredentialStep) Do(_ context.Context, report *model.SanitizeReport) error {
	if report.Document == nil {
		return errNoDocument
	}
	doc, n, err := sanitizer.ScrubURLCredentials(report.Document)
	if err != nil {
		return err
	}
	report.Document = doc
	report.URLCredentials = n
	return nil
}

// MimeContentStep replaces the bodies of the selected content types.
// With Options.AllMimeTypes every content type found in the document is
// selected; otherwise the merged content list is.
type MimeContentStep struct{}

// NewMimeContentStep creates a new mime content step.
func NewMimeContentStep() *MimeContentStep {
	return &MimeContentStep{}
}

// Name returns the step name.
func (s *MimeContentStep) Name() string {
	return sanitizer.StageMimeContent
}

// Do collects the content types and replaces the selected bodies in place.
func (s *MimeContentStep) Do(_ context.Context, report *model.SanitizeReport) error {
	if report.Document == nil {
		return errNoDocument
	}

	report.MimeTypes = sanitizer.CollectMimeTypes(report.Document)
	report.ContentList = report.Options.ContentList()

	targets := report.ContentList
	if report.Options.AllMimeTypes {
		targets = report.MimeTypes
	}

	report.ContentTargets = report.ContentTargets[:0]
	for _, m := range report.MimeTypes {
		if slices.Contains(targets, m) {
			report.ContentTargets = append(report.ContentTargets, m)
		}
	}
	report.MimeContentReplaced = sanitizer.ScrubMimeContent(report.Document, targets)
	return nil
}

// ExtractStep collects the name/value records of every category and
// assembles the candidate word list.
type ExtractStep struct {
	// logger receives one debug record per skipped record.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a new extract step.
func NewExtractStep(opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return sanitizer.StageExtract
}

// Do fills report.Elements, report.FieldNames and report.WordList.
func (s *ExtractStep) Do(ctx context.Context, report *model.SanitizeReport) error {
	if report.Document == nil {
		return errNoDocument
	}

	elems := sanitizer.ExtractAll(report.Document)
	for _, anomaly := range elems.Anomalies {
		s.logger.DebugContext(ctx, "skipped record",
			"category", anomaly.Category,
			"field", anomaly.Name,
			"reason", anomaly.Reason,
		)
	}

	report.Elements = elems
	report.Anomalies = elems.Anomalies
	if report.FieldNames == nil {
		report.FieldNames = make(map[sanitizer.Category][]string)
	}
	for _, c := range sanitizer.Categories() {
		if names := elems.Names(c); len(names) > 0 {
			report.FieldNames[c] = names
		}
	}
	report.WordList = report.Options.ExpandWordList(report.Options.WordList(), elems)
	return nil
}

// TrimStep reduces the word list to the words present in the document.
type TrimStep struct{}

// NewTrimStep creates a new trim step.
func NewTrimStep() *TrimStep {
	return &TrimStep{}
}

// Name returns the step name.
func (s *TrimStep) Name() string {
	return sanitizer.StageTrimWordlist
}

// Do fills report.TrimmedWords.
func (s *TrimStep) Do(_ context.Context, report *model.SanitizeReport) error {
	if report.Document == nil {
		return errNoDocument
	}
	report.TrimmedWords = sanitizer.TrimWordlist(report.Document, report.WordList)
	return nil
}

// RedactStep replaces the values of every extracted field whose name is in
// the trimmed word list.
type RedactStep struct{}

// NewRedactStep creates a new redact step.
func NewRedactStep() *RedactStep {
	return &RedactStep{}
}

// Name returns the step name.
func (s *RedactStep) Name() string {
	return sanitizer.StageRedact
}

// Do replaces report.Document with the redacted document.
func (s *RedactStep) Do(_ context.Context, report *model.SanitizeReport) error {
	if report.Document == nil {
		return errNoDocument
	}
	doc, redactions, err := sanitizer.RedactKeyedValues(report.Document, report.TrimmedWords, report.Elements)
	if err != nil {
		return err
	}
	report.Document = doc
	report.Redactions = redactions
	return nil
}

// AuditStep inspects the sanitized document for leftovers.
// It never modifies the document.
type AuditStep struct {
	// analyzer is the main analyzer coordinator.
	analyzer *audit.Analyzer

	// logger for structured logging.
	logger *slog.Logger
}

// AuditStepOption configures an AuditStep.
type AuditStepOption func(*AuditStep)

// WithAuditLogger sets a custom logger for the audit step.
func WithAuditLogger(logger *slog.Logger) AuditStepOption {
	return func(s *AuditStep) {
		s.logger = logger
	}
}

// WithAuditAnalyzer replaces the default analyzer coordinator.
func WithAuditAnalyzer(analyzer *audit.Analyzer) AuditStepOption {
	return func(s *AuditStep) {
		s.analyzer = analyzer
	}
}

// NewAuditStep creates a new audit step.
func NewAuditStep(opts ...AuditStepOption) *AuditStep {
	s := &AuditStep{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analyzer == nil {
		s.analyzer = audit.NewAnalyzer(func(o *audit.AnalyzerOptions) {
			o.Logger = s.logger
		})
	}
	return s
}

// Name returns the step name.
func (s *AuditStep) Name() string {
	return "audit"
}

// Do runs the analyzers and adds their findings to the report.
func (s *AuditStep) Do(ctx context.Context, report *model.SanitizeReport) error {
	if report.Document == nil {
		return errNoDocument
	}

	findings, err := s.analyzer.Analyze(ctx, &audit.AnalysisData{Report: report})
	if err != nil {
		// Only cancellation ends the analyzer early; keep what was found.
		s.logger.Warn("audit completed with error", "error", err)
	}

	for _, f := range findings {
		report.AddFinding(f)
	}

	s.logger.Debug("audit completed",
		"source", report.Source,
		"findings", len(report.Findings),
	)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Audit enables the read-only audit step.
	Audit bool

	// AnalyzerOptions configure the auditors.
	AnalyzerOptions []func(*audit.AnalyzerOptions)
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineAudit enables or disables the audit step.
func WithPipelineAudit(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Audit = enabled
	}
}

// WithPipelineAnalyzerOptions adds options for the audit analyzer.
func WithPipelineAnalyzerOptions(opts ...func(*audit.AnalyzerOptions)) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.AnalyzerOptions = append(c.AnalyzerOptions, opts...)
	}
}

// DefaultPipeline creates a pipeline with every sanitization step in the
// required order, followed by the audit step unless it is disabled.
//
// The first parameter accepts pipeline options (WithLogger, WithTracer).
// The second accepts pipeline config options (WithPipelineAudit, etc).
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{Audit: true}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewLoadStep(),
		NewURLCredentialStep(),
		NewMimeContentStep(),
		NewExtractStep(WithExtractLogger(p.logger)),
		NewTrimStep(),
		NewRedactStep(),
	)

	if cfg.Audit {
		analyzerOpts := append([]func(*audit.AnalyzerOptions){
			func(o *audit.AnalyzerOptions) { o.Logger = p.logger },
		}, cfg.AnalyzerOptions...)
		p.AddStep(NewAuditStep(
			WithAuditLogger(p.logger),
			WithAuditAnalyzer(audit.NewAnalyzer(analyzerOpts...)),
		))
	}

	return p
}
