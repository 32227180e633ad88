package audit

import (
	"context"
	"log/slog"

	"github.com/nao1215/harsanitizer/internal/har"
	"github.com/nao1215/harsanitizer/internal/model"
)

// Analyzer category constants.
const (
	// CategoryResidual is used by analyzers that find data the redactor missed.
	CategoryResidual = "residual"
	// CategoryMetadata is used by analyzers that inspect embedded file metadata.
	CategoryMetadata = "metadata"
	// CategoryContext is used by analyzers that describe the capture itself.
	CategoryContext = "context"
)

// Analyzer coordinates the checks run over a sanitized document and
// aggregates their findings.
type Analyzer struct {
	// analyzers is the list of registered analyzers to run.
	analyzers []CheckAnalyzer

	// options configures analyzer behavior.
	options AnalyzerOptions
}

// AnalyzerOptions configures the analyzer behavior.
type AnalyzerOptions struct {
	// EnableEXIF enables EXIF extraction from image bodies.
	// Decoding many large images is slow.
	EnableEXIF bool

	// EnableHosts enables the third-party host summary.
	EnableHosts bool

	// Logger receives analyzer failures. slog.Default is used when nil.
	Logger *slog.Logger
}

// DefaultOptions returns sensible default analyzer options.
func DefaultOptions() AnalyzerOptions {
	return AnalyzerOptions{
		EnableEXIF:  true,
		EnableHosts: true,
	}
}

// CheckAnalyzer defines the interface for individual analyzers.
type CheckAnalyzer interface {
	// Name returns the analyzer's name for logging and reporting.
	Name() string

	// Category returns the analyzer's category.
	Category() string

	// Analyze inspects the data and returns its findings.
	Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error)
}

// AnalysisData contains everything an analyzer may inspect.
type AnalysisData struct {
	// Report is the run report. Its Document is the sanitized document.
	Report *model.SanitizeReport

	// text caches the compact serialization of Report.Document.
	text *string
}

// Document returns the sanitized document.
func (d *AnalysisData) Document() *har.Value {
	if d.Report == nil {
		return nil
	}
	return d.Report.Document
}

// Text returns the compact serialization of the sanitized document.
// It is computed once per AnalysisData.
func (d *AnalysisData) Text() string {
	if d.text == nil {
		s := string(har.Marshal(d.Document()))
		d.text = &s
	}
	return *d.text
}

// NewAnalyzer creates a new Analyzer with all built-in analyzers registered.
func NewAnalyzer(opts ...func(*AnalyzerOptions)) *Analyzer {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	a := &Analyzer{
		options:   options,
		analyzers: make([]CheckAnalyzer, 0),
	}

	a.Register(NewResidualAnalyzer())
	a.Register(NewSkippedRecordAnalyzer())
	if options.EnableEXIF {
		a.Register(NewEXIFAnalyzer())
	}
	if options.EnableHosts {
		a.Register(NewHostAnalyzer())
	}

	return a
}

// Register adds an analyzer to the list.
func (a *Analyzer) Register(analyzer CheckAnalyzer) {
	a.analyzers = append(a.analyzers, analyzer)
}

// Names returns the names of the registered analyzers in run order.
func (a *Analyzer) Names() []string {
	names := make([]string, len(a.analyzers))
	for i, analyzer := range a.analyzers {
		names[i] = analyzer.Name()
	}
	return names
}

// Analyze runs all registered analyzers and aggregates findings.
// A failing analyzer is logged and skipped.
func (a *Analyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	var allFindings []model.Finding

	for _, analyzer := range a.analyzers {
		select {
		case <-ctx.Done():
			return allFindings, ctx.Err()
		default:
		}

		findings, err := analyzer.Analyze(ctx, data)
		if err != nil {
			a.options.Logger.Warn("analyzer failed",
				"analyzer", analyzer.Name(),
				"error", err,
			)
			continue
		}

		allFindings = append(allFindings, findings...)
	}

	return deduplicateFindings(allFindings), nil
}

// deduplicateFindings removes findings with the same title, value and
// location, keeping the most severe instance.
func deduplicateFindings(findings []model.Finding) []model.Finding {
	seen := make(map[string]int) // key -> index in result
	result := make([]model.Finding, 0, len(findings))

	for _, f := range findings {
		key := f.Title + "|" + f.Value + "|" + f.Location
		if idx, exists := seen[key]; exists {
			if f.Severity > result[idx].Severity {
				result[idx] = f
			}
			continue
		}
		seen[key] = len(result)
		result = append(result, f)
	}

	return result
}
