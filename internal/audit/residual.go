package audit

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/harsanitizer/internal/model"
	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// minResidualLength is the shortest value searched for. Shorter values
// occur by chance in almost any document.
const minResidualLength = 4

// ResidualAnalyzer looks for values of redacted fields that are still in
// the sanitized text. This happens when a value was serialized in another
// form than the one it was extracted in, for example percent-encoded in a
// URL or inside a body the content list did not cover.
type ResidualAnalyzer struct{}

// NewResidualAnalyzer creates a new ResidualAnalyzer.
func NewResidualAnalyzer() *ResidualAnalyzer {
	return &ResidualAnalyzer{}
}

// Name returns the analyzer name.
func (a *ResidualAnalyzer) Name() string {
	return "residual_value"
}

// Category returns the analyzer category.
func (a *ResidualAnalyzer) Category() string {
	return CategoryResidual
}

// Analyze reports every redacted field with a value still in the text.
func (a *ResidualAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	report := data.Report
	if report == nil || len(report.Redactions) == 0 {
		return nil, nil
	}

	// Markers contain the field name, which may itself look like a value.
	text := data.Text()
	for _, r := range report.Redactions {
		text = strings.ReplaceAll(text, sanitizer.Marker(r.Name), "")
	}

	findings := make([]model.Finding, 0)
	for _, r := range report.Redactions {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		for _, value := range report.Elements.Fields(r.Category).Values(r.Name) {
			form, ok := residualForm(text, value)
			if !ok {
				continue
			}
			findings = append(findings, model.NewFinding(
				model.FindingResidualValue,
				"Redacted Value Still Present",
				fmt.Sprintf("A value of the %s field %q is still in the sanitized document (%s form).", r.Category, r.Name, form),
				r.Name,
				string(r.Category),
			))
			break
		}
	}

	return findings, nil
}

// residualForm reports whether value occurs in text and in which form.
// value is in the escaped form produced by the extractor.
func residualForm(text, value string) (string, bool) {
	if len(value) < minResidualLength {
		return "", false
	}
	if strings.Contains(text, value) {
		return "verbatim", true
	}

	raw := strings.ReplaceAll(value, `\"`, `"`)
	for _, candidate := range []struct{ form, text string }{
		{"query-escaped", url.QueryEscape(raw)},
		{"path-escaped", url.PathEscape(raw)},
	} {
		if candidate.text != value && strings.Contains(text, candidate.text) {
			return candidate.form, true
		}
	}
	return "", false
}

// SkippedRecordAnalyzer reports the records the extractor skipped because
// of their shape. Their values were never candidates for redaction.
type SkippedRecordAnalyzer struct{}

// NewSkippedRecordAnalyzer creates a new SkippedRecordAnalyzer.
func NewSkippedRecordAnalyzer() *SkippedRecordAnalyzer {
	return &SkippedRecordAnalyzer{}
}

// Name returns the analyzer name.
func (a *SkippedRecordAnalyzer) Name() string {
	return "skipped_record"
}

// Category returns the analyzer category.
func (a *SkippedRecordAnalyzer) Category() string {
	return CategoryResidual
}

// Analyze turns extractor anomalies into findings.
func (a *SkippedRecordAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Finding, error) {
	if data.Report == nil {
		return nil, nil
	}

	findings := make([]model.Finding, 0, len(data.Report.Anomalies))
	for _, anomaly := range data.Report.Anomalies {
		findings = append(findings, model.NewFinding(
			model.FindingSkippedRecord,
			"Record Skipped During Extraction",
			fmt.Sprintf("A %s record was skipped: %s.", anomaly.Category, anomaly.Reason),
			anomaly.Name,
			string(anomaly.Category),
		))
	}
	return findings, nil
}

// Ensure the analyzers implement CheckAnalyzer.
var (
	_ CheckAnalyzer = (*ResidualAnalyzer)(nil)
	_ CheckAnalyzer = (*SkippedRecordAnalyzer)(nil)
)
