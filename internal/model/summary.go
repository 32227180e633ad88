package model

import (
	"time"

	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// Summary is a condensed, human-readable view of a run.
// It carries counts and names, never captured values.
type Summary struct {
	// RunID identifies the run.
	RunID string `json:"run_id"`

	// Source is the path the document was read from.
	Source string `json:"source"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// Succeeded is true when a sanitized document was produced.
	Succeeded bool `json:"succeeded"`

	// FailedStage names the stage that stopped a failed run.
	FailedStage string `json:"failed_stage,omitempty"`

	// Error contains the error message of a failed run.
	Error string `json:"error,omitempty"`

	// === Redaction Summary ===

	// URLCredentials is the number of passwords removed from URLs.
	URLCredentials int `json:"url_credentials"`

	// MimeContentReplaced is the number of replaced bodies.
	MimeContentReplaced int `json:"mime_content_replaced"`

	// RedactedFields is the number of field names whose values were replaced.
	RedactedFields int `json:"redacted_fields"`

	// RedactedOccurrences is the number of replaced spans.
	RedactedOccurrences int `json:"redacted_occurrences"`

	// Redactions lists the replaced fields.
	Redactions []sanitizer.Redaction `json:"redactions,omitempty"`

	// ContentTargets lists the content types whose bodies were replaced.
	ContentTargets []string `json:"content_targets,omitempty"`

	// SkippedRecords is the number of records the extractor skipped.
	SkippedRecords int `json:"skipped_records"`

	// === Severity Summary ===

	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// Findings contains all audit findings.
	Findings []Finding `json:"findings,omitempty"`
}

// Finding represents a single audit observation.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to findingInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains why the finding matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is a field name, a host or a metadata tag. Captured secrets
	// are never stored here.
	Value string `json:"value,omitempty"`

	// Location is where the finding was made, usually an entry URL.
	Location string `json:"location,omitempty"`
}

// NewFinding builds a finding with the severity, impact and recommendation
// registered for findingType.
func NewFinding(findingType, title, description, value, location string) Finding {
	info := GetFindingInfo(findingType)
	return Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Description:    description,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
		Location:       location,
	}
}

// NewSummary creates a Summary from a SanitizeReport.
func NewSummary(report *SanitizeReport) *Summary {
	s := &Summary{
		RunID:               report.RunID,
		Source:              report.Source,
		StartedAt:           report.StartedAt,
		Duration:            report.Duration(),
		Succeeded:           !report.Failed(),
		FailedStage:         report.FailedStage,
		Error:               report.ErrorMessage,
		URLCredentials:      report.URLCredentials,
		MimeContentReplaced: report.MimeContentReplaced,
		RedactedFields:      len(report.Redactions),
		RedactedOccurrences: report.RedactedOccurrences(),
		Redactions:          report.Redactions,
		ContentTargets:      report.ContentTargets,
		SkippedRecords:      len(report.Anomalies),
		Findings:            report.Findings,
	}
	s.countBySeverity()
	return s
}

// countBySeverity counts findings by severity level.
func (s *Summary) countBySeverity() {
	for _, f := range s.Findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalFindings returns the total number of findings.
func (s *Summary) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *Summary) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *Summary) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}
