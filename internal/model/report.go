package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/harsanitizer/internal/har"
	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// SanitizeReport is the state and result of sanitizing one HAR document.
//
// Pipeline steps read the fields filled by earlier steps and add their own.
// The raw input, the working document and the extracted values are kept out
// of the JSON form so a serialized report never contains captured data.
type SanitizeReport struct {
	// === Run Information ===

	// RunID identifies the run in the history database.
	RunID string `json:"run_id"`

	// Source is the path the document was read from ("-" for stdin).
	Source string `json:"source"`

	// StartedAt is when the run was created.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended, successfully or not.
	FinishedAt time.Time `json:"finished_at,omitzero"`

	// Options are the redaction switches and additional list entries.
	Options sanitizer.Options `json:"options"`

	// === Working State ===

	// Input is the raw document text.
	Input []byte `json:"-"`

	// Document is the working document. It is nil after a failed run.
	Document *har.Value `json:"-"`

	// Elements holds the records extracted from the document.
	Elements *sanitizer.ExtractedElements `json:"-"`

	// WordList is the merged candidate word list, including names added
	// by the redact-all switches.
	WordList []string `json:"word_list,omitempty"`

	// ContentList is the merged content type list.
	ContentList []string `json:"content_list,omitempty"`

	// === Results ===

	// MimeTypes lists every content type found in the document.
	MimeTypes []string `json:"mime_types,omitempty"`

	// ContentTargets lists the content types whose bodies were replaced.
	ContentTargets []string `json:"content_targets,omitempty"`

	// FieldNames lists the extracted names per category.
	FieldNames map[sanitizer.Category][]string `json:"field_names,omitempty"`

	// TrimmedWords lists the candidate words present in the document.
	TrimmedWords []string `json:"trimmed_words,omitempty"`

	// URLCredentials is the number of passwords removed from URLs.
	URLCredentials int `json:"url_credentials"`

	// MimeContentReplaced is the number of bodies replaced by a marker.
	MimeContentReplaced int `json:"mime_content_replaced"`

	// Redactions summarizes the keyed value substitutions.
	Redactions []sanitizer.Redaction `json:"redactions,omitempty"`

	// Anomalies lists records skipped by the extractor.
	Anomalies []sanitizer.Anomaly `json:"anomalies,omitempty"`

	// Findings contains the audit results for the sanitized document.
	Findings []Finding `json:"findings,omitempty"`

	// === Run State ===

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// FailedStage is the stage that stopped the run.
	FailedStage string `json:"failed_stage,omitempty"`

	// Error contains the error that stopped the run.
	Error error `json:"-"`

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional

	// InputDigest is the SHA3-256 digest of Input.
	InputDigest string `json:"input_digest,omitempty"`

	// OutputDigest is the SHA3-256 digest of the written document.
	OutputDigest string `json:"output_digest,omitempty"`
}

// NewSanitizeReport creates a report for one input document.
func NewSanitizeReport(source string, input []byte, opts sanitizer.Options) *SanitizeReport {
	return &SanitizeReport{
		RunID:       uuid.NewString(),
		Source:      source,
		StartedAt:   time.Now(),
		Options:     opts,
		Input:       input,
		InputDigest: Digest(input),
		FieldNames:  make(map[sanitizer.Category][]string),
	}
}

// Fail records the error that stopped the run at stage and discards the
// working document.
func (r *SanitizeReport) Fail(stage string, err error) {
	r.FailedStage = stage
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	r.Document = nil
	r.Elements = nil
}

// Failed reports whether the run stopped on an error.
func (r *SanitizeReport) Failed() bool {
	return r.Error != nil || r.ErrorMessage != ""
}

// Finish marks the run as ended and records the digest of the written
// document. output may be nil when the document was not written.
func (r *SanitizeReport) Finish(output []byte) {
	r.FinishedAt = time.Now()
	r.OutputDigest = Digest(output)
}

// Duration returns the wall-clock time of the run, or zero while it runs.
func (r *SanitizeReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// AddFinding appends a finding unless one with the same type, value and
// location is already present.
func (r *SanitizeReport) AddFinding(finding Finding) {
	for _, f := range r.Findings {
		if f.Type == finding.Type && f.Value == finding.Value && f.Location == finding.Location {
			return
		}
	}
	r.Findings = append(r.Findings, finding)
}

// RedactedOccurrences returns the total number of replaced spans.
func (r *SanitizeReport) RedactedOccurrences() int {
	n := 0
	for _, red := range r.Redactions {
		n += red.Occurrences
	}
	return n
}
