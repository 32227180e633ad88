package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/harsanitizer/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// The output is plain ASCII so it can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to report are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(report *model.SanitizeReport) (int, error) {
	return w.WriteSummary(model.NewSummary(report))
}

// WriteSummary outputs the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeRedactions(&sb, summary)
	if summary.Succeeded || w.showEmpty {
		w.writeSeverity(&sb, summary)
		w.writeFindings(&sb, summary)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// writeSection writes a section title framed by rules.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     HAR SANITIZATION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Source:    %s\n", s.Source)
	if w.verbose {
		fmt.Fprintf(sb, "Run ID:    %s\n", s.RunID)
	}
	fmt.Fprintf(sb, "Started:   %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:  %s\n", s.Duration)
	fmt.Fprintf(sb, "Status:    %s\n", statusLine(s))
	sb.WriteString("\n")
}

// writeRedactions writes what the run replaced.
func (w *SimpleWriter) writeRedactions(sb *strings.Builder, s *model.Summary) {
	if !s.Succeeded && !w.showEmpty {
		return
	}

	writeSection(sb, "REDACTIONS")

	fmt.Fprintf(sb, "  URL passwords:     %d\n", s.URLCredentials)
	fmt.Fprintf(sb, "  Replaced bodies:   %d\n", s.MimeContentReplaced)
	fmt.Fprintf(sb, "  Redacted fields:   %d (%d occurrences)\n", s.RedactedFields, s.RedactedOccurrences)
	fmt.Fprintf(sb, "  Skipped records:   %d\n", s.SkippedRecords)
	sb.WriteString("\n")

	if len(s.ContentTargets) > 0 {
		fmt.Fprintf(sb, "  Content types: %s\n\n", strings.Join(s.ContentTargets, ", "))
	}

	for _, r := range s.Redactions {
		fmt.Fprintf(sb, "  [%s] %s: %d value(s), %d occurrence(s)\n", r.Category, r.Name, r.Values, r.Occurrences)
	}
	if len(s.Redactions) > 0 {
		sb.WriteString("\n")
	}
}

// writeSeverity writes the severity summary section.
func (w *SimpleWriter) writeSeverity(sb *strings.Builder, s *model.Summary) {
	if !s.HasFindings() && !w.showEmpty {
		return
	}

	writeSection(sb, "AUDIT SUMMARY")

	fmt.Fprintf(sb, "  CRITICAL: %d\n", s.CriticalCount)
	fmt.Fprintf(sb, "  HIGH:     %d\n", s.HighCount)
	fmt.Fprintf(sb, "  MEDIUM:   %d\n", s.MediumCount)
	fmt.Fprintf(sb, "  LOW:      %d\n", s.LowCount)
	fmt.Fprintf(sb, "  INFO:     %d\n", s.InfoCount)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d findings\n\n", s.TotalFindings())
}

// writeFindings writes all findings grouped by severity.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, s *model.Summary) {
	if !s.HasFindings() && !w.showEmpty {
		return
	}

	writeSection(sb, "FINDINGS")

	for _, severity := range severityOrder {
		findings := s.GetFindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}
		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *SimpleWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	fmt.Fprintf(sb, "[%s] %s\n", w.getSeverityIndicator(severity), severity.String())

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		fmt.Fprintf(sb, "  * %s\n", finding.Title)
		if finding.Value != "" {
			fmt.Fprintf(sb, "    Value: %s\n", finding.Value)
		}
		if finding.Location != "" {
			fmt.Fprintf(sb, "    Location: %s\n", finding.Location)
		}
		if w.verbose && finding.Description != "" {
			fmt.Fprintf(sb, "    Description: %s\n", finding.Description)
		}
		if w.verbose && finding.Recommendation != "" {
			fmt.Fprintf(sb, "    Recommendation: %s\n", finding.Recommendation)
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by harsanitizer\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
