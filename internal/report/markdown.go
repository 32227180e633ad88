package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/harsanitizer/internal/model"
	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown, suitable for
// attaching to an issue next to the sanitized capture.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SanitizeReport) (int, error) {
	return w.WriteSummary(model.NewSummary(report))
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	if summary.Succeeded {
		w.writeRedactions(md, summary)
		w.writeSeverity(md, summary)
		w.writeFindings(md, summary)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("HAR Sanitization Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + s.Source + "`"},
			{"Run ID", "`" + s.RunID + "`"},
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration.String()},
			{"Status", w.getStatusText(s)},
		},
	})
	md.PlainText("")

	if !s.Succeeded {
		md.Cautionf("No sanitized document was written. %s", statusLine(s))
		md.PlainText("")
	}
}

// getStatusText returns the status text based on the run outcome.
func (w *MarkdownWriter) getStatusText(s *model.Summary) string {
	if s.Succeeded {
		return "✅ Sanitized"
	}
	return "❌ Failed at `" + s.FailedStage + "`"
}

// writeRedactions writes the replaced fields and a chart of occurrences
// per category.
func (w *MarkdownWriter) writeRedactions(md *markdown.Markdown, s *model.Summary) {
	md.H2("Redactions")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows: [][]string{
			{"URL passwords", strconv.Itoa(s.URLCredentials)},
			{"Replaced bodies", strconv.Itoa(s.MimeContentReplaced)},
			{"Redacted fields", strconv.Itoa(s.RedactedFields)},
			{"Redacted occurrences", strconv.Itoa(s.RedactedOccurrences)},
			{"Skipped records", strconv.Itoa(s.SkippedRecords)},
		},
	})
	md.PlainText("")

	if len(s.ContentTargets) > 0 {
		md.PlainTextf("Replaced content types: %s", "`"+strings.Join(s.ContentTargets, "`, `")+"`")
		md.PlainText("")
	}

	if len(s.Redactions) == 0 {
		md.PlainText("No keyed values were redacted.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(s.Redactions))
	for i, r := range s.Redactions {
		rows[i] = []string{
			string(r.Category),
			"`" + truncateString(r.Name, 50) + "`",
			strconv.Itoa(r.Values),
			strconv.Itoa(r.Occurrences),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Field", "Values", "Occurrences"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeCategoryChart(md, s)
}

// writeCategoryChart writes a mermaid pie chart of redacted occurrences
// per category.
func (w *MarkdownWriter) writeCategoryChart(md *markdown.Markdown, s *model.Summary) {
	counts := make(map[sanitizer.Category]int)
	var total int
	for _, r := range s.Redactions {
		counts[r.Category] += r.Occurrences
		total += r.Occurrences
	}
	if total == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Redacted Occurrences by Category"),
		piechart.WithShowData(true),
	)
	for _, c := range sanitizer.Categories() {
		if counts[c] > 0 {
			chart.LabelAndIntValue(string(c), uint64(counts[c]))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeSeverity writes the severity summary section.
func (w *MarkdownWriter) writeSeverity(md *markdown.Markdown, s *model.Summary) {
	md.H2("Audit Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(s.CriticalCount)},
			{"🟠 High", strconv.Itoa(s.HighCount)},
			{"🟡 Medium", strconv.Itoa(s.MediumCount)},
			{"🔵 Low", strconv.Itoa(s.LowCount)},
			{"⚪ Info", strconv.Itoa(s.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(s.TotalFindings()) + "**"},
		},
	})
	md.PlainText("")

	if s.HasFindings() {
		w.writePieChart(md, s)
	}
	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	for _, sev := range []struct {
		label string
		count int
	}{
		{"Critical", s.CriticalCount},
		{"High", s.HighCount},
		{"Medium", s.MediumCount},
		{"Low", s.LowCount},
		{"Info", s.InfoCount},
	} {
		if sev.count > 0 {
			chart.LabelAndIntValue(sev.label, uint64(sev.count))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *model.Summary) {
	switch {
	case s.CriticalCount > 0:
		md.Cautionf(
			"The sanitized capture still locates its author. %d critical finding(s) must be fixed before sharing.",
			s.CriticalCount,
		)
	case s.HighCount > 0:
		md.Warningf(
			"Secrets may remain in the sanitized capture. Review %d high severity finding(s) before sharing.",
			s.HighCount,
		)
	case s.MediumCount > 0:
		md.Importantf(
			"%d finding(s) may identify a device or a person.",
			s.MediumCount,
		)
	case s.TotalFindings() > 0:
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tip("No leftovers detected in the sanitized capture.")
	}
	md.PlainText("")
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, s *model.Summary) {
	md.H2("Findings")
	md.PlainText("")

	if !s.HasFindings() {
		md.PlainText("No audit findings.")
		md.PlainText("")
		return
	}

	headers := map[model.Severity]string{
		model.SeverityCritical: "### 🔴 Critical",
		model.SeverityHigh:     "### 🟠 High",
		model.SeverityMedium:   "### 🟡 Medium",
		model.SeverityLow:      "### 🔵 Low",
		model.SeverityInfo:     "### ⚪ Info",
	}

	for _, severity := range severityOrder {
		findings := s.GetFindingsBySeverity(severity)
		if len(findings) == 0 {
			continue
		}
		md.PlainText(headers[severity])
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		rows[i] = []string{
			f.Title,
			truncateString(orDash(f.Value), 50),
			truncateString(orDash(f.Location), 40),
			truncateString(orDash(f.Recommendation), 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Value", "Location", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range findings {
		if f.Description != "" {
			md.Details(f.Title, f.Description)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [harsanitizer](https://github.com/nao1215/harsanitizer)*")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
