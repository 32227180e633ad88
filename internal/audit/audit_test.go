package audit

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/harsanitizer/internal/har"
	"github.com/nao1215/harsanitizer/internal/model"
	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// sanitizedReport runs extraction and redaction for words and returns a
// report as the pipeline would hand it to the auditors.
func sanitizedReport(t *testing.T, input string, words []string) *model.SanitizeReport {
	t.Helper()

	doc, err := har.Parse([]byte(input))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	elems := sanitizer.ExtractAll(doc)
	out, redactions, err := sanitizer.RedactKeyedValues(doc, words, elems)
	if err != nil {
		t.Fatalf("redaction failed: %v", err)
	}

	report := model.NewSanitizeReport("test.har", []byte(input), sanitizer.Options{})
	report.Document = out
	report.Elements = elems
	report.Redactions = redactions
	report.Anomalies = elems.Anomalies
	return report
}

// exifImage returns a little-endian TIFF block whose IFD0 holds a single
// Make tag. It is enough for EXIF extraction to find camera information.
func exifImage() []byte {
	value := []byte("Canon\x00")
	buf := make([]byte, 0, 32)
	buf = append(buf, 'I', 'I', 0x2a, 0x00)
	buf = binary.LittleEndian.AppendUint32(buf, 8)      // IFD0 offset
	buf = binary.LittleEndian.AppendUint16(buf, 1)      // entry count
	buf = binary.LittleEndian.AppendUint16(buf, 0x010f) // Make
	buf = binary.LittleEndian.AppendUint16(buf, 2)      // ASCII
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(value)))
	buf = binary.LittleEndian.AppendUint32(buf, 26) // value offset
	buf = binary.LittleEndian.AppendUint32(buf, 0)  // next IFD
	return append(buf, value...)
}

// TestAnalyzer tests the coordinator.
func TestAnalyzer(t *testing.T) {
	t.Parallel()

	t.Run("registers built-in analyzers", func(t *testing.T) {
		t.Parallel()

		got := NewAnalyzer().Names()
		want := []string{"residual_value", "skipped_record", "exif", "third_party_hosts"}
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("options disable analyzers", func(t *testing.T) {
		t.Parallel()

		a := NewAnalyzer(func(o *AnalyzerOptions) {
			o.EnableEXIF = false
			o.EnableHosts = false
		})
		if got := a.Names(); len(got) != 2 {
			t.Errorf("expected 2 analyzers, got %v", got)
		}
	})

	t.Run("deduplicates findings", func(t *testing.T) {
		t.Parallel()

		findings := []model.Finding{
			{Title: "Test", Value: "value1", Severity: model.SeverityLow},
			{Title: "Test", Value: "value1", Severity: model.SeverityHigh},
			{Title: "Test", Value: "value2", Severity: model.SeverityMedium},
		}

		deduped := deduplicateFindings(findings)
		if len(deduped) != 2 {
			t.Fatalf("expected 2 findings after dedup, got %d", len(deduped))
		}
		if deduped[0].Severity != model.SeverityHigh {
			t.Error("expected to keep higher severity finding")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := sanitizedReport(t, `{"log":{"entries":[{"request":{"url":"https://a.example"}}]}}`, nil)
		if _, err := NewAnalyzer().Analyze(ctx, &AnalysisData{Report: report}); err == nil {
			t.Error("expected context error")
		}
	})

	t.Run("does not modify the document", func(t *testing.T) {
		t.Parallel()

		report := sanitizedReport(t, `{"log":{"entries":[{"request":{"url":"https://a.example/","cookies":[{"name":"sid","value":"abcdef"}]}}]}}`, []string{"sid"})
		before := string(har.Marshal(report.Document))

		if _, err := NewAnalyzer().Analyze(context.Background(), &AnalysisData{Report: report}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if after := string(har.Marshal(report.Document)); after != before {
			t.Error("audit changed the document")
		}
	})
}

// TestResidualAnalyzer tests detection of leftover values.
func TestResidualAnalyzer(t *testing.T) {
	t.Parallel()

	t.Run("finds a query-escaped leftover", func(t *testing.T) {
		t.Parallel()

		input := `{"log":{"entries":[{"request":{"url":"https://example.com/?s=ab+cd%2Fef","cookies":[{"name":"sid","value":"ab cd/ef"}]}}]}}`
		report := sanitizedReport(t, input, []string{"sid"})

		findings, err := NewResidualAnalyzer().Analyze(context.Background(), &AnalysisData{Report: report})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(findings))
		}
		f := findings[0]
		if f.Type != model.FindingResidualValue || f.Value != "sid" || f.Location != "cookies" {
			t.Errorf("unexpected finding: %+v", f)
		}
		if !strings.Contains(f.Description, "query-escaped") {
			t.Errorf("description should name the form: %q", f.Description)
		}
		if strings.Contains(f.Description, "ab cd") {
			t.Error("finding must not contain the value")
		}
	})

	t.Run("clean output has no findings", func(t *testing.T) {
		t.Parallel()

		input := `{"log":{"entries":[{"request":{"cookies":[{"name":"session","value":"session-value"}]}}]}}`
		report := sanitizedReport(t, input, []string{"session"})

		findings, err := NewResidualAnalyzer().Analyze(context.Background(), &AnalysisData{Report: report})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %+v", findings)
		}
	})

	t.Run("short values are ignored", func(t *testing.T) {
		t.Parallel()

		if _, ok := residualForm("abc abc", "abc"); ok {
			t.Error("short value should not be reported")
		}
		if form, ok := residualForm("x=abcd", "abcd"); !ok || form != "verbatim" {
			t.Errorf("got %q %v", form, ok)
		}
	})
}

// TestSkippedRecordAnalyzer tests reporting of extractor anomalies.
func TestSkippedRecordAnalyzer(t *testing.T) {
	t.Parallel()

	input := `{"log":{"entries":[{"request":{"headers":[{"name":"X-Count","value":3}]}}]}}`
	report := sanitizedReport(t, input, nil)

	findings, err := NewSkippedRecordAnalyzer().Analyze(context.Background(), &AnalysisData{Report: report})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Value != "X-Count" || findings[0].Severity != model.SeverityLow {
		t.Errorf("unexpected finding: %+v", findings[0])
	}
}

// TestEXIFAnalyzer tests metadata extraction from embedded images.
func TestEXIFAnalyzer(t *testing.T) {
	t.Parallel()

	encoded := base64.StdEncoding.EncodeToString(exifImage())

	t.Run("base64 image body", func(t *testing.T) {
		t.Parallel()

		input := `{"log":{"entries":[{"request":{"url":"https://example.com/a.jpg"},"response":{"content":{"mimeType":"image/jpeg","encoding":"base64","text":"` + encoded + `"}}}]}}`
		report := sanitizedReport(t, input, nil)

		findings, err := NewEXIFAnalyzer().Analyze(context.Background(), &AnalysisData{Report: report})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.ContainsFunc(findings, func(f model.Finding) bool {
			return f.Type == model.FindingExifCamera && f.Value == "Make" && f.Location == "https://example.com/a.jpg"
		}) {
			t.Errorf("expected camera finding, got %+v", findings)
		}
	})

	t.Run("data url in html", func(t *testing.T) {
		t.Parallel()

		input := `{"log":{"entries":[{"request":{"url":"https://example.com/"},"response":{"content":{"mimeType":"text/html; charset=utf-8","text":"<p><img alt=\"x\" src=\"data:image/jpeg;base64,` + encoded + `\"></p>"}}}]}}`
		report := sanitizedReport(t, input, nil)

		findings, err := NewEXIFAnalyzer().Analyze(context.Background(), &AnalysisData{Report: report})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) == 0 {
			t.Error("expected findings from inline image")
		}
		for _, f := range findings {
			if strings.Contains(f.Value, "Canon") || strings.Contains(f.Description, "Canon") {
				t.Error("tag values must not be reported")
			}
		}
	})

	t.Run("non-image bodies are ignored", func(t *testing.T) {
		t.Parallel()

		input := `{"log":{"entries":[{"response":{"content":{"mimeType":"application/json","text":"{}"}}},{"response":{"content":{"mimeType":"image/png","encoding":"base64","text":"not base64!"}}}]}}`
		report := sanitizedReport(t, input, nil)

		findings, err := NewEXIFAnalyzer().Analyze(context.Background(), &AnalysisData{Report: report})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %+v", findings)
		}
	})

	t.Run("extracts data images from html", func(t *testing.T) {
		t.Parallel()

		got := extractDataImages(`<img src="data:image/png;base64,AAAA"><img src="/logo.png"><IMG SRC="data:image/gif;base64,BBBB"/>`)
		want := []string{"data:image/png;base64,AAAA", "data:image/gif;base64,BBBB"}
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

// TestHostAnalyzer tests the third-party host summary.
func TestHostAnalyzer(t *testing.T) {
	t.Parallel()

	input := `{"log":{"entries":[
		{"request":{"url":"https://alice:[password redacted]@www.example.com/login"}},
		{"request":{"url":"https://cdn.example.net/app.js"}},
		{"request":{"url":"https://api.example.com/v1"}},
		{"request":{"url":"https://www.google-analytics.com/collect"}},
		{"request":{"url":"https://static.example.net/style.css"}},
		{"request":{"url":"http://127.0.0.1:8080/health"}},
		{"request":{}}]}}`
	report := sanitizedReport(t, input, nil)

	findings, err := NewHostAnalyzer().Analyze(context.Background(), &AnalysisData{Report: report})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sites []string
	for _, f := range findings {
		sites = append(sites, f.Value)
	}
	want := []string{"example.net", "google-analytics.com", "127.0.0.1"}
	if !slices.Equal(sites, want) {
		t.Fatalf("got %v, want %v", sites, want)
	}
	if !strings.Contains(findings[0].Description, "2 request(s)") {
		t.Errorf("unexpected description: %q", findings[0].Description)
	}
	if findings[0].Location != "https://cdn.example.net/app.js" {
		t.Errorf("unexpected location: %q", findings[0].Location)
	}
}

// TestRegistrableDomain tests host normalization.
func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://www.Example.co.uk/x":     "example.co.uk",
		"https://u:p@api.example.com":     "example.com",
		"http://localhost:3000/":          "localhost",
		"http://[::1]:8080/":              "::1",
		"not a url":                       "",
		"https://a:[x redacted]@b.io/?q=": "b.io",
	}
	for input, want := range tests {
		if got := registrableDomain(input); got != want {
			t.Errorf("registrableDomain(%q) = %q, want %q", input, got, want)
		}
	}
}
