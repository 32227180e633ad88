// Package audit inspects sanitized HAR documents for data the redaction
// stages left behind.
//
// # Purpose
//
// Redaction works on the serialized text of a document and only replaces
// values in the forms it knows about. This package looks at the result
// from other angles and reports what a reader of the shared capture could
// still learn from it.
//
// # Analyzer Categories
//
// ## Residual Data
//   - values of redacted fields still present in another encoding
//   - name/value records the extractor skipped
//
// ## Metadata Leaks
//   - EXIF data in base64 image bodies and inline data: URLs
//
// ## Context
//   - registrable domains contacted by the browser
//
// # Usage
//
//	analyzer := audit.NewAnalyzer()
//	findings, err := analyzer.Analyze(ctx, &audit.AnalysisData{Report: report})
//
// Analyzers never modify the document and never put captured values into
// a finding; they report field names, tag names and hosts.
package audit
