// Package pipeline runs the sanitization stages over HAR documents.
//
// Each stage is implemented as a Step that receives the run report and
// advances it: loading, URL credential removal, body replacement, field
// extraction, word list trimming, keyed value redaction and the final
// read-only audit. Steps run in order and the first failure ends the run
// and discards the working document, so a partially redacted document is
// never handed to the caller.
//
// Every step is traced as an OpenTelemetry span below a span for the whole
// run. BatchProcessor runs one pipeline per document with bounded
// concurrency using errgroup.
package pipeline
