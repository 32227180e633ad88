// Package observability sets up OpenTelemetry tracing for harsanitizer.
//
// Tracing is off by default. When it is enabled, spans of every
// sanitization run and of each of its steps are exported over OTLP/gRPC
// to a collector. Span attributes carry the source, stage names and
// counts, never the values that were redacted.
package observability
