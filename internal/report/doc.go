// Package report renders the outcome of sanitization runs.
//
// Three formats are available:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter and FullJSONWriter: structured JSON for other tools
//   - MarkdownWriter: GitHub-flavored Markdown with a mermaid chart
//
// Writers only ever see counts, field names and findings. The captured
// values and the sanitized document itself are never rendered here.
package report
