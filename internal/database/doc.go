// Package database stores the history of sanitization runs in SQLite.
//
// Each run is one row of the runs table: identifiers, timestamps, the
// outcome, the SHA3-256 digests of the input and the written output, and
// the run summary as JSON. Captured values and documents are never stored.
//
// The driver is modernc.org/sqlite, a CGO-free implementation, so the
// history works wherever the binary runs.
package database
