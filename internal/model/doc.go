// Package model defines the data structures shared by the pipeline, the
// auditors, the report writers and the history database.
//
// This package contains the following main types:
//   - SanitizeReport: the state and result of one sanitization run
//   - Finding: a single observation made by an auditor
//   - Summary: a condensed, human-readable view of a run
//
// The report types are serializable to JSON for report output and database
// storage. Document contents never appear in their JSON form.
package model
