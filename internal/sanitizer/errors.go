package sanitizer

import (
	"errors"
	"fmt"
	"log/slog"
)

// Stage names used in errors, logs and reports.
const (
	StageLoad           = "load"
	StageURLCredentials = "url_credentials"
	StageMimeContent    = "mime_content"
	StageExtract        = "extract"
	StageTrimWordlist   = "trim_wordlist"
	StageRedact         = "redact_keyed_values"
)

var (
	// ErrInvalidInput matches every *InvalidInputError.
	ErrInvalidInput = errors.New("invalid HAR input")

	// ErrSerialization matches every *SerializationError.
	ErrSerialization = errors.New("rewritten document is not valid JSON")
)

// InvalidInputError reports input that is not JSON or not a HAR document.
type InvalidInputError struct {
	// Stage is the stage that rejected the input.
	Stage string
	// Err is the underlying decode or validation error.
	Err error
}

// Error implements error.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Stage, ErrInvalidInput, e.Err)
}

// Unwrap returns ErrInvalidInput and the underlying error.
func (e *InvalidInputError) Unwrap() []error {
	return []error{ErrInvalidInput, e.Err}
}

// LogValue implements slog.LogValuer.
func (e *InvalidInputError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", "invalid_input"),
		slog.String("stage", e.Stage),
		slog.String("error", errString(e.Err)),
	)
}

// SerializationError reports a text rewrite that produced invalid JSON.
// Category and Field identify the substitution that broke the document
// when it can be determined.
type SerializationError struct {
	Stage    string
	Category Category
	Field    string
	Err      error
}

// Error implements error.
func (e *SerializationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %v (%s %q): %v", e.Stage, ErrSerialization, e.Category, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, ErrSerialization, e.Err)
}

// Unwrap returns ErrSerialization and the underlying error.
func (e *SerializationError) Unwrap() []error {
	return []error{ErrSerialization, e.Err}
}

// LogValue implements slog.LogValuer.
func (e *SerializationError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", "serialization"),
		slog.String("stage", e.Stage),
		slog.String("category", string(e.Category)),
		slog.String("field", e.Field),
		slog.String("error", errString(e.Err)),
	)
}

// Anomaly is a record skipped during extraction because of its shape,
// for example a header whose value is not a string.
type Anomaly struct {
	Category Category `json:"category"`
	Name     string   `json:"name,omitempty"`
	Reason   string   `json:"reason"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
