package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrNoInput is returned when no HAR file is given.
	ErrNoInput = errors.New("no input specified: provide at least one HAR file or - for stdin")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one report format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrOutputWithMultipleInputs is returned when --output names a single
	// destination for several inputs.
	ErrOutputWithMultipleInputs = errors.New("--output accepts a single input: use --output-dir for several files")

	// ErrConflictingOutputs is returned when both --output and --output-dir are set.
	ErrConflictingOutputs = errors.New("conflicting outputs: --output and --output-dir cannot be used together")

	// ErrStdinWithMultipleInputs is returned when - is mixed with other inputs.
	ErrStdinWithMultipleInputs = errors.New("- (stdin) cannot be combined with other inputs")

	// ErrDuplicateOutputPath is returned when two inputs map to the same
	// output file, for example same-named captures with --output-dir.
	ErrDuplicateOutputPath = errors.New("duplicate output path: rename an input or sanitize it separately")

	// ErrInvalidSamplingRatio is returned when the trace sampling ratio is
	// outside [0, 1].
	ErrInvalidSamplingRatio = errors.New("invalid tracing sampling ratio: must be between 0 and 1")
)
