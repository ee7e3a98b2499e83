// Package pipeerror defines the typed errors raised by the statement
// processing pipeline. Callers distinguish fatal conditions (structural
// analysis, schema violations, empty input) from recoverable ones with
// errors.As.
package pipeerror

import "fmt"

// StructuralAnalysisError is raised when Pass 1 cannot derive a usable
// date/amount structure. There is no fallback for this pass: without it the
// rest of the pipeline has nothing to work with.
type StructuralAnalysisError struct {
	Reason string
	Err    error
}

func (e *StructuralAnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("structural analysis failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("structural analysis failed: %s", e.Reason)
}

func (e *StructuralAnalysisError) Unwrap() error {
	return e.Err
}

// ResponseFormatError represents an LLM response that could not be decoded or
// validated against the expected schema for a pass.
type ResponseFormatError struct {
	Pass   string
	Reason string
	Err    error
}

func (e *ResponseFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid model response: %s: %v", e.Pass, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: invalid model response: %s", e.Pass, e.Reason)
}

func (e *ResponseFormatError) Unwrap() error {
	return e.Err
}

// SchemaViolationError is raised when a processor's output cannot be coerced
// into the canonical five-column transaction shape. Column names the column
// that is missing or failed coercion.
type SchemaViolationError struct {
	Column string
	Reason string
	Err    error
}

func (e *SchemaViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema violation on column '%s': %s: %v", e.Column, e.Reason, e.Err)
	}
	return fmt.Sprintf("schema violation on column '%s': %s", e.Column, e.Reason)
}

func (e *SchemaViolationError) Unwrap() error {
	return e.Err
}

// EmptyInputError is raised when a processor is handed a table with no rows.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "input table is empty"
}

// MappingError represents a failure to map raw columns onto the standard
// shape, such as no columns remaining for the description.
type MappingError struct {
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("column mapping failed: %s", e.Reason)
}
