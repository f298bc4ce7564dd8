package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline errors for the end-of-run summary.
type ErrorKind string

const (
	KindStructuralError  ErrorKind = "structural_error"  // fatal: malformed top-level input shape
	KindSchemaError      ErrorKind = "schema_error"      // per-record: excluded + counted
	KindCoverageWarning  ErrorKind = "coverage_warning"  // non-fatal, informational
	KindFetchFailure     ErrorKind = "fetch_failure"     // per-entity, isolated, tagged
	KindScoreRangeError  ErrorKind = "score_range_error" // per-record: flagged, retained
	KindExtractionFailed ErrorKind = "extraction_failed" // per-record: marked, raw payload kept
)

// StructuralError means the top-level input shape is violated. It halts the
// run with a non-zero exit; nothing downstream may proceed.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error: %s", e.Msg)
}

// NewStructuralError builds a fatal shape violation.
func NewStructuralError(format string, args ...any) *StructuralError {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

// IsStructural reports whether the error chain contains a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// SchemaError means a single record is missing a required identification
// field. The record is excluded from output and counted, never dropped
// silently.
type SchemaError struct {
	UniqueID string // may be empty when the ID itself is missing
	Field    string
}

func (e *SchemaError) Error() string {
	if e.UniqueID == "" {
		return fmt.Sprintf("schema error: missing %s", e.Field)
	}
	return fmt.Sprintf("schema error: entity %s missing %s", e.UniqueID, e.Field)
}

// IsSchemaError reports whether the error chain contains a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// ScoreRangeError means a positioning score fell outside [0,1]. The record is
// flagged and retained rather than clamped, so prompt regressions surface.
type ScoreRangeError struct {
	UniqueID string
	Score    string
	Value    float64
}

func (e *ScoreRangeError) Error() string {
	return fmt.Sprintf("score range error: entity %s score %s = %g outside [0,1]", e.UniqueID, e.Score, e.Value)
}
