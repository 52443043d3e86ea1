/*
errors.go - Centralized error types for the engine

PURPOSE:
  All engine error values in one place. Aggregation itself never fails on
  data content (unknown codes contribute zero, missing case lookups fall
  back to placeholders); errors here cover missing entities and malformed
  requests.

USAGE:
  Callers branch with errors.Is, or use the helpers when only the HTTP
  class matters:

    if engine.IsNotFound(err) { ... 404 ... }
*/
package engine

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when the assignment id is unknown.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrEmployeeNotEligible is returned when the assignment exists but is
	// outside the verification filter.
	ErrEmployeeNotEligible = errors.New("employee not eligible for time verification")

	// ErrInvalidWeek is returned for malformed week bounds.
	ErrInvalidWeek = errors.New("invalid week window")
)

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrEmployeeNotEligible)
}

// IsClientError reports whether the error is due to invalid input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidWeek)
}
