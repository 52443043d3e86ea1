package calendar

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrYearExists is returned when creating a fiscal year that already
	// has month rows. Exactly one of two concurrent creates gets this.
	ErrYearExists = errors.New("fiscal year already exists")

	// ErrYearNotFound is returned on read/update/delete of an absent year.
	ErrYearNotFound = errors.New("fiscal year not found")

	// ErrMonthNotFound is returned for an unknown month token.
	ErrMonthNotFound = errors.New("fiscal month not found")

	// ErrYearOutOfRange is returned for years outside the accepted range.
	ErrYearOutOfRange = errors.New("fiscal year out of range")

	// ErrYearInUse blocks deletion while time records exist in the year.
	ErrYearInUse = errors.New("fiscal year has dependent time records")

	// ErrBadToken is returned for a malformed "MMMYYYY" month token.
	ErrBadToken = errors.New("malformed month token")
)

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrYearNotFound) || errors.Is(err, ErrMonthNotFound)
}

// IsConflict reports whether the error is a duplicate or dependency
// conflict rather than bad input.
func IsConflict(err error) bool {
	return errors.Is(err, ErrYearExists) || errors.Is(err, ErrYearInUse)
}

// IsClientError reports whether the error is due to invalid input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrYearOutOfRange) || errors.Is(err, ErrBadToken)
}
