/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  The engine reads four kinds of externally-owned data: assignments,
  the time-code reference table, the two time-record sources, and case
  display identities. Each concern is its own small interface so stores
  can be composed or faked independently.

IMPLEMENTATIONS:
  - store/sqlite: production store
  - store/memory: in-memory store for tests and demos
*/
package engine

import (
	"context"
	"time"
)

// EmployeeStore provides assignment lookup and the eligibility listing.
type EmployeeStore interface {
	// Employee returns the assignment row, or ErrEmployeeNotFound.
	Employee(ctx context.Context, id int64) (Employee, error)

	// Eligible returns all assignments passing the verification filter,
	// ordered by id.
	Eligible(ctx context.Context) ([]Employee, error)

	// EligibleByPrefix narrows Eligible to ids whose decimal form starts
	// with the given prefix.
	EligibleByPrefix(ctx context.Context, prefix string) ([]Employee, error)
}

// CodeStore provides the time-code reference table.
type CodeStore interface {
	// TimeCodes returns every code of type "T", active or not. The
	// classifier applies the active filter itself.
	TimeCodes(ctx context.Context) ([]TimeCode, error)
}

// RecordStore fetches one employee's time records for an inclusive
// date range. Both methods must read from a consistent snapshot.
type RecordStore interface {
	NonCaseEntries(ctx context.Context, employeeID int64, from, to time.Time) ([]NonCaseEntry, error)
	CaseEntries(ctx context.Context, employeeID int64, from, to time.Time) ([]CaseEntry, error)
}

// CaseStore batch-resolves case keys to display identities. Missing keys
// are simply absent from the result map.
type CaseStore interface {
	CaseInfo(ctx context.Context, caseIDs []int64) (map[int64]CaseInfo, error)
}

// MonthLabeler labels a date with its containing reporting month token.
// ok is false when no month covers the date. Implemented by the fiscal
// calendar store; the engine only uses it to label timesheets.
type MonthLabeler interface {
	MonthLabel(ctx context.Context, date time.Time) (string, bool, error)
}
