/*
Package engine is the time-classification and aggregation core.

PURPOSE:
  Turns raw per-day, per-employee time records into the canonical weekly
  metrics used for payroll verification. Two record sources feed every
  computation: case-linked time (hours logged against a case) and non-case
  time (hours logged against a time code). The engine classifies codes,
  sums hours per category, counts report days without double-counting a
  date evidenced by both sources, and builds the drill-down day tables.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeCode:     Reference row carrying the classification letter
  - Employee:     Assignment record with tour type and eligibility
  - NonCaseEntry: One day's hours against a time code
  - CaseEntry:    One day's hours against a case
  - CaseInfo:     Display identity (TIN, taxpayer name) for a case key

DESIGN PRINCIPLES:
  1. Purity: Aggregators are pure functions of their inputs
  2. Precision: shopspring/decimal for all hour arithmetic
  3. Read-only: Reference data and time records are externally owned

SEE ALSO:
  - classify.go: Category letter sets and the classifier
  - summary.go:  Weekly per-employee metrics
  - breakdown.go: Per-case and per-code day tables
*/
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIME CODE - Reference row (externally owned, read-only)
// =============================================================================

// TimeCode is one row of the time-code reference table.
// Keyed by Code within Type "T".
type TimeCode struct {
	Code   string
	Type   string // "T" = time code
	Name   string // display description, up to 35 chars
	Active string // "Y" or "C" = active, anything else excluded
	Letter string // classification letter driving category membership
}

// IsActive reports whether the code participates in aggregation.
func (c TimeCode) IsActive() bool {
	return c.Active == "Y" || c.Active == "C"
}

// DisplayName returns the description truncated to the 12-character
// column width of the drill-down table.
func (c TimeCode) DisplayName() string {
	if len(c.Name) > 12 {
		return c.Name[:12]
	}
	return c.Name
}

// Sentinel codes with inherited special handling. Their business meaning is
// undocumented upstream; the mechanical behavior is preserved as-is.
const (
	// CodeHoliday ("750") is excluded from report-day counting.
	CodeHoliday = "750"
	// CodeNonWorkDay ("760") is excluded from report-day counting and is
	// rendered as a 0/1 presence indicator in the non-case breakdown.
	CodeNonWorkDay = "760"
)

// =============================================================================
// EMPLOYEE - Assignment record (externally owned, read-only)
// =============================================================================

// Tour of duty types.
const (
	TourRegular  = 1 // REG
	TourFiveFour = 2 // 5/4/9
	TourFourTen  = 3 // 4/10
	TourPartTime = 4 // PT
	TourMaxi     = 5 // MAXI
)

// Employee is an assignment row. Tour is nil when no tour type is recorded.
type Employee struct {
	ID      int64
	Name    string
	Type    string // employee type: C, M, P, R, T, H, ...
	PosType string // position type; B and V are excluded
	Active  string // "A" or "Y" = active
	Tour    *int
}

// TourLabel returns the display label for the tour of duty type.
func (e Employee) TourLabel() string {
	if e.Tour == nil {
		return "-"
	}
	switch *e.Tour {
	case TourRegular:
		return "REG"
	case TourFiveFour:
		return "5/4/9"
	case TourFourTen:
		return "4/10"
	case TourPartTime:
		return "PT"
	case TourMaxi:
		return "MAXI"
	default:
		return "-"
	}
}

// Eligible reports whether the assignment participates in weekly
// verification: active, an allowed type/position combination, and an
// assignment number inside the reserved range.
func (e Employee) Eligible() bool {
	if e.Active != "A" && e.Active != "Y" {
		return false
	}
	if e.ID < 21000000 || e.ID > 36999999 {
		return false
	}
	switch e.Type {
	case "M", "R", "C", "P", "T":
		return e.PosType != "B" && e.PosType != "V"
	case "H":
		return true
	default:
		return false
	}
}

// =============================================================================
// TIME RECORDS - The two input sources
// =============================================================================

// NonCaseEntry is one day of hours logged against a time code.
type NonCaseEntry struct {
	Date       time.Time
	EmployeeID int64
	Code       string
	Hours      decimal.Decimal
}

// CaseEntry is one day of hours logged against a case key.
// The engine treats CaseID as opaque; display identity comes from CaseInfo.
type CaseEntry struct {
	Date       time.Time
	EmployeeID int64
	CaseID     int64
	Hours      decimal.Decimal
}

// CaseInfo resolves a case key to its display identity.
type CaseInfo struct {
	CaseID  int64
	TIN     int64
	TINType int // 2 = EIN format, anything else SSN format
	Name    string
	Control string // short control name, fallback when Name is blank
}

// FormattedTIN renders the 9-digit TIN as XX-XXXXXXX for EIN-type cases
// and XXX-XX-XXXX otherwise.
func (ci CaseInfo) FormattedTIN() string {
	s := fmt.Sprintf("%09d", ci.TIN)
	if ci.TINType == 2 {
		return s[:2] + "-" + s[2:]
	}
	return s[:3] + "-" + s[3:5] + "-" + s[5:]
}

// DisplayName returns the taxpayer name, falling back to the control name.
func (ci CaseInfo) DisplayName() string {
	if n := strings.TrimSpace(ci.Name); n != "" {
		return n
	}
	return strings.TrimSpace(ci.Control)
}
