/*
summary.go - Weekly per-employee metrics (the group view)

PURPOSE:
  Computes the seven group-view metrics for one employee over one week
  from that employee's two record sources and the classifier.

THE ARITHMETIC:
  tourOfDuty   = tour-letter hours + case hours - adjustment - schedule
  adjustedTour = adjustment - schedule
  hoursWorked  = case hours (also reported as caseDirectTime)
  codeDirect   = code-direct-letter hours
  overhead     = overhead-letter hours

REPORT DAYS:
  Distinct non-case dates (codes 750/760 excluded) plus distinct case
  dates that have no non-case record of any code on the same date. A date
  evidenced by both sources is counted once.
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// WeeklySummary is one row of the group weekly view.
type WeeklySummary struct {
	EmployeeID   int64
	Name         string
	TourOfDuty   decimal.Decimal
	AdjustedTour decimal.Decimal
	HoursWorked  decimal.Decimal
	CaseDirect   decimal.Decimal // same value as HoursWorked, distinct column
	CodeDirect   decimal.Decimal
	Overhead     decimal.Decimal
	ReportDays   int
	TourType     string
	Tour         *int      // numeric tour code, nil when unrecorded; sort key
	LastDateEOD  time.Time // zero when neither source has records
}

// SummarizeWeek computes the weekly summary for one employee. Records
// outside the window are ignored. No records yields an all-zero summary.
func SummarizeWeek(emp Employee, week Week, nonCase []NonCaseEntry, cases []CaseEntry, cls *Classifier) WeeklySummary {
	var tour, adjustment, schedule, codeDirect, overhead decimal.Decimal

	nonCaseDates := make(map[time.Time]bool)   // every non-case date, any code
	reportDates := make(map[time.Time]bool)    // non-case dates minus sentinels
	var lastDate time.Time

	for _, e := range nonCase {
		if !week.Contains(e.Date) {
			continue
		}
		d := midnight(e.Date)
		nonCaseDates[d] = true
		if e.Code != CodeHoliday && e.Code != CodeNonWorkDay {
			reportDates[d] = true
		}
		if d.After(lastDate) {
			lastDate = d
		}

		c, ok := cls.Classify(e.Code)
		if !ok {
			continue // inactive or unknown codes contribute zero
		}
		if c.InTour() {
			tour = tour.Add(e.Hours)
		}
		if c.IsAdjustment() {
			adjustment = adjustment.Add(e.Hours)
		}
		if c.IsSchedule() {
			schedule = schedule.Add(e.Hours)
		}
		if c.InCodeDirect() {
			codeDirect = codeDirect.Add(e.Hours)
		}
		if c.InOverhead() {
			overhead = overhead.Add(e.Hours)
		}
	}

	var caseHours decimal.Decimal
	caseOnlyDates := make(map[time.Time]bool)
	for _, e := range cases {
		if !week.Contains(e.Date) {
			continue
		}
		d := midnight(e.Date)
		caseHours = caseHours.Add(e.Hours)
		if !nonCaseDates[d] {
			caseOnlyDates[d] = true
		}
		if d.After(lastDate) {
			lastDate = d
		}
	}

	return WeeklySummary{
		EmployeeID:   emp.ID,
		Name:         emp.Name,
		TourOfDuty:   tour.Add(caseHours).Sub(adjustment).Sub(schedule),
		AdjustedTour: adjustment.Sub(schedule),
		HoursWorked:  caseHours,
		CaseDirect:   caseHours,
		CodeDirect:   codeDirect,
		Overhead:     overhead,
		ReportDays:   len(reportDates) + len(caseOnlyDates),
		TourType:     emp.TourLabel(),
		Tour:         emp.Tour,
		LastDateEOD:  lastDate,
	}
}

// SortSummaries orders the group view: employee id ascending, then
// numeric tour ascending with nils last.
func SortSummaries(summaries []WeeklySummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		switch {
		case a.Tour == nil:
			return false
		case b.Tour == nil:
			return true
		default:
			return *a.Tour < *b.Tour
		}
	})
}
