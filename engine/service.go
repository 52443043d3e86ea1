/*
service.go - Read-side orchestration over the stores

PURPOSE:
  Wires the pure aggregators to the store interfaces: fetch an employee's
  records for the week, run the aggregation, enrich with lookups. All
  operations are read-only; summaries for different employees can be
  computed independently.
*/
package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Service exposes the engine's read operations.
type Service struct {
	Employees EmployeeStore
	Codes     CodeStore
	Records   RecordStore
	Cases     CaseStore

	// Months labels timesheets with their reporting month. Optional; a
	// calendar-less deployment falls back to "January 2006" labels.
	Months MonthLabeler
}

// NewService builds a Service over one composite store.
func NewService(store interface {
	EmployeeStore
	CodeStore
	RecordStore
	CaseStore
}) *Service {
	return &Service{Employees: store, Codes: store, Records: store, Cases: store}
}

func (s *Service) classifier(ctx context.Context) (*Classifier, error) {
	codes, err := s.Codes.TimeCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load time codes: %w", err)
	}
	return NewClassifier(DefaultCategoryTable(), codes), nil
}

// =============================================================================
// GROUP WEEKLY SUMMARIES
// =============================================================================

// WeeklySummaries computes the group view for one week. idPrefix
// optionally narrows the listing by assignment-number prefix. The result
// is ordered by employee id, then numeric tour with nils last.
func (s *Service) WeeklySummaries(ctx context.Context, week Week, idPrefix string) ([]WeeklySummary, error) {
	cls, err := s.classifier(ctx)
	if err != nil {
		return nil, err
	}

	var employees []Employee
	if idPrefix != "" {
		employees, err = s.Employees.EligibleByPrefix(ctx, idPrefix)
	} else {
		employees, err = s.Employees.Eligible(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	summaries := make([]WeeklySummary, 0, len(employees))
	for _, emp := range employees {
		nonCase, err := s.Records.NonCaseEntries(ctx, emp.ID, week.Start, week.End())
		if err != nil {
			return nil, fmt.Errorf("non-case records for %d: %w", emp.ID, err)
		}
		cases, err := s.Records.CaseEntries(ctx, emp.ID, week.Start, week.End())
		if err != nil {
			return nil, fmt.Errorf("case records for %d: %w", emp.ID, err)
		}
		summaries = append(summaries, SummarizeWeek(emp, week, nonCase, cases, cls))
	}

	SortSummaries(summaries)
	return summaries, nil
}

// =============================================================================
// EMPLOYEE TIMESHEET (drill-down)
// =============================================================================

// DailyRow is one row of the timesheet's daily summary table. Tour,
// Holiday, and Credit are placeholders pending a separate entry screen;
// only Worked carries data.
type DailyRow struct {
	Label string
	Days  DayVector
	Total decimal.Decimal
}

// Timesheet is the drill-down view for one employee and week.
type Timesheet struct {
	EmployeeID     int64
	Name           string
	Week           Week
	ReportingMonth string

	DailySummary []DailyRow
	CaseRows     []CaseRow
	NonCaseRows  []NonCaseRow

	// TotalCaseDirect sums the case-row totals; TotalNonCredit sums the
	// non-case-row totals.
	TotalCaseDirect decimal.Decimal
	TotalNonCredit  decimal.Decimal
}

// EmployeeTimesheet builds the drill-down view. Unknown or ineligible
// employees fail with a not-found condition.
func (s *Service) EmployeeTimesheet(ctx context.Context, employeeID int64, week Week) (*Timesheet, error) {
	emp, err := s.Employees.Employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !emp.Eligible() {
		return nil, fmt.Errorf("%w: %d", ErrEmployeeNotEligible, employeeID)
	}

	cls, err := s.classifier(ctx)
	if err != nil {
		return nil, err
	}

	nonCase, err := s.Records.NonCaseEntries(ctx, employeeID, week.Start, week.End())
	if err != nil {
		return nil, fmt.Errorf("non-case records: %w", err)
	}
	cases, err := s.Records.CaseEntries(ctx, employeeID, week.Start, week.End())
	if err != nil {
		return nil, fmt.Errorf("case records: %w", err)
	}

	caseIDs := make([]int64, 0, len(cases))
	seen := make(map[int64]bool)
	for _, e := range cases {
		if !seen[e.CaseID] {
			seen[e.CaseID] = true
			caseIDs = append(caseIDs, e.CaseID)
		}
	}
	var info map[int64]CaseInfo
	if len(caseIDs) > 0 {
		if info, err = s.Cases.CaseInfo(ctx, caseIDs); err != nil {
			return nil, fmt.Errorf("case info: %w", err)
		}
	}

	ts := &Timesheet{
		EmployeeID:     employeeID,
		Name:           emp.Name,
		Week:           week,
		ReportingMonth: s.monthLabel(ctx, week),
		DailySummary:   dailySummary(week, cases),
		CaseRows:       CaseBreakdown(week, cases, info),
		NonCaseRows:    NonCaseBreakdown(week, nonCase, cls),
	}
	for _, r := range ts.CaseRows {
		ts.TotalCaseDirect = ts.TotalCaseDirect.Add(r.Total)
	}
	for _, r := range ts.NonCaseRows {
		ts.TotalNonCredit = ts.TotalNonCredit.Add(r.Total)
	}
	return ts, nil
}

// ReportingMonth labels a week with its reporting month: the latest
// fiscal month starting on or before the week start. found is false
// when no fiscal month covers the week; the label then falls back to
// the plain calendar month.
func (s *Service) ReportingMonth(ctx context.Context, week Week) (label string, found bool) {
	if s.Months != nil {
		if l, ok, err := s.Months.MonthLabel(ctx, week.Start); err == nil && ok {
			return l, true
		}
	}
	return week.Start.Format("January 2006"), false
}

func (s *Service) monthLabel(ctx context.Context, week Week) string {
	label, _ := s.ReportingMonth(ctx, week)
	return label
}

// dailySummary builds the four-row daily table. Only the Worked row is
// populated, from case hours per day.
func dailySummary(week Week, cases []CaseEntry) []DailyRow {
	rows := []DailyRow{
		{Label: "Tour"},
		{Label: "Holiday"},
		{Label: "Credit"},
		{Label: "Worked"},
	}
	worked := &rows[3]
	for _, e := range cases {
		if slot := week.Slot(e.Date); slot >= 0 {
			worked.Days[slot] = worked.Days[slot].Add(e.Hours)
			worked.Total = worked.Total.Add(e.Hours)
		}
	}
	return rows
}
