/*
breakdown.go - Drill-down day tables (timesheet tables 2 and 3)

PURPOSE:
  Builds the per-case and per-code weekly tables shown when drilling into
  one employee's week. Each row is a seven-slot Sunday..Saturday vector
  plus a total. Hours accumulate into a plain day map first; the vector
  and total are materialized once at the end.

SPECIAL RULES (non-case table):
  - Adjustment-letter codes render negated; the raw value stays positive
    for the summary arithmetic in summary.go.
  - Code 760 carries no additive hours: each day shows 1 when no hours
    were recorded, 0 otherwise.
  - Rows totaling exactly zero are dropped; negative totals are kept.
*/
package engine

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// DayVector holds one value per weekday, Sunday first.
type DayVector [7]decimal.Decimal

// Sum adds the seven slots. Row totals are computed once at build time;
// Sum exists for verification.
func (v DayVector) Sum() decimal.Decimal {
	var total decimal.Decimal
	for _, d := range v {
		total = total.Add(d)
	}
	return total
}

// CaseRow is one case's week in the drill-down view.
type CaseRow struct {
	CaseID int64
	TIN    string // formatted TIN, or the raw case key when lookup missed
	Name   string
	Days   DayVector
	Total  decimal.Decimal
}

// NonCaseRow is one time code's week in the drill-down view.
type NonCaseRow struct {
	Code  string
	Name  string // display description, 12-char limit, code itself on miss
	Class string // display grouping: "T", "A", or "I"
	Days  DayVector
	Total decimal.Decimal
}

// =============================================================================
// CASE BREAKDOWN (table 2)
// =============================================================================

// CaseBreakdown groups one employee's case records by case key. Cases
// with a zero total in the window are dropped; the rest sort by display
// TIN. A missing info lookup falls back to the raw key and "Unknown".
func CaseBreakdown(week Week, entries []CaseEntry, info map[int64]CaseInfo) []CaseRow {
	byCase := make(map[int64]map[int]decimal.Decimal)
	for _, e := range entries {
		slot := week.Slot(e.Date)
		if slot < 0 {
			continue
		}
		days := byCase[e.CaseID]
		if days == nil {
			days = make(map[int]decimal.Decimal)
			byCase[e.CaseID] = days
		}
		days[slot] = days[slot].Add(e.Hours)
	}

	rows := make([]CaseRow, 0, len(byCase))
	for caseID, days := range byCase {
		row := CaseRow{CaseID: caseID, TIN: strconv.FormatInt(caseID, 10), Name: "Unknown"}
		if ci, ok := info[caseID]; ok {
			row.TIN = ci.FormattedTIN()
			row.Name = ci.DisplayName()
		}
		for slot, h := range days {
			row.Days[slot] = h
			row.Total = row.Total.Add(h)
		}
		if row.Total.IsZero() {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].TIN < rows[j].TIN })
	return rows
}

// =============================================================================
// NON-CASE BREAKDOWN (table 3)
// =============================================================================

// NonCaseBreakdown groups one employee's non-case records by time code.
// Codes appear whether or not they are active; only the display name
// lookup requires an active code. Rows sort by display name.
func NonCaseBreakdown(week Week, entries []NonCaseEntry, cls *Classifier) []NonCaseRow {
	byCode := make(map[string]map[int]decimal.Decimal)
	for _, e := range entries {
		slot := week.Slot(e.Date)
		if slot < 0 {
			continue
		}
		days := byCode[e.Code]
		if days == nil {
			days = make(map[int]decimal.Decimal)
			byCode[e.Code] = days
		}
		days[slot] = days[slot].Add(e.Hours)
	}

	rows := make([]NonCaseRow, 0, len(byCode))
	for code, days := range byCode {
		name := code
		if n, ok := cls.ActiveName(code); ok {
			name = n
		}
		if len(name) > 12 {
			name = name[:12]
		}

		cf, known := cls.Lookup(code)
		class := "T"
		if known {
			class = cf.DisplayClass()
		}
		negate := known && cf.IsAdjustment()

		row := NonCaseRow{Code: code, Name: name, Class: class}
		for slot := 0; slot < 7; slot++ {
			v := days[slot]
			switch {
			case code == CodeNonWorkDay:
				// Presence indicator, not additive time.
				if v.IsZero() {
					v = decimal.NewFromInt(1)
				} else {
					v = decimal.Zero
				}
			case negate:
				v = v.Neg()
			}
			row.Days[slot] = v
			row.Total = row.Total.Add(v)
		}
		if row.Total.IsZero() {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}
