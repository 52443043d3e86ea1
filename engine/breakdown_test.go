package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/verity/timeverify/engine"
)

// =============================================================================
// CASE BREAKDOWN TESTS
// =============================================================================

func TestCaseBreakdown_GroupsAndSortsByTIN(t *testing.T) {
	// GIVEN: Two cases with hours across the week
	// WHEN: Building the drill-down table
	// THEN: One row per case, day slots filled, rows ordered by display TIN

	week := testWeek()
	entries := []engine.CaseEntry{
		{Date: engine.Date(2026, time.January, 5), CaseID: 9001, Hours: dec("3")},
		{Date: engine.Date(2026, time.January, 6), CaseID: 9001, Hours: dec("2")},
		{Date: engine.Date(2026, time.January, 5), CaseID: 9002, Hours: dec("4")},
	}
	info := map[int64]engine.CaseInfo{
		9001: {CaseID: 9001, TIN: 987654321, TINType: 0, Name: "ACME CORP"},
		9002: {CaseID: 9002, TIN: 123456789, TINType: 2, Name: "ZEBRA LLC"},
	}

	rows := engine.CaseBreakdown(week, entries, info)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// "12-3456789" < "987-65-4321"
	if rows[0].CaseID != 9002 || rows[1].CaseID != 9001 {
		t.Errorf("rows not ordered by TIN: %d, %d", rows[0].CaseID, rows[1].CaseID)
	}

	acme := rows[1]
	if !acme.Days[1].Equal(dec("3")) || !acme.Days[2].Equal(dec("2")) {
		t.Errorf("day slots wrong: MON=%s TUE=%s", acme.Days[1], acme.Days[2])
	}
	if !acme.Total.Equal(dec("5")) || !acme.Days.Sum().Equal(acme.Total) {
		t.Errorf("total should equal day sum: %s vs %s", acme.Total, acme.Days.Sum())
	}
}

func TestCaseBreakdown_MissingInfoFallsBack(t *testing.T) {
	week := testWeek()
	entries := []engine.CaseEntry{
		{Date: engine.Date(2026, time.January, 5), CaseID: 9003, Hours: dec("1")},
	}

	rows := engine.CaseBreakdown(week, entries, nil)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].TIN != "9003" || rows[0].Name != "Unknown" {
		t.Errorf("expected raw key and Unknown, got %q / %q", rows[0].TIN, rows[0].Name)
	}
}

func TestCaseBreakdown_DropsZeroTotals(t *testing.T) {
	week := testWeek()
	entries := []engine.CaseEntry{
		{Date: engine.Date(2026, time.January, 5), CaseID: 9001, Hours: dec("2")},
		{Date: engine.Date(2026, time.January, 6), CaseID: 9001, Hours: dec("-2")},
		{Date: engine.Date(2026, time.January, 5), CaseID: 9002, Hours: dec("1")},
	}

	rows := engine.CaseBreakdown(week, entries, nil)

	if len(rows) != 1 || rows[0].CaseID != 9002 {
		t.Errorf("zero-total case should be dropped, got %d rows", len(rows))
	}
}

// =============================================================================
// NON-CASE BREAKDOWN TESTS
// =============================================================================

func TestNonCaseBreakdown_NegatesAdjustmentRows(t *testing.T) {
	// GIVEN: 3h on an adjustment code on Monday
	// WHEN: Building the drill-down table
	// THEN: The row shows -3 while the stored value stays positive

	week := testWeek()
	entries := []engine.NonCaseEntry{
		{Date: engine.Date(2026, time.January, 5), Code: "300", Hours: dec("3")},
	}

	rows := engine.NonCaseBreakdown(week, entries, testClassifier())

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0].Days[1].Equal(dec("-3")) || !rows[0].Total.Equal(dec("-3")) {
		t.Errorf("adjustment not negated: MON=%s total=%s", rows[0].Days[1], rows[0].Total)
	}
	if rows[0].Class != "A" {
		t.Errorf("expected class A, got %s", rows[0].Class)
	}
}

func TestNonCaseBreakdown_NonWorkDayIndicator(t *testing.T) {
	// GIVEN: Code 760 with hours recorded only on Monday
	// WHEN: Building the drill-down table
	// THEN: Monday shows 0, every other day shows 1

	week := testWeek()
	entries := []engine.NonCaseEntry{
		{Date: engine.Date(2026, time.January, 5), Code: engine.CodeNonWorkDay, Hours: dec("8")},
	}

	rows := engine.NonCaseBreakdown(week, entries, testClassifier())

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if !row.Days[1].IsZero() {
		t.Errorf("MON should be 0, got %s", row.Days[1])
	}
	for _, slot := range []int{0, 2, 3, 4, 5, 6} {
		if !row.Days[slot].Equal(decimal.NewFromInt(1)) {
			t.Errorf("slot %d should be 1, got %s", slot, row.Days[slot])
		}
	}
	if !row.Total.Equal(dec("6")) {
		t.Errorf("total should be 6, got %s", row.Total)
	}
}

func TestNonCaseBreakdown_DropsZeroKeepsNegative(t *testing.T) {
	week := testWeek()
	entries := []engine.NonCaseEntry{
		// Nets to zero: dropped
		{Date: engine.Date(2026, time.January, 5), Code: "100", Hours: dec("4")},
		{Date: engine.Date(2026, time.January, 6), Code: "100", Hours: dec("-4")},
		// Negative adjustment total: kept
		{Date: engine.Date(2026, time.January, 5), Code: "300", Hours: dec("2")},
	}

	rows := engine.NonCaseBreakdown(week, entries, testClassifier())

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Code != "300" || !rows[0].Total.Equal(dec("-2")) {
		t.Errorf("expected kept negative adjustment row, got %s total %s", rows[0].Code, rows[0].Total)
	}
}

func TestNonCaseBreakdown_NamesAndOrdering(t *testing.T) {
	// GIVEN: An active code, an inactive code, and an unknown code
	// WHEN: Building the drill-down table
	// THEN: Active codes use their truncated description; the rest fall
	//       back to the raw code; rows sort by display name

	week := testWeek()
	mon := engine.Date(2026, time.January, 5)
	entries := []engine.NonCaseEntry{
		{Date: mon, Code: "200", Hours: dec("1")}, // "Admin Overhe"
		{Date: mon, Code: "600", Hours: dec("1")}, // inactive -> "600"
		{Date: mon, Code: "999", Hours: dec("1")}, // unknown -> "999"
	}

	rows := engine.NonCaseBreakdown(week, entries, testClassifier())

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Name != "600" || rows[1].Name != "999" || rows[2].Name != "Admin Overhe" {
		t.Errorf("unexpected name order: %q, %q, %q", rows[0].Name, rows[1].Name, rows[2].Name)
	}
	// Unknown codes default to class T
	if rows[1].Class != "T" {
		t.Errorf("unknown code class: expected T, got %s", rows[1].Class)
	}
}
