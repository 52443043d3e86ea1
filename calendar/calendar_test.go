package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verity/timeverify/calendar"
	"github.com/verity/timeverify/engine"
	"github.com/verity/timeverify/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestGenerator() (*calendar.Generator, *memory.Store) {
	store := memory.New()
	return calendar.New(store), store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// GENERATION TESTS
// =============================================================================

func TestCreate_GeneratesTwelveContiguousMonths(t *testing.T) {
	// GIVEN: No calendar rows
	// WHEN: Creating fiscal year 2026
	// THEN: 12 months, October 2025 first, anchored on the Sunday on or
	//       before October 1, each month starting the day after the last

	gen, _ := newTestGenerator()

	year, err := gen.Create(context.Background(), 2026, nil)
	require.NoError(t, err)
	require.Len(t, year.Months, 12)

	// October 1, 2025 is a Wednesday; the prior Sunday is September 28.
	assert.Equal(t, "OCT2025", year.Months[0].Token)
	assert.Equal(t, date(2025, time.September, 28), year.Months[0].Start)
	assert.Equal(t, "SEP2026", year.Months[11].Token)

	for i := 1; i < len(year.Months); i++ {
		prev, cur := year.Months[i-1], year.Months[i]
		assert.Equal(t, prev.End.AddDate(0, 0, 1), cur.Start,
			"%s must start the day after %s ends", cur.Token, prev.Token)
	}

	assert.Equal(t, 52, year.TotalWeeks())
	assert.Equal(t, 260, year.TotalWorkdays())
}

func TestCreate_WeekCountsAndCycles(t *testing.T) {
	gen, _ := newTestGenerator()

	year, err := gen.Create(context.Background(), 2026, nil)
	require.NoError(t, err)

	fiveWeek := map[string]bool{"MAR": true, "JUN": true, "SEP": true, "DEC": true}
	cycle := 202601
	for _, m := range year.Months {
		want := 4
		if fiveWeek[m.Abbrev()] {
			want = 5
		}
		assert.Equal(t, want, m.Weeks, "%s week count", m.Token)
		assert.Equal(t, cycle, m.StartCycle, "%s start cycle", m.Token)
		assert.Equal(t, cycle+want-1, m.EndCycle, "%s end cycle", m.Token)
		assert.Equal(t, want*5, m.Workdays, "%s workdays", m.Token)
		cycle += want
	}
	assert.Equal(t, 202653, cycle)
}

func TestCreate_StartOverride(t *testing.T) {
	gen, _ := newTestGenerator()
	start := date(2025, time.October, 5)

	year, err := gen.Create(context.Background(), 2026, &start)
	require.NoError(t, err)
	assert.Equal(t, start, year.Months[0].Start)
}

func TestCreate_RejectsOutOfRangeYears(t *testing.T) {
	gen, _ := newTestGenerator()

	_, err := gen.Create(context.Background(), 1989, nil)
	assert.ErrorIs(t, err, calendar.ErrYearOutOfRange)

	_, err = gen.Create(context.Background(), 2100, nil)
	assert.ErrorIs(t, err, calendar.ErrYearOutOfRange)
}

func TestCreate_DuplicateYearLeavesExistingRows(t *testing.T) {
	// GIVEN: Fiscal year 2026 already exists
	// WHEN: Creating it again
	// THEN: ErrYearExists, and the original 12 rows are untouched

	gen, _ := newTestGenerator()
	ctx := context.Background()

	_, err := gen.Create(ctx, 2026, nil)
	require.NoError(t, err)

	_, err = gen.Create(ctx, 2026, nil)
	assert.ErrorIs(t, err, calendar.ErrYearExists)
	assert.True(t, calendar.IsConflict(err))

	year, err := gen.Year(ctx, 2026)
	require.NoError(t, err)
	assert.Len(t, year.Months, 12)
}

func TestMonth_DerivedCycles(t *testing.T) {
	m := calendar.Month{
		Token:      "OCT2025",
		Start:      date(2025, time.September, 28),
		End:        date(2025, time.October, 25),
		Weeks:      4,
		StartCycle: 202601,
		EndCycle:   202604,
	}

	cycles := m.Cycles()
	require.Len(t, cycles, 4)
	assert.Equal(t, 202601, cycles[0].Cycle)
	assert.Equal(t, date(2025, time.September, 28), cycles[0].Start)
	assert.Equal(t, date(2025, time.October, 4), cycles[0].End)
	assert.Equal(t, 202604, cycles[3].Cycle)
	assert.Equal(t, date(2025, time.October, 19), cycles[3].Start)
	assert.Equal(t, date(2025, time.October, 25), cycles[3].End)
}

// =============================================================================
// TOKEN TESTS
// =============================================================================

func TestParseToken(t *testing.T) {
	abbrev, year, err := calendar.ParseToken("oct2025")
	require.NoError(t, err)
	assert.Equal(t, "OCT", abbrev)
	assert.Equal(t, 2025, year)

	for _, bad := range []string{"OCTOBER2025", "XXX2025", "OCT25", ""} {
		_, _, err := calendar.ParseToken(bad)
		assert.ErrorIs(t, err, calendar.ErrBadToken, "token %q", bad)
	}
}

func TestFiscalYearOf_OctoberRollsForward(t *testing.T) {
	cases := map[string]int{
		"OCT2025": 2026,
		"NOV2025": 2026,
		"DEC2025": 2026,
		"JAN2026": 2026,
		"SEP2026": 2026,
	}
	for token, want := range cases {
		fy, err := calendar.FiscalYearOf(token)
		require.NoError(t, err)
		assert.Equal(t, want, fy, "token %s", token)
	}
}

// =============================================================================
// UPDATE TESTS
// =============================================================================

func TestUpdateMonth_PatchesOnlyProvidedFields(t *testing.T) {
	gen, _ := newTestGenerator()
	ctx := context.Background()

	_, err := gen.Create(ctx, 2026, nil)
	require.NoError(t, err)

	weeks := 5
	updated, err := gen.UpdateMonth(ctx, "OCT2025", calendar.MonthPatch{Weeks: &weeks})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.Weeks)
	assert.Equal(t, date(2025, time.September, 28), updated.Start, "start must be untouched")
	assert.Equal(t, 202601, updated.StartCycle, "cycles must be untouched")
}

func TestUpdateMonth_UnknownTokenFails(t *testing.T) {
	gen, _ := newTestGenerator()
	ctx := context.Background()

	_, err := gen.UpdateMonth(ctx, "BAD", calendar.MonthPatch{})
	assert.ErrorIs(t, err, calendar.ErrBadToken)

	_, err = gen.UpdateMonth(ctx, "OCT2031", calendar.MonthPatch{})
	assert.ErrorIs(t, err, calendar.ErrMonthNotFound)
}

func TestBulkUpdate_PatchesSeveralMonths(t *testing.T) {
	gen, _ := newTestGenerator()
	ctx := context.Background()

	_, err := gen.Create(ctx, 2026, nil)
	require.NoError(t, err)

	w5, w4 := 5, 4
	year, err := gen.BulkUpdate(ctx, 2026, []calendar.MonthPatch{
		{Token: "OCT2025", Weeks: &w5},
		{Token: "MAR2026", Weeks: &w4},
	})
	require.NoError(t, err)

	byToken := make(map[string]calendar.Month)
	for _, m := range year.Months {
		byToken[m.Token] = m
	}
	assert.Equal(t, 5, byToken["OCT2025"].Weeks)
	assert.Equal(t, 4, byToken["MAR2026"].Weeks)
}

func TestBulkUpdate_RejectsForeignMonths(t *testing.T) {
	gen, _ := newTestGenerator()
	ctx := context.Background()

	_, err := gen.Create(ctx, 2026, nil)
	require.NoError(t, err)

	w := 5
	// JAN2025 belongs to FY2025, not FY2026
	_, err = gen.BulkUpdate(ctx, 2026, []calendar.MonthPatch{{Token: "JAN2025", Weeks: &w}})
	assert.ErrorIs(t, err, calendar.ErrMonthNotFound)
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestDelete_RemovesYear(t *testing.T) {
	gen, _ := newTestGenerator()
	ctx := context.Background()

	_, err := gen.Create(ctx, 2026, nil)
	require.NoError(t, err)

	require.NoError(t, gen.Delete(ctx, 2026))

	_, err = gen.Year(ctx, 2026)
	assert.ErrorIs(t, err, calendar.ErrYearNotFound)
}

func TestDelete_UnknownYearFails(t *testing.T) {
	gen, _ := newTestGenerator()
	err := gen.Delete(context.Background(), 2031)
	assert.ErrorIs(t, err, calendar.ErrYearNotFound)
	assert.True(t, calendar.IsNotFound(err))
}

func TestDelete_RefusedWhileTimeRecordsExist(t *testing.T) {
	// GIVEN: Fiscal year 2026 with a time record inside its span
	// WHEN: Deleting the year
	// THEN: ErrYearInUse, and the rows remain

	gen, store := newTestGenerator()
	ctx := context.Background()

	_, err := gen.Create(ctx, 2026, nil)
	require.NoError(t, err)

	store.AddNonCase(engine.NonCaseEntry{
		Date:       date(2026, time.January, 5),
		EmployeeID: 21000001,
		Code:       "100",
		Hours:      decimal.NewFromInt(8),
	})

	err = gen.Delete(ctx, 2026)
	assert.ErrorIs(t, err, calendar.ErrYearInUse)

	year, err := gen.Year(ctx, 2026)
	require.NoError(t, err)
	assert.Len(t, year.Months, 12)
}
