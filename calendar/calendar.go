/*
calendar.go - Fiscal year generation and maintenance

PURPOSE:
  Derives a full fiscal year's 12 months from a single year number, and
  maintains existing years: single-month patches, per-year bulk patches,
  and whole-year deletion. The per-year lifecycle is a strict state
  machine (absent -> created -> updated* -> deleted) with no observable
  partial states; creation and deletion are atomic in the store.

GENERATION RULES:
  - Anchor: explicit override, or the Sunday on or before October 1 of
    the prior calendar year.
  - Month order OCT..SEP; OCT/NOV/DEC tokens carry the prior calendar year.
  - Weeks: 5 for MAR/JUN/SEP/DEC, 4 otherwise (totals 52).
  - Posting cycles start at year*100+1 and advance by weeks consumed.
  - Months are contiguous: next start = previous end + one day.
*/
package calendar

import (
	"context"
	"fmt"
	"time"
)

// Store is the persistence boundary for fiscal month rows.
type Store interface {
	// Months returns a fiscal year's rows in fiscal order (October first),
	// or ErrYearNotFound.
	Months(ctx context.Context, fiscalYear int) ([]Month, error)

	// Month returns one row by token, or ErrMonthNotFound.
	Month(ctx context.Context, token string) (Month, error)

	// AllMonths returns every row ordered by start date descending.
	AllMonths(ctx context.Context) ([]Month, error)

	// FiscalYears returns the distinct fiscal years, newest first.
	FiscalYears(ctx context.Context) ([]int, error)

	// CreateYear persists a year's rows atomically. Returns ErrYearExists
	// when any row for the same fiscal year is already present.
	CreateYear(ctx context.Context, fiscalYear int, months []Month) error

	// SaveMonth replaces one existing row.
	SaveMonth(ctx context.Context, m Month) error

	// DeleteYear removes all rows of a fiscal year, or ErrYearNotFound.
	DeleteYear(ctx context.Context, fiscalYear int) error

	// HasTimeRecords reports whether any time record falls in the range.
	// Used to refuse deleting a fiscal year that is still referenced.
	HasTimeRecords(ctx context.Context, from, to time.Time) (bool, error)
}

// Config carries the generation constants. Injected so tests can
// substitute alternate calendars.
type Config struct {
	MonthOrder     [12]string
	FiveWeekMonths map[string]bool
	MinYear        int
	MaxYear        int
}

// DefaultConfig returns the production calendar rules.
func DefaultConfig() Config {
	return Config{
		MonthOrder:     MonthOrder,
		FiveWeekMonths: map[string]bool{"MAR": true, "JUN": true, "SEP": true, "DEC": true},
		MinYear:        1990,
		MaxYear:        2099,
	}
}

// Generator creates and maintains fiscal years.
type Generator struct {
	store  Store
	config Config
}

// New builds a Generator with the production rules.
func New(store Store) *Generator {
	return &Generator{store: store, config: DefaultConfig()}
}

// NewWithConfig builds a Generator with substitute rules.
func NewWithConfig(store Store, config Config) *Generator {
	return &Generator{store: store, config: config}
}

// =============================================================================
// CREATE
// =============================================================================

// Create generates and persists a fiscal year. start overrides the
// default anchor (the Sunday on or before October 1 of year-1). Fails
// with ErrYearExists when the year already has rows, leaving zero rows.
func (g *Generator) Create(ctx context.Context, year int, start *time.Time) (*Year, error) {
	if year < g.config.MinYear || year > g.config.MaxYear {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrYearOutOfRange, year, g.config.MinYear, g.config.MaxYear)
	}

	anchor := sundayOnOrBefore(time.Date(year-1, time.October, 1, 0, 0, 0, 0, time.UTC))
	if start != nil {
		anchor = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	}

	months := g.Generate(year, anchor)
	if err := g.store.CreateYear(ctx, year, months); err != nil {
		return nil, err
	}
	return g.Year(ctx, year)
}

// Generate derives the 12 month rows without persisting them.
func (g *Generator) Generate(year int, anchor time.Time) []Month {
	months := make([]Month, 0, 12)
	start := anchor
	cycle := year*100 + 1

	for _, abbrev := range g.config.MonthOrder {
		calYear := year
		if abbrev == "OCT" || abbrev == "NOV" || abbrev == "DEC" {
			calYear = year - 1
		}
		weeks := 4
		if g.config.FiveWeekMonths[abbrev] {
			weeks = 5
		}
		end := start.AddDate(0, 0, weeks*7-1)

		months = append(months, Month{
			Token:      fmt.Sprintf("%s%d", abbrev, calYear),
			Start:      start,
			End:        end,
			Weeks:      weeks,
			StartCycle: cycle,
			EndCycle:   cycle + weeks - 1,
			Workdays:   weeks * 5,
		})

		start = end.AddDate(0, 0, 1)
		cycle += weeks
	}
	return months
}

func sundayOnOrBefore(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// =============================================================================
// READ
// =============================================================================

// Year reads a full fiscal year.
func (g *Generator) Year(ctx context.Context, year int) (*Year, error) {
	months, err := g.store.Months(ctx, year)
	if err != nil {
		return nil, err
	}
	return &Year{Year: year, Months: months}, nil
}

// Years lists the known fiscal years, newest first.
func (g *Generator) Years(ctx context.Context) ([]int, error) {
	return g.store.FiscalYears(ctx)
}

// MonthByToken reads one month row.
func (g *Generator) MonthByToken(ctx context.Context, token string) (Month, error) {
	if _, _, err := ParseToken(token); err != nil {
		return Month{}, err
	}
	return g.store.Month(ctx, token)
}

// ReportingMonths lists every month ordered by start date descending,
// for the reporting-month selection dropdowns.
func (g *Generator) ReportingMonths(ctx context.Context) ([]Month, error) {
	return g.store.AllMonths(ctx)
}

// =============================================================================
// UPDATE
// =============================================================================

// MonthPatch carries the optional fields of a month update; nil fields
// are left untouched. No cross-month validation is performed.
type MonthPatch struct {
	Token      string
	Start      *time.Time
	End        *time.Time
	Weeks      *int
	StartCycle *int
	EndCycle   *int
	Workdays   *int
}

// UpdateMonth patches one month row.
func (g *Generator) UpdateMonth(ctx context.Context, token string, patch MonthPatch) (Month, error) {
	if _, _, err := ParseToken(token); err != nil {
		return Month{}, err
	}
	m, err := g.store.Month(ctx, token)
	if err != nil {
		return Month{}, err
	}

	if patch.Start != nil {
		m.Start = *patch.Start
	}
	if patch.End != nil {
		m.End = *patch.End
	}
	if patch.Weeks != nil {
		m.Weeks = *patch.Weeks
	}
	if patch.StartCycle != nil {
		m.StartCycle = *patch.StartCycle
	}
	if patch.EndCycle != nil {
		m.EndCycle = *patch.EndCycle
	}
	if patch.Workdays != nil {
		m.Workdays = *patch.Workdays
	}

	if err := g.store.SaveMonth(ctx, m); err != nil {
		return Month{}, err
	}
	return m, nil
}

// BulkUpdate applies independent per-month patches to one fiscal year.
// Each patch targets the month named by its token; a patch for a month
// outside the year is rejected.
func (g *Generator) BulkUpdate(ctx context.Context, year int, patches []MonthPatch) (*Year, error) {
	if _, err := g.store.Months(ctx, year); err != nil {
		return nil, err
	}
	for _, p := range patches {
		fy, err := FiscalYearOf(p.Token)
		if err != nil {
			return nil, err
		}
		if fy != year {
			return nil, fmt.Errorf("%w: %s is not in FY%d", ErrMonthNotFound, p.Token, year)
		}
		if _, err := g.UpdateMonth(ctx, p.Token, p); err != nil {
			return nil, err
		}
	}
	return g.Year(ctx, year)
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a fiscal year's 12 rows. Refused with ErrYearInUse
// while time records exist inside the year's date span.
func (g *Generator) Delete(ctx context.Context, year int) error {
	months, err := g.store.Months(ctx, year)
	if err != nil {
		return err
	}

	from, to := months[0].Start, months[len(months)-1].End
	inUse, err := g.store.HasTimeRecords(ctx, from, to)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: FY%d", ErrYearInUse, year)
	}

	return g.store.DeleteYear(ctx, year)
}
