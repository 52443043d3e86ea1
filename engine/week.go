package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// WEEK - The Sunday..Saturday aggregation window
// =============================================================================

// All dates are UTC midnight; Date is the only constructor call sites need.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Week is a seven-day Sunday-through-Saturday window. Every aggregation
// runs over exactly one Week.
type Week struct {
	Start time.Time // always a Sunday
}

// WeekOf snaps an arbitrary date to the week containing it.
func WeekOf(date time.Time) Week {
	d := midnight(date)
	return Week{Start: d.AddDate(0, 0, -int(d.Weekday()))}
}

// NewWeek validates explicit week bounds: start must be a Sunday and the
// window exactly seven days.
func NewWeek(start, end time.Time) (Week, error) {
	start, end = midnight(start), midnight(end)
	if end.Before(start) {
		return Week{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidWeek, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if start.Weekday() != time.Sunday {
		return Week{}, fmt.Errorf("%w: start %s is not a Sunday", ErrInvalidWeek, start.Format("2006-01-02"))
	}
	if !end.Equal(start.AddDate(0, 0, 6)) {
		return Week{}, fmt.Errorf("%w: window is not exactly 7 days", ErrInvalidWeek)
	}
	return Week{Start: start}, nil
}

// End returns the Saturday closing the window.
func (w Week) End() time.Time { return w.Start.AddDate(0, 0, 6) }

// Day returns the date of slot i (0 = Sunday .. 6 = Saturday).
func (w Week) Day(i int) time.Time { return w.Start.AddDate(0, 0, i) }

// Slot returns the day index of a date within the week, or -1.
func (w Week) Slot(date time.Time) int {
	d := midnight(date)
	if d.Before(w.Start) || d.After(w.End()) {
		return -1
	}
	return int(d.Sub(w.Start).Hours() / 24)
}

// Contains reports whether the date falls inside the window.
func (w Week) Contains(date time.Time) bool { return w.Slot(date) >= 0 }

func (w Week) Next() Week     { return Week{Start: w.Start.AddDate(0, 0, 7)} }
func (w Week) Previous() Week { return Week{Start: w.Start.AddDate(0, 0, -7)} }

func (w Week) String() string {
	return w.Start.Format("01/02/2006") + " - " + w.End().Format("01/02/2006")
}

// DayKeys are the column labels of the drill-down tables, Sunday first.
var DayKeys = [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}
