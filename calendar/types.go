/*
Package calendar generates and manages the fiscal reporting calendar.

PURPOSE:
  A fiscal year runs October through September and is numbered by the
  calendar year its September falls in. Each of its 12 months carries a
  Sunday start date, a 4-or-5 week count, and a sequential posting-cycle
  range; the individual week cycles are derived on read, never stored.

KEY CONCEPTS IN THIS FILE (types.go):
  - Month: one fiscal month row, keyed by its "MMMYYYY" token
  - Year:  the 12-month composite with totals
  - WeekCycle: one derived Sunday..Saturday posting cycle
  - Token helpers: parsing and fiscal-year derivation

FISCAL-YEAR KEYING:
  The token carries the calendar year ("OCT2025"), but October, November,
  and December roll into the NEXT fiscal year: OCT2025 belongs to FY2026.

SEE ALSO:
  - calendar.go: Generator with create/update/delete state machine
*/
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthOrder is the fixed fiscal month sequence, October first.
var MonthOrder = [12]string{
	"OCT", "NOV", "DEC", "JAN", "FEB", "MAR",
	"APR", "MAY", "JUN", "JUL", "AUG", "SEP",
}

var monthNames = map[string]string{
	"JAN": "January", "FEB": "February", "MAR": "March", "APR": "April",
	"MAY": "May", "JUN": "June", "JUL": "July", "AUG": "August",
	"SEP": "September", "OCT": "October", "NOV": "November", "DEC": "December",
}

// Month is one fiscal month row.
type Month struct {
	Token      string // "OCT2025"
	Start      time.Time
	End        time.Time
	Weeks      int // 4 or 5
	StartCycle int
	EndCycle   int
	Workdays   int // placeholder: weeks * 5, holidays not modeled
	Holidays   int // placeholder: 0
}

// WeekCycle is one posting cycle, derived from its parent month.
type WeekCycle struct {
	Cycle    int
	Start    time.Time
	End      time.Time
	Workdays int
}

// Abbrev returns the three-letter month token prefix.
func (m Month) Abbrev() string {
	if len(m.Token) < 3 {
		return m.Token
	}
	return strings.ToUpper(m.Token[:3])
}

// Name returns the full month name for display.
func (m Month) Name() string {
	if n, ok := monthNames[m.Abbrev()]; ok {
		return n
	}
	return m.Abbrev()
}

// FiscalYear derives the owning fiscal year from the token.
func (m Month) FiscalYear() (int, error) {
	return FiscalYearOf(m.Token)
}

// Cycles derives the month's posting cycles: week i starts 7i days after
// the month start, spans 6 days, and is assigned 5 workdays. The fixed
// workday count is a placeholder pending holiday data.
func (m Month) Cycles() []WeekCycle {
	if m.Weeks <= 0 {
		return nil
	}
	cycles := make([]WeekCycle, 0, m.Weeks)
	start := m.Start
	for i := 0; i < m.Weeks; i++ {
		cycles = append(cycles, WeekCycle{
			Cycle:    m.StartCycle + i,
			Start:    start,
			End:      start.AddDate(0, 0, 6),
			Workdays: 5,
		})
		start = start.AddDate(0, 0, 7)
	}
	return cycles
}

// Year is a full fiscal year, months in fiscal order (October first).
type Year struct {
	Year   int
	Months []Month
}

// TotalWeeks sums the week counts; 52 by construction.
func (y Year) TotalWeeks() int {
	total := 0
	for _, m := range y.Months {
		total += m.Weeks
	}
	return total
}

// TotalWorkdays sums the month workday counts.
func (y Year) TotalWorkdays() int {
	total := 0
	for _, m := range y.Months {
		total += m.Workdays
	}
	return total
}

// =============================================================================
// TOKEN HELPERS
// =============================================================================

// ParseToken splits a "MMMYYYY" token into its month abbreviation and
// calendar year.
func ParseToken(token string) (abbrev string, calendarYear int, err error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if len(token) != 7 {
		return "", 0, fmt.Errorf("%w: %q", ErrBadToken, token)
	}
	abbrev = token[:3]
	if _, ok := monthNames[abbrev]; !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrBadToken, token)
	}
	calendarYear, err = strconv.Atoi(token[3:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrBadToken, token)
	}
	return abbrev, calendarYear, nil
}

// FiscalYearOf derives the fiscal year owning a token. October through
// December of calendar year Y belong to FY Y+1.
func FiscalYearOf(token string) (int, error) {
	abbrev, calYear, err := ParseToken(token)
	if err != nil {
		return 0, err
	}
	if abbrev == "OCT" || abbrev == "NOV" || abbrev == "DEC" {
		return calYear + 1, nil
	}
	return calYear, nil
}
