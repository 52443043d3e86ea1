// Package memory provides an in-memory store implementing every engine
// and calendar store interface. Used by tests and demo setups.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/verity/timeverify/calendar"
	"github.com/verity/timeverify/engine"
)

// Store holds all reference data, time records, and fiscal months in
// process memory. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	employees map[int64]engine.Employee
	codes     map[string]engine.TimeCode
	nonCase   []engine.NonCaseEntry
	caseTime  []engine.CaseEntry
	caseInfo  map[int64]engine.CaseInfo
	months    map[string]calendar.Month
}

func New() *Store {
	return &Store{
		employees: make(map[int64]engine.Employee),
		codes:     make(map[string]engine.TimeCode),
		caseInfo:  make(map[int64]engine.CaseInfo),
		months:    make(map[string]calendar.Month),
	}
}

// =============================================================================
// SEEDING - Reference data and time records are externally owned; these
// writers exist for fixtures and demos, not for the engine.
// =============================================================================

func (s *Store) SaveEmployee(e engine.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

func (s *Store) SaveTimeCode(c engine.TimeCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[c.Code+"|"+c.Type] = c
}

func (s *Store) SaveCaseInfo(ci engine.CaseInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caseInfo[ci.CaseID] = ci
}

func (s *Store) AddNonCase(entries ...engine.NonCaseEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonCase = append(s.nonCase, entries...)
}

func (s *Store) AddCase(entries ...engine.CaseEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caseTime = append(s.caseTime, entries...)
}

// =============================================================================
// engine.EmployeeStore
// =============================================================================

func (s *Store) Employee(_ context.Context, id int64) (engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return engine.Employee{}, engine.ErrEmployeeNotFound
	}
	return e, nil
}

func (s *Store) Eligible(_ context.Context) ([]engine.Employee, error) {
	return s.eligible(""), nil
}

func (s *Store) EligibleByPrefix(_ context.Context, prefix string) ([]engine.Employee, error) {
	return s.eligible(prefix), nil
}

func (s *Store) eligible(prefix string) []engine.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []engine.Employee
	for _, e := range s.employees {
		if !e.Eligible() {
			continue
		}
		if prefix != "" && !strings.HasPrefix(strconv.FormatInt(e.ID, 10), prefix) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// =============================================================================
// engine.CodeStore
// =============================================================================

func (s *Store) TimeCodes(_ context.Context) ([]engine.TimeCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]engine.TimeCode, 0, len(s.codes))
	for _, c := range s.codes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// =============================================================================
// engine.RecordStore
// =============================================================================

func (s *Store) NonCaseEntries(_ context.Context, employeeID int64, from, to time.Time) ([]engine.NonCaseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []engine.NonCaseEntry
	for _, e := range s.nonCase {
		if e.EmployeeID == employeeID && inRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) CaseEntries(_ context.Context, employeeID int64, from, to time.Time) ([]engine.CaseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []engine.CaseEntry
	for _, e := range s.caseTime {
		if e.EmployeeID == employeeID && inRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

// =============================================================================
// engine.CaseStore
// =============================================================================

func (s *Store) CaseInfo(_ context.Context, caseIDs []int64) (map[int64]engine.CaseInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]engine.CaseInfo, len(caseIDs))
	for _, id := range caseIDs {
		if ci, ok := s.caseInfo[id]; ok {
			out[id] = ci
		}
	}
	return out, nil
}

// =============================================================================
// calendar.Store
// =============================================================================

func (s *Store) Months(_ context.Context, fiscalYear int) ([]calendar.Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	months := s.monthsOfLocked(fiscalYear)
	if len(months) == 0 {
		return nil, calendar.ErrYearNotFound
	}
	return months, nil
}

func (s *Store) monthsOfLocked(fiscalYear int) []calendar.Month {
	var out []calendar.Month
	for _, m := range s.months {
		if fy, err := m.FiscalYear(); err == nil && fy == fiscalYear {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return fiscalOrder(out[i].Abbrev()) < fiscalOrder(out[j].Abbrev())
	})
	return out
}

func fiscalOrder(abbrev string) int {
	for i, a := range calendar.MonthOrder {
		if a == abbrev {
			return i
		}
	}
	return len(calendar.MonthOrder)
}

func (s *Store) Month(_ context.Context, token string) (calendar.Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.months[strings.ToUpper(token)]
	if !ok {
		return calendar.Month{}, calendar.ErrMonthNotFound
	}
	return m, nil
}

func (s *Store) AllMonths(_ context.Context) ([]calendar.Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]calendar.Month, 0, len(s.months))
	for _, m := range s.months {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	return out, nil
}

func (s *Store) FiscalYears(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int]bool)
	var years []int
	for _, m := range s.months {
		if fy, err := m.FiscalYear(); err == nil && !seen[fy] {
			seen[fy] = true
			years = append(years, fy)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (s *Store) CreateYear(_ context.Context, fiscalYear int, months []calendar.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.monthsOfLocked(fiscalYear)) > 0 {
		return calendar.ErrYearExists
	}
	for _, m := range months {
		s.months[strings.ToUpper(m.Token)] = m
	}
	return nil
}

func (s *Store) SaveMonth(_ context.Context, m calendar.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToUpper(m.Token)
	if _, ok := s.months[key]; !ok {
		return calendar.ErrMonthNotFound
	}
	s.months[key] = m
	return nil
}

func (s *Store) DeleteYear(_ context.Context, fiscalYear int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	months := s.monthsOfLocked(fiscalYear)
	if len(months) == 0 {
		return calendar.ErrYearNotFound
	}
	for _, m := range months {
		delete(s.months, strings.ToUpper(m.Token))
	}
	return nil
}

func (s *Store) HasTimeRecords(_ context.Context, from, to time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.nonCase {
		if inRange(e.Date, from, to) {
			return true, nil
		}
	}
	for _, e := range s.caseTime {
		if inRange(e.Date, from, to) {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// engine.MonthLabeler
// =============================================================================

// MonthLabel returns the token of the latest month starting on or
// before the date.
func (s *Store) MonthLabel(_ context.Context, date time.Time) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *calendar.Month
	for _, m := range s.months {
		m := m
		if m.Start.After(date) {
			continue
		}
		if best == nil || m.Start.After(best.Start) {
			best = &m
		}
	}
	if best == nil {
		return "", false, nil
	}
	return best.Token, true, nil
}
