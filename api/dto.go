/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Verification:
    WeekDTO, SummaryDTO, TimesheetDTO, DailyRowDTO, CaseRowDTO,
    NonCaseRowDTO

  Calendar:
    FiscalYearDTO, FiscalMonthDTO, WeekCycleDTO,
    CreateFiscalYearRequest, UpdateFiscalMonthRequest,
    BulkUpdateFiscalYearRequest

VALIDATION:
  Request types carry validator tags; handlers run them through a shared
  validator.Validate instance before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup and middleware
*/
package api

import (
	"time"

	"github.com/verity/timeverify/calendar"
	"github.com/verity/timeverify/engine"
)

const dateLayout = "2006-01-02"

// =============================================================================
// VERIFICATION TYPES
// =============================================================================

// WeekDTO is one Sunday-start reporting week.
type WeekDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

func toWeekDTO(w engine.Week) WeekDTO {
	return WeekDTO{
		Start: w.Start.Format(dateLayout),
		End:   w.End().Format(dateLayout),
		Label: w.String(),
	}
}

// PayPeriodDTO is one Sunday-start pay period with its reporting-month
// label and navigation hints. HasPrevious/HasNext report whether a
// fiscal month covers the adjacent week.
type PayPeriodDTO struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	Label          string `json:"label"`
	ReportingMonth string `json:"reporting_month"`
	HasPrevious    bool   `json:"has_previous"`
	HasNext        bool   `json:"has_next"`
}

// SummaryDTO is one row of the group weekly view. Hour figures are
// fixed-point strings to avoid float drift on the wire.
type SummaryDTO struct {
	EmployeeID   int64  `json:"employee_id"`
	Name         string `json:"name"`
	TourOfDuty   string `json:"tour_of_duty"`
	AdjustedTour string `json:"adjusted_tour"`
	HoursWorked  string `json:"hours_worked"`
	CaseDirect   string `json:"case_direct"`
	CodeDirect   string `json:"code_direct"`
	Overhead     string `json:"overhead"`
	ReportDays   int    `json:"report_days"`
	TourType     string `json:"tour_type"`
	Tour         *int   `json:"tour,omitempty"`
	LastDateEOD  string `json:"last_date_eod,omitempty"`
}

func toSummaryDTO(s engine.WeeklySummary) SummaryDTO {
	dto := SummaryDTO{
		EmployeeID:   s.EmployeeID,
		Name:         s.Name,
		TourOfDuty:   s.TourOfDuty.StringFixed(2),
		AdjustedTour: s.AdjustedTour.StringFixed(2),
		HoursWorked:  s.HoursWorked.StringFixed(2),
		CaseDirect:   s.CaseDirect.StringFixed(2),
		CodeDirect:   s.CodeDirect.StringFixed(2),
		Overhead:     s.Overhead.StringFixed(2),
		ReportDays:   s.ReportDays,
		TourType:     s.TourType,
		Tour:         s.Tour,
	}
	if !s.LastDateEOD.IsZero() {
		dto.LastDateEOD = s.LastDateEOD.Format(dateLayout)
	}
	return dto
}

// DailyRowDTO is one row of the timesheet's daily summary table.
type DailyRowDTO struct {
	Label string            `json:"label"`
	Days  map[string]string `json:"days"`
	Total string            `json:"total"`
}

// CaseRowDTO is one case-time breakdown row.
type CaseRowDTO struct {
	CaseID int64             `json:"case_id"`
	TIN    string            `json:"tin"`
	Name   string            `json:"name"`
	Days   map[string]string `json:"days"`
	Total  string            `json:"total"`
}

// NonCaseRowDTO is one non-case breakdown row.
type NonCaseRowDTO struct {
	Code  string            `json:"code"`
	Name  string            `json:"name"`
	Class string            `json:"class"`
	Days  map[string]string `json:"days"`
	Total string            `json:"total"`
}

// TimesheetDTO is the employee drill-down view.
type TimesheetDTO struct {
	EmployeeID      int64           `json:"employee_id"`
	Name            string          `json:"name"`
	Week            WeekDTO         `json:"week"`
	ReportingMonth  string          `json:"reporting_month"`
	DailySummary    []DailyRowDTO   `json:"daily_summary"`
	CaseRows        []CaseRowDTO    `json:"case_rows"`
	NonCaseRows     []NonCaseRowDTO `json:"non_case_rows"`
	TotalCaseDirect string          `json:"total_case_direct"`
	TotalNonCredit  string          `json:"total_non_credit"`
}

func toDayMap(days engine.DayVector) map[string]string {
	out := make(map[string]string, len(engine.DayKeys))
	for i, key := range engine.DayKeys {
		out[key] = days[i].StringFixed(2)
	}
	return out
}

func toTimesheetDTO(ts *engine.Timesheet) TimesheetDTO {
	dto := TimesheetDTO{
		EmployeeID:      ts.EmployeeID,
		Name:            ts.Name,
		Week:            toWeekDTO(ts.Week),
		ReportingMonth:  ts.ReportingMonth,
		DailySummary:    make([]DailyRowDTO, 0, len(ts.DailySummary)),
		CaseRows:        make([]CaseRowDTO, 0, len(ts.CaseRows)),
		NonCaseRows:     make([]NonCaseRowDTO, 0, len(ts.NonCaseRows)),
		TotalCaseDirect: ts.TotalCaseDirect.StringFixed(2),
		TotalNonCredit:  ts.TotalNonCredit.StringFixed(2),
	}
	for _, r := range ts.DailySummary {
		dto.DailySummary = append(dto.DailySummary, DailyRowDTO{
			Label: r.Label,
			Days:  toDayMap(r.Days),
			Total: r.Total.StringFixed(2),
		})
	}
	for _, r := range ts.CaseRows {
		dto.CaseRows = append(dto.CaseRows, CaseRowDTO{
			CaseID: r.CaseID,
			TIN:    r.TIN,
			Name:   r.Name,
			Days:   toDayMap(r.Days),
			Total:  r.Total.StringFixed(2),
		})
	}
	for _, r := range ts.NonCaseRows {
		dto.NonCaseRows = append(dto.NonCaseRows, NonCaseRowDTO{
			Code:  r.Code,
			Name:  r.Name,
			Class: r.Class,
			Days:  toDayMap(r.Days),
			Total: r.Total.StringFixed(2),
		})
	}
	return dto
}

// =============================================================================
// CALENDAR TYPES
// =============================================================================

// FiscalMonthDTO is one fiscal month row with its derived week cycles.
type FiscalMonthDTO struct {
	Token      string         `json:"rpt_month"`
	Name       string         `json:"name"`
	FiscalYear int            `json:"fiscal_year"`
	Start      string         `json:"start_date"`
	End        string         `json:"end_date"`
	Weeks      int            `json:"weeks"`
	StartCycle int            `json:"start_cycle"`
	EndCycle   int            `json:"end_cycle"`
	Workdays   int            `json:"workdays"`
	Holidays   int            `json:"holidays"`
	Cycles     []WeekCycleDTO `json:"cycles,omitempty"`
}

// WeekCycleDTO is one derived posting cycle.
type WeekCycleDTO struct {
	Cycle    int    `json:"cycle"`
	Start    string `json:"start_date"`
	End      string `json:"end_date"`
	Workdays int    `json:"workdays"`
}

func toMonthDTO(m calendar.Month, withCycles bool) FiscalMonthDTO {
	fy, _ := m.FiscalYear()
	dto := FiscalMonthDTO{
		Token:      m.Token,
		Name:       m.Name(),
		FiscalYear: fy,
		Start:      m.Start.Format(dateLayout),
		End:        m.End.Format(dateLayout),
		Weeks:      m.Weeks,
		StartCycle: m.StartCycle,
		EndCycle:   m.EndCycle,
		Workdays:   m.Workdays,
		Holidays:   m.Holidays,
	}
	if withCycles {
		for _, c := range m.Cycles() {
			dto.Cycles = append(dto.Cycles, WeekCycleDTO{
				Cycle:    c.Cycle,
				Start:    c.Start.Format(dateLayout),
				End:      c.End.Format(dateLayout),
				Workdays: c.Workdays,
			})
		}
	}
	return dto
}

// FiscalYearDTO is a full fiscal year.
type FiscalYearDTO struct {
	Year          int              `json:"year"`
	TotalWeeks    int              `json:"total_weeks"`
	TotalWorkdays int              `json:"total_workdays"`
	Months        []FiscalMonthDTO `json:"months"`
}

func toYearDTO(y *calendar.Year) FiscalYearDTO {
	dto := FiscalYearDTO{
		Year:          y.Year,
		TotalWeeks:    y.TotalWeeks(),
		TotalWorkdays: y.TotalWorkdays(),
		Months:        make([]FiscalMonthDTO, 0, len(y.Months)),
	}
	for _, m := range y.Months {
		dto.Months = append(dto.Months, toMonthDTO(m, false))
	}
	return dto
}

// CreateFiscalYearRequest creates a fiscal year; Start overrides the
// default anchor Sunday.
type CreateFiscalYearRequest struct {
	Year  int     `json:"year" validate:"required,min=1990,max=2099"`
	Start *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateFiscalMonthRequest patches one month row. Nil fields are left
// untouched.
type UpdateFiscalMonthRequest struct {
	Start      *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	End        *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Weeks      *int    `json:"weeks,omitempty" validate:"omitempty,min=1,max=6"`
	StartCycle *int    `json:"start_cycle,omitempty" validate:"omitempty,min=0"`
	EndCycle   *int    `json:"end_cycle,omitempty" validate:"omitempty,min=0"`
	Workdays   *int    `json:"workdays,omitempty" validate:"omitempty,min=0,max=31"`
}

// BulkUpdateFiscalYearRequest patches several months of one year.
type BulkUpdateFiscalYearRequest struct {
	Months []BulkMonthPatch `json:"months" validate:"required,min=1,dive"`
}

// BulkMonthPatch is one entry of a bulk update, keyed by month token.
type BulkMonthPatch struct {
	Token string `json:"rpt_month" validate:"required,len=7"`
	UpdateFiscalMonthRequest
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
}

func newErrorResponse(status int, message, detail string) ErrorResponse {
	return ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     message,
		Message:   detail,
	}
}
