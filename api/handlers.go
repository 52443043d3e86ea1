/*
handlers.go - HTTP API handlers for weekly verification and the fiscal calendar

PURPOSE:
  Exposes the verification engine and fiscal calendar via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Verification:
    GET /api/wtv/health                         Liveness probe
    GET /api/wtv/reporting-months               Month dropdown, newest first
    GET /api/wtv/months/{rptMonth}/weeks        A month's Sunday-start weeks
    GET /api/wtv/pay-period                     Week containing ?date (default today)
    GET /api/wtv/pay-period/previous            Week before ?start
    GET /api/wtv/pay-period/next                Week after ?start
    GET /api/wtv/summaries                      Group view for ?start week, optional ?roid prefix
    GET /api/wtv/summaries/export               Same view as CSV download
    GET /api/wtv/employees/{roid}/timesheet     Drill-down for one employee

  Calendar:
    GET    /api/ctrs/fiscal-years               Known years, newest first
    POST   /api/ctrs/fiscal-years               Generate and persist a year
    GET    /api/ctrs/fiscal-years/{year}        Full year
    PUT    /api/ctrs/fiscal-years/{year}        Bulk month patch
    DELETE /api/ctrs/fiscal-years/{year}        Remove a year
    GET    /api/ctrs/months/{rptMonth}          One month with cycles
    PUT    /api/ctrs/months/{rptMonth}          Patch one month

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed dates/tokens, out-of-range years
  - 404: Unknown employee, year, or month
  - 409: Duplicate year, year still referenced by time records
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/verity/timeverify/calendar"
	"github.com/verity/timeverify/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *engine.Service
	Calendar *calendar.Generator

	validate *validator.Validate
}

// NewHandler creates a new handler over the verification service and
// the calendar generator.
func NewHandler(service *engine.Service, cal *calendar.Generator) *Handler {
	return &Handler{
		Service:  service,
		Calendar: cal,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// PAY-PERIOD NAVIGATION
// =============================================================================

// GetPayPeriod returns the Sunday-start week containing ?date, or the
// current week when the parameter is absent.
func (h *Handler) GetPayPeriod(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		var err error
		if date, err = time.ParseInLocation(dateLayout, raw, time.UTC); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.toPayPeriodDTO(r.Context(), engine.WeekOf(date)))
}

// PreviousPayPeriod returns the week before ?start.
func (h *Handler) PreviousPayPeriod(w http.ResponseWriter, r *http.Request) {
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.toPayPeriodDTO(r.Context(), week.Previous()))
}

// NextPayPeriod returns the week after ?start.
func (h *Handler) NextPayPeriod(w http.ResponseWriter, r *http.Request) {
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.toPayPeriodDTO(r.Context(), week.Next()))
}

// toPayPeriodDTO labels the week with its reporting month (falling back
// to the calendar month) and checks the adjacent weeks for navigation.
func (h *Handler) toPayPeriodDTO(ctx context.Context, week engine.Week) PayPeriodDTO {
	label, _ := h.Service.ReportingMonth(ctx, week)
	_, hasPrev := h.Service.ReportingMonth(ctx, week.Previous())
	_, hasNext := h.Service.ReportingMonth(ctx, week.Next())
	return PayPeriodDTO{
		Start:          week.Start.Format(dateLayout),
		End:            week.End().Format(dateLayout),
		Label:          week.String(),
		ReportingMonth: label,
		HasPrevious:    hasPrev,
		HasNext:        hasNext,
	}
}

// weekParam parses the required ?start query parameter into a week.
func (h *Handler) weekParam(w http.ResponseWriter, r *http.Request) (engine.Week, bool) {
	raw := r.URL.Query().Get("start")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing start parameter", nil)
		return engine.Week{}, false
	}
	start, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start format (use YYYY-MM-DD)", err)
		return engine.Week{}, false
	}
	week, err := engine.NewWeek(start, start.AddDate(0, 0, 6))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Start must be a Sunday", err)
		return engine.Week{}, false
	}
	return week, true
}

// =============================================================================
// REPORTING MONTHS AND WEEKS
// =============================================================================

// ListReportingMonths returns every fiscal month, newest first, each
// with its derived week cycles, for the month selection dropdown.
func (h *Handler) ListReportingMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.Calendar.ReportingMonths(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reporting months", err)
		return
	}

	dtos := make([]FiscalMonthDTO, 0, len(months))
	for _, m := range months {
		dtos = append(dtos, toMonthDTO(m, true))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListMonthWeeks returns a fiscal month's Sunday-start weeks for the
// week selection dropdown.
func (h *Handler) ListMonthWeeks(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "rptMonth")

	month, err := h.Calendar.MonthByToken(r.Context(), token)
	if err != nil {
		writeCalendarError(w, err, "Failed to get month")
		return
	}

	weeks := make([]WeekDTO, 0, month.Weeks)
	for _, c := range month.Cycles() {
		weeks = append(weeks, toWeekDTO(engine.WeekOf(c.Start)))
	}
	writeJSON(w, http.StatusOK, weeks)
}

// =============================================================================
// GROUP SUMMARIES
// =============================================================================

// ListSummaries returns the group weekly view for the ?start week.
// ?roid narrows the listing by assignment-number prefix.
func (h *Handler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}

	summaries, err := h.Service.WeeklySummaries(r.Context(), week, r.URL.Query().Get("roid"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute summaries", err)
		return
	}

	dtos := make([]SummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, toSummaryDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// csvHeader is the export column order, matching the group view.
var csvHeader = []string{
	"employee_id", "name", "tour_of_duty", "adjusted_tour", "hours_worked",
	"case_direct", "code_direct", "overhead", "report_days", "tour_type",
	"last_date_eod",
}

// ExportSummaries streams the group weekly view as a CSV download.
func (h *Handler) ExportSummaries(w http.ResponseWriter, r *http.Request) {
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}

	summaries, err := h.Service.WeeklySummaries(r.Context(), week, r.URL.Query().Get("roid"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute summaries", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="summaries-%s.csv"`, week.Start.Format(dateLayout)))

	cw := csv.NewWriter(w)
	cw.Write(csvHeader)
	for _, s := range summaries {
		lastDate := ""
		if !s.LastDateEOD.IsZero() {
			lastDate = s.LastDateEOD.Format(dateLayout)
		}
		cw.Write([]string{
			strconv.FormatInt(s.EmployeeID, 10),
			s.Name,
			s.TourOfDuty.StringFixed(2),
			s.AdjustedTour.StringFixed(2),
			s.HoursWorked.StringFixed(2),
			s.CaseDirect.StringFixed(2),
			s.CodeDirect.StringFixed(2),
			s.Overhead.StringFixed(2),
			strconv.Itoa(s.ReportDays),
			s.TourType,
			lastDate,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		// Headers are already on the wire; log the aborted download.
		slog.ErrorContext(r.Context(), "summary export aborted", "error", err)
	}
}

// =============================================================================
// EMPLOYEE TIMESHEET
// =============================================================================

// GetTimesheet returns the drill-down view for one employee and week.
func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "roid"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return
	}

	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}

	ts, err := h.Service.EmployeeTimesheet(r.Context(), employeeID, week)
	if err != nil {
		if engine.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to build timesheet", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimesheetDTO(ts))
}

// =============================================================================
// FISCAL YEAR HANDLERS
// =============================================================================

// ListFiscalYears returns the known fiscal years, newest first.
func (h *Handler) ListFiscalYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.Calendar.Years(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list fiscal years", err)
		return
	}
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, years)
}

// CreateFiscalYear generates and persists a fiscal year.
func (h *Handler) CreateFiscalYear(w http.ResponseWriter, r *http.Request) {
	var req CreateFiscalYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	var start *time.Time
	if req.Start != nil {
		t, err := time.ParseInLocation(dateLayout, *req.Start, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
			return
		}
		start = &t
	}

	year, err := h.Calendar.Create(r.Context(), req.Year, start)
	if err != nil {
		writeCalendarError(w, err, "Failed to create fiscal year")
		return
	}
	writeJSON(w, http.StatusCreated, toYearDTO(year))
}

// GetFiscalYear returns one full fiscal year.
func (h *Handler) GetFiscalYear(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	fy, err := h.Calendar.Year(r.Context(), year)
	if err != nil {
		writeCalendarError(w, err, "Failed to get fiscal year")
		return
	}
	writeJSON(w, http.StatusOK, toYearDTO(fy))
}

// BulkUpdateFiscalYear patches several months of one fiscal year.
func (h *Handler) BulkUpdateFiscalYear(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	var req BulkUpdateFiscalYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	patches := make([]calendar.MonthPatch, 0, len(req.Months))
	for _, m := range req.Months {
		patch, err := toMonthPatch(m.Token, m.UpdateFiscalMonthRequest)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month patch", err)
			return
		}
		patches = append(patches, patch)
	}

	fy, err := h.Calendar.BulkUpdate(r.Context(), year, patches)
	if err != nil {
		writeCalendarError(w, err, "Failed to update fiscal year")
		return
	}
	writeJSON(w, http.StatusOK, toYearDTO(fy))
}

// DeleteFiscalYear removes a fiscal year's rows.
func (h *Handler) DeleteFiscalYear(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	if err := h.Calendar.Delete(r.Context(), year); err != nil {
		writeCalendarError(w, err, "Failed to delete fiscal year")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, false
	}
	return year, true
}

// =============================================================================
// FISCAL MONTH HANDLERS
// =============================================================================

// GetFiscalMonth returns one month row with its derived week cycles.
func (h *Handler) GetFiscalMonth(w http.ResponseWriter, r *http.Request) {
	month, err := h.Calendar.MonthByToken(r.Context(), chi.URLParam(r, "rptMonth"))
	if err != nil {
		writeCalendarError(w, err, "Failed to get month")
		return
	}
	writeJSON(w, http.StatusOK, toMonthDTO(month, true))
}

// UpdateFiscalMonth patches one month row.
func (h *Handler) UpdateFiscalMonth(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "rptMonth")

	var req UpdateFiscalMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	patch, err := toMonthPatch(token, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month patch", err)
		return
	}

	month, err := h.Calendar.UpdateMonth(r.Context(), token, patch)
	if err != nil {
		writeCalendarError(w, err, "Failed to update month")
		return
	}
	writeJSON(w, http.StatusOK, toMonthDTO(month, true))
}

func toMonthPatch(token string, req UpdateFiscalMonthRequest) (calendar.MonthPatch, error) {
	patch := calendar.MonthPatch{
		Token:      token,
		Weeks:      req.Weeks,
		StartCycle: req.StartCycle,
		EndCycle:   req.EndCycle,
		Workdays:   req.Workdays,
	}
	if req.Start != nil {
		t, err := time.ParseInLocation(dateLayout, *req.Start, time.UTC)
		if err != nil {
			return calendar.MonthPatch{}, err
		}
		patch.Start = &t
	}
	if req.End != nil {
		t, err := time.ParseInLocation(dateLayout, *req.End, time.UTC)
		if err != nil {
			return calendar.MonthPatch{}, err
		}
		patch.End = &t
	}
	return patch, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	writeJSON(w, status, newErrorResponse(status, message, detail))
}

// writeCalendarError maps calendar sentinel errors to HTTP statuses.
func writeCalendarError(w http.ResponseWriter, err error, message string) {
	switch {
	case calendar.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case calendar.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case calendar.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
