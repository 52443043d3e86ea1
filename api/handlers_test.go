package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verity/timeverify/api"
	"github.com/verity/timeverify/calendar"
	"github.com/verity/timeverify/engine"
	"github.com/verity/timeverify/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.New()

	store.SaveTimeCode(engine.TimeCode{Code: "100", Type: "T", Name: "Regular Time", Active: "Y", Letter: "M"})
	store.SaveTimeCode(engine.TimeCode{Code: "300", Type: "T", Name: "Adjustment", Active: "Y", Letter: "A"})

	svc := engine.NewService(store)
	svc.Months = store

	handler := api.NewHandler(svc, calendar.New(store))
	return api.NewRouter(handler, nil), store
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func tourPtr(i int) *int { return &i }

// =============================================================================
// PAY-PERIOD NAVIGATION
// =============================================================================

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/wtv/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetPayPeriod_SnapsToSunday(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/wtv/pay-period?date=2026-01-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	pp := decodeJSON[api.PayPeriodDTO](t, rec)
	assert.Equal(t, "2026-01-04", pp.Start)
	assert.Equal(t, "2026-01-10", pp.End)
	assert.Equal(t, "01/04/2026 - 01/10/2026", pp.Label)

	// No fiscal calendar seeded: plain calendar-month fallback, no nav.
	assert.Equal(t, "January 2026", pp.ReportingMonth)
	assert.False(t, pp.HasPrevious)
	assert.False(t, pp.HasNext)
}

func TestPayPeriod_PreviousAndNext(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/wtv/pay-period/previous?start=2026-01-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-12-28", decodeJSON[api.PayPeriodDTO](t, rec).Start)

	rec = doRequest(t, router, http.MethodGet, "/api/wtv/pay-period/next?start=2026-01-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-01-11", decodeJSON[api.PayPeriodDTO](t, rec).Start)
}

func TestPayPeriod_ReportingMonthFromCalendar(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/ctrs/fiscal-years", api.CreateFiscalYearRequest{Year: 2026})
	require.Equal(t, http.StatusCreated, rec.Code)

	// JAN2026 starts 2025-12-28 and covers both adjacent weeks.
	rec = doRequest(t, router, http.MethodGet, "/api/wtv/pay-period?date=2026-01-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	pp := decodeJSON[api.PayPeriodDTO](t, rec)
	assert.Equal(t, "JAN2026", pp.ReportingMonth)
	assert.True(t, pp.HasPrevious)
	assert.True(t, pp.HasNext)
}

func TestPayPeriod_RejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/wtv/pay-period?date=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Monday start
	rec = doRequest(t, router, http.MethodGet, "/api/wtv/pay-period/next?start=2026-01-05", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/wtv/pay-period/next", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeJSON[api.ErrorResponse](t, rec)
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.NotEmpty(t, body.Error)
}

// =============================================================================
// REPORTING MONTHS
// =============================================================================

func TestListReportingMonths(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/ctrs/fiscal-years", api.CreateFiscalYearRequest{Year: 2026})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/wtv/reporting-months", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	months := decodeJSON[[]api.FiscalMonthDTO](t, rec)
	require.Len(t, months, 12)
	assert.Equal(t, "SEP2026", months[0].Token)
	for _, m := range months {
		assert.NotEmpty(t, m.Cycles, "month %s should carry its week cycles", m.Token)
	}
}

// =============================================================================
// SUMMARIES
// =============================================================================

func seedRecords(store *memory.Store) {
	store.SaveEmployee(engine.Employee{ID: 21000001, Name: "RIVERA, ALEX", Type: "R", Active: "A", Tour: tourPtr(1)})
	store.AddNonCase(engine.NonCaseEntry{
		Date:       time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		EmployeeID: 21000001,
		Code:       "100",
		Hours:      decimal.NewFromInt(8),
	})
	store.AddCase(engine.CaseEntry{
		Date:       time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC),
		EmployeeID: 21000001,
		CaseID:     9001,
		Hours:      decimal.NewFromInt(2),
	})
	store.SaveCaseInfo(engine.CaseInfo{CaseID: 9001, TIN: 123456789, Name: "ACME CORP"})
}

func TestListSummaries(t *testing.T) {
	router, store := newTestRouter(t)
	seedRecords(store)

	rec := doRequest(t, router, http.MethodGet, "/api/wtv/summaries?start=2026-01-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summaries := decodeJSON[[]api.SummaryDTO](t, rec)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(21000001), summaries[0].EmployeeID)
	assert.Equal(t, "10.00", summaries[0].TourOfDuty)
	assert.Equal(t, "2.00", summaries[0].HoursWorked)
	assert.Equal(t, 2, summaries[0].ReportDays)
	assert.Equal(t, "REG", summaries[0].TourType)
	assert.Equal(t, "2026-01-06", summaries[0].LastDateEOD)
}

func TestListSummaries_RequiresStart(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/wtv/summaries", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportSummaries_CSV(t *testing.T) {
	router, store := newTestRouter(t)
	seedRecords(store)

	rec := doRequest(t, router, http.MethodGet, "/api/wtv/summaries/export?start=2026-01-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "summaries-2026-01-04.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "employee_id,name,"))
	assert.True(t, strings.HasPrefix(lines[1], "21000001,"))
}

// failingWriter drops every write, standing in for a client that went
// away mid-download.
type failingWriter struct{ header http.Header }

func (f *failingWriter) Header() http.Header       { return f.header }
func (f *failingWriter) Write([]byte) (int, error) { return 0, errors.New("client went away") }
func (f *failingWriter) WriteHeader(int)           {}

func TestExportSummaries_WriteFailureLogged(t *testing.T) {
	store := memory.New()
	seedRecords(store)
	svc := engine.NewService(store)
	svc.Months = store
	handler := api.NewHandler(svc, calendar.New(store))

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	req := httptest.NewRequest(http.MethodGet, "/api/wtv/summaries/export?start=2026-01-04", nil)
	handler.ExportSummaries(&failingWriter{header: make(http.Header)}, req)

	assert.Contains(t, logs.String(), "summary export aborted")
}

// =============================================================================
// TIMESHEET
// =============================================================================

func TestGetTimesheet(t *testing.T) {
	router, store := newTestRouter(t)
	seedRecords(store)

	rec := doRequest(t, router, http.MethodGet, "/api/wtv/employees/21000001/timesheet?start=2026-01-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ts := decodeJSON[api.TimesheetDTO](t, rec)
	assert.Equal(t, "RIVERA, ALEX", ts.Name)
	require.Len(t, ts.CaseRows, 1)
	assert.Equal(t, "123-45-6789", ts.CaseRows[0].TIN)
	assert.Equal(t, "2.00", ts.TotalCaseDirect)
	require.Len(t, ts.NonCaseRows, 1)
	assert.Equal(t, "8.00", ts.NonCaseRows[0].Days["MON"])
}

func TestGetTimesheet_UnknownEmployee(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/wtv/employees/21000001/timesheet?start=2026-01-04", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/wtv/employees/abc/timesheet?start=2026-01-04", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// FISCAL CALENDAR
// =============================================================================

func TestFiscalYear_Lifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	// Create
	rec := doRequest(t, router, http.MethodPost, "/api/ctrs/fiscal-years", api.CreateFiscalYearRequest{Year: 2026})
	require.Equal(t, http.StatusCreated, rec.Code)
	year := decodeJSON[api.FiscalYearDTO](t, rec)
	assert.Equal(t, 2026, year.Year)
	assert.Len(t, year.Months, 12)
	assert.Equal(t, "OCT2025", year.Months[0].Token)
	assert.Equal(t, 52, year.TotalWeeks)

	// Duplicate create conflicts
	rec = doRequest(t, router, http.MethodPost, "/api/ctrs/fiscal-years", api.CreateFiscalYearRequest{Year: 2026})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// List and read back
	rec = doRequest(t, router, http.MethodGet, "/api/ctrs/fiscal-years", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2026}, decodeJSON[[]int](t, rec))

	rec = doRequest(t, router, http.MethodGet, "/api/ctrs/fiscal-years/2026", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Delete
	rec = doRequest(t, router, http.MethodDelete, "/api/ctrs/fiscal-years/2026", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/ctrs/fiscal-years/2026", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateFiscalYear_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/ctrs/fiscal-years", api.CreateFiscalYearRequest{Year: 1950})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/ctrs/fiscal-years", map[string]string{"year": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteFiscalYear_RefusedWhileInUse(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/ctrs/fiscal-years", api.CreateFiscalYearRequest{Year: 2026})
	require.Equal(t, http.StatusCreated, rec.Code)

	seedRecords(store)

	rec = doRequest(t, router, http.MethodDelete, "/api/ctrs/fiscal-years/2026", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFiscalMonth_GetAndPatch(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/ctrs/fiscal-years", api.CreateFiscalYearRequest{Year: 2026})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/ctrs/months/OCT2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	month := decodeJSON[api.FiscalMonthDTO](t, rec)
	assert.Equal(t, 2026, month.FiscalYear)
	assert.Len(t, month.Cycles, 4)

	weeks := 5
	rec = doRequest(t, router, http.MethodPut, "/api/ctrs/months/OCT2025", api.UpdateFiscalMonthRequest{Weeks: &weeks})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decodeJSON[api.FiscalMonthDTO](t, rec).Weeks)

	// Unknown and malformed tokens
	rec = doRequest(t, router, http.MethodGet, "/api/ctrs/months/OCT2031", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(t, router, http.MethodGet, "/api/ctrs/months/XXX2025", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
