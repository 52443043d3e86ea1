/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. httplog:    Structured slog request logging
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/wtv/*    Weekly verification (summaries, timesheets, navigation)
  /api/ctrs/*   Fiscal calendar maintenance

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a new router with all routes configured.
// allowedOrigins lists the CORS origins; empty falls back to localhost
// development defaults.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "timeverify"),
	)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level: slog.LevelInfo,
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Weekly verification routes
	r.Route("/api/wtv", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/reporting-months", h.ListReportingMonths)
		r.Get("/months/{rptMonth}/weeks", h.ListMonthWeeks)

		r.Route("/pay-period", func(r chi.Router) {
			r.Get("/", h.GetPayPeriod)
			r.Get("/previous", h.PreviousPayPeriod)
			r.Get("/next", h.NextPayPeriod)
		})

		r.Route("/summaries", func(r chi.Router) {
			r.Get("/", h.ListSummaries)
			r.Get("/export", h.ExportSummaries)
		})

		r.Get("/employees/{roid}/timesheet", h.GetTimesheet)
	})

	// Fiscal calendar routes
	r.Route("/api/ctrs", func(r chi.Router) {
		r.Route("/fiscal-years", func(r chi.Router) {
			r.Get("/", h.ListFiscalYears)
			r.Post("/", h.CreateFiscalYear)
			r.Get("/{year}", h.GetFiscalYear)
			r.Put("/{year}", h.BulkUpdateFiscalYear)
			r.Delete("/{year}", h.DeleteFiscalYear)
		})

		r.Route("/months", func(r chi.Router) {
			r.Get("/{rptMonth}", h.GetFiscalMonth)
			r.Put("/{rptMonth}", h.UpdateFiscalMonth)
		})
	})

	return r
}
