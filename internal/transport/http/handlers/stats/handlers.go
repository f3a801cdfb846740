package statshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/domain/stats"
	"kpitrack/internal/platform/metrics"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
	"kpitrack/internal/transport/http/shared"
)

type Handler struct {
	Service *stats.Service
	Metrics *metrics.Collector
}

func NewHandler(service *stats.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Metrics: collector}
}

// Register adds the statistics routes next to the entry routes; the client
// reads the leaderboard from the same resource it writes entries to.
func (h *Handler) Register(r chi.Router) {
	r.Get("/statistics", h.handleStatistics)
	r.Get("/available-filters", h.handleAvailableFilters)
	r.Get("/department-stats", h.handleDepartmentStats)
	r.Get("/role-stats", h.handleRoleStats)
	r.With(middleware.RequireRole(middleware.RoleAdmin)).Get("/all-department-stats", h.handleAllDepartmentStats)
	r.With(middleware.RequireRole(middleware.RoleAdmin)).Get("/statistics/report", h.handleReport)
}

// optionalMonth parses a month query value. Absent means no filtering; a
// malformed or out-of-range value is a validation issue, never a silently
// widened filter.
func optionalMonth(v *shared.Validator, raw string) int {
	if raw == "" {
		return 0
	}
	month, err := strconv.Atoi(raw)
	if err != nil {
		v.Add("month", "must be a number")
		return 0
	}
	v.Month("month", month)
	return month
}

func optionalYear(v *shared.Validator, raw string) int {
	if raw == "" {
		return 0
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		v.Add("year", "must be a number")
		return 0
	}
	v.Year("year", year)
	return year
}

// filterFromQuery builds the leaderboard filter, pinning nodal officers to
// their own department. The returned validator carries any malformed
// month/year values.
func filterFromQuery(r *http.Request) (stats.Filter, *shared.Validator) {
	q := r.URL.Query()
	v := shared.NewValidator()
	filter := stats.Filter{
		Department: q.Get("department"),
		Role:       q.Get("role"),
		TemplateID: q.Get("templateId"),
		Month:      optionalMonth(v, q.Get("month")),
		Year:       optionalYear(v, q.Get("year")),
		Status:     q.Get("status"),
	}
	user, _ := middleware.GetUser(r.Context())
	if user.Role != middleware.RoleAdmin {
		filter.Department = user.Department
	}
	return filter, v
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	filter, v := filterFromQuery(r)
	if v.Reject(w, requestID) {
		return
	}
	p := shared.ParsePagination(r, 20, 100)
	h.Metrics.RecordStatsQuery()

	data, err := h.Service.Statistics(r.Context(), filter, p.Page, p.Limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "statistics_failed", "failed to compute statistics", requestID)
		return
	}
	api.Success(w, data, requestID)
}

func (h *Handler) handleAvailableFilters(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	department := r.URL.Query().Get("department")
	user, _ := middleware.GetUser(r.Context())
	if user.Role != middleware.RoleAdmin {
		department = user.Department
	}

	filters, summary, err := h.Service.AvailableFilters(r.Context(), department)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "filters_failed", "failed to load available filters", requestID)
		return
	}
	api.Success(w, map[string]any{"availableFilters": filters, "summary": summary}, requestID)
}

func (h *Handler) handleDepartmentStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	filter, v := filterFromQuery(r)
	if v.Reject(w, requestID) {
		return
	}
	h.Metrics.RecordStatsQuery()

	rows, err := h.Service.DepartmentStats(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_stats_failed", "failed to compute department statistics", requestID)
		return
	}
	api.Success(w, rows, requestID)
}

func (h *Handler) handleRoleStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	filter, v := filterFromQuery(r)
	if v.Reject(w, requestID) {
		return
	}
	h.Metrics.RecordStatsQuery()

	rows, err := h.Service.RoleStats(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_stats_failed", "failed to compute role statistics", requestID)
		return
	}
	api.Success(w, rows, requestID)
}

func (h *Handler) handleAllDepartmentStats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	v := shared.NewValidator()
	month := optionalMonth(v, q.Get("month"))
	year := optionalYear(v, q.Get("year"))
	if v.Reject(w, requestID) {
		return
	}
	p := shared.ParsePagination(r, 20, 100)
	h.Metrics.RecordStatsQuery()

	rows, total, err := h.Service.AllDepartmentStats(r.Context(), month, year, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "all_department_stats_failed", "failed to compute department comparison", requestID)
		return
	}
	api.Success(w, shared.NewPageResult(rows, total, p), requestID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	filter, v := filterFromQuery(r)
	if v.Reject(w, requestID) {
		return
	}

	filePath, err := h.Service.GenerateLeaderboardPDF(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate report", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.pdf"`)
	http.ServeFile(w, r, filePath)
}
