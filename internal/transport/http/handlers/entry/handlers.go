package entryhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/domain/audit"
	"kpitrack/internal/domain/auth"
	"kpitrack/internal/domain/employee"
	"kpitrack/internal/domain/entry"
	"kpitrack/internal/domain/notifications"
	"kpitrack/internal/domain/template"
	"kpitrack/internal/platform/metrics"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
	"kpitrack/internal/transport/http/shared"
)

type Handler struct {
	Service   *entry.Service
	Employees *employee.Service
	Users     *auth.Service
	Notify    *notifications.Service
	Audit     *audit.Service
	Metrics   *metrics.Collector
}

func NewHandler(service *entry.Service, employees *employee.Service, users *auth.Service, notify *notifications.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Employees: employees, Users: users, Notify: notify, Audit: auditSvc, Metrics: collector}
}

// Register adds the entry routes to an already-mounted router. Static
// segments are registered before the {entryID} wildcard.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/search", h.handleSearch)
	r.Get("/employee/{employeeID}", h.handleByEmployee)
	r.Get("/template/{templateID}", h.handleByTemplate)
	r.Get("/month/{month}/year/{year}", h.handleByPeriod)
	r.Get("/status/{status}", h.handleByStatus)
	r.Get("/check/{employeeID}/{templateID}/{month}/{year}", h.handleCheck)
	r.Get("/find/{employeeID}/{templateID}/{month}/{year}", h.handleFind)
	r.Get("/workflow/{employeeID}/{templateID}/{month}/{year}", h.handleWorkflow)
	r.Get("/available/{employeeID}/{templateID}", h.handleAvailablePeriods)
	r.Get("/summary/{employeeID}", h.handleSummary)
	r.Get("/{entryID}", h.handleGet)
	r.Put("/{entryID}", h.handleUpdate)
	r.Put("/{entryID}/status", h.handleUpdateStatus)
	r.With(middleware.RequireRole(middleware.RoleAdmin)).Delete("/{entryID}", h.handleDelete)
}

// parsePeriod reads the month/year pair shared by the tuple routes.
func parsePeriod(r *http.Request) (month, year int, ok bool) {
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return 0, 0, false
	}
	year, err = strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return 0, 0, false
	}
	return month, year, true
}

// canAccessEmployee checks department scoping for the target employee.
func (h *Handler) canAccessEmployee(r *http.Request, employeeID string) (bool, error) {
	user, _ := middleware.GetUser(r.Context())
	if user.Role == middleware.RoleAdmin {
		return true, nil
	}
	emp, err := h.Employees.Get(r.Context(), employeeID)
	if err != nil {
		return false, err
	}
	return middleware.CanAccessDepartment(user, emp.Department), nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, _ := strconv.Atoi(q.Get("month"))
	year, _ := strconv.Atoi(q.Get("year"))
	h.respondList(w, r, entry.ListFilter{
		Search:         q.Get("search"),
		EmployeeID:     q.Get("employeeId"),
		TemplateID:     q.Get("templateId"),
		DepartmentSlug: q.Get("department"),
		Status:         q.Get("status"),
		Month:          month,
		Year:           year,
	})
}

// respondList applies department scoping and pagination to a filtered
// listing. Nodal officers are pinned to their own department whatever
// the filter asked for.
func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, filter entry.ListFilter) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	p := shared.ParsePagination(r, 20, 100)

	if user.Role != middleware.RoleAdmin {
		filter.DepartmentSlug = user.Department
	}

	entries, total, err := h.Service.List(r.Context(), filter, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_list_failed", "failed to list entries", requestID)
		return
	}
	api.Success(w, shared.NewPageResult(entries, total, p), requestID)
}

// searchFilter combines free text (q), the tuple params and a kpiNames JSON
// array into one listing filter. Malformed values land on the validator.
func searchFilter(r *http.Request) (entry.ListFilter, *shared.Validator) {
	q := r.URL.Query()
	filter := entry.ListFilter{
		Search:     q.Get("q"),
		EmployeeID: q.Get("employeeId"),
		TemplateID: q.Get("templateId"),
	}
	v := shared.NewValidator()
	if raw := q.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("month", "must be a number")
		} else {
			v.Month("month", month)
			filter.Month = month
		}
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("year", "must be a number")
		} else {
			v.Year("year", year)
			filter.Year = year
		}
	}
	if raw := q.Get("kpiNames"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filter.KpiLabels); err != nil {
			v.Add("kpiNames", "must be a JSON array of strings")
		}
	}
	return filter, v
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter, v := searchFilter(r)
	if v.Reject(w, requestID) {
		return
	}
	if filter.Search == "" && filter.EmployeeID == "" && filter.TemplateID == "" &&
		filter.Month == 0 && filter.Year == 0 && len(filter.KpiLabels) == 0 {
		api.Fail(w, http.StatusBadRequest, "missing_query", "at least one search criterion is required", requestID)
		return
	}
	h.respondList(w, r, filter)
}

func (h *Handler) handleByEmployee(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, entry.ListFilter{EmployeeID: chi.URLParam(r, "employeeID")})
}

func (h *Handler) handleByTemplate(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, entry.ListFilter{TemplateID: chi.URLParam(r, "templateID")})
}

func (h *Handler) handleByPeriod(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	month, year, ok := parsePeriod(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month and year must be numbers", requestID)
		return
	}
	h.respondList(w, r, entry.ListFilter{Month: month, Year: year})
}

func (h *Handler) handleByStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	status := chi.URLParam(r, "status")

	v := shared.NewValidator()
	v.Enum("status", status, entry.Statuses, "unknown status")
	if v.Reject(w, requestID) {
		return
	}
	h.respondList(w, r, entry.ListFilter{Status: status})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	e, err := h.Service.Get(r.Context(), chi.URLParam(r, "entryID"))
	if errors.Is(err, entry.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "entry_not_found", "entry not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_get_failed", "failed to load entry", requestID)
		return
	}

	allowed, err := h.canAccessEmployee(r, e.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_get_failed", "failed to load entry", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "department access denied", requestID)
		return
	}
	api.Success(w, e, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload entry.Input
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("templateId", payload.TemplateID, "template id is required")
	v.Month("month", payload.Month)
	v.Year("year", payload.Year)
	if v.Reject(w, requestID) {
		return
	}

	allowed, err := h.canAccessEmployee(r, payload.EmployeeID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_create_failed", "failed to create entry", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "department access denied", requestID)
		return
	}

	created, err := h.Service.Create(r.Context(), payload)
	if h.failWrite(w, err, requestID) {
		return
	}

	h.Metrics.RecordEntryWrite()
	if err := h.Audit.Record(r.Context(), actor.UserID, "entry.create", "entry", created.ID, requestID, map[string]any{
		"employeeId": created.EmployeeID, "templateId": created.TemplateID, "month": created.Month, "year": created.Year, "score": created.Score,
	}); err != nil {
		slog.Warn("audit entry.create failed", "err", err)
	}
	api.Created(w, created, requestID)
}

// failWrite maps the shared write-path failures. Returns true when a
// response was written.
func (h *Handler) failWrite(w http.ResponseWriter, err error, requestID string) bool {
	if err == nil {
		return false
	}
	var invalid *entry.InvalidValuesError
	switch {
	case errors.As(err, &invalid):
		issues := make([]shared.ValidationIssue, 0, len(invalid.Issues))
		for _, issue := range invalid.Issues {
			issues = append(issues, shared.ValidationIssue{Field: issue.Field, Reason: issue.Reason})
		}
		shared.FailValidation(w, requestID, issues)
	case errors.Is(err, entry.ErrDuplicate):
		api.Fail(w, http.StatusConflict, "entry_exists", "an entry already exists for this employee, template and period", requestID)
	case errors.Is(err, entry.ErrUnknownReference):
		api.Fail(w, http.StatusBadRequest, "unknown_reference", "employee or template does not exist", requestID)
	case errors.Is(err, entry.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "entry_not_found", "entry not found", requestID)
	case errors.Is(err, template.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "template_not_found", "template not found", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "entry_write_failed", "failed to save entry", requestID)
	}
	return true
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	entryID := chi.URLParam(r, "entryID")

	existing, err := h.Service.Get(r.Context(), entryID)
	if errors.Is(err, entry.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "entry_not_found", "entry not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_update_failed", "failed to update entry", requestID)
		return
	}

	allowed, err := h.canAccessEmployee(r, existing.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_update_failed", "failed to update entry", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "department access denied", requestID)
		return
	}

	var payload struct {
		KpiNames []entry.KpiName  `json:"kpiNames"`
		Values   []entry.KpiValue `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	updated, err := h.Service.Update(r.Context(), entryID, payload.KpiNames, payload.Values)
	if h.failWrite(w, err, requestID) {
		return
	}

	h.Metrics.RecordEntryWrite()
	if err := h.Audit.Record(r.Context(), actor.UserID, "entry.update", "entry", entryID, requestID, map[string]any{"score": updated.Score}); err != nil {
		slog.Warn("audit entry.update failed", "err", err)
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	entryID := chi.URLParam(r, "entryID")

	existing, err := h.Service.Get(r.Context(), entryID)
	if errors.Is(err, entry.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "entry_not_found", "entry not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_status_failed", "failed to update entry status", requestID)
		return
	}

	allowed, err := h.canAccessEmployee(r, existing.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_status_failed", "failed to update entry status", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "department access denied", requestID)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Enum("status", payload.Status, entry.Statuses, "unknown status")
	if v.Reject(w, requestID) {
		return
	}

	updated, err := h.Service.UpdateStatus(r.Context(), entryID, payload.Status)
	if h.failWrite(w, err, requestID) {
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "entry.status", "entry", entryID, requestID, map[string]string{"status": payload.Status}); err != nil {
		slog.Warn("audit entry.status failed", "err", err)
	}

	// Finalization is the event admins care about.
	if payload.Status == entry.StatusGenerated {
		if adminIDs, err := h.Users.UserIDsByRole(r.Context(), middleware.RoleAdmin); err != nil {
			slog.Warn("entry generated notification lookup failed", "err", err)
		} else {
			for _, adminID := range adminIDs {
				h.Notify.Notify(r.Context(), adminID, notifications.TypeEntryGenerated, "Entry finalized",
					"An entry for "+strconv.Itoa(updated.Month)+"/"+strconv.Itoa(updated.Year)+" was finalized.")
			}
		}
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	entryID := chi.URLParam(r, "entryID")

	err := h.Service.Delete(r.Context(), entryID)
	if errors.Is(err, entry.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "entry_not_found", "entry not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_delete_failed", "failed to delete entry", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "entry.delete", "entry", entryID, requestID, nil); err != nil {
		slog.Warn("audit entry.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	month, year, ok := parsePeriod(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month and year must be numbers", requestID)
		return
	}

	exists, err := h.Service.Exists(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "templateID"), month, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_check_failed", "failed to check entry", requestID)
		return
	}
	api.Success(w, map[string]bool{"exists": exists}, requestID)
}

func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	month, year, ok := parsePeriod(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month and year must be numbers", requestID)
		return
	}

	e, err := h.Service.FindByTuple(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "templateID"), month, year)
	if errors.Is(err, entry.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "entry_not_found", "no entry for this employee, template and period", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_find_failed", "failed to find entry", requestID)
		return
	}
	api.Success(w, e, requestID)
}

func (h *Handler) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	month, year, ok := parsePeriod(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month and year must be numbers", requestID)
		return
	}
	v := shared.NewValidator()
	v.Month("month", month)
	v.Year("year", year)
	if v.Reject(w, requestID) {
		return
	}

	allowed, err := h.canAccessEmployee(r, employeeID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_workflow_failed", "failed to resolve workflow entry", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "department access denied", requestID)
		return
	}

	e, created, err := h.Service.WorkflowEntry(r.Context(), employeeID, chi.URLParam(r, "templateID"), month, year)
	if h.failWrite(w, err, requestID) {
		return
	}

	if created {
		h.Metrics.RecordEntryWrite()
		if err := h.Audit.Record(r.Context(), actor.UserID, "entry.workflow_create", "entry", e.ID, requestID, nil); err != nil {
			slog.Warn("audit entry.workflow_create failed", "err", err)
		}
	}
	api.Success(w, map[string]any{"entry": e, "isNew": created}, requestID)
}

func (h *Handler) handleAvailablePeriods(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	periods, err := h.Service.AvailablePeriods(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "templateID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_periods_failed", "failed to list entry periods", requestID)
		return
	}
	api.Success(w, periods, requestID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	allowed, err := h.canAccessEmployee(r, employeeID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_summary_failed", "failed to load summary", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "department access denied", requestID)
		return
	}

	cells, err := h.Service.Summary(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "entry_summary_failed", "failed to load summary", requestID)
		return
	}
	api.Success(w, cells, requestID)
}
