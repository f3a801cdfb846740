package templatehandler

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
	"kpitrack/internal/domain/notifications"
	"kpitrack/internal/domain/template"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
	"kpitrack/internal/transport/http/shared"
)

type Handler struct {
	Service *template.Service
	Users   *auth.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *template.Service, users *auth.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Users: users, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/templates", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/employee/{employeeID}", h.handleForEmployee)
		r.Get("/{templateID}", h.handleGet)
		r.Get("/{templateID}/form-structure", h.handleFormStructure)
		r.Get("/{templateID}/versions", h.handleVersions)
		r.Get("/{templateID}/versions/{version}", h.handleVersion)
		r.With(middleware.RequireRole(middleware.RoleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(middleware.RoleAdmin)).Put("/{templateID}", h.handleUpdate)
		r.With(middleware.RequireRole(middleware.RoleAdmin)).Delete("/{templateID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	p := shared.ParsePagination(r, 20, 100)

	filter := template.ListFilter{
		Search:         r.URL.Query().Get("search"),
		DepartmentSlug: r.URL.Query().Get("department"),
		Frequency:      r.URL.Query().Get("frequency"),
		Role:           r.URL.Query().Get("role"),
	}
	if user.Role != middleware.RoleAdmin {
		filter.DepartmentSlug = user.Department
	}

	templates, total, err := h.Service.List(r.Context(), filter, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_list_failed", "failed to list templates", requestID)
		return
	}
	api.Success(w, shared.NewPageResult(templates, total, p), requestID)
}

func (h *Handler) handleForEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	templates, err := h.Service.ForEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_list_failed", "failed to list templates", requestID)
		return
	}
	api.Success(w, templates, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	tmpl, err := h.Service.Get(r.Context(), chi.URLParam(r, "templateID"))
	if errors.Is(err, template.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "template_not_found", "template not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_get_failed", "failed to load template", requestID)
		return
	}
	api.Success(w, tmpl, requestID)
}

func (h *Handler) handleFormStructure(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	form, err := h.Service.FormStructure(r.Context(), chi.URLParam(r, "templateID"))
	if errors.Is(err, template.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "template_not_found", "template not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_get_failed", "failed to load form structure", requestID)
		return
	}
	api.Success(w, form, requestID)
}

func (h *Handler) handleVersions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	versions, err := h.Service.Versions(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_versions_failed", "failed to list template versions", requestID)
		return
	}
	api.Success(w, versions, requestID)
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_version", "version must be a number", requestID)
		return
	}

	snapshot, err := h.Service.Version(r.Context(), chi.URLParam(r, "templateID"), version)
	if errors.Is(err, template.ErrVersionNotFound) {
		api.Fail(w, http.StatusNotFound, "version_not_found", "template version not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_version_failed", "failed to load template version", requestID)
		return
	}
	api.Success(w, snapshot, requestID)
}

func (h *Handler) decodeSpec(w http.ResponseWriter, r *http.Request, requestID string) (template.Spec, bool) {
	var spec template.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return template.Spec{}, false
	}
	user, _ := middleware.GetUser(r.Context())
	spec.Actor = user.UserID
	return spec, true
}

func failSpec(w http.ResponseWriter, err *template.InvalidSpecError, requestID string) {
	issues := make([]shared.ValidationIssue, 0, len(err.Issues))
	for _, issue := range err.Issues {
		issues = append(issues, shared.ValidationIssue{Field: issue.Field, Reason: issue.Reason})
	}
	shared.FailValidation(w, requestID, issues)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	spec, ok := h.decodeSpec(w, r, requestID)
	if !ok {
		return
	}

	tmpl, err := h.Service.Create(r.Context(), spec)
	var invalid *template.InvalidSpecError
	if errors.As(err, &invalid) {
		failSpec(w, invalid, requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_create_failed", "failed to create template", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "template.create", "template", tmpl.ID, requestID, spec); err != nil {
		slog.Warn("audit template.create failed", "err", err)
	}
	api.Created(w, tmpl, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	templateID := chi.URLParam(r, "templateID")

	spec, ok := h.decodeSpec(w, r, requestID)
	if !ok {
		return
	}

	tmpl, err := h.Service.Update(r.Context(), templateID, spec)
	var invalid *template.InvalidSpecError
	if errors.As(err, &invalid) {
		failSpec(w, invalid, requestID)
		return
	}
	if errors.Is(err, template.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "template_not_found", "template not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_update_failed", "failed to update template", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "template.update", "template", templateID, requestID, spec); err != nil {
		slog.Warn("audit template.update failed", "err", err)
	}

	// Nodal officers in the scorecard's department learn about schema changes.
	if userIDs, err := h.Users.UserIDsByDepartment(r.Context(), tmpl.DepartmentSlug); err != nil {
		slog.Warn("template update notification lookup failed", "err", err)
	} else {
		for _, userID := range userIDs {
			h.Notify.Notify(r.Context(), userID, notifications.TypeTemplateUpdated, "Scorecard updated",
				"The scorecard \""+tmpl.Name+"\" has a new version. Future entries will be scored against it.")
		}
	}
	api.Success(w, tmpl, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	templateID := chi.URLParam(r, "templateID")

	err := h.Service.Delete(r.Context(), templateID)
	if errors.Is(err, template.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "template_not_found", "template not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_delete_failed", "failed to delete template", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "template.delete", "template", templateID, requestID, nil); err != nil {
		slog.Warn("audit template.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}
