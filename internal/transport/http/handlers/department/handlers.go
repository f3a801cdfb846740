package departmenthandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/domain/audit"
	"kpitrack/internal/domain/department"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
	"kpitrack/internal/transport/http/shared"
)

type Handler struct {
	Service *department.Service
	Audit   *audit.Service
}

func NewHandler(service *department.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/slug/{slug}", h.handleGetBySlug)
		r.Get("/{departmentID}", h.handleGet)
		r.With(middleware.RequireRole(middleware.RoleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(middleware.RoleAdmin)).Put("/{departmentID}", h.handleUpdate)
		r.With(middleware.RequireRole(middleware.RoleAdmin)).Delete("/{departmentID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	p := shared.ParsePagination(r, 20, 100)

	departments, total, err := h.Service.List(r.Context(), r.URL.Query().Get("search"), p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", requestID)
		return
	}
	api.Success(w, shared.NewPageResult(departments, total, p), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	dept, err := h.Service.Get(r.Context(), chi.URLParam(r, "departmentID"))
	if errors.Is(err, department.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "department_not_found", "department not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_get_failed", "failed to load department", requestID)
		return
	}
	api.Success(w, dept, requestID)
}

func (h *Handler) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	dept, err := h.Service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, department.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "department_not_found", "department not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_get_failed", "failed to load department", requestID)
		return
	}
	api.Success(w, dept, requestID)
}

type departmentPayload struct {
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	Logo     string            `json:"logo"`
	Metadata map[string]string `json:"metadata"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, requestID) {
		return
	}

	dept, err := h.Service.Create(r.Context(), payload.Name, payload.Slug, payload.Logo, payload.Metadata)
	if errors.Is(err, department.ErrSlugTaken) {
		api.Fail(w, http.StatusConflict, "slug_taken", "department slug already exists", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "department.create", "department", dept.ID, requestID, payload); err != nil {
		slog.Warn("audit department.create failed", "err", err)
	}
	api.Created(w, dept, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	var payload departmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, requestID) {
		return
	}

	dept, err := h.Service.Update(r.Context(), departmentID, payload.Name, payload.Slug, payload.Logo, payload.Metadata)
	if errors.Is(err, department.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "department_not_found", "department not found", requestID)
		return
	}
	if errors.Is(err, department.ErrSlugTaken) {
		api.Fail(w, http.StatusConflict, "slug_taken", "department slug already exists", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_update_failed", "failed to update department", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "department.update", "department", departmentID, requestID, payload); err != nil {
		slog.Warn("audit department.update failed", "err", err)
	}
	api.Success(w, dept, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	err := h.Service.Delete(r.Context(), departmentID)
	if errors.Is(err, department.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "department_not_found", "department not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_delete_failed", "failed to delete department", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "department.delete", "department", departmentID, requestID, nil); err != nil {
		slog.Warn("audit department.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}
