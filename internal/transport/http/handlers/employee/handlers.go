package employeehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/domain/audit"
	"kpitrack/internal/domain/employee"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
	"kpitrack/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
	Audit   *audit.Service
}

func NewHandler(service *employee.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/department/{slug}", h.handleByDepartment)
		r.Get("/role/{role}", h.handleByRole)
		r.Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRole(middleware.RoleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(middleware.RoleAdmin)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireRole(middleware.RoleAdmin)).Delete("/{employeeID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	p := shared.ParsePagination(r, 20, 100)

	// Nodal officers only ever see their own department.
	departmentSlug := r.URL.Query().Get("department")
	if user.Role != middleware.RoleAdmin {
		departmentSlug = user.Department
	}

	employees, total, err := h.Service.List(r.Context(), r.URL.Query().Get("search"), departmentSlug, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, shared.NewPageResult(employees, total, p), requestID)
}

func (h *Handler) handleByDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	slug := chi.URLParam(r, "slug")

	if !middleware.CanAccessDepartment(user, slug) {
		api.Fail(w, http.StatusForbidden, "forbidden", "department access denied", requestID)
		return
	}

	employees, err := h.Service.ByDepartment(r.Context(), slug)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleByRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	employees, err := h.Service.ByRole(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", requestID)
		return
	}
	if !middleware.CanAccessDepartment(user, emp.Department) {
		api.Fail(w, http.StatusForbidden, "forbidden", "department access denied", requestID)
		return
	}
	api.Success(w, emp, requestID)
}

type employeePayload struct {
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	Department     string            `json:"department"`
	DepartmentRole string            `json:"departmentRole"`
	Metadata       map[string]string `json:"metadata"`
}

func (p employeePayload) validate() *shared.Validator {
	v := shared.NewValidator()
	v.Required("name", p.Name, "name is required")
	v.Required("phone", p.Phone, "phone is required")
	v.Required("department", p.Department, "department is required")
	v.Required("departmentRole", p.DepartmentRole, "department role is required")
	return v
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.validate().Reject(w, requestID) {
		return
	}

	emp, err := h.Service.Create(r.Context(), employee.Employee{
		Name:           payload.Name,
		Contact:        employee.Contact{Email: payload.Email, Phone: payload.Phone},
		Department:     payload.Department,
		DepartmentRole: payload.DepartmentRole,
		Metadata:       payload.Metadata,
	})
	if errors.Is(err, employee.ErrUnknownDepartment) {
		api.Fail(w, http.StatusBadRequest, "unknown_department", "department does not exist", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "employee.create", "employee", emp.ID, requestID, payload); err != nil {
		slog.Warn("audit employee.create failed", "err", err)
	}
	api.Created(w, emp, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.validate().Reject(w, requestID) {
		return
	}

	emp, err := h.Service.Update(r.Context(), employee.Employee{
		ID:             employeeID,
		Name:           payload.Name,
		Contact:        employee.Contact{Email: payload.Email, Phone: payload.Phone},
		Department:     payload.Department,
		DepartmentRole: payload.DepartmentRole,
		Metadata:       payload.Metadata,
	})
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if errors.Is(err, employee.ErrUnknownDepartment) {
		api.Fail(w, http.StatusBadRequest, "unknown_department", "department does not exist", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "employee.update", "employee", employeeID, requestID, payload); err != nil {
		slog.Warn("audit employee.update failed", "err", err)
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	err := h.Service.Delete(r.Context(), employeeID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "employee.delete", "employee", employeeID, requestID, nil); err != nil {
		slog.Warn("audit employee.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}
