package adminhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/domain/audit"
	"kpitrack/internal/domain/auth"
	"kpitrack/internal/transport/http/api"
	"kpitrack/internal/transport/http/middleware"
	"kpitrack/internal/transport/http/shared"
)

// Handler covers the admin-only surface: portal user management and the
// audit trail. Route guards enforce the admin role for the whole subtree.
type Handler struct {
	Service *auth.Service
	Audit   *audit.Service
}

func NewHandler(service *auth.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(middleware.RoleAdmin))
		r.Get("/users", h.handleListUsers)
		r.Post("/users", h.handleCreateUser)
		r.Get("/users/{userID}", h.handleGetUser)
		r.Put("/users/{userID}", h.handleUpdateUser)
		r.Put("/users/{userID}/password", h.handleResetPassword)
		r.Delete("/users/{userID}", h.handleDeleteUser)
		r.Get("/audit", h.handleListAudit)
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	p := shared.ParsePagination(r, 20, 100)

	users, total, err := h.Service.ListUsers(r.Context(), r.URL.Query().Get("search"), r.URL.Query().Get("role"), p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", requestID)
		return
	}
	api.Success(w, shared.NewPageResult(users, total, p), requestID)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		Role           string `json:"role"`
		Department     string `json:"department"`
		DepartmentRole string `json:"departmentRole"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Role == "" {
		payload.Role = middleware.RoleNodal
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	if len(payload.Password) > 0 && len(payload.Password) < 8 {
		v.Add("password", "password must be at least 8 characters")
	}
	v.Enum("role", payload.Role, []string{middleware.RoleAdmin, middleware.RoleNodal}, "unknown role")
	if payload.Role == middleware.RoleNodal {
		v.Required("department", payload.Department, "department is required for nodal officers")
	}
	if v.Reject(w, requestID) {
		return
	}

	user, err := h.Service.CreateUser(r.Context(), auth.User{
		Name:           payload.Name,
		Email:          strings.ToLower(strings.TrimSpace(payload.Email)),
		Role:           payload.Role,
		Department:     payload.Department,
		DepartmentRole: payload.DepartmentRole,
	}, payload.Password)
	if errors.Is(err, auth.ErrEmailTaken) {
		api.Fail(w, http.StatusConflict, "email_taken", "email already in use", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "admin.user.create", "user", user.ID, requestID, map[string]string{"email": user.Email, "role": user.Role}); err != nil {
		slog.Warn("audit admin.user.create failed", "err", err)
	}
	api.Created(w, user, requestID)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_get_failed", "failed to load user", requestID)
		return
	}
	api.Success(w, user, requestID)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Role           string `json:"role"`
		Department     string `json:"department"`
		DepartmentRole string `json:"departmentRole"`
		Status         string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("email", payload.Email, "email is required")
	v.Enum("role", payload.Role, []string{middleware.RoleAdmin, middleware.RoleNodal}, "unknown role")
	v.Enum("status", payload.Status, []string{auth.StatusActive, auth.StatusDisabled}, "unknown status")
	if v.Reject(w, requestID) {
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), auth.User{
		ID:             userID,
		Name:           payload.Name,
		Email:          strings.ToLower(strings.TrimSpace(payload.Email)),
		Role:           payload.Role,
		Department:     payload.Department,
		DepartmentRole: payload.DepartmentRole,
		Status:         payload.Status,
	})
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", requestID)
		return
	}
	if errors.Is(err, auth.ErrEmailTaken) {
		api.Fail(w, http.StatusConflict, "email_taken", "email already in use", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "admin.user.update", "user", userID, requestID, payload); err != nil {
		slog.Warn("audit admin.user.update failed", "err", err)
	}
	api.Success(w, user, requestID)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("password", payload.Password, "password is required")
	if len(payload.Password) > 0 && len(payload.Password) < 8 {
		v.Add("password", "password must be at least 8 characters")
	}
	if v.Reject(w, requestID) {
		return
	}

	err := h.Service.ResetPassword(r.Context(), userID, payload.Password)
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "password_reset_failed", "failed to reset password", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "admin.user.reset_password", "user", userID, requestID, nil); err != nil {
		slog.Warn("audit admin.user.reset_password failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "password_reset"}, requestID)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	if actor.UserID == userID {
		api.Fail(w, http.StatusBadRequest, "self_delete", "cannot delete your own account", requestID)
		return
	}

	err := h.Service.DeleteUser(r.Context(), userID)
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_delete_failed", "failed to delete user", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "admin.user.delete", "user", userID, requestID, nil); err != nil {
		slog.Warn("audit admin.user.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	p := shared.ParsePagination(r, 50, 200)

	filter := audit.Filter{
		Action:  r.URL.Query().Get("action"),
		Entity:  r.URL.Query().Get("entity"),
		ActorID: r.URL.Query().Get("actorId"),
	}
	total, err := h.Audit.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", requestID)
		return
	}
	events, err := h.Audit.List(r.Context(), filter, p.Limit, p.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", requestID)
		return
	}
	api.Success(w, shared.NewPageResult(events, total, p), requestID)
}
