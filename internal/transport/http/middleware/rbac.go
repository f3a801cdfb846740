package middleware

import (
	"net/http"

	"kpitrack/internal/transport/http/api"
)

const (
	RoleAdmin = "admin"
	RoleNodal = "nodal"
)

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a subtree to one role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if user.Role != role {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CanAccessDepartment reports whether the caller may act on data belonging to
// the given department slug. Admins see everything; nodal officers only their
// own department. An empty slug means a cross-department query.
func CanAccessDepartment(user UserContext, slug string) bool {
	if user.Role == RoleAdmin {
		return true
	}
	if slug == "" {
		return false
	}
	return user.Department == slug
}
