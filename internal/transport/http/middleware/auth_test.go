package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kpitrack/internal/auth"
)

func TestAuthAttachesUserContext(t *testing.T) {
	token, err := auth.GenerateToken("secret", auth.Claims{
		UserID:     "u-1",
		Role:       RoleNodal,
		Department: "collector-office",
	}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var got UserContext
	var ok bool
	handler := Auth("secret", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("expected user in context")
	}
	if got.UserID != "u-1" || got.Role != RoleNodal || got.Department != "collector-office" {
		t.Fatalf("unexpected user context: %+v", got)
	}
}

func TestAuthIgnoresInvalidToken(t *testing.T) {
	var ok bool
	handler := Auth("secret", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Fatal("invalid token must not attach a user")
	}
}

type staticSessions struct{ valid bool }

func (s staticSessions) SessionValid(_ context.Context, _, _ string) (bool, error) {
	return s.valid, nil
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token, err := auth.GenerateToken("secret", auth.Claims{UserID: "u-1", Role: RoleNodal}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var ok bool
	handler := Auth("secret", staticSessions{valid: false})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Fatal("revoked session must not attach a user")
	}
}

func TestRequireRole(t *testing.T) {
	guarded := RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	anonRec := httptest.NewRecorder()
	guarded.ServeHTTP(anonRec, anon)
	if anonRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", anonRec.Code)
	}

	nodal := anon.WithContext(WithUser(anon.Context(), UserContext{UserID: "u-2", Role: RoleNodal}))
	nodalRec := httptest.NewRecorder()
	guarded.ServeHTTP(nodalRec, nodal)
	if nodalRec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for nodal officer, got %d", nodalRec.Code)
	}

	admin := anon.WithContext(WithUser(anon.Context(), UserContext{UserID: "u-1", Role: RoleAdmin}))
	adminRec := httptest.NewRecorder()
	guarded.ServeHTTP(adminRec, admin)
	if adminRec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for admin, got %d", adminRec.Code)
	}
}

func TestCanAccessDepartment(t *testing.T) {
	admin := UserContext{Role: RoleAdmin}
	nodal := UserContext{Role: RoleNodal, Department: "collector-office"}

	if !CanAccessDepartment(admin, "") {
		t.Fatal("admin must access cross-department queries")
	}
	if !CanAccessDepartment(nodal, "collector-office") {
		t.Fatal("nodal officer must access own department")
	}
	if CanAccessDepartment(nodal, "water-board") {
		t.Fatal("nodal officer must not access other departments")
	}
	if CanAccessDepartment(nodal, "") {
		t.Fatal("nodal officer must not run cross-department queries")
	}
}
