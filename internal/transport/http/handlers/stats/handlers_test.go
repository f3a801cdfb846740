package statshandler

import (
	"net/http/httptest"
	"testing"

	"kpitrack/internal/transport/http/middleware"
)

func TestFilterFromQueryPinsNodalDepartment(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries/statistics?department=transport&month=4&year=2025", nil)
	r = r.WithContext(middleware.WithUser(r.Context(), middleware.UserContext{
		UserID: "u1", Role: middleware.RoleNodal, Department: "health",
	}))

	filter, v := filterFromQuery(r)
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %v", v.Issues())
	}
	if filter.Department != "health" {
		t.Fatalf("nodal department = %q, want pinned %q", filter.Department, "health")
	}
	if filter.Month != 4 || filter.Year != 2025 {
		t.Fatalf("period = %d/%d, want 4/2025", filter.Month, filter.Year)
	}
}

func TestFilterFromQueryAdminKeepsRequested(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries/statistics?department=transport&status=generated", nil)
	r = r.WithContext(middleware.WithUser(r.Context(), middleware.UserContext{
		UserID: "u1", Role: middleware.RoleAdmin,
	}))

	filter, v := filterFromQuery(r)
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %v", v.Issues())
	}
	if filter.Department != "transport" {
		t.Fatalf("admin department = %q, want %q", filter.Department, "transport")
	}
	if filter.Status != "generated" {
		t.Fatalf("status = %q, want %q", filter.Status, "generated")
	}
}

func TestFilterFromQueryReadsRole(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries/statistics?role=clerk", nil)
	r = r.WithContext(middleware.WithUser(r.Context(), middleware.UserContext{
		UserID: "u1", Role: middleware.RoleAdmin,
	}))

	filter, v := filterFromQuery(r)
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %v", v.Issues())
	}
	if filter.Role != "clerk" {
		t.Fatalf("role = %q, want %q", filter.Role, "clerk")
	}

	bare := httptest.NewRequest("GET", "/entries/statistics", nil)
	bare = bare.WithContext(middleware.WithUser(bare.Context(), middleware.UserContext{
		UserID: "u1", Role: middleware.RoleAdmin,
	}))
	unfiltered, _ := filterFromQuery(bare)
	if unfiltered == filter {
		t.Fatal("role query param had no effect on the filter")
	}
}

func TestFilterFromQueryRejectsMalformedPeriod(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric month", "?month=abc"},
		{"month out of range", "?month=13"},
		{"non-numeric year", "?year=soon"},
		{"year out of range", "?year=1899"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/entries/statistics"+tc.query, nil)
			r = r.WithContext(middleware.WithUser(r.Context(), middleware.UserContext{
				UserID: "u1", Role: middleware.RoleAdmin,
			}))

			_, v := filterFromQuery(r)
			if !v.HasIssues() {
				t.Fatalf("expected a validation issue for %s", tc.query)
			}
		})
	}
}

func TestFilterFromQueryAllowsAbsentPeriod(t *testing.T) {
	r := httptest.NewRequest("GET", "/entries/statistics?month=&year=", nil)
	r = r.WithContext(middleware.WithUser(r.Context(), middleware.UserContext{
		UserID: "u1", Role: middleware.RoleAdmin,
	}))

	filter, v := filterFromQuery(r)
	if v.HasIssues() {
		t.Fatalf("absent period flagged as invalid: %v", v.Issues())
	}
	if filter.Month != 0 || filter.Year != 0 {
		t.Fatalf("absent period = %d/%d, want 0/0", filter.Month, filter.Year)
	}
}
