package entryhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kpitrack/internal/domain/entry"
	"kpitrack/internal/domain/template"
)

func TestFailWriteStatusMapping(t *testing.T) {
	h := &Handler{}
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate tuple", entry.ErrDuplicate, http.StatusConflict, "entry_exists"},
		{"unknown reference", entry.ErrUnknownReference, http.StatusBadRequest, "unknown_reference"},
		{"entry missing", entry.ErrNotFound, http.StatusNotFound, "entry_not_found"},
		{"template missing", template.ErrNotFound, http.StatusNotFound, "template_not_found"},
		{"invalid values", &entry.InvalidValuesError{Issues: []entry.ValueIssue{{Field: "values.casesdisposed", Reason: "missing"}}}, http.StatusBadRequest, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if !h.failWrite(rec, tt.err, "req-1") {
				t.Fatal("failWrite should report the response as written")
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestSearchFilterCombinesCriteria(t *testing.T) {
	// kpiNames is the url-encoded JSON array ["Court cases","Pending files"].
	r := httptest.NewRequest("GET",
		"/entries/search?q=disposal&employeeId=e1&templateId=t1&month=6&year=2025"+
			"&kpiNames=%5B%22Court%20cases%22%2C%22Pending%20files%22%5D", nil)

	filter, v := searchFilter(r)
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %v", v.Issues())
	}
	if filter.Search != "disposal" || filter.EmployeeID != "e1" || filter.TemplateID != "t1" {
		t.Fatalf("filter = %+v", filter)
	}
	if filter.Month != 6 || filter.Year != 2025 {
		t.Fatalf("period = %d/%d, want 6/2025", filter.Month, filter.Year)
	}
	if len(filter.KpiLabels) != 2 || filter.KpiLabels[0] != "Court cases" {
		t.Fatalf("kpi labels = %v", filter.KpiLabels)
	}
}

func TestSearchFilterFlagsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric month", "?month=june"},
		{"month out of range", "?month=0"},
		{"year out of range", "?year=99"},
		{"kpiNames not JSON", "?kpiNames=CourtCases"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/entries/search"+tc.query, nil)
			_, v := searchFilter(r)
			if !v.HasIssues() {
				t.Fatalf("expected a validation issue for %s", tc.query)
			}
		})
	}
}

func TestFailWriteNilError(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	if h.failWrite(rec, nil, "req-1") {
		t.Fatal("nil error should not write a response")
	}
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected untouched recorder, got %d with %d bytes", rec.Code, rec.Body.Len())
	}
}
