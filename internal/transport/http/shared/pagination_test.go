package shared

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", url: "/entries", wantPage: 1, wantLimit: 10},
		{name: "explicit", url: "/entries?page=3&limit=25", wantPage: 3, wantLimit: 25},
		{name: "caps limit", url: "/entries?limit=500", wantPage: 1, wantLimit: 100},
		{name: "ignores junk", url: "/entries?page=abc&limit=-2", wantPage: 1, wantLimit: 10},
		{name: "zero page ignored", url: "/entries?page=0", wantPage: 1, wantLimit: 10},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tc.url, nil)
			p := ParsePagination(r, 10, 100)
			if p.Page != tc.wantPage {
				t.Fatalf("expected page %d, got %d", tc.wantPage, p.Page)
			}
			if p.Limit != tc.wantLimit {
				t.Fatalf("expected limit %d, got %d", tc.wantLimit, p.Limit)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := Pagination{Page: 3, Limit: 20}
	if p.Offset() != 40 {
		t.Fatalf("expected offset 40, got %d", p.Offset())
	}
}

func TestNewPageResult(t *testing.T) {
	result := NewPageResult([]string{"a"}, 21, Pagination{Page: 2, Limit: 10})
	if result.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", result.TotalPages)
	}
	if !result.HasNextPage {
		t.Fatal("expected a next page")
	}
	if !result.HasPreviousPage {
		t.Fatal("expected a previous page")
	}

	empty := NewPageResult(nil, 0, Pagination{Page: 1, Limit: 10})
	if empty.HasNextPage || empty.HasPreviousPage {
		t.Fatal("empty result should have no neighbouring pages")
	}
}
