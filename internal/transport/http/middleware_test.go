package httptransport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	appsession "roulette-oracle/internal/app/session"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query         string
		limit, offset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=5", 10, 5},
		{"?limit=0&offset=-3", 1, 0},
		{"?limit=9999", 500, 0},
		{"?limit=abc&offset=xyz", 50, 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/sessions/x/spins"+tc.query, nil)
		limit, offset := ParsePagination(r)
		if limit != tc.limit || offset != tc.offset {
			t.Fatalf("%q: got (%d,%d), want (%d,%d)", tc.query, limit, offset, tc.limit, tc.offset)
		}
	}
}

func TestWriteSessionErrorUnwraps(t *testing.T) {
	w := httptest.NewRecorder()
	writeSessionError(w, fmt.Errorf("get: %w", appsession.ErrNotFound))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	w = httptest.NewRecorder()
	writeSessionError(w, fmt.Errorf("%w: disk full", appsession.ErrPersist))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
