package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		url      string
		wantPage int
		wantLim  int
	}{
		{"/x", 1, DefaultLimit},
		{"/x?page=3&limit=10", 3, 10},
		{"/x?page=0", 1, DefaultLimit},
		{"/x?page=abc&limit=-5", 1, DefaultLimit},
		{"/x?limit=9999", 1, MaxLimit},
	}
	for _, tc := range cases {
		p := Parse(httptest.NewRequest("GET", tc.url, nil))
		if p.Number != tc.wantPage || p.Limit != tc.wantLim {
			t.Errorf("Parse(%s) = %+v, want page=%d limit=%d", tc.url, p, tc.wantPage, tc.wantLim)
		}
	}
}

func TestSkipAndFetchLimit(t *testing.T) {
	p := Page{Number: 3, Limit: 10}
	if p.Skip() != 20 {
		t.Errorf("Skip = %d, want 20", p.Skip())
	}
	if p.FetchLimit() != 11 {
		t.Errorf("FetchLimit = %d, want 11", p.FetchLimit())
	}
}

func TestTrim(t *testing.T) {
	p := Page{Number: 2, Limit: 3}

	// Look-ahead row present: trimmed, HasNext set.
	rows := []int{1, 2, 3, 4}
	m := Trim(&rows, p)
	if len(rows) != 3 || !m.HasNext || !m.HasPrev {
		t.Errorf("full page: rows=%v meta=%+v", rows, m)
	}

	// Short page: untouched, no next.
	rows = []int{1, 2}
	m = Trim(&rows, Page{Number: 1, Limit: 3})
	if len(rows) != 2 || m.HasNext || m.HasPrev {
		t.Errorf("short page: rows=%v meta=%+v", rows, m)
	}
}
