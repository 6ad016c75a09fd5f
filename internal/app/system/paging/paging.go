// Package paging parses list-endpoint pagination parameters and trims
// look-ahead result sets.
//
// List endpoints accept ?page= (1-based) and ?limit=. Stores fetch
// limit+1 rows so HasNext can be reported without a second count query.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultLimit is the page size used when the client sends none.
const DefaultLimit = 50

// MaxLimit caps client-requested page sizes.
const MaxLimit = 200

// Page holds the parsed pagination window for a list request.
type Page struct {
	Number int // 1-based page number
	Limit  int
}

// Parse extracts page/limit from the request query, clamping both to
// sane values.
func Parse(r *http.Request) Page {
	p := Page{Number: 1, Limit: DefaultLimit}
	if s := query.Get(r, "page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Number = n
		}
	}
	if s := query.Get(r, "limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			if n > MaxLimit {
				n = MaxLimit
			}
			p.Limit = n
		}
	}
	return p
}

// Skip returns the row offset for the window.
func (p Page) Skip() int { return (p.Number - 1) * p.Limit }

// FetchLimit returns Limit+1 for look-ahead pagination.
func (p Page) FetchLimit() int { return p.Limit + 1 }

// Meta is the pagination block included in list response payloads.
type Meta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// Trim cuts a look-ahead slice down to the page size and returns the
// response metadata. Call it on rows fetched with FetchLimit().
func Trim[T any](rows *[]T, p Page) Meta {
	m := Meta{Page: p.Number, Limit: p.Limit, HasPrev: p.Number > 1}
	if len(*rows) > p.Limit {
		*rows = (*rows)[:p.Limit]
		m.HasNext = true
	}
	return m
}
