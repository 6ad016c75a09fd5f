package docstore

import (
	"context"

	"github.com/sevahub/sevahub/internal/app/store/rel"
)

// Query is a lazily-evaluated find: chained modifiers accumulate into one
// select specification, executed once when All (or Count) runs. Modifiers are
// order-insensitive; a later call replaces what an earlier one set.
type Query struct {
	coll  *Collection
	conds []rel.Cond
	opts  rel.SelectOptions
	err   error // filter parse error, surfaced at execution
}

// Sort orders the result by field. dir follows the document-store
// convention: negative for descending, anything else ascending.
func (q *Query) Sort(field string, dir int) *Query {
	q.opts.SortField = field
	q.opts.SortDesc = dir < 0
	return q
}

// Skip drops the first n results.
func (q *Query) Skip(n int) *Query {
	if n > 0 {
		q.opts.Skip = n
	}
	return q
}

// Limit caps the result at n rows. n <= 0 leaves the query unbounded.
func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.opts.Limit = n
	}
	return q
}

// All composes the filter and every chained modifier into one query and
// executes it. No match yields an empty slice, not an error.
func (q *Query) All(ctx context.Context) ([]Document, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.coll.client.Select(ctx, q.coll.table, q.conds, q.opts)
}

// Count executes the filter as an exact count, ignoring sort/skip/limit.
func (q *Query) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	return q.coll.client.Count(ctx, q.coll.table, q.conds)
}
