// Package rel defines the table-scoped contract against the authoritative
// relational store, with a Postgres implementation (pg.go) and an in-memory
// implementation (memory.go) used by tests and local development.
//
// The contract is intentionally narrow: equality/membership filters,
// ordering, offset pagination, whole-row upsert, delete, and exact counts.
// Single-row fetch distinguishes "zero rows" (ErrNotFound) from a store
// fault; callers that treat missing rows as an expected outcome map
// ErrNotFound to a nil result at their own surface.
package rel

import (
	"context"
	"errors"
)

// Document is a single entity record: field name to scalar/JSON value.
// Every stored document carries "id"; timestamps are the caller's concern.
type Document = map[string]any

// ErrNotFound is returned by Get and Delete when no row carries the id.
var ErrNotFound = errors.New("rel: no row with that id")

// Op is a filter operator.
type Op int

const (
	// OpEq matches rows whose field equals the literal value.
	OpEq Op = iota
	// OpIn matches rows whose field is a member of a sequence of literals.
	OpIn
)

// Cond is one conjunct of a filter. For OpIn, Value holds a []any.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Eq builds an equality condition.
func Eq(field string, v any) Cond { return Cond{Field: field, Op: OpEq, Value: v} }

// In builds a membership condition.
func In(field string, vs []any) Cond { return Cond{Field: field, Op: OpIn, Value: vs} }

// SelectOptions carries ordering and pagination for Select.
type SelectOptions struct {
	SortField string
	SortDesc  bool
	Skip      int
	Limit     int // 0 means no limit
}

// Client is the store contract shared by the Postgres and memory backends.
type Client interface {
	// Select returns the documents matching every condition, in the
	// requested order. No match yields an empty slice, not an error.
	Select(ctx context.Context, table string, conds []Cond, opts SelectOptions) ([]Document, error)

	// Get fetches one document by canonical string id.
	// Returns ErrNotFound when the id is absent.
	Get(ctx context.Context, table, id string) (Document, error)

	// Upsert inserts or fully replaces the document keyed by doc["id"] and
	// returns the row as the store canonically holds it.
	Upsert(ctx context.Context, table string, doc Document) (Document, error)

	// Delete removes the document with the id. Returns ErrNotFound when absent.
	Delete(ctx context.Context, table, id string) error

	// Count returns the exact number of documents matching the conditions.
	Count(ctx context.Context, table string, conds []Cond) (int64, error)

	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error
}
