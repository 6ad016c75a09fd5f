package rel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Memory implements Client with in-process maps. It backs tests and local
// development without a Postgres instance; matching and ordering semantics
// mirror the jsonb behavior of the PG client (values round-trip through
// JSON, so numbers compare as float64).
type Memory struct {
	mu     sync.RWMutex
	tables map[string]map[string]Document

	// FailWith, when set, makes every call return the error. Tests use it
	// to simulate an unreachable store.
	FailWith error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]Document)}
}

func (m *Memory) Select(ctx context.Context, table string, conds []Cond, opts SelectOptions) ([]Document, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Document{}
	for _, doc := range m.tables[table] {
		ok, err := matches(doc, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cloneDoc(doc))
		}
	}

	field := opts.SortField
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if opts.SortDesc {
			a, b = b, a
		}
		if field != "" && !valueEq(a[field], b[field]) {
			return valueLess(a[field], b[field])
		}
		return asString(a["id"]) < asString(b["id"])
	})

	if opts.Skip > 0 {
		if opts.Skip >= len(out) {
			return []Document{}, nil
		}
		out = out[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, table, id string) (Document, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.tables[table][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *Memory) Upsert(ctx context.Context, table string, doc Document) (Document, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	id, _ := doc["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("upsert %s: document has no id", table)
	}

	// Round-trip through JSON so stored values carry the same types the
	// Postgres client would hand back (float64 numbers, no struct values).
	stored, err := roundTrip(doc)
	if err != nil {
		return nil, fmt.Errorf("upsert %s/%s: %w", table, id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tables[table] == nil {
		m.tables[table] = make(map[string]Document)
	}
	m.tables[table][id] = stored
	return cloneDoc(stored), nil
}

func (m *Memory) Delete(ctx context.Context, table, id string) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[table][id]; !ok {
		return ErrNotFound
	}
	delete(m.tables[table], id)
	return nil
}

func (m *Memory) Count(ctx context.Context, table string, conds []Cond) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, doc := range m.tables[table] {
		ok, err := matches(doc, conds)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	return nil
}

func matches(doc Document, conds []Cond) (bool, error) {
	for _, c := range conds {
		switch c.Op {
		case OpEq:
			if !valueEq(doc[c.Field], c.Value) {
				return false, nil
			}
		case OpIn:
			vs, ok := c.Value.([]any)
			if !ok {
				return false, fmt.Errorf("in-filter on %s: value is not a list", c.Field)
			}
			hit := false
			for _, v := range vs {
				if valueEq(doc[c.Field], v) {
					hit = true
					break
				}
			}
			if !hit {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter op %d on %s", c.Op, c.Field)
		}
	}
	return true, nil
}

// valueEq compares scalars the way jsonb does: all numeric types collapse
// to one numeric domain, everything else compares by value.
func valueEq(a, b any) bool {
	if fa, ok := asNumber(a); ok {
		fb, ok := asNumber(b)
		return ok && fa == fb
	}
	return a == b
}

func valueLess(a, b any) bool {
	if fa, ok := asNumber(a); ok {
		if fb, ok := asNumber(b); ok {
			return fa < fb
		}
	}
	return asString(a) < asString(b)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func roundTrip(doc Document) (Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneDoc(doc Document) Document {
	out, err := roundTrip(doc)
	if err != nil {
		// Stored documents already survived one round trip.
		panic(err)
	}
	return out
}
