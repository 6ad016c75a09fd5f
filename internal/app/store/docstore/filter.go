// Package docstore lets call sites written against a document-store idiom
// (filter maps, update operators, chained query modifiers) operate against a
// relational table. One Collection per table; a Collection holds no state of
// its own and is a pure translator onto the rel.Client contract.
package docstore

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/sevahub/sevahub/internal/app/store/rel"
)

// Document is a document-shaped entity record.
type Document = rel.Document

// ErrBadOperator is returned when a filter or update carries an operator key
// this layer does not understand. Unknown operators are rejected rather than
// silently ignored, otherwise a typo would quietly widen a query.
var ErrBadOperator = errors.New("docstore: unrecognized operator")

// ParseFilter translates a document-style filter into store conditions.
//
// Each entry is either a literal (equality) or an operator map holding "$in"
// with a sequence of literals. "_id" is a legacy alias for "id" and is
// translated before submission. Fields are emitted in sorted order so the
// produced conditions are deterministic.
func ParseFilter(filter Document) ([]rel.Cond, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	conds := make([]rel.Cond, 0, len(fields))
	for _, f := range fields {
		v := filter[f]
		field := f
		if field == "_id" {
			field = "id"
		}

		opMap, ok := v.(Document)
		if !ok {
			conds = append(conds, rel.Eq(field, v))
			continue
		}
		for op, arg := range opMap {
			switch op {
			case "$in":
				set, err := toList(arg)
				if err != nil {
					return nil, fmt.Errorf("filter %s: %w", field, err)
				}
				conds = append(conds, rel.In(field, set))
			default:
				return nil, fmt.Errorf("%w: %q in filter on %s", ErrBadOperator, op, field)
			}
		}
	}
	return conds, nil
}

func toList(v any) ([]any, error) {
	switch s := v.(type) {
	case []any:
		return s, nil
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, nil
	default:
		return nil, fmt.Errorf("$in expects a list, got %T", v)
	}
}

// CanonicalID coerces an identifier of any wire type to its canonical string
// form. JSON decoding hands back float64 for numeric ids; integral floats
// render without a fraction.
func CanonicalID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
