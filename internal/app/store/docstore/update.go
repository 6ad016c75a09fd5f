package docstore

import (
	"fmt"
	"strings"
)

// Change is the parsed form of a document-style update: fields to merge in
// and numeric deltas to apply. A flat update map is pure Merge; "$set" and
// "$inc" contribute to Merge and Increment respectively and combine freely
// with flat top-level fields.
type Change struct {
	Set map[string]any
	Inc map[string]float64
}

// ParseUpdate translates a document-style update object.
//
// Unknown "$" operator keys are rejected with ErrBadOperator. The record
// identifier is immutable: "id"/"_id" entries are dropped from the merge set.
func ParseUpdate(update Document) (Change, error) {
	ch := Change{Set: map[string]any{}, Inc: map[string]float64{}}
	for k, v := range update {
		switch {
		case k == "$set":
			m, ok := v.(Document)
			if !ok {
				return Change{}, fmt.Errorf("$set expects an object, got %T", v)
			}
			for f, fv := range m {
				ch.Set[f] = fv
			}
		case k == "$inc":
			m, ok := v.(Document)
			if !ok {
				return Change{}, fmt.Errorf("$inc expects an object, got %T", v)
			}
			for f, fv := range m {
				d, ok := toNumber(fv)
				if !ok {
					return Change{}, fmt.Errorf("$inc %s: delta %v is not numeric", f, fv)
				}
				ch.Inc[f] = d
			}
		case strings.HasPrefix(k, "$"):
			return Change{}, fmt.Errorf("%w: %q in update", ErrBadOperator, k)
		default:
			ch.Set[k] = v
		}
	}
	delete(ch.Set, "id")
	delete(ch.Set, "_id")
	delete(ch.Inc, "id")
	delete(ch.Inc, "_id")
	return ch, nil
}

// Apply merges the change into the document in place. Increments treat an
// absent, null, or non-numeric current value as 0.
func (ch Change) Apply(doc Document) {
	for f, v := range ch.Set {
		doc[f] = v
	}
	for f, d := range ch.Inc {
		cur, ok := toNumber(doc[f])
		if !ok {
			cur = 0
		}
		doc[f] = cur + d
	}
}

func toNumber(v any) (float64, bool) {
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
	default:
		return 0, false
	}
}
