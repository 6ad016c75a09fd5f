package docstore

import (
	"errors"
	"testing"

	"github.com/sevahub/sevahub/internal/app/store/rel"
)

func TestParseFilter(t *testing.T) {
	conds, err := ParseFilter(Document{
		"status": "active",
		"kind":   Document{"$in": []any{"seva", "annadanam"}},
		"_id":    "abc",
	})
	if err != nil {
		t.Fatalf("ParseFilter failed: %v", err)
	}
	if len(conds) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(conds))
	}
	// Fields come out sorted: _id, kind, status.
	if conds[0].Field != "id" || conds[0].Op != rel.OpEq || conds[0].Value != "abc" {
		t.Errorf("_id alias: got %+v", conds[0])
	}
	if conds[1].Field != "kind" || conds[1].Op != rel.OpIn {
		t.Errorf("in cond: got %+v", conds[1])
	}
	if conds[2].Field != "status" || conds[2].Op != rel.OpEq {
		t.Errorf("eq cond: got %+v", conds[2])
	}
}

func TestParseFilter_RejectsUnknownOperator(t *testing.T) {
	_, err := ParseFilter(Document{"age": Document{"$gt": 30}})
	if !errors.Is(err, ErrBadOperator) {
		t.Errorf("expected ErrBadOperator, got %v", err)
	}
}

func TestParseFilter_InNeedsList(t *testing.T) {
	_, err := ParseFilter(Document{"status": Document{"$in": "active"}})
	if err == nil {
		t.Error("expected an error for a non-list $in argument")
	}
}

func TestParseUpdate(t *testing.T) {
	ch, err := ParseUpdate(Document{
		"name": "Ram",
		"$set": Document{"status": "active"},
		"$inc": Document{"visits": 1},
	})
	if err != nil {
		t.Fatalf("ParseUpdate failed: %v", err)
	}
	if ch.Set["name"] != "Ram" || ch.Set["status"] != "active" {
		t.Errorf("set: got %v", ch.Set)
	}
	if ch.Inc["visits"] != 1 {
		t.Errorf("inc: got %v", ch.Inc)
	}
}

func TestParseUpdate_RejectsUnknownOperator(t *testing.T) {
	_, err := ParseUpdate(Document{"$push": Document{"tags": "x"}})
	if !errors.Is(err, ErrBadOperator) {
		t.Errorf("expected ErrBadOperator, got %v", err)
	}
}

func TestParseUpdate_RejectsNonNumericDelta(t *testing.T) {
	_, err := ParseUpdate(Document{"$inc": Document{"visits": "one"}})
	if err == nil {
		t.Error("expected an error for a non-numeric $inc delta")
	}
}

func TestParseUpdate_DropsIdentifier(t *testing.T) {
	ch, err := ParseUpdate(Document{"_id": "x", "id": "y", "name": "keep"})
	if err != nil {
		t.Fatalf("ParseUpdate failed: %v", err)
	}
	if _, ok := ch.Set["id"]; ok {
		t.Error("id must not be settable")
	}
	if _, ok := ch.Set["_id"]; ok {
		t.Error("_id must not be settable")
	}
	if ch.Set["name"] != "keep" {
		t.Errorf("set: got %v", ch.Set)
	}
}

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"abc", "abc"},
		{float64(42), "42"},
		{float64(42.5), "42.5"},
		{17, "17"},
		{int64(9), "9"},
	}
	for _, tt := range tests {
		if got := CanonicalID(tt.in); got != tt.want {
			t.Errorf("CanonicalID(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
