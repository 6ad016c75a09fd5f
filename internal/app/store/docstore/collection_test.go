package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/sevahub/sevahub/internal/app/store/rel"
)

func newTestCollection() (*Collection, *rel.Memory) {
	mem := rel.NewMemory()
	return New(mem, TableTasks), mem
}

func TestSave_AssignsIDAndStampsTimestamps(t *testing.T) {
	c, _ := newTestCollection()
	ctx := context.Background()

	saved, err := c.Save(ctx, Document{"title": "arrange flowers"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	id, _ := saved["id"].(string)
	if id == "" {
		t.Error("expected a generated id")
	}
	if saved["created_at"] == nil || saved["updated_at"] == nil {
		t.Error("expected created_at and updated_at to be stamped")
	}
}

func TestSave_TwiceUpserts(t *testing.T) {
	c, _ := newTestCollection()
	ctx := context.Background()

	first, err := c.Save(ctx, Document{"id": "t1", "title": "sweep mandap", "status": "open"})
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	second, err := c.Save(ctx, Document{
		"id": "t1", "title": "sweep mandap", "status": "done",
		"created_at": first["created_at"],
	})
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	n, err := c.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one row after double save, got %d", n)
	}

	got, err := c.FindByID(ctx, "t1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got["status"] != "done" {
		t.Errorf("status: got %v, want latest save", got["status"])
	}
	if got["created_at"] != second["created_at"] {
		t.Errorf("created_at drifted between save and read-back")
	}
}

func TestFind_InFilterExactMembership(t *testing.T) {
	c, _ := newTestCollection()
	ctx := context.Background()

	for _, d := range []Document{
		{"id": "t1", "status": "open"},
		{"id": "t2", "status": "done"},
		{"id": "t3", "status": "blocked"},
		{"id": "t4", "status": "open"},
	} {
		if _, err := c.Save(ctx, d); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	got, err := c.Find(Document{"status": Document{"$in": []any{"done", "blocked"}}}).All(ctx)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	for _, d := range got {
		if d["status"] != "done" && d["status"] != "blocked" {
			t.Errorf("row %v has status %v outside the membership set", d["id"], d["status"])
		}
	}

	one, err := c.FindOne(ctx, Document{"status": Document{"$in": []any{"blocked"}}})
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if one == nil || one["id"] != "t3" {
		t.Errorf("FindOne in-filter: got %v", one)
	}
}

func TestFind_ChainedModifiers(t *testing.T) {
	c, _ := newTestCollection()
	ctx := context.Background()

	for _, d := range []Document{
		{"id": "a", "status": "open", "seq": 3},
		{"id": "b", "status": "open", "seq": 1},
		{"id": "c", "status": "open", "seq": 2},
		{"id": "d", "status": "done", "seq": 0},
	} {
		if _, err := c.Save(ctx, d); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	// Modifier order must not matter.
	got, err := c.Find(Document{"status": "open"}).Limit(2).Sort("seq", 1).Skip(1).All(ctx)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(got) != 2 || got[0]["id"] != "c" || got[1]["id"] != "a" {
		t.Errorf("chained query: got %v", got)
	}

	empty, err := c.Find(Document{"status": "missing"}).All(ctx)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("no-match find should return an empty sequence, got %v", empty)
	}
}

func TestFindOne_NoMatchIsNil(t *testing.T) {
	c, _ := newTestCollection()
	got, err := c.FindOne(context.Background(), Document{"status": "nope"})
	if err != nil {
		t.Fatalf("FindOne errored on a miss: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestFindByID_CoercesID(t *testing.T) {
	c, _ := newTestCollection()
	ctx := context.Background()

	if _, err := c.Save(ctx, Document{"id": "42", "title": "numeric id"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// A JSON-decoded numeric id arrives as float64.
	got, err := c.FindByID(ctx, float64(42))
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got == nil || got["title"] != "numeric id" {
		t.Errorf("coerced lookup: got %v", got)
	}
}

func TestFindByIDAndUpdate_IncSemantics(t *testing.T) {
	tests := []struct {
		name  string
		prior any
		delta float64
		want  float64
	}{
		{"numeric prior", float64(10), 5, 15},
		{"absent prior", nil, 3, 3},
		{"non-numeric prior", "many", 2, 2},
		{"negative delta", float64(4), -6, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCollection()
			ctx := context.Background()

			seed := Document{"id": "t1"}
			if tt.prior != nil {
				seed["progress"] = tt.prior
			}
			if _, err := c.Save(ctx, seed); err != nil {
				t.Fatalf("seed failed: %v", err)
			}

			got, err := c.FindByIDAndUpdate(ctx, "t1",
				Document{"$inc": Document{"progress": tt.delta}})
			if err != nil {
				t.Fatalf("FindByIDAndUpdate failed: %v", err)
			}
			if got["progress"] != tt.want {
				t.Errorf("progress: got %v, want %v", got["progress"], tt.want)
			}
		})
	}
}

func TestFindByIDAndUpdate_SetIncAndFlatCombine(t *testing.T) {
	c, _ := newTestCollection()
	ctx := context.Background()

	if _, err := c.Save(ctx, Document{"id": "t1", "title": "old", "count": float64(1)}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got, err := c.FindByIDAndUpdate(ctx, "t1", Document{
		"title": "flat wins too",
		"$set":  Document{"status": "done"},
		"$inc":  Document{"count": 2},
	})
	if err != nil {
		t.Fatalf("FindByIDAndUpdate failed: %v", err)
	}
	if got["title"] != "flat wins too" || got["status"] != "done" || got["count"] != float64(3) {
		t.Errorf("combined update: got %v", got)
	}
}

func TestFindByIDAndUpdate_MissingIDIsNilAndNoWrite(t *testing.T) {
	c, mem := newTestCollection()
	ctx := context.Background()

	got, err := c.FindByIDAndUpdate(ctx, "ghost", Document{"$set": Document{"x": 1}})
	if err != nil {
		t.Fatalf("expected nil error on missing id, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil result, got %v", got)
	}
	n, err := mem.Count(ctx, TableTasks, nil)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("update of missing id must not write, found %d rows", n)
	}
}

func TestFindByIDAndUpdate_ReturnOriginal(t *testing.T) {
	c, _ := newTestCollection()
	ctx := context.Background()

	if _, err := c.Save(ctx, Document{"id": "t1", "status": "open"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	before, err := c.FindByIDAndUpdate(ctx, "t1",
		Document{"$set": Document{"status": "done"}}, UpdateOptions{ReturnOriginal: true})
	if err != nil {
		t.Fatalf("FindByIDAndUpdate failed: %v", err)
	}
	if before["status"] != "open" {
		t.Errorf("expected pre-update snapshot, got %v", before["status"])
	}

	now, err := c.FindByID(ctx, "t1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if now["status"] != "done" {
		t.Errorf("store should hold the post-update record, got %v", now["status"])
	}
}

func TestFindByIDAndUpdate_IdentifierImmutable(t *testing.T) {
	c, _ := newTestCollection()
	ctx := context.Background()

	if _, err := c.Save(ctx, Document{"id": "t1"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	got, err := c.FindByIDAndUpdate(ctx, "t1", Document{"_id": "hijack", "id": "hijack"})
	if err != nil {
		t.Fatalf("FindByIDAndUpdate failed: %v", err)
	}
	if got["id"] != "t1" {
		t.Errorf("identifier changed to %v", got["id"])
	}
}

func TestFindByIDAndDelete(t *testing.T) {
	c, _ := newTestCollection()
	ctx := context.Background()

	if _, err := c.Save(ctx, Document{"id": "t1", "title": "gone soon"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	snap, err := c.FindByIDAndDelete(ctx, "t1")
	if err != nil {
		t.Fatalf("FindByIDAndDelete failed: %v", err)
	}
	if snap == nil || snap["title"] != "gone soon" {
		t.Errorf("expected pre-deletion snapshot, got %v", snap)
	}

	again, err := c.FindByIDAndDelete(ctx, "t1")
	if err != nil {
		t.Fatalf("second delete errored: %v", err)
	}
	if again != nil {
		t.Errorf("expected nil on deleting a missing id, got %v", again)
	}
}

func TestStoreFaultsPropagate(t *testing.T) {
	c, mem := newTestCollection()
	ctx := context.Background()
	down := errors.New("connection refused")
	mem.FailWith = down

	if _, err := c.FindOne(ctx, Document{"status": "open"}); !errors.Is(err, down) {
		t.Errorf("FindOne: expected store fault to propagate, got %v", err)
	}
	if _, err := c.Save(ctx, Document{"id": "t1"}); !errors.Is(err, down) {
		t.Errorf("Save: expected store fault to propagate, got %v", err)
	}
	if _, err := c.FindByIDAndUpdate(ctx, "t1", Document{"x": 1}); !errors.Is(err, down) {
		t.Errorf("FindByIDAndUpdate: expected store fault to propagate, got %v", err)
	}
}
