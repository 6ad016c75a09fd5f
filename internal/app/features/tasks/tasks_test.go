package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/testutil"
)

func postProgress(t *testing.T, h *Handler, id string, delta float64) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, http.MethodPost, "/api/tasks/"+id+"/progress",
		map[string]any{"delta": delta})
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	h.HandleProgress(rec, req)
	return rec
}

func TestProgressIncrement(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())
	id := testutil.Seed(t, context.Background(), reg.Tasks,
		map[string]any{"title": "Setup mandap", "progress": 10})

	rec := postProgress(t, h, id, 15)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var doc map[string]any
	testutil.DecodeData(t, rec, &doc)
	if doc["progress"] != float64(25) {
		t.Errorf("progress = %v, want 25", doc["progress"])
	}

	// Negative delta walks it back.
	rec = postProgress(t, h, id, -5)
	testutil.DecodeData(t, rec, &doc)
	if doc["progress"] != float64(20) {
		t.Errorf("progress = %v, want 20", doc["progress"])
	}
}

func TestProgressFromMissingField(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())
	id := testutil.Seed(t, context.Background(), reg.Tasks, map[string]any{"title": "No progress yet"})

	rec := postProgress(t, h, id, 7)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var doc map[string]any
	testutil.DecodeData(t, rec, &doc)
	if doc["progress"] != float64(7) {
		t.Errorf("progress = %v, want 7 (absent counts as zero)", doc["progress"])
	}
}

func TestProgressMissingTask(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())

	rec := postProgress(t, h, "nope", 1)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code=%d, want 404", rec.Code)
	}
}

func TestProgressZeroDelta(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())

	rec := postProgress(t, h, "whatever", 0)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code=%d, want 400", rec.Code)
	}
}

func TestCreateDefaultsProgress(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.JSONRequest(t, http.MethodPost, "/api/tasks",
		map[string]any{"title": "Arrange prasadam"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var doc map[string]any
	testutil.DecodeData(t, rec, &doc)
	if doc["progress"] != float64(0) {
		t.Errorf("progress = %v, want 0", doc["progress"])
	}
}
