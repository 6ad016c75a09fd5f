package members

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/testutil"
)

func TestCreateNormalizesEmail(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.JSONRequest(t, http.MethodPost, "/api/members",
		map[string]any{"full_name": "Asha Rao", "email": "A.Sha.Rao@Gmail.com"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var saved map[string]any
	testutil.DecodeData(t, rec, &saved)
	if saved["email"] != "asharao@gmail.com" {
		t.Errorf("email = %v, want asharao@gmail.com", saved["email"])
	}
}

func TestListScopedToCommunity(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())
	ctx := context.Background()
	testutil.Seed(t, ctx, reg.Members, map[string]any{"full_name": "A", "community_id": "c1"})
	testutil.Seed(t, ctx, reg.Members, map[string]any{"full_name": "B", "community_id": "c2"})

	rec := httptest.NewRecorder()
	h.ServeList(rec, httptest.NewRequest(http.MethodGet, "/api/members?community_id=c1", nil))
	var resp struct {
		Members []map[string]any `json:"members"`
	}
	testutil.DecodeData(t, rec, &resp)
	if len(resp.Members) != 1 || resp.Members[0]["full_name"] != "A" {
		t.Errorf("members = %v", resp.Members)
	}
}

func TestUpdateRejectsUnknownOperator(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())
	id := testutil.Seed(t, context.Background(), reg.Members, map[string]any{"full_name": "A"})

	req := testutil.JSONRequest(t, http.MethodPut, "/api/members/"+id,
		map[string]any{"$rename": map[string]any{"full_name": "name"}})
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code=%d, want 400", rec.Code)
	}
}

func TestDeleteMissing(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())

	req := testutil.WithChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/members/nope", nil), "id", "nope")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code=%d, want 404", rec.Code)
	}
}
