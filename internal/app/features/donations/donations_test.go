package donations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/testutil"
)

func seedDonations(t *testing.T) *Handler {
	t.Helper()
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, nil, zap.NewNop())
	ctx := context.Background()
	testutil.Seed(t, ctx, reg.Donations, map[string]any{"donor": "A", "amount": 100, "status": "pledged"})
	testutil.Seed(t, ctx, reg.Donations, map[string]any{"donor": "B", "amount": 250, "status": "received"})
	testutil.Seed(t, ctx, reg.Donations, map[string]any{"donor": "C", "amount": 50, "status": "refunded"})
	return h
}

func listStatuses(t *testing.T, h *Handler, url string) map[string]bool {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeList(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Donations []map[string]any `json:"donations"`
	}
	testutil.DecodeData(t, rec, &resp)
	got := map[string]bool{}
	for _, d := range resp.Donations {
		s, _ := d["status"].(string)
		got[s] = true
	}
	return got
}

func TestListMultiStatusFilter(t *testing.T) {
	h := seedDonations(t)

	got := listStatuses(t, h, "/api/donations?status=pledged,received")
	if !got["pledged"] || !got["received"] || got["refunded"] {
		t.Errorf("statuses = %v, want exactly pledged+received", got)
	}
}

func TestListSingleStatusFilter(t *testing.T) {
	h := seedDonations(t)

	got := listStatuses(t, h, "/api/donations?status=refunded")
	if len(got) != 1 || !got["refunded"] {
		t.Errorf("statuses = %v, want only refunded", got)
	}
}

func TestListUnfiltered(t *testing.T) {
	h := seedDonations(t)

	got := listStatuses(t, h, "/api/donations")
	if len(got) != 3 {
		t.Errorf("statuses = %v, want all three", got)
	}
}

func TestCreateValidatesAmount(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.JSONRequest(t, http.MethodPost, "/api/donations",
		map[string]any{"donor": "A", "amount": -5}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code=%d, want 400", rec.Code)
	}
}

func TestStatusTransition(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, nil, zap.NewNop())
	id := testutil.Seed(t, context.Background(), reg.Donations,
		map[string]any{"donor": "A", "amount": 100, "status": "pledged"})

	req := testutil.JSONRequest(t, http.MethodPut, "/api/donations/"+id,
		map[string]any{"$set": map[string]any{"status": "received"}})
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var doc map[string]any
	testutil.DecodeData(t, rec, &doc)
	if doc["status"] != "received" {
		t.Errorf("status = %v, want received", doc["status"])
	}
	if doc["amount"] != float64(100) {
		t.Errorf("amount = %v, want 100 preserved", doc["amount"])
	}
}
