package mobile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/domain/models"
	"github.com/sevahub/sevahub/internal/testutil"
)

func seedWorld(t *testing.T) (*Handler, *docstore.Registry) {
	t.Helper()
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())
	ctx := context.Background()

	testutil.Seed(t, ctx, reg.Communities, map[string]any{"id": "c1", "name": "North Temple"})
	testutil.Seed(t, ctx, reg.Communities, map[string]any{"id": "c2", "name": "South Temple"})

	// One membership by user id, one by historical email, one unrelated.
	testutil.Seed(t, ctx, reg.Members, map[string]any{"community_id": "c1", "user_id": "u1"})
	testutil.Seed(t, ctx, reg.Members, map[string]any{"community_id": "c2", "email": "asharao@gmail.com"})
	testutil.Seed(t, ctx, reg.Members, map[string]any{"community_id": "c2", "user_id": "someone-else"})

	testutil.Seed(t, ctx, reg.Events, map[string]any{"community_id": "c1", "title": "Diwali"})
	testutil.Seed(t, ctx, reg.Events, map[string]any{"community_id": "c2", "title": "Holi"})
	testutil.Seed(t, ctx, reg.Events, map[string]any{"community_id": "c3", "title": "Unrelated"})

	return h, reg
}

func asha() *models.User {
	// Dot-variant email on the account; member record holds the
	// normalized form.
	return &models.User{ID: "u1", Email: "A.Sha.Rao@gmail.com", Status: "active", Role: "user"}
}

func TestMyCommunities(t *testing.T) {
	h, _ := seedWorld(t)

	req := testutil.RequestAs(t, asha(), http.MethodGet, "/api/mobile/me/communities", nil)
	rec := httptest.NewRecorder()
	h.ServeMyCommunities(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Communities []map[string]any `json:"communities"`
	}
	testutil.DecodeData(t, rec, &resp)
	if len(resp.Communities) != 2 {
		t.Fatalf("communities = %v, want both memberships resolved", resp.Communities)
	}
}

func TestMyEvents(t *testing.T) {
	h, _ := seedWorld(t)

	req := testutil.RequestAs(t, asha(), http.MethodGet, "/api/mobile/me/events", nil)
	rec := httptest.NewRecorder()
	h.ServeMyEvents(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Events []map[string]any `json:"events"`
	}
	testutil.DecodeData(t, rec, &resp)
	titles := map[string]bool{}
	for _, e := range resp.Events {
		titles[e["title"].(string)] = true
	}
	if !titles["Diwali"] || !titles["Holi"] || titles["Unrelated"] {
		t.Errorf("events = %v, want exactly Diwali and Holi", titles)
	}
}

func TestNoMemberships(t *testing.T) {
	reg, _ := testutil.NewMemoryRegistry()
	h := NewHandler(reg, zap.NewNop())

	req := testutil.RequestAs(t, asha(), http.MethodGet, "/api/mobile/me/communities", nil)
	rec := httptest.NewRecorder()
	h.ServeMyCommunities(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	var resp struct {
		Communities []map[string]any `json:"communities"`
	}
	testutil.DecodeData(t, rec, &resp)
	if len(resp.Communities) != 0 {
		t.Errorf("communities = %v, want empty", resp.Communities)
	}
}
