package templates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	templatestore "github.com/sevahub/sevahub/internal/app/store/templates"
	"github.com/sevahub/sevahub/internal/domain/models"
	"github.com/sevahub/sevahub/internal/testutil"
)

// memStore is an in-memory Store for handler tests; sanitization is the
// real store's concern and is tested there.
type memStore struct {
	rows map[primitive.ObjectID]models.CommunicationTemplate
}

func newMemStore() *memStore {
	return &memStore{rows: map[primitive.ObjectID]models.CommunicationTemplate{}}
}

func (m *memStore) Create(_ context.Context, t models.CommunicationTemplate) (models.CommunicationTemplate, error) {
	for _, row := range m.rows {
		if row.Name == t.Name {
			return models.CommunicationTemplate{}, templatestore.ErrDuplicateName
		}
	}
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	m.rows[t.ID] = t
	return t, nil
}

func (m *memStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.CommunicationTemplate, error) {
	t, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *memStore) List(context.Context) ([]models.CommunicationTemplate, error) {
	var out []models.CommunicationTemplate
	for _, t := range m.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Update(_ context.Context, id primitive.ObjectID, t models.CommunicationTemplate) (*models.CommunicationTemplate, error) {
	existing, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	existing.Name = t.Name
	existing.Channel = t.Channel
	existing.Subject = t.Subject
	existing.TextBody = t.TextBody
	existing.HTMLBody = t.HTMLBody
	existing.Variables = t.Variables
	existing.UpdatedAt = time.Now().UTC()
	m.rows[id] = existing
	return &existing, nil
}

func (m *memStore) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func TestCreateDuplicateName(t *testing.T) {
	h := NewHandler(newMemStore(), zap.NewNop())

	body := map[string]any{"name": "welcome", "channel": "email", "subject": "Hi"}
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.JSONRequest(t, http.MethodPost, "/api/templates", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: code=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleCreate(rec, testutil.JSONRequest(t, http.MethodPost, "/api/templates", body))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create: code=%d, want 409", rec.Code)
	}
}

func TestRenderSubstitutesVariables(t *testing.T) {
	store := newMemStore()
	h := NewHandler(store, zap.NewNop())
	created, _ := store.Create(context.Background(), models.CommunicationTemplate{
		Name:     "festival",
		Subject:  "{{festival}} at {{temple}}",
		TextBody: "Join us for {{festival}}. Details: {{unset}}",
	})

	req := testutil.JSONRequest(t, http.MethodPost, "/api/templates/"+created.ID.Hex()+"/render",
		map[string]any{"variables": map[string]string{"festival": "Diwali", "temple": "North Temple"}})
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleRender(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Subject  string `json:"subject"`
		TextBody string `json:"text_body"`
	}
	testutil.DecodeData(t, rec, &resp)
	if resp.Subject != "Diwali at North Temple" {
		t.Errorf("subject = %q", resp.Subject)
	}
	if resp.TextBody != "Join us for Diwali. Details: {{unset}}" {
		t.Errorf("text = %q (unknown placeholder must survive)", resp.TextBody)
	}
}

func TestGetMalformedID(t *testing.T) {
	h := NewHandler(newMemStore(), zap.NewNop())

	req := testutil.WithChiURLParam(httptest.NewRequest(http.MethodGet, "/api/templates/zzz", nil), "id", "zzz")
	rec := httptest.NewRecorder()
	h.ServeGet(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code=%d, want 400", rec.Code)
	}
}
