// Package testutil provides shared helpers for handler and store tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/store/rel"
	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Repeated calls accumulate parameters on the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// JSONRequest builds a request with a JSON-encoded body.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// RequestAs is JSONRequest with an authenticated user in context.
func RequestAs(t *testing.T, u *models.User, method, target string, body any) *http.Request {
	t.Helper()
	return auth.WithUser(JSONRequest(t, method, target, body), u)
}

// Admin returns an active admin user for tests.
func Admin() *models.User {
	return &models.User{ID: "admin-1", Email: "admin@example.com", FullName: "Test Admin",
		Status: "active", Role: "admin", Roles: []string{"admin"}}
}

// Member returns an active plain-role user for tests.
func Member() *models.User {
	return &models.User{ID: "user-1", Email: "user@example.com", FullName: "Test User",
		Status: "active", Role: "user", Roles: []string{"user"}}
}

// Envelope mirrors the API response wrapper for decoding in tests.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// DecodeEnvelope unwraps a recorded response body.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response envelope: %v (body=%s)", err, rec.Body.String())
	}
	return env
}

// DecodeData unmarshals the envelope's data payload into dst.
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := DecodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("response not successful: %s", env.Error)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode response data: %v", err)
	}
}

// NewMemoryRegistry returns a docstore registry over an in-memory store,
// plus the store itself for fault injection.
func NewMemoryRegistry() (*docstore.Registry, *rel.Memory) {
	mem := rel.NewMemory()
	return docstore.NewRegistry(mem), mem
}

// Seed inserts a document directly into a collection and returns its id.
func Seed(t *testing.T, ctx context.Context, coll *docstore.Collection, doc map[string]any) string {
	t.Helper()
	saved, err := coll.Save(ctx, doc)
	if err != nil {
		t.Fatalf("seed %s: %v", coll.Table(), err)
	}
	id, _ := saved["id"].(string)
	return id
}
