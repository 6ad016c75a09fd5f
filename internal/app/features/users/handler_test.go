package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/mailer"
	"github.com/sevahub/sevahub/internal/domain/models"
	"github.com/sevahub/sevahub/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.MemAuthority) {
	t.Helper()
	authy := testutil.NewMemAuthority()
	ident := identity.New(authy, zap.NewNop())
	am, err := auth.NewManager("test-secret", time.Hour, ident, zap.NewNop())
	if err != nil {
		t.Fatalf("auth.NewManager: %v", err)
	}
	return NewHandler(ident, authy, am, mailer.New(mailer.Config{SiteName: "SevaHub"}, zap.NewNop()),
		nil, "https://sevahub.test", "SevaHub", zap.NewNop()), authy
}

func seedAccount(t *testing.T, authy *testutil.MemAuthority, email, password, role string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return authy.SeedUser(models.User{
		Email:        email,
		FullName:     "Seeded User",
		Status:       "active",
		Role:         role,
		Roles:        []string{role},
		PasswordHash: hash,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"email":     "Asha.Rao@gmail.com",
		"password":  "open-sesame",
		"full_name": "Asha Rao",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: code=%d body=%s", rec.Code, rec.Body.String())
	}
	var created struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	testutil.DecodeData(t, rec, &created)
	if created.Token == "" {
		t.Error("register returned no token")
	}
	if created.User.Email != "asharao@gmail.com" {
		t.Errorf("stored email = %q, want normalized asharao@gmail.com", created.User.Email)
	}
	if created.User.Role != "user" {
		t.Errorf("role = %q, want user", created.User.Role)
	}

	// Login with a dot variant of the same Gmail address.
	rec = httptest.NewRecorder()
	h.HandleLogin(rec, testutil.JSONRequest(t, http.MethodPost, "/api/users/login", map[string]string{
		"email":    "a.sha.rao@gmail.com",
		"password": "open-sesame",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: code=%d body=%s", rec.Code, rec.Body.String())
	}
	var loggedIn struct {
		User models.User `json:"user"`
	}
	testutil.DecodeData(t, rec, &loggedIn)
	if loggedIn.User.ID != created.User.ID {
		t.Error("dot-variant login resolved a different user")
	}
	if loggedIn.User.LastLoginAt == nil {
		t.Error("login did not stamp last_login_at")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, authy := newTestHandler(t)
	seedAccount(t, authy, "taken@example.com", "password1", "user")

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.JSONRequest(t, http.MethodPost, "/api/users/register", map[string]string{
		"email": "taken@example.com", "password": "password2",
	}))
	if rec.Code != http.StatusConflict {
		t.Errorf("code=%d, want 409", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, authy := newTestHandler(t)
	seedAccount(t, authy, "user@example.com", "right-password", "user")

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, testutil.JSONRequest(t, http.MethodPost, "/api/users/login", map[string]string{
		"email": "user@example.com", "password": "wrong-password",
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("code=%d, want 401", rec.Code)
	}
}

func TestUpdateForbiddenFields(t *testing.T) {
	h, authy := newTestHandler(t)
	u := seedAccount(t, authy, "user@example.com", "password1", "user")

	// Plain user may not grant themselves a role.
	req := testutil.RequestAs(t, &u, http.MethodPut, "/api/users/"+u.ID, map[string]any{"role": "admin"})
	req = testutil.WithChiURLParam(req, "id", u.ID)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("role self-grant: code=%d, want 403", rec.Code)
	}

	// Password keys are not settable through the profile update.
	req = testutil.RequestAs(t, &u, http.MethodPut, "/api/users/"+u.ID,
		map[string]any{"full_name": "New Name", "password_hash": "sneaky"})
	req = testutil.WithChiURLParam(req, "id", u.ID)
	rec = httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile update: code=%d body=%s", rec.Code, rec.Body.String())
	}
	got, err := authy.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FullName != "New Name" {
		t.Errorf("full_name = %q", got.FullName)
	}
	if got.PasswordHash != u.PasswordHash {
		t.Error("password hash changed through profile update")
	}
}

func TestAdminUpdatesRoles(t *testing.T) {
	h, authy := newTestHandler(t)
	admin := seedAccount(t, authy, "admin@example.com", "password1", "admin")
	target := seedAccount(t, authy, "user@example.com", "password2", "user")

	req := testutil.RequestAs(t, &admin, http.MethodPut, "/api/users/"+target.ID,
		map[string]any{"roles": []string{"volunteer", "priest"}})
	req = testutil.WithChiURLParam(req, "id", target.ID)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var updated models.User
	testutil.DecodeData(t, rec, &updated)
	if updated.Role != "priest" {
		t.Errorf("primary role = %q, want priest (outranks volunteer)", updated.Role)
	}
}

func TestPasswordChangeRequiresCurrent(t *testing.T) {
	h, authy := newTestHandler(t)
	u := seedAccount(t, authy, "user@example.com", "old-password", "user")

	req := testutil.RequestAs(t, &u, http.MethodPut, "/api/users/"+u.ID+"/password",
		map[string]string{"current_password": "not-it", "new_password": "new-password"})
	req = testutil.WithChiURLParam(req, "id", u.ID)
	rec := httptest.NewRecorder()
	h.HandlePassword(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong current password: code=%d, want 403", rec.Code)
	}

	req = testutil.RequestAs(t, &u, http.MethodPut, "/api/users/"+u.ID+"/password",
		map[string]string{"current_password": "old-password", "new_password": "new-password"})
	req = testutil.WithChiURLParam(req, "id", u.ID)
	rec = httptest.NewRecorder()
	h.HandlePassword(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password change: code=%d body=%s", rec.Code, rec.Body.String())
	}

	got, _ := authy.GetByID(context.Background(), u.ID)
	if !auth.CheckPassword(got.PasswordHash, "new-password") {
		t.Error("new password not stored")
	}
	if got.PasswordChangedAt == nil {
		t.Error("password_changed_at not stamped")
	}
}

func TestListPaged(t *testing.T) {
	h, authy := newTestHandler(t)
	admin := seedAccount(t, authy, "admin@example.com", "password1", "admin")
	for i := 0; i < 3; i++ {
		seedAccount(t, authy, string(rune('a'+i))+"@example.com", "password1", "user")
	}

	req := testutil.RequestAs(t, &admin, http.MethodGet, "/api/users?page=1&limit=2", nil)
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Users []json.RawMessage `json:"users"`
		Meta  struct {
			HasNext bool `json:"has_next"`
		} `json:"meta"`
	}
	testutil.DecodeData(t, rec, &resp)
	if len(resp.Users) != 2 || !resp.Meta.HasNext {
		t.Errorf("users=%d has_next=%v, want 2/true", len(resp.Users), resp.Meta.HasNext)
	}
}

func TestDeleteSelfRejected(t *testing.T) {
	h, authy := newTestHandler(t)
	admin := seedAccount(t, authy, "admin@example.com", "password1", "admin")

	req := testutil.RequestAs(t, &admin, http.MethodDelete, "/api/users/"+admin.ID, nil)
	req = testutil.WithChiURLParam(req, "id", admin.ID)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code=%d, want 400", rec.Code)
	}
}
