package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/domain/models"
)

func reqAs(u *models.User) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if u == nil {
		return r
	}
	return auth.WithUser(r, u)
}

func TestUserCtx(t *testing.T) {
	if _, _, ok := UserCtx(reqAs(nil)); ok {
		t.Error("expected ok=false for anonymous request")
	}

	role, uid, ok := UserCtx(reqAs(&models.User{ID: "u1", Role: "Admin"}))
	if !ok || role != "admin" || uid != "u1" {
		t.Errorf("UserCtx = %q/%q/%v, want admin/u1/true", role, uid, ok)
	}
}

func TestHasRole(t *testing.T) {
	u := &models.User{ID: "u1", Role: "volunteer", Roles: []string{"volunteer", "finance_team"}}
	r := reqAs(u)

	if !HasRole(r, "finance_team") {
		t.Error("secondary role not recognized")
	}
	if HasRole(r, "admin") {
		t.Error("unexpected admin role")
	}
}

func TestCanManageUser(t *testing.T) {
	cases := []struct {
		name   string
		user   *models.User
		target string
		want   bool
	}{
		{"anonymous", nil, "u2", false},
		{"self", &models.User{ID: "u1", Role: "user"}, "u1", true},
		{"other as user", &models.User{ID: "u1", Role: "user"}, "u2", false},
		{"other as admin", &models.User{ID: "u1", Role: "admin"}, "u2", true},
	}
	for _, tc := range cases {
		if got := CanManageUser(reqAs(tc.user), tc.target); got != tc.want {
			t.Errorf("%s: CanManageUser = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("board")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name string
		user *models.User
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"below threshold", &models.User{ID: "u1", Role: "volunteer"}, http.StatusForbidden},
		{"at threshold", &models.User{ID: "u2", Role: "board"}, http.StatusOK},
		{"above threshold", &models.User{ID: "u3", Role: "admin"}, http.StatusOK},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, reqAs(tc.user))
		if rec.Code != tc.want {
			t.Errorf("%s: code=%d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}
