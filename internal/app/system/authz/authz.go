// Package authz provides role checks and route middleware layered on the
// authenticated user placed in context by the auth middleware.
//
// Route groups use RequireRole for coarse gating; handlers needing
// per-resource decisions call UserCtx and compare with the roles package.
package authz

import (
	"net/http"
	"strings"

	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/roles"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// UserCtx returns the current user's role (lowercased), id, and a found flag.
// ok=false means the request is unauthenticated.
func UserCtx(r *http.Request) (role string, userID string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", false
	}
	return strings.ToLower(u.Role), u.ID, true
}

// User returns the full user record from context.
func User(r *http.Request) (*models.User, bool) {
	return auth.CurrentUser(r)
}

// IsAdmin reports whether the current user holds the admin role.
func IsAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// HasRole reports whether the current user holds the named role anywhere
// in their role set, not just as the primary role.
func HasRole(r *http.Request, want string) bool {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	want = roles.Normalize(want)
	if roles.Normalize(u.Role) == want {
		return true
	}
	for _, got := range u.Roles {
		if roles.Normalize(got) == want {
			return true
		}
	}
	return false
}

// AtLeast reports whether the current user's primary role ranks at or above min.
func AtLeast(r *http.Request, min string) bool {
	role, _, ok := UserCtx(r)
	return ok && roles.AtLeast(role, min)
}

// CanManageUser reports whether the actor may modify the target user.
// Admins manage anyone; everyone manages themselves.
func CanManageUser(r *http.Request, targetID string) bool {
	role, uid, ok := UserCtx(r)
	if !ok {
		return false
	}
	return role == "admin" || uid == targetID
}

// RequireRole is route middleware admitting only users whose primary role
// ranks at or above min. Unauthenticated requests get 401, under-privileged
// ones 403.
func RequireRole(min string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _, ok := UserCtx(r)
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !roles.AtLeast(role, min) {
				respond.Error(w, http.StatusForbidden, "insufficient privileges")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for RequireRole("admin").
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole("admin")(next)
}
