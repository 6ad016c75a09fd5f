package bootstrap

import (
	"context"
	"slices"
	"testing"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/domain/models"
	"github.com/sevahub/sevahub/internal/testutil"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureSuperAdmin_CreatesNew(t *testing.T) {
	authority := testutil.NewMemAuthority()
	ident := identity.New(authority, testLogger())

	if err := ensureSuperAdmin(context.Background(), ident, "SuperAdmin@gmail.com", testLogger()); err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	u, err := ident.FindUserByEmail(context.Background(), "superadmin@gmail.com")
	if err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}
	if u == nil {
		t.Fatal("expected superadmin to be created")
	}
	if u.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", u.Role)
	}
	if u.Status != "active" {
		t.Errorf("expected status 'active', got %q", u.Status)
	}
	if u.PasswordHash == "" {
		t.Error("expected a generated password hash")
	}
}

func TestEnsureSuperAdmin_PromotesExisting(t *testing.T) {
	authority := testutil.NewMemAuthority()
	ident := identity.New(authority, testLogger())

	authority.SeedUser(models.User{
		ID:     "u-1",
		Email:  "existing@temple.org",
		Status: "active",
		Role:   "priest",
		Roles:  []string{"priest"},
	})

	if err := ensureSuperAdmin(context.Background(), ident, "existing@temple.org", testLogger()); err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	u, err := ident.FindUserByEmail(context.Background(), "existing@temple.org")
	if err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}
	if u == nil {
		t.Fatal("expected user to exist")
	}
	if u.Role != "admin" {
		t.Errorf("expected primary role 'admin' after promotion, got %q", u.Role)
	}
	if !slices.Contains(u.Roles, "priest") {
		t.Errorf("expected existing roles to be kept, got %v", u.Roles)
	}
}

func TestEnsureSuperAdmin_AlreadyAdmin(t *testing.T) {
	authority := testutil.NewMemAuthority()
	ident := identity.New(authority, testLogger())

	authority.SeedUser(models.User{
		ID:     "u-2",
		Email:  "boss@temple.org",
		Status: "active",
		Role:   "admin",
		Roles:  []string{"admin"},
	})

	if err := ensureSuperAdmin(context.Background(), ident, "boss@temple.org", testLogger()); err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	u, _ := ident.FindUserByEmail(context.Background(), "boss@temple.org")
	if u == nil || u.Role != "admin" {
		t.Fatalf("expected admin to be left as-is, got %+v", u)
	}
	if len(u.Roles) != 1 {
		t.Errorf("expected roles unchanged, got %v", u.Roles)
	}
}
