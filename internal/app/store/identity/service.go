// Package identity owns user creation and lookup: Gmail-aware email
// canonicalization, primary-role derivation from the full role set, and a
// write-through/read-with-fallback policy between the authoritative users
// table and a process-local cache.
//
// One operation carries a hard consistency requirement: CreateUser must be
// confirmed durable before the cache learns about the user, so a store
// failure can never leave a phantom cache-only account. Every other write is
// best-effort against the store with the cache always reflecting the caller's
// intent, on the premise that losing a last-login stamp is tolerable where
// losing the fact of account creation is not.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	userstore "github.com/sevahub/sevahub/internal/app/store/users"
	"github.com/sevahub/sevahub/internal/app/system/normalize"
	"github.com/sevahub/sevahub/internal/app/system/roles"
	"github.com/sevahub/sevahub/internal/domain/models"
	"go.uber.org/zap"
)

// ErrPersistence is returned when the authoritative write behind user
// creation fails or cannot be confirmed. No cache entry exists in that case.
var ErrPersistence = errors.New("identity: user creation could not be confirmed durable")

// ErrDuplicateEmail mirrors the store-level uniqueness failure at this
// surface.
var ErrDuplicateEmail = userstore.ErrDuplicateEmail

// Authority is the authoritative relational tier. userstore.Store satisfies
// it; tests substitute in-memory and failing implementations. A miss must be
// reported as userstore.ErrNotFound; any other error is treated as the store
// being unreachable.
type Authority interface {
	Insert(ctx context.Context, u models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByDomains(ctx context.Context, domains []string) ([]models.User, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// Service is the identity resolution service.
type Service struct {
	auth  Authority
	cache *Cache
	log   *zap.Logger
}

// New builds a Service with an empty cache.
func New(auth Authority, logger *zap.Logger) *Service {
	return &Service{auth: auth, cache: NewCache(), log: logger}
}

// Cache exposes the fallback tier for inspection in tests.
func (s *Service) Cache() *Cache { return s.cache }

// NewUser is the input to CreateUser. Roles wins over Role when both are
// set; with neither, the account defaults to the plain "user" role.
type NewUser struct {
	Email        string
	FullName     string
	Phone        string
	PasswordHash string
	Status       string
	Role         string
	Roles        []string
}

// lookupOutcome is the explicit three-way result of an authoritative read.
// The fallback branch keys off outcome, not off error types.
type lookupOutcome int

const (
	found lookupOutcome = iota
	notFound
	unreachable
)

// CreateUser persists a new user. The authoritative insert must succeed —
// the returned row is the durability acknowledgment — before the cache is
// touched; on failure the operation fails with ErrPersistence and no
// cache-only user exists.
func (s *Service) CreateUser(ctx context.Context, data NewUser) (*models.User, error) {
	set := roles.Clean(data.Roles)
	if len(set) == 0 && data.Role != "" {
		set = roles.Clean([]string{data.Role})
	}
	if len(set) == 0 {
		set = []string{roles.Default}
	}

	status := normalize.Status(data.Status)
	if status == "" {
		status = "active"
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           uuid.NewString(),
		Email:        normalize.Email(data.Email),
		FullName:     normalize.Name(data.FullName),
		Phone:        normalize.Phone(data.Phone),
		Status:       status,
		Role:         roles.Primary(set),
		Roles:        set,
		PasswordHash: data.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	stored, err := s.auth.Insert(ctx, u)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		s.log.Error("user creation failed at the authoritative store",
			zap.String("email", u.Email), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if stored == nil {
		return nil, ErrPersistence
	}

	s.cache.Put(*stored)
	return stored, nil
}

// FindUserByEmail resolves a user from any written form of their address.
// Authoritative exact match first; for Gmail-family addresses a broader
// domain scan re-normalizes candidates, which finds historically-stored
// un-normalized rows. When the store is unreachable the same two-phase
// strategy runs against the cache. nil means no match — not an error.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	norm := normalize.Email(email)
	if norm == "" {
		return nil, nil
	}

	u, outcome := s.authoritativeByEmail(ctx, norm)
	switch outcome {
	case found:
		s.cache.Put(*u)
		return u, nil
	case notFound:
		return nil, nil
	}

	// Unreachable: fall back to the cache, exact key then normalized scan.
	if cached, ok := s.cache.GetByEmail(norm); ok {
		return cached, nil
	}
	if normalize.IsGmail(norm) {
		for _, cu := range s.cache.Users() {
			if normalize.Email(cu.Email) == norm {
				cp := cu.Clone()
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (s *Service) authoritativeByEmail(ctx context.Context, norm string) (*models.User, lookupOutcome) {
	u, err := s.auth.GetByEmail(ctx, norm)
	if err == nil {
		return u, found
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		s.log.Warn("authoritative email lookup unreachable, using cache",
			zap.Error(err))
		return nil, unreachable
	}

	if !normalize.IsGmail(norm) {
		return nil, notFound
	}
	candidates, err := s.auth.ListByDomains(ctx, normalize.GmailDomains())
	if err != nil {
		s.log.Warn("authoritative gmail scan unreachable, using cache",
			zap.Error(err))
		return nil, unreachable
	}
	for i := range candidates {
		if normalize.Email(candidates[i].Email) == norm {
			return &candidates[i], found
		}
	}
	return nil, notFound
}

// FindUserByID resolves a user by canonical string identifier, with cache
// fallback when the authoritative store is unreachable.
func (s *Service) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.auth.GetByID(ctx, id)
	if err == nil {
		s.cache.Put(*u)
		return u, nil
	}
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, nil
	}
	s.log.Warn("authoritative id lookup unreachable, using cache",
		zap.String("user_id", id), zap.Error(err))
	if cached, ok := s.cache.GetByID(id); ok {
		return cached, nil
	}
	return nil, nil
}

// UpdateUser applies a partial field update. Password fields are stripped —
// password changes go through UpdateUserPassword. Role fields are kept
// consistent: setting roles (or a singular role) re-derives the primary role
// so the invariant role == Primary(roles) holds. The cache reflects the
// update even when the authoritative write fails; that failure is logged,
// not surfaced.
func (s *Service) UpdateUser(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "password", "password_hash", "passwordHash":
			// silently dropped
		case "email":
			if e, ok := v.(string); ok {
				clean["email"] = normalize.Email(e)
			}
		case "roles":
			set := roles.Clean(toStrings(v))
			if len(set) == 0 {
				set = []string{roles.Default}
			}
			clean["roles"] = set
			clean["role"] = roles.Primary(set)
		case "role":
			if r, ok := v.(string); ok {
				set := roles.Clean([]string{r})
				if len(set) == 0 {
					set = []string{roles.Default}
				}
				clean["roles"] = set
				clean["role"] = roles.Primary(set)
			}
		default:
			clean[k] = v
		}
	}

	updated, err := s.auth.UpdateFields(ctx, id, clean)
	if err == nil {
		s.cache.Put(*updated)
		return updated, nil
	}
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, nil
	}
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return nil, ErrDuplicateEmail
	}

	s.log.Warn("authoritative user update failed, cache reflects the change",
		zap.String("user_id", id), zap.Error(err))
	return s.patchCache(id, func(u *models.User) {
		applyFields(u, clean)
	}), nil
}

// UpdateUserLastLogin stamps last_login_at, best-effort against the store.
func (s *Service) UpdateUserLastLogin(ctx context.Context, id string) (*models.User, error) {
	updated, err := s.auth.TouchLastLogin(ctx, id)
	if err == nil {
		s.cache.Put(*updated)
		return updated, nil
	}
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, nil
	}
	s.log.Warn("authoritative last-login update failed, cache reflects the change",
		zap.String("user_id", id), zap.Error(err))
	now := time.Now().UTC()
	return s.patchCache(id, func(u *models.User) {
		u.LastLoginAt = &now
		u.UpdatedAt = now
	}), nil
}

// UpdateUserPassword replaces the password hash and stamps
// password_changed_at so previously issued tokens stop verifying.
func (s *Service) UpdateUserPassword(ctx context.Context, id, hash string) (*models.User, error) {
	updated, err := s.auth.UpdatePassword(ctx, id, hash)
	if err == nil {
		s.cache.Put(*updated)
		return updated, nil
	}
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, nil
	}
	s.log.Warn("authoritative password update failed, cache reflects the change",
		zap.String("user_id", id), zap.Error(err))
	now := time.Now().UTC()
	return s.patchCache(id, func(u *models.User) {
		u.PasswordHash = hash
		u.PasswordChangedAt = &now
		u.UpdatedAt = now
	}), nil
}

// DeleteUser drops the user from the cache unconditionally and attempts the
// authoritative delete; a store failure is logged, not surfaced.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	s.cache.Remove(id)
	if err := s.auth.Delete(ctx, id); err != nil {
		s.log.Warn("authoritative user delete failed, removed from cache only",
			zap.String("user_id", id), zap.Error(err))
	}
	return nil
}

// patchCache mutates the cached copy, if one exists, and returns it.
func (s *Service) patchCache(id string, mutate func(*models.User)) *models.User {
	cached, ok := s.cache.GetByID(id)
	if !ok {
		return nil
	}
	mutate(cached)
	s.cache.Put(*cached)
	return cached
}

// applyFields mirrors the allow-listed column update onto a cached record.
func applyFields(u *models.User, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "email":
			if e, ok := v.(string); ok {
				u.Email = e
			}
		case "full_name":
			if n, ok := v.(string); ok {
				u.FullName = n
			}
		case "phone":
			if p, ok := v.(string); ok {
				u.Phone = p
			}
		case "status":
			if st, ok := v.(string); ok {
				u.Status = st
			}
		case "role":
			if r, ok := v.(string); ok {
				u.Role = r
			}
		case "roles":
			u.Roles = toStrings(v)
		}
	}
	u.UpdatedAt = time.Now().UTC()
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
