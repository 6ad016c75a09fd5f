package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sevahub/sevahub/internal/app/store/users"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// MemAuthority is an in-memory identity.Authority for feature tests.
// Fail, when set, is returned from every call to simulate an outage.
type MemAuthority struct {
	mu    sync.Mutex
	rows  map[string]models.User
	Fail  error
	clock func() time.Time
}

// NewMemAuthority returns an empty MemAuthority.
func NewMemAuthority() *MemAuthority {
	return &MemAuthority{rows: map[string]models.User{}, clock: time.Now}
}

// SeedUser stores a user row directly, bypassing normalization. Missing ids
// are generated.
func (m *MemAuthority) SeedUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.rows[u.ID] = u
	return u
}

func (m *MemAuthority) Insert(_ context.Context, u models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	for _, row := range m.rows {
		if row.Email == u.Email {
			return nil, userstore.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := m.clock().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.rows[u.ID] = u
	c := u.Clone()
	return &c, nil
}

func (m *MemAuthority) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	c := u.Clone()
	return &c, nil
}

func (m *MemAuthority) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	for _, u := range m.rows {
		if u.Email == email {
			c := u.Clone()
			return &c, nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (m *MemAuthority) ListByDomains(_ context.Context, domains []string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []models.User
	for _, u := range m.rows {
		for _, d := range domains {
			if hasDomain(u.Email, d) {
				out = append(out, u.Clone())
				break
			}
		}
	}
	return out, nil
}

func (m *MemAuthority) List(_ context.Context, skip, limit int) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var all []models.User
	for _, u := range m.rows {
		all = append(all, u.Clone())
	}
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemAuthority) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	return int64(len(m.rows)), nil
}

func (m *MemAuthority) UpdateFields(_ context.Context, id string, fields map[string]any) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "email":
			u.Email, _ = v.(string)
		case "full_name":
			u.FullName, _ = v.(string)
		case "phone":
			u.Phone, _ = v.(string)
		case "status":
			u.Status, _ = v.(string)
		case "role":
			u.Role, _ = v.(string)
		case "roles":
			if rs, ok := v.([]string); ok {
				u.Roles = append([]string(nil), rs...)
			}
		}
	}
	u.UpdatedAt = m.clock().UTC()
	m.rows[id] = u
	c := u.Clone()
	return &c, nil
}

func (m *MemAuthority) TouchLastLogin(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	now := m.clock().UTC()
	u.LastLoginAt = &now
	m.rows[id] = u
	c := u.Clone()
	return &c, nil
}

func (m *MemAuthority) UpdatePassword(_ context.Context, id, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	now := m.clock().UTC()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	m.rows[id] = u
	c := u.Clone()
	return &c, nil
}

func (m *MemAuthority) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.rows[id]; !ok {
		return userstore.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func hasDomain(email, domain string) bool {
	n := len(email) - len(domain)
	return n > 0 && email[n-1] == '@' && email[n:] == domain
}
