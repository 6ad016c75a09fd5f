package identity

import (
	"sync"

	"github.com/sevahub/sevahub/internal/app/system/normalize"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// Cache is the process-local fallback tier: a plain map by id and by
// normalized email, populated opportunistically after every successful
// authoritative read or write. It is never authoritative, holds no TTL or
// eviction, and all mutations are simple overwrite-by-key.
type Cache struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]models.User
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]models.User),
	}
}

// Put stores the user under both keys, replacing any prior entry. The email
// key is the canonical form regardless of how the record spells it.
func (c *Cache) Put(u models.User) {
	cp := u.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.byID[cp.ID]; ok {
		delete(c.byEmail, normalize.Email(prev.Email))
	}
	c.byID[cp.ID] = cp
	if cp.Email != "" {
		c.byEmail[normalize.Email(cp.Email)] = cp
	}
}

// GetByID returns a copy of the cached user, if present.
func (c *Cache) GetByID(id string) (*models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	cp := u.Clone()
	return &cp, true
}

// GetByEmail returns a copy of the cached user under the normalized email.
func (c *Cache) GetByEmail(normEmail string) (*models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.byEmail[normEmail]
	if !ok {
		return nil, false
	}
	cp := u.Clone()
	return &cp, true
}

// Remove drops the user from both indexes.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u, ok := c.byID[id]; ok {
		delete(c.byEmail, normalize.Email(u.Email))
		delete(c.byID, id)
	}
}

// Users returns a copy of every cached record. Used by the normalized-scan
// fallback when an exact email key misses.
func (c *Cache) Users() []models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.User, 0, len(c.byID))
	for _, u := range c.byID {
		out = append(out, u.Clone())
	}
	return out
}

// Len reports the number of cached users.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
