// internal/domain/models/user.go
package models

import "time"

// User is the identity record held in the authoritative users table.
//
// Role is always the highest-priority entry of Roles (see system/roles);
// Roles is the authoritative set. Email is stored in canonical form
// (see system/normalize).
type User struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name"`
	Phone             string     `json:"phone,omitempty"`
	Status            string     `json:"status"` // active | inactive
	Role              string     `json:"role"`
	Roles             []string   `json:"roles"`
	PasswordHash      string     `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	PasswordChangedAt *time.Time `json:"-"`
}

// Clone returns a deep copy, so cached records cannot be mutated through
// shared slices.
func (u User) Clone() User {
	out := u
	if u.Roles != nil {
		out.Roles = append([]string(nil), u.Roles...)
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		out.LastLoginAt = &t
	}
	if u.PasswordChangedAt != nil {
		t := *u.PasswordChangedAt
		out.PasswordChangedAt = &t
	}
	return out
}
