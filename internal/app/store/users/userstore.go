// Package userstore is the typed pgx accessor for the authoritative users
// table. The identity service (store/identity) sits on top of it and adds
// normalization, role derivation, and the cache-fallback read path; nothing
// else should query the users table directly.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sevahub/sevahub/internal/domain/models"
)

var (
	// ErrNotFound is returned on single-row fetches that match nothing.
	ErrNotFound = errors.New("userstore: no such user")
	// ErrDuplicateEmail is returned when an insert violates the email
	// uniqueness constraint.
	ErrDuplicateEmail = errors.New("userstore: a user with this email already exists")
)

// Store issues SQL against the users table.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps the shared pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureTable creates the users table if it does not exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                  text PRIMARY KEY,
			email               text UNIQUE NOT NULL,
			full_name           text NOT NULL DEFAULT '',
			phone               text NOT NULL DEFAULT '',
			status              text NOT NULL DEFAULT 'active',
			role                text NOT NULL DEFAULT 'user',
			roles               text[] NOT NULL DEFAULT '{user}',
			password_hash       text NOT NULL DEFAULT '',
			created_at          timestamptz NOT NULL,
			updated_at          timestamptz NOT NULL,
			last_login_at       timestamptz,
			password_changed_at timestamptz
		)`)
	if err != nil {
		return fmt.Errorf("ensure users table: %w", err)
	}
	return nil
}

const userColumns = `id, email, full_name, phone, status, role, roles,
	password_hash, created_at, updated_at, last_login_at, password_changed_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Status, &u.Role,
		&u.Roles, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		&u.LastLoginAt, &u.PasswordChangedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Insert persists a fully-populated user and returns the row as stored.
func (s *Store) Insert(ctx context.Context, u models.User) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, full_name, phone, status, role, roles,
			password_hash, created_at, updated_at, last_login_at, password_changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+userColumns,
		u.ID, u.Email, u.FullName, u.Phone, u.Status, u.Role, u.Roles,
		u.PasswordHash, u.CreatedAt, u.UpdatedAt, u.LastLoginAt, u.PasswordChangedAt)
	out, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return out, nil
}

// GetByID fetches one user by canonical string id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail fetches one user by exact stored email. The caller passes the
// normalized form; historically-stored un-normalized rows are found via
// ListByDomains instead.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// ListByDomains returns every user whose email domain is in the set. Used
// for the broader Gmail-family scan when an exact normalized lookup misses.
func (s *Store) ListByDomains(ctx context.Context, domains []string) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE split_part(email, '@', 2) = ANY($1)`,
		domains)
	if err != nil {
		return nil, fmt.Errorf("list users by domain: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users by domain: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users by domain: %w", err)
	}
	return out, nil
}

// List returns users ordered by creation time, newest first.
func (s *Store) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC OFFSET $1 LIMIT $2`,
		skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Count returns the total number of users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// updatableColumns is the allow-list for UpdateFields. Password changes go
// through UpdatePassword only.
var updatableColumns = map[string]bool{
	"email":     true,
	"full_name": true,
	"phone":     true,
	"status":    true,
	"role":      true,
	"roles":     true,
}

// UpdateFields applies a partial update over allow-listed columns and returns
// the updated row. Unknown fields are skipped; an update reduced to nothing
// still bumps updated_at.
func (s *Store) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	set := []string{"updated_at = $2"}
	args := []any{id, time.Now().UTC()}
	for col, v := range fields {
		if !updatableColumns[col] {
			continue
		}
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = $1 RETURNING `+userColumns,
		args...)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return u, nil
}

// TouchLastLogin stamps last_login_at and returns the updated row.
func (s *Store) TouchLastLogin(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET last_login_at = now(), updated_at = now()
		WHERE id = $1 RETURNING `+userColumns, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("touch last login %s: %w", id, err)
	}
	return u, nil
}

// UpdatePassword replaces the password hash and stamps password_changed_at,
// which invalidates previously issued tokens.
func (s *Store) UpdatePassword(ctx context.Context, id, hash string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET password_hash = $2, password_changed_at = now(), updated_at = now()
		WHERE id = $1 RETURNING `+userColumns, id, hash)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update password %s: %w", id, err)
	}
	return u, nil
}

// Delete removes the user row. Deleting a missing id is not an error here;
// the identity service decides what a miss means.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
