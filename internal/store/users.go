package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CreateUser inserts a user with an already-hashed password.
func (s *Store) CreateUser(email, passwordHash string) (*User, error) {
	id := uuid.NewString()
	email = normalizeEmail(email)
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, email, passwordHash, nowUTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(id)
}

func (s *Store) GetUser(id string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id,
	))
}

func (s *Store) GetUserByEmail(email string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, normalizeEmail(email),
	))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	var createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
