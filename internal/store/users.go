package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"moodr-backend/internal/models"
)

// GetOrCreateUser creates the user row lazily on first authenticated
// access. New users start with the most restrictive role.
func (s *Store) GetOrCreateUser(id uuid.UUID, username string) (*models.User, error) {
	user, err := s.GetUser(id)
	if err == nil {
		return user, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	if username == "" {
		username = id.String()
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`
		INSERT INTO users (id, username, role, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, username, models.RoleFree, now)
	if err != nil {
		// A concurrent first request may have created the row already.
		if user, getErr := s.GetUser(id); getErr == nil {
			return user, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{ID: id, Username: username, Role: models.RoleFree, CreatedAt: now}, nil
}

func (s *Store) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(`
		SELECT id, username, role, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetUserRole resolves the role for quota decisions. Callers must treat a
// resolution failure as the most restrictive role; see policy.Gate.
func (s *Store) GetUserRole(id uuid.UUID) (models.Role, error) {
	var role models.Role
	err := s.db.QueryRow(`SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user role: %w", err)
	}

	return role, nil
}

func (s *Store) UpdateUserRole(id uuid.UUID, role models.Role) error {
	res, err := s.db.Exec(`UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

// EnsureAdmin creates or promotes the bootstrap admin account so role
// administration is never locked out on a fresh deployment.
func (s *Store) EnsureAdmin(id uuid.UUID) error {
	if _, err := s.GetOrCreateUser(id, ""); err != nil {
		return err
	}

	return s.UpdateUserRole(id, models.RoleAdmin)
}

func (s *Store) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query(`
		SELECT id, username, role, created_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// DeleteUser removes the user and everything under them in one
// transaction: votes, then images, then projects, then the user row.
// The admin guard is hard-coded, not policy, to prevent permanent
// lockout. The returned locators are for blob reclamation; they are
// captured before the transaction commits.
func (s *Store) DeleteUser(id uuid.UUID) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var role models.Role
	err = tx.QueryRow(`SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if role == models.RoleAdmin {
		return nil, ErrForbidden
	}

	locators, err := collectLocators(tx, `
		SELECT images.url
		FROM images
		JOIN projects ON projects.id = images.project_id
		WHERE projects.user_id = $1
	`, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		DELETE FROM votes
		WHERE image_id IN (
			SELECT images.id FROM images
			JOIN projects ON projects.id = images.project_id
			WHERE projects.user_id = $1
		)
	`, id); err != nil {
		return nil, fmt.Errorf("failed to delete votes: %w", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM images
		WHERE project_id IN (SELECT id FROM projects WHERE user_id = $1)
	`, id); err != nil {
		return nil, fmt.Errorf("failed to delete images: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM projects WHERE user_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete projects: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return locators, nil
}

func collectLocators(tx *sql.Tx, query string, args ...interface{}) ([]string, error) {
	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to collect locators: %w", err)
	}
	defer rows.Close()

	var locators []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan locator: %w", err)
		}
		locators = append(locators, url)
	}

	return locators, rows.Err()
}
