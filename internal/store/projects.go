package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"moodr-backend/internal/models"
)

func (s *Store) CreateProject(userID uuid.UUID, name string) (*models.Project, error) {
	project := &models.Project{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO projects (id, user_id, name, view_count, created_at)
		VALUES ($1, $2, $3, 0, $4)
	`, project.ID, project.UserID, project.Name, project.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

func (s *Store) GetProject(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.QueryRow(`
		SELECT id, user_id, name, view_count, created_at
		FROM projects
		WHERE id = $1
	`, id).Scan(&project.ID, &project.UserID, &project.Name, &project.ViewCount, &project.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

func (s *Store) ListProjects(userID uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, view_count, created_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(&project.ID, &project.UserID, &project.Name, &project.ViewCount, &project.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

func (s *Store) CountProjects(userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM projects WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}

	return count, nil
}

func (s *Store) RenameProject(id uuid.UUID, name string) error {
	res, err := s.db.Exec(`UPDATE projects SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

// IncrementViewCount bumps the stored view counter and returns the new
// value. At-least-once; concurrent increments may both apply, which is
// the accepted semantics for this counter.
func (s *Store) IncrementViewCount(id uuid.UUID) (int, error) {
	res, err := s.db.Exec(`UPDATE projects SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to increment view count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}

	var count int
	if err := s.db.QueryRow(`SELECT view_count FROM projects WHERE id = $1`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to read view count: %w", err)
	}

	return count, nil
}

// DeleteProject removes the project and everything under it in one
// transaction, votes first, then images, then the project row, and
// returns the image locators captured before commit so the caller can
// schedule blob reclamation. A concurrent delete of the same project
// observes ErrNotFound rather than partially re-deleting.
func (s *Store) DeleteProject(id uuid.UUID) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	locators, err := collectLocators(tx, `SELECT url FROM images WHERE project_id = $1`, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		DELETE FROM votes
		WHERE image_id IN (SELECT id FROM images WHERE project_id = $1)
	`, id); err != nil {
		return nil, fmt.Errorf("failed to delete votes: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM images WHERE project_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete images: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return locators, nil
}
