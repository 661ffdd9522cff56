package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"moodr-backend/internal/models"
)

func (s *Store) CreateImage(projectID uuid.UUID, url string) (*models.Image, error) {
	now := time.Now().UTC()
	image := &models.Image{
		ID:        uuid.New(),
		ProjectID: projectID,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.Exec(`
		INSERT INTO images (id, project_id, url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, image.ID, image.ProjectID, image.URL, image.CreatedAt, image.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}

	return image, nil
}

// GetProjectImage resolves an image within a stated project; a mismatch
// between image and project is ErrNotFound, not a separate error.
func (s *Store) GetProjectImage(projectID, imageID uuid.UUID) (*models.Image, error) {
	var image models.Image
	err := s.db.QueryRow(`
		SELECT id, project_id, url, created_at, updated_at
		FROM images
		WHERE id = $1 AND project_id = $2
	`, imageID, projectID).Scan(&image.ID, &image.ProjectID, &image.URL, &image.CreatedAt, &image.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return &image, nil
}

// ListImages returns a project's images ordered by creation time; this
// order is the stable input the presentation scheduler shuffles from.
func (s *Store) ListImages(projectID uuid.UUID) ([]models.Image, error) {
	rows, err := s.db.Query(`
		SELECT id, project_id, url, created_at, updated_at
		FROM images
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		var image models.Image
		if err := rows.Scan(&image.ID, &image.ProjectID, &image.URL, &image.CreatedAt, &image.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, image)
	}

	return images, rows.Err()
}

func (s *Store) CountImages(projectID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM images WHERE project_id = $1`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count images: %w", err)
	}

	return count, nil
}

// ReplaceImageURL swaps the storage locator for an image and returns the
// old locator so the caller can schedule deletion of the replaced object.
func (s *Store) ReplaceImageURL(imageID uuid.UUID, url string) (string, error) {
	var oldURL string
	err := s.db.QueryRow(`SELECT url FROM images WHERE id = $1`, imageID).Scan(&oldURL)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get image: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE images SET url = $1, updated_at = $2 WHERE id = $3
	`, url, time.Now().UTC(), imageID)
	if err != nil {
		return "", fmt.Errorf("failed to replace image url: %w", err)
	}

	return oldURL, nil
}

// DeleteImage removes a single image and its votes in one transaction
// and returns the locator of its blob object.
func (s *Store) DeleteImage(id uuid.UUID) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var url string
	err = tx.QueryRow(`SELECT url FROM images WHERE id = $1`, id).Scan(&url)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get image: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM votes WHERE image_id = $1`, id); err != nil {
		return "", fmt.Errorf("failed to delete votes: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM images WHERE id = $1`, id); err != nil {
		return "", fmt.Errorf("failed to delete image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	return url, nil
}

// AllImageURLs returns every known locator. The reconciliation sweep
// diffs this set against the blob store's contents.
func (s *Store) AllImageURLs() ([]string, error) {
	rows, err := s.db.Query(`SELECT url FROM images`)
	if err != nil {
		return nil, fmt.Errorf("failed to list image urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}
