package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"moodr-backend/internal/models"
)

// CreateVote appends a vote fact. Votes are never updated and never
// deduplicated server-side; the only precondition is that the image
// belongs to the stated project.
func (s *Store) CreateVote(projectID, imageID uuid.UUID, liked bool) (*models.Vote, error) {
	var exists int
	err := s.db.QueryRow(`
		SELECT 1 FROM images WHERE id = $1 AND project_id = $2
	`, imageID, projectID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check image: %w", err)
	}

	vote := &models.Vote{
		ID:        uuid.New(),
		ImageID:   imageID,
		ProjectID: projectID,
		Liked:     liked,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.Exec(`
		INSERT INTO votes (id, image_id, project_id, liked, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, vote.ID, vote.ImageID, vote.ProjectID, vote.Liked, vote.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create vote: %w", err)
	}

	return vote, nil
}

// ImageStats reduces over the live vote rows. Total always equals
// likes + dislikes by construction.
func (s *Store) ImageStats(imageID uuid.UUID) (models.VoteStats, error) {
	var stats models.VoteStats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN liked THEN 1 ELSE 0 END), 0)
		FROM votes
		WHERE image_id = $1
	`, imageID).Scan(&stats.Total, &stats.Likes)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate votes: %w", err)
	}
	stats.Dislikes = stats.Total - stats.Likes

	return stats, nil
}

// ProjectImageStats aggregates per image across a whole project in one
// query, for dashboards and listings.
func (s *Store) ProjectImageStats(projectID uuid.UUID) (map[uuid.UUID]models.VoteStats, error) {
	rows, err := s.db.Query(`
		SELECT image_id,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN liked THEN 1 ELSE 0 END), 0)
		FROM votes
		WHERE project_id = $1
		GROUP BY image_id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate votes: %w", err)
	}
	defer rows.Close()

	stats := make(map[uuid.UUID]models.VoteStats)
	for rows.Next() {
		var imageID uuid.UUID
		var st models.VoteStats
		if err := rows.Scan(&imageID, &st.Total, &st.Likes); err != nil {
			return nil, fmt.Errorf("failed to scan vote stats: %w", err)
		}
		st.Dislikes = st.Total - st.Likes
		stats[imageID] = st
	}

	return stats, rows.Err()
}

func (s *Store) CountProjectVotes(projectID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM votes WHERE project_id = $1`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}

	return count, nil
}

// ResetVotes wipes every vote in a project so the owner can restart a
// voting round.
func (s *Store) ResetVotes(projectID uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM votes WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to reset votes: %w", err)
	}

	return nil
}
