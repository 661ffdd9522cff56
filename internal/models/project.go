package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	ViewCount int
	CreatedAt time.Time
}

type Image struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Vote struct {
	ID        uuid.UUID
	ImageID   uuid.UUID
	ProjectID uuid.UUID
	Liked     bool
	CreatedAt time.Time
}

// VoteStats is always computed by reduction over the vote rows at read
// time. It is never stored as a counter on the image.
type VoteStats struct {
	Total    int `json:"total"`
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}
