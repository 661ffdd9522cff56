package models

import (
	"time"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error codes surfaced to clients so they can distinguish "over your
// limit" from plain validation or permission failures.
const (
	CodeQuotaExceeded = "quota_exceeded"
	CodeForbidden     = "forbidden"
)

type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ViewCount int       `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
}

type ImageResponse struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Stats     *VoteStats `json:"stats,omitempty"`
}

// ProjectDetailResponse is tiered: anonymous viewers get ids and urls
// only, owners and admins additionally get timestamps, view count and
// per-image vote stats.
type ProjectDetailResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TotalImages int             `json:"total_images"`
	ViewCount   *int            `json:"view_count,omitempty"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	Images      []ImageResponse `json:"images"`
}

type ProjectListItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	ViewCount   int             `json:"view_count"`
	TotalImages int             `json:"total_images"`
	TotalVotes  int             `json:"total_votes"`
	CreatedAt   time.Time       `json:"created_at"`
	Images      []ImageResponse `json:"images"`
}

type VoteResponse struct {
	ID        string    `json:"id"`
	ImageID   string    `json:"image_id"`
	ProjectID string    `json:"project_id"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
}

type UsageResponse struct {
	ProjectCount     int            `json:"projectCount"`
	ImagesPerProject map[string]int `json:"imagesPerProject"`
	Role             Role           `json:"role"`
}

type UploadResponse struct {
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

type ViewResponse struct {
	ViewCount int `json:"viewCount"`
}

type SessionResponse struct {
	Status      string         `json:"status"`
	Deck        []uuid.UUID    `json:"deck"`
	Voted       []uuid.UUID    `json:"voted"`
	TotalImages int            `json:"total_images"`
	Next        *ImageResponse `json:"next,omitempty"`
}

type UserProjectSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ViewCount  int       `json:"view_count"`
	ImageCount int       `json:"image_count"`
	TotalVotes int       `json:"total_votes"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserResponse struct {
	ID           string               `json:"id"`
	Username     string               `json:"username"`
	Role         Role                 `json:"role"`
	CreatedAt    time.Time            `json:"created_at"`
	ProjectCount int                  `json:"project_count"`
	Projects     []UserProjectSummary `json:"projects"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
