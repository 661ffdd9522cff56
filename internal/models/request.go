package models

import "github.com/google/uuid"

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type RenameProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

type ReplaceImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// Liked is a pointer so binding can tell "false" from "absent".
type VoteRequest struct {
	ImageID uuid.UUID `json:"imageId" binding:"required"`
	Liked   *bool     `json:"liked" binding:"required"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SessionRequest carries the viewer-local deck and voted-set. The server
// holds no viewer session; the state round-trips through every call.
type SessionRequest struct {
	Deck  []uuid.UUID `json:"deck"`
	Voted []uuid.UUID `json:"voted"`
}
