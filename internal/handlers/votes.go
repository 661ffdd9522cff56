package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"moodr-backend/internal/models"
	"moodr-backend/internal/store"
)

type VotesHandler struct {
	store *store.Store
}

func NewVotesHandler(s *store.Store) *VotesHandler {
	return &VotesHandler{store: s}
}

// Create appends a vote. Voting is anonymous and public; the only
// validation is that the image belongs to the stated project, and a
// mismatch is a 404 rather than a distinct error.
func (h *VotesHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "imageId and liked are required"})
		return
	}

	vote, err := h.store.CreateVote(projectID, req.ImageID, *req.Liked)
	if err != nil {
		respondStoreError(c, err, "image not found in project")
		return
	}

	c.JSON(http.StatusCreated, models.VoteResponse{
		ID:        vote.ID.String(),
		ImageID:   vote.ImageID.String(),
		ProjectID: vote.ProjectID.String(),
		Liked:     vote.Liked,
		CreatedAt: vote.CreatedAt,
	})
}
