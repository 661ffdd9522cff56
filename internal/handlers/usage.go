package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"moodr-backend/internal/models"
	"moodr-backend/internal/store"
)

type UsageHandler struct {
	store *store.Store
}

func NewUsageHandler(s *store.Store) *UsageHandler {
	return &UsageHandler{store: s}
}

// Usage reports the caller's current consumption against their role's
// limits: project count and per-project image counts.
func (h *UsageHandler) Usage(c *gin.Context) {
	user, ok := currentUser(c, h.store)
	if !ok {
		return
	}

	projects, err := h.store.ListProjects(user.ID)
	if err != nil {
		respondStoreError(c, err, "projects not found")
		return
	}

	perProject := make(map[string]int, len(projects))
	for _, p := range projects {
		count, err := h.store.CountImages(p.ID)
		if err != nil {
			respondStoreError(c, err, "images not found")
			return
		}
		perProject[p.ID.String()] = count
	}

	c.JSON(http.StatusOK, models.UsageResponse{
		ProjectCount:     len(projects),
		ImagesPerProject: perProject,
		Role:             user.Role,
	})
}
