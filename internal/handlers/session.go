package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"moodr-backend/internal/models"
	"moodr-backend/internal/scheduler"
	"moodr-backend/internal/store"
)

type SessionHandler struct {
	store *store.Store
}

func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// Reconcile resolves the viewer's deck and voted-set against the
// project's current images. The server keeps no per-viewer state: the
// client sends what it has and persists what comes back.
func (h *SessionHandler) Reconcile(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid session state"})
		return
	}

	if _, err := h.store.GetProject(projectID); err != nil {
		respondStoreError(c, err, "project not found")
		return
	}

	images, err := h.store.ListImages(projectID)
	if err != nil {
		respondStoreError(c, err, "images not found")
		return
	}

	urls := make(map[string]string, len(images))
	current := make([]uuid.UUID, len(images))
	for i, img := range images {
		current[i] = img.ID
		urls[img.ID.String()] = img.URL
	}

	state := scheduler.NewMemoryStore()
	if len(req.Deck) > 0 {
		state.SetDeck(projectID, req.Deck)
	}
	for _, id := range req.Voted {
		state.AddVoted(projectID, id)
	}

	session := scheduler.New(state).Reconcile(projectID, current)

	resp := models.SessionResponse{
		Status:      string(session.Status),
		Deck:        session.Deck,
		Voted:       session.Voted,
		TotalImages: len(images),
	}
	if session.Status == scheduler.StatusVoting {
		resp.Next = &models.ImageResponse{
			ID:  session.Next.String(),
			URL: urls[session.Next.String()],
		}
	}

	c.JSON(http.StatusOK, resp)
}
