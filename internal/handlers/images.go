package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"moodr-backend/internal/models"
	"moodr-backend/internal/policy"
	"moodr-backend/internal/reclaim"
	"moodr-backend/internal/store"
)

type ImagesHandler struct {
	store     *store.Store
	gate      *policy.Gate
	reclaimer *reclaim.Worker
}

func NewImagesHandler(s *store.Store, gate *policy.Gate, reclaimer *reclaim.Worker) *ImagesHandler {
	return &ImagesHandler{store: s, gate: gate, reclaimer: reclaimer}
}

// manageable loads the project and checks that the caller may mutate
// it, writing the error response itself when not.
func (h *ImagesHandler) manageable(c *gin.Context) (*models.User, *models.Project, bool) {
	user, ok := currentUser(c, h.store)
	if !ok {
		return nil, nil, false
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return nil, nil, false
	}

	project, err := h.store.GetProject(projectID)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return nil, nil, false
	}
	if !canManageProject(user, project) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "not your project", Code: models.CodeForbidden})
		return nil, nil, false
	}

	return user, project, true
}

func (h *ImagesHandler) List(c *gin.Context) {
	_, project, ok := h.manageable(c)
	if !ok {
		return
	}

	images, err := h.store.ListImages(project.ID)
	if err != nil {
		respondStoreError(c, err, "images not found")
		return
	}

	stats, err := h.store.ProjectImageStats(project.ID)
	if err != nil {
		respondStoreError(c, err, "votes not found")
		return
	}

	resp := make([]models.ImageResponse, len(images))
	for i, img := range images {
		createdAt, updatedAt := img.CreatedAt, img.UpdatedAt
		st := stats[img.ID]
		resp[i] = models.ImageResponse{
			ID:        img.ID.String(),
			URL:       img.URL,
			CreatedAt: &createdAt,
			UpdatedAt: &updatedAt,
			Stats:     &st,
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ImagesHandler) Create(c *gin.Context) {
	_, project, ok := h.manageable(c)
	if !ok {
		return
	}

	var req models.CreateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "imageUrl is required"})
		return
	}

	if !h.gate.CanAddImage(project.ID) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error: "image limit reached for this project",
			Code:  models.CodeQuotaExceeded,
		})
		return
	}

	image, err := h.store.CreateImage(project.ID, req.ImageURL)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return
	}

	createdAt, updatedAt := image.CreatedAt, image.UpdatedAt
	c.JSON(http.StatusCreated, models.ImageResponse{
		ID:        image.ID.String(),
		URL:       image.URL,
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
	})
}

// Replace swaps the image's blob for a new one. Votes stay attached to
// the image identity; the replaced object is reclaimed in the
// background.
func (h *ImagesHandler) Replace(c *gin.Context) {
	_, project, ok := h.manageable(c)
	if !ok {
		return
	}

	imageID, ok := pathID(c, "image_id")
	if !ok {
		return
	}

	var req models.ReplaceImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "imageUrl is required"})
		return
	}

	if _, err := h.store.GetProjectImage(project.ID, imageID); err != nil {
		respondStoreError(c, err, "image not found")
		return
	}

	oldURL, err := h.store.ReplaceImageURL(imageID, req.ImageURL)
	if err != nil {
		respondStoreError(c, err, "image not found")
		return
	}
	h.reclaimer.ReclaimAsync([]string{oldURL})

	image, err := h.store.GetProjectImage(project.ID, imageID)
	if err != nil {
		respondStoreError(c, err, "image not found")
		return
	}

	createdAt, updatedAt := image.CreatedAt, image.UpdatedAt
	c.JSON(http.StatusOK, models.ImageResponse{
		ID:        image.ID.String(),
		URL:       image.URL,
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
	})
}

func (h *ImagesHandler) Delete(c *gin.Context) {
	_, project, ok := h.manageable(c)
	if !ok {
		return
	}

	imageID, ok := pathID(c, "image_id")
	if !ok {
		return
	}

	if _, err := h.store.GetProjectImage(project.ID, imageID); err != nil {
		respondStoreError(c, err, "image not found")
		return
	}

	locator, err := h.store.DeleteImage(imageID)
	if err != nil {
		respondStoreError(c, err, "image not found")
		return
	}
	h.reclaimer.ReclaimAsync([]string{locator})

	c.JSON(http.StatusOK, gin.H{"message": "image deleted successfully"})
}
