package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"moodr-backend/internal/blob"
	"moodr-backend/internal/config"
	"moodr-backend/internal/models"
)

// contentTypes maps accepted upload extensions to the content type the
// object is stored with.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type UploadHandler struct {
	objects *blob.ObjectStore
	cfg     *config.Config
}

func NewUploadHandler(objects *blob.ObjectStore, cfg *config.Config) *UploadHandler {
	return &UploadHandler{objects: objects, cfg: cfg}
}

// Upload stores one image in the blob store and returns its locator.
// The object is keyed under the caller so a user's uploads share a
// prefix; linking the locator to a project is a separate call.
func (h *UploadHandler) Upload(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no image file provided"})
		return
	}

	if file.Size > h.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error:   "file too large",
			Message: fmt.Sprintf("maximum upload size is %d bytes", h.cfg.MaxUploadBytes),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := contentTypes[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "unsupported image type",
			Message: "accepted extensions: jpg, jpeg, png, gif, webp",
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read upload"})
		return
	}
	defer src.Close()

	key := fmt.Sprintf("users/%s/%s%s", id, uuid.New(), ext)
	url, err := h.objects.Put(c.Request.Context(), key, src, file.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to store image",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, models.UploadResponse{
		URL:         url,
		Size:        file.Size,
		ContentType: contentType,
	})
}
