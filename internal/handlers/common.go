package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"moodr-backend/internal/middleware"
	"moodr-backend/internal/models"
	"moodr-backend/internal/store"
)

// callerID reads the authenticated caller's id from the gin context.
// Returns false for anonymous requests, which is only possible behind
// OptionalAuth.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

// currentUser resolves the caller to a user row, creating it on first
// authenticated access. Writes the error response itself on failure.
func currentUser(c *gin.Context, s *store.Store) (*models.User, bool) {
	id, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return nil, false
	}

	username, _ := c.Get(middleware.UsernameKey)
	name, _ := username.(string)

	user, err := s.GetOrCreateUser(id, name)
	if err != nil {
		log.WithError(err).WithField("user_id", id).Error("failed to resolve user")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to resolve user"})
		return nil, false
	}

	return user, true
}

// pathID parses a uuid path parameter, writing a 400 on failure.
func pathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + param})
		return uuid.Nil, false
	}

	return id, true
}

// respondStoreError maps store sentinels onto status codes; anything
// else is a 500 with the detail logged, not leaked.
func respondStoreError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: notFoundMsg})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "operation not permitted", Code: models.CodeForbidden})
	default:
		log.WithError(err).Error("store operation failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error"})
	}
}

// canManageProject reports whether the user may mutate the project:
// the owner, or any admin.
func canManageProject(user *models.User, project *models.Project) bool {
	return project.UserID == user.ID || user.Role == models.RoleAdmin
}
