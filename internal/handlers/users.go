package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"moodr-backend/internal/models"
	"moodr-backend/internal/reclaim"
	"moodr-backend/internal/store"
)

// UsersHandler is the admin surface: user listing, role changes and
// account deletion.
type UsersHandler struct {
	store     *store.Store
	reclaimer *reclaim.Worker
}

func NewUsersHandler(s *store.Store, reclaimer *reclaim.Worker) *UsersHandler {
	return &UsersHandler{store: s, reclaimer: reclaimer}
}

// requireAdmin resolves the caller and rejects non-admins. Writes the
// error response itself when not.
func (h *UsersHandler) requireAdmin(c *gin.Context) (*models.User, bool) {
	user, ok := currentUser(c, h.store)
	if !ok {
		return nil, false
	}
	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "admin access required", Code: models.CodeForbidden})
		return nil, false
	}

	return user, true
}

func (h *UsersHandler) List(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	users, err := h.store.ListUsers()
	if err != nil {
		respondStoreError(c, err, "users not found")
		return
	}

	resp := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		projects, err := h.store.ListProjects(u.ID)
		if err != nil {
			respondStoreError(c, err, "projects not found")
			return
		}

		summaries := make([]models.UserProjectSummary, len(projects))
		for i, p := range projects {
			imageCount, err := h.store.CountImages(p.ID)
			if err != nil {
				respondStoreError(c, err, "images not found")
				return
			}
			votes, err := h.store.CountProjectVotes(p.ID)
			if err != nil {
				respondStoreError(c, err, "votes not found")
				return
			}
			summaries[i] = models.UserProjectSummary{
				ID:         p.ID.String(),
				Name:       p.Name,
				ViewCount:  p.ViewCount,
				ImageCount: imageCount,
				TotalVotes: votes,
				CreatedAt:  p.CreatedAt,
			}
		}

		resp = append(resp, models.UserResponse{
			ID:           u.ID.String(),
			Username:     u.Username,
			Role:         u.Role,
			CreatedAt:    u.CreatedAt,
			ProjectCount: len(projects),
			Projects:     summaries,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// Delete removes a user and everything under them. Admin accounts are
// undeletable; the store enforces this regardless of the caller.
func (h *UsersHandler) Delete(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	locators, err := h.store.DeleteUser(userID)
	if err != nil {
		respondStoreError(c, err, "user not found")
		return
	}
	h.reclaimer.ReclaimAsync(locators)

	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}

func (h *UsersHandler) UpdateRole(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "role must be one of free, pro, admin"})
		return
	}

	if err := h.store.UpdateUserRole(userID, models.Role(req.Role)); err != nil {
		respondStoreError(c, err, "user not found")
		return
	}

	user, err := h.store.GetUser(userID)
	if err != nil {
		respondStoreError(c, err, "user not found")
		return
	}

	c.JSON(http.StatusOK, models.UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
}
