package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"moodr-backend/internal/models"
	"moodr-backend/internal/policy"
	"moodr-backend/internal/reclaim"
	"moodr-backend/internal/store"
)

// listPreviewImages caps the thumbnails embedded in a project listing.
const listPreviewImages = 4

type ProjectsHandler struct {
	store     *store.Store
	gate      *policy.Gate
	reclaimer *reclaim.Worker
}

func NewProjectsHandler(s *store.Store, gate *policy.Gate, reclaimer *reclaim.Worker) *ProjectsHandler {
	return &ProjectsHandler{store: s, gate: gate, reclaimer: reclaimer}
}

func (h *ProjectsHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.store)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}

	if !h.gate.CanCreateProject(user.ID) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error: "project limit reached",
			Code:  models.CodeQuotaExceeded,
		})
		return
	}

	project, err := h.store.CreateProject(user.ID, req.Name)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return
	}

	c.JSON(http.StatusCreated, models.ProjectResponse{
		ID:        project.ID.String(),
		Name:      project.Name,
		ViewCount: project.ViewCount,
		CreatedAt: project.CreatedAt,
	})
}

func (h *ProjectsHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.store)
	if !ok {
		return
	}

	projects, err := h.store.ListProjects(user.ID)
	if err != nil {
		respondStoreError(c, err, "projects not found")
		return
	}

	items := make([]models.ProjectListItem, 0, len(projects))
	for _, p := range projects {
		images, err := h.store.ListImages(p.ID)
		if err != nil {
			respondStoreError(c, err, "images not found")
			return
		}

		votes, err := h.store.CountProjectVotes(p.ID)
		if err != nil {
			respondStoreError(c, err, "votes not found")
			return
		}

		previews := images
		if len(previews) > listPreviewImages {
			previews = previews[:listPreviewImages]
		}
		preview := make([]models.ImageResponse, len(previews))
		for i, img := range previews {
			preview[i] = models.ImageResponse{ID: img.ID.String(), URL: img.URL}
		}

		items = append(items, models.ProjectListItem{
			ID:          p.ID.String(),
			Name:        p.Name,
			ViewCount:   p.ViewCount,
			TotalImages: len(images),
			TotalVotes:  votes,
			CreatedAt:   p.CreatedAt,
			Images:      preview,
		})
	}

	c.JSON(http.StatusOK, items)
}

// Get is public behind OptionalAuth. Anonymous viewers and non-owners
// get identities and urls only; the owner and admins additionally get
// timestamps, the view count and per-image vote stats.
func (h *ProjectsHandler) Get(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	project, err := h.store.GetProject(projectID)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return
	}

	images, err := h.store.ListImages(projectID)
	if err != nil {
		respondStoreError(c, err, "images not found")
		return
	}

	privileged := false
	if id, authed := callerID(c); authed {
		if id == project.UserID {
			privileged = true
		} else if role, err := h.store.GetUserRole(id); err == nil && role == models.RoleAdmin {
			privileged = true
		}
	}

	resp := models.ProjectDetailResponse{
		ID:          project.ID.String(),
		Name:        project.Name,
		TotalImages: len(images),
		Images:      make([]models.ImageResponse, len(images)),
	}

	var stats map[string]*models.VoteStats
	if privileged {
		resp.ViewCount = &project.ViewCount
		createdAt := project.CreatedAt
		resp.CreatedAt = &createdAt

		byImage, err := h.store.ProjectImageStats(projectID)
		if err != nil {
			respondStoreError(c, err, "votes not found")
			return
		}
		stats = make(map[string]*models.VoteStats, len(byImage))
		for id, st := range byImage {
			st := st
			stats[id.String()] = &st
		}
	}

	for i, img := range images {
		resp.Images[i] = models.ImageResponse{ID: img.ID.String(), URL: img.URL}
		if privileged {
			createdAt, updatedAt := img.CreatedAt, img.UpdatedAt
			resp.Images[i].CreatedAt = &createdAt
			resp.Images[i].UpdatedAt = &updatedAt
			if st := stats[img.ID.String()]; st != nil {
				resp.Images[i].Stats = st
			} else {
				resp.Images[i].Stats = &models.VoteStats{}
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProjectsHandler) Rename(c *gin.Context) {
	user, ok := currentUser(c, h.store)
	if !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req models.RenameProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}

	project, err := h.store.GetProject(projectID)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return
	}
	if !canManageProject(user, project) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "not your project", Code: models.CodeForbidden})
		return
	}

	if err := h.store.RenameProject(projectID, req.Name); err != nil {
		respondStoreError(c, err, "project not found")
		return
	}

	c.JSON(http.StatusOK, models.ProjectResponse{
		ID:        project.ID.String(),
		Name:      req.Name,
		ViewCount: project.ViewCount,
		CreatedAt: project.CreatedAt,
	})
}

// Delete removes the project and everything under it. The relational
// cascade commits first; blob cleanup runs in the background and never
// affects the response.
func (h *ProjectsHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c, h.store)
	if !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	project, err := h.store.GetProject(projectID)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return
	}
	if !canManageProject(user, project) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "not your project", Code: models.CodeForbidden})
		return
	}

	locators, err := h.store.DeleteProject(projectID)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return
	}
	h.reclaimer.ReclaimAsync(locators)

	c.JSON(http.StatusOK, gin.H{"message": "project deleted successfully"})
}

// ResetVotes wipes the project's vote ledger so the owner can restart a
// voting round. Images and blobs are untouched.
func (h *ProjectsHandler) ResetVotes(c *gin.Context) {
	user, ok := currentUser(c, h.store)
	if !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	project, err := h.store.GetProject(projectID)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return
	}
	if !canManageProject(user, project) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "not your project", Code: models.CodeForbidden})
		return
	}

	if err := h.store.ResetVotes(projectID); err != nil {
		respondStoreError(c, err, "project not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "votes reset"})
}

// View bumps the project's view counter. Owner visits do not count;
// behind OptionalAuth an authenticated owner gets the current value
// back without an increment.
func (h *ProjectsHandler) View(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	project, err := h.store.GetProject(projectID)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return
	}

	if id, authed := callerID(c); authed && id == project.UserID {
		c.JSON(http.StatusOK, models.ViewResponse{ViewCount: project.ViewCount})
		return
	}

	count, err := h.store.IncrementViewCount(projectID)
	if err != nil {
		respondStoreError(c, err, "project not found")
		return
	}

	c.JSON(http.StatusOK, models.ViewResponse{ViewCount: count})
}
