package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"moodr-backend/internal/models"
	"moodr-backend/internal/store"
	"moodr-backend/internal/testutil"
)

func TestCreateProject(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects",
		models.CreateProjectRequest{Name: "spring moodboard"}, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.ProjectResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "spring moodboard", resp.Name)
	assert.Zero(t, resp.ViewCount)
}

func TestCreateProject_RequiresAuth(t *testing.T) {
	e := newEnv(t)

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects",
		models.CreateProjectRequest{Name: "x"}, "")
	w := e.serve(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateProject_QuotaExceeded(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	for i := 0; i < 3; i++ {
		testutil.CreateProject(t, e.store, user.ID, "existing")
	}

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects",
		models.CreateProjectRequest{Name: "one too many"}, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, models.CodeQuotaExceeded, resp.Code)
}

func TestCreateProject_ProHasNoQuota(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RolePro)
	for i := 0; i < 5; i++ {
		testutil.CreateProject(t, e.store, user.ID, "existing")
	}

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects",
		models.CreateProjectRequest{Name: "another"}, testutil.Token(t, user.ID))
	w := e.serve(req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestListProjects_IncludesCountsAndPreviews(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RolePro)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")
	for i := 0; i < 6; i++ {
		testutil.CreateImage(t, e.store, project.ID, "https://blobs.test/p.jpg")
	}

	req := testutil.MakeRequest(t, "GET", "/api/v1/projects", nil, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp []models.ProjectListItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 6, resp[0].TotalImages)
	assert.Len(t, resp[0].Images, 4)
}

func TestGetProject_AnonymousGetsMinimalView(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")
	testutil.CreateImage(t, e.store, project.ID, "https://blobs.test/q.jpg")

	req := testutil.MakeRequest(t, "GET", "/api/v1/projects/"+project.ID.String(), nil, "")
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ProjectDetailResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.TotalImages)
	assert.Nil(t, resp.ViewCount)
	assert.Nil(t, resp.CreatedAt)
	require.Len(t, resp.Images, 1)
	assert.Nil(t, resp.Images[0].Stats)
	assert.NotEmpty(t, resp.Images[0].URL)
}

func TestGetProject_OwnerGetsFullView(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")
	img := testutil.CreateImage(t, e.store, project.ID, "https://blobs.test/r.jpg")

	_, err := e.store.CreateVote(project.ID, img.ID, true)
	require.NoError(t, err)

	req := testutil.MakeRequest(t, "GET", "/api/v1/projects/"+project.ID.String(), nil, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ProjectDetailResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.ViewCount)
	require.NotNil(t, resp.CreatedAt)
	require.Len(t, resp.Images, 1)
	require.NotNil(t, resp.Images[0].Stats)
	assert.Equal(t, 1, resp.Images[0].Stats.Likes)
}

func TestGetProject_NotFound(t *testing.T) {
	e := newEnv(t)

	req := testutil.MakeRequest(t, "GET", "/api/v1/projects/11111111-2222-3333-4444-555555555555", nil, "")
	w := e.serve(req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenameProject_NonOwnerForbidden(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.store, models.RoleFree)
	other := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, owner.ID, "moodboard")

	req := testutil.MakeRequest(t, "PATCH", "/api/v1/projects/"+project.ID.String(),
		models.RenameProjectRequest{Name: "hijacked"}, testutil.Token(t, other.ID))
	w := e.serve(req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRenameProject_AdminMayManageAnyProject(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.store, models.RoleFree)
	admin := testutil.CreateUser(t, e.store, models.RoleAdmin)
	project := testutil.CreateProject(t, e.store, owner.ID, "moodboard")

	req := testutil.MakeRequest(t, "PATCH", "/api/v1/projects/"+project.ID.String(),
		models.RenameProjectRequest{Name: "cleaned up"}, testutil.Token(t, admin.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	renamed, err := e.store.GetProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, "cleaned up", renamed.Name)
}

func TestDeleteProject_CascadesAndReclaimsBlobs(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")
	img := testutil.CreateImage(t, e.store, project.ID, "https://blobs.test/s.jpg")

	req := testutil.MakeRequest(t, "DELETE", "/api/v1/projects/"+project.ID.String(), nil, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err := e.store.GetProject(project.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Blob cleanup is asynchronous.
	assert.Eventually(t, func() bool {
		deleted := e.deleter.Deleted()
		return len(deleted) == 1 && deleted[0] == img.URL
	}, time.Second, 10*time.Millisecond)
}

func TestResetVotes_ClearsLedgerOnly(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")
	img := testutil.CreateImage(t, e.store, project.ID, "https://blobs.test/t.jpg")

	_, err := e.store.CreateVote(project.ID, img.ID, true)
	require.NoError(t, err)

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects/"+project.ID.String()+"/reset", nil, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	count, err := e.store.CountProjectVotes(project.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	images, err := e.store.ListImages(project.ID)
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestView_AnonymousIncrements(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects/"+project.ID.String()+"/view", nil, "")
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ViewResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.ViewCount)
}

func TestView_OwnerDoesNotCount(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects/"+project.ID.String()+"/view", nil, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ViewResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Zero(t, resp.ViewCount)

	// Another viewer still counts.
	other := testutil.CreateUser(t, e.store, models.RoleFree)
	req = testutil.MakeRequest(t, "POST", "/api/v1/projects/"+project.ID.String()+"/view", nil, testutil.Token(t, other.ID))
	w = e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.ViewCount)
}
