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

func TestCreateImage(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects/"+project.ID.String()+"/images",
		models.CreateImageRequest{ImageURL: "https://blobs.test/u.jpg"}, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.ImageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "https://blobs.test/u.jpg", resp.URL)
}

func TestCreateImage_QuotaExceeded(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")
	for i := 0; i < 10; i++ {
		testutil.CreateImage(t, e.store, project.ID, "https://blobs.test/v.jpg")
	}

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects/"+project.ID.String()+"/images",
		models.CreateImageRequest{ImageURL: "https://blobs.test/w.jpg"}, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, models.CodeQuotaExceeded, resp.Code)
}

func TestCreateImage_NonOwnerForbidden(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.store, models.RoleFree)
	other := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, owner.ID, "moodboard")

	req := testutil.MakeRequest(t, "POST", "/api/v1/projects/"+project.ID.String()+"/images",
		models.CreateImageRequest{ImageURL: "https://blobs.test/x.jpg"}, testutil.Token(t, other.ID))
	w := e.serve(req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListImages_IncludesStats(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")
	img := testutil.CreateImage(t, e.store, project.ID, "https://blobs.test/y.jpg")

	_, err := e.store.CreateVote(project.ID, img.ID, true)
	require.NoError(t, err)
	_, err = e.store.CreateVote(project.ID, img.ID, false)
	require.NoError(t, err)

	req := testutil.MakeRequest(t, "GET", "/api/v1/projects/"+project.ID.String()+"/images", nil, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp []models.ImageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 1)
	require.NotNil(t, resp[0].Stats)
	assert.Equal(t, models.VoteStats{Total: 2, Likes: 1, Dislikes: 1}, *resp[0].Stats)
}

func TestReplaceImage_KeepsVotesAndReclaimsOldBlob(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")
	img := testutil.CreateImage(t, e.store, project.ID, "https://blobs.test/old.jpg")

	_, err := e.store.CreateVote(project.ID, img.ID, true)
	require.NoError(t, err)

	req := testutil.MakeRequest(t, "PUT", "/api/v1/projects/"+project.ID.String()+"/images/"+img.ID.String(),
		models.ReplaceImageRequest{ImageURL: "https://blobs.test/new.jpg"}, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ImageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, img.ID.String(), resp.ID)
	assert.Equal(t, "https://blobs.test/new.jpg", resp.URL)

	stats, err := e.store.ImageStats(img.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	assert.Eventually(t, func() bool {
		deleted := e.deleter.Deleted()
		return len(deleted) == 1 && deleted[0] == "https://blobs.test/old.jpg"
	}, time.Second, 10*time.Millisecond)
}

func TestReplaceImage_WrongProjectIsNotFound(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	p1 := testutil.CreateProject(t, e.store, user.ID, "one")
	p2 := testutil.CreateProject(t, e.store, user.ID, "two")
	img := testutil.CreateImage(t, e.store, p1.ID, "https://blobs.test/z.jpg")

	req := testutil.MakeRequest(t, "PUT", "/api/v1/projects/"+p2.ID.String()+"/images/"+img.ID.String(),
		models.ReplaceImageRequest{ImageURL: "https://blobs.test/zz.jpg"}, testutil.Token(t, user.ID))
	w := e.serve(req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteImage_ReclaimsBlob(t *testing.T) {
	e := newEnv(t)
	user := testutil.CreateUser(t, e.store, models.RoleFree)
	project := testutil.CreateProject(t, e.store, user.ID, "moodboard")
	img := testutil.CreateImage(t, e.store, project.ID, "https://blobs.test/gone.jpg")

	req := testutil.MakeRequest(t, "DELETE", "/api/v1/projects/"+project.ID.String()+"/images/"+img.ID.String(),
		nil, testutil.Token(t, user.ID))
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err := e.store.GetProjectImage(project.ID, img.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Eventually(t, func() bool {
		deleted := e.deleter.Deleted()
		return len(deleted) == 1 && deleted[0] == img.URL
	}, time.Second, 10*time.Millisecond)
}
