package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"moodr-backend/internal/blob"
	"moodr-backend/internal/config"
	"moodr-backend/internal/handlers"
	"moodr-backend/internal/middleware"
	"moodr-backend/internal/policy"
	"moodr-backend/internal/reclaim"
	"moodr-backend/internal/store"
	"moodr-backend/internal/testutil"
)

// recordingDeleter captures blob deletions so tests can assert on the
// background reclamation.
type recordingDeleter struct {
	mu      sync.Mutex
	deleted []string
}

func (r *recordingDeleter) DeleteURL(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, url)
	return nil
}

func (r *recordingDeleter) Deleted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

type env struct {
	store   *store.Store
	router  *gin.Engine
	deleter *recordingDeleter
}

// newEnv wires the full route table against an in-memory database,
// mirroring the server's layout.
func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := testutil.NewStore(t)
	cfg := &config.Config{
		JWTSecret:      testutil.JWTSecret,
		MaxUploadBytes: 4608 * 1024,
		MinioEndpoint:  "localhost:9000",
		MinioAccessKey: "test",
		MinioSecretKey: "test",
		MinioBucket:    "test-bucket",
	}

	objects, err := blob.New(cfg)
	if err != nil {
		t.Fatalf("failed to build object store: %v", err)
	}

	deleter := &recordingDeleter{}
	gate := policy.NewGate(s)
	reclaimer := reclaim.NewWorker(deleter, time.Second)

	projectsHandler := handlers.NewProjectsHandler(s, gate, reclaimer)
	imagesHandler := handlers.NewImagesHandler(s, gate, reclaimer)
	votesHandler := handlers.NewVotesHandler(s)
	sessionHandler := handlers.NewSessionHandler(s)
	uploadHandler := handlers.NewUploadHandler(objects, cfg)
	usageHandler := handlers.NewUsageHandler(s)
	usersHandler := handlers.NewUsersHandler(s, reclaimer)

	router := gin.New()
	api := router.Group("/api/v1")

	public := api.Group("")
	public.Use(middleware.OptionalAuth(cfg))
	public.GET("/projects/:project_id", projectsHandler.Get)
	public.POST("/projects/:project_id/votes", votesHandler.Create)
	public.POST("/projects/:project_id/view", projectsHandler.View)
	public.POST("/projects/:project_id/session", sessionHandler.Reconcile)

	authed := api.Group("")
	authed.Use(middleware.Auth(cfg))
	authed.POST("/projects", projectsHandler.Create)
	authed.GET("/projects", projectsHandler.List)
	authed.PATCH("/projects/:project_id", projectsHandler.Rename)
	authed.DELETE("/projects/:project_id", projectsHandler.Delete)
	authed.POST("/projects/:project_id/reset", projectsHandler.ResetVotes)
	authed.GET("/projects/:project_id/images", imagesHandler.List)
	authed.POST("/projects/:project_id/images", imagesHandler.Create)
	authed.PUT("/projects/:project_id/images/:image_id", imagesHandler.Replace)
	authed.DELETE("/projects/:project_id/images/:image_id", imagesHandler.Delete)
	authed.GET("/usage", usageHandler.Usage)
	authed.POST("/upload", uploadHandler.Upload)

	admin := api.Group("/users")
	admin.Use(middleware.Auth(cfg))
	admin.GET("", usersHandler.List)
	admin.DELETE("/:user_id", usersHandler.Delete)
	admin.PATCH("/:user_id/role", usersHandler.UpdateRole)

	return &env{store: s, router: router, deleter: deleter}
}

func (e *env) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
