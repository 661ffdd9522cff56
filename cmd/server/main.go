package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"moodr-backend/internal/blob"
	"moodr-backend/internal/config"
	"moodr-backend/internal/handlers"
	"moodr-backend/internal/middleware"
	"moodr-backend/internal/policy"
	"moodr-backend/internal/reclaim"
	"moodr-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&log.JSONFormatter{})
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.Info("migrations completed")

	if cfg.AdminUserID != "" {
		adminID, err := uuid.Parse(cfg.AdminUserID)
		if err != nil {
			log.WithError(err).Fatal("ADMIN_USER_ID is not a valid uuid")
		}
		if err := db.EnsureAdmin(adminID); err != nil {
			log.WithError(err).Fatal("failed to bootstrap admin user")
		}
	}

	objects, err := blob.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := objects.EnsureBucket(ctx); err != nil {
		cancel()
		log.WithError(err).Fatal("failed to ensure bucket")
	}
	cancel()

	gate := policy.NewGate(db)
	reclaimer := reclaim.NewWorker(objects, cfg.BlobTimeout)

	healthHandler := handlers.NewHealthHandler(db.DB())
	projectsHandler := handlers.NewProjectsHandler(db, gate, reclaimer)
	imagesHandler := handlers.NewImagesHandler(db, gate, reclaimer)
	votesHandler := handlers.NewVotesHandler(db)
	sessionHandler := handlers.NewSessionHandler(db)
	uploadHandler := handlers.NewUploadHandler(objects, cfg)
	usageHandler := handlers.NewUsageHandler(db)
	usersHandler := handlers.NewUsersHandler(db, reclaimer)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api/v1")

	// Public voting surface. OptionalAuth lets owners see their own
	// projects with full detail and keeps owner visits out of the view
	// counter; anonymous requests pass through untouched.
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

	log.WithField("port", cfg.Port).Info("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
