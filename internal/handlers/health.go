package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"moodr-backend/internal/models"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "degraded"})
		return
	}

	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
