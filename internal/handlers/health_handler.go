package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-manager-api/internal/apperror"
)

// Pinger はデータベースの疎通確認を行います。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックを扱います。
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheckHandler はデータベースに接続できるかを返します。
func (h *HealthHandler) HealthCheckHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.Error(apperror.Wrap(http.StatusServiceUnavailable, "database connection failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok", "database": "connected"})
}
