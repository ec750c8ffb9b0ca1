package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	redis  *redis.Client
	logger *logrus.Logger
}

func NewHealthHandler(redisClient *redis.Client, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		redis:  redisClient,
		logger: logger,
	}
}

// GetHealth reports service liveness.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "lineup-optimizer",
		"timestamp": time.Now().UTC(),
	})
}

// GetReady reports readiness, including the optional Redis dependency.
// A missing cache degrades the service but does not make it unready.
func (h *HealthHandler) GetReady(c *gin.Context) {
	checks := gin.H{"cache": "disabled"}
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			h.logger.WithError(err).Warn("Redis ping failed")
			checks["cache"] = "unavailable"
		} else {
			checks["cache"] = "ok"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}
