package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/api/handlers"
	"github.com/jstittsworth/nfl-lineup-optimizer/pkg/cache"
	"github.com/jstittsworth/nfl-lineup-optimizer/pkg/config"
)

// SetupRouter builds the gin engine with every route wired. The Redis
// client may be nil when caching is disabled.
func SetupRouter(cfg *config.Config, redisClient *redis.Client, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	var cacheService *cache.PortfolioCacheService
	if redisClient != nil {
		cacheService = cache.NewPortfolioCacheService(redisClient, logger)
	}

	optimizeHandler := handlers.NewOptimizeHandler(cfg, cacheService, logger)
	healthHandler := handlers.NewHealthHandler(redisClient, logger)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/optimize", optimizeHandler.OptimizeLineup)
		apiV1.POST("/portfolio", optimizeHandler.GeneratePortfolio)
		apiV1.GET("/optimize/cache-status", optimizeHandler.GetCacheStatus)
	}

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	return router
}
