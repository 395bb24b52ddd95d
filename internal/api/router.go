// Package api wires the gin router and route-level middleware.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hqops/invite-tracker/internal/api/codes"
	"github.com/hqops/invite-tracker/internal/api/performance"
	"github.com/hqops/invite-tracker/internal/config"
	"github.com/hqops/invite-tracker/internal/repository"
	"github.com/hqops/invite-tracker/pkg/logger"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(
	cfg *config.Config,
	db *repository.DB,
	codesHandler *codes.Handler,
	performanceHandler *performance.Handler,
	log *logger.Logger,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Prometheus.Enabled {
		router.GET(cfg.Metrics.Prometheus.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/codes", codesHandler.Generate)
		v1.POST("/codes/redeem", codesHandler.Redeem)
		v1.GET("/codes", codesHandler.History)

		v1.GET("/performance", performanceHandler.GetPerformance)
		v1.GET("/performance/months", performanceHandler.GetAvailableMonths)
		v1.GET("/performance/history", performanceHandler.GetHistorical)
		v1.POST("/performance/calculate", adminOnly(cfg.Server.AdminToken), performanceHandler.Calculate)
	}

	return router
}

// adminOnly guards privileged routes with a static bearer token. Full
// authentication lives in the gateway in front of this service.
func adminOnly(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.GetHeader("Authorization") != "Bearer "+token {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin token required"})
			return
		}
		c.Next()
	}
}

// requestLogger emits one structured log line per request.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("Request handled")
	}
}
