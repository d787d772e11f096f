// Package api exposes the minimal ambient HTTP surface: liveness,
// readiness, and a manual pipeline trigger. The pipeline's real work
// runs on a schedule or via this trigger, not through a business API.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"arxivsync/internal/pipeline"
)

var startTime = time.Now()

// NewRouter builds the gin engine serving the ambient health/status
// surface and the manual trigger endpoint.
func NewRouter(orchestrator *pipeline.Orchestrator, logger *slog.Logger, enableCORS bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if enableCORS {
		router.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST"},
		}))
	}

	router.GET("/health/live", liveness)
	router.GET("/health/ready", readiness)
	router.POST("/runs", triggerRun(orchestrator, logger))

	return router
}

func liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"uptime": time.Since(startTime).String(),
	})
}

func readiness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func triggerRun(orchestrator *pipeline.Orchestrator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := 1
		if d := c.Query("days"); d != "" {
			if parsed, err := time.ParseDuration(d + "h"); err == nil {
				days = int(parsed.Hours())
				if days < 1 {
					days = 1
				}
			}
		}

		result, err := orchestrator.Run(c.Request.Context(), days)
		if err != nil {
			logger.Error("manual trigger failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"profiles_synced": len(result.Deltas),
			"notified":        result.Notified,
			"deltas":          result.Deltas,
		})
	}
}
