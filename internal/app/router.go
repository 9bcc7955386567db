package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/TianyiLi/trip-schedule/internal/handler"
	"github.com/TianyiLi/trip-schedule/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler   *handler.TripHandler
	SyncHandler   *handler.SyncHandler
	ExportHandler *handler.ExportHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.BearerToken())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.GET("", deps.TripHandler.GetAll)
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.PUT("/:id", deps.TripHandler.UpdateTrip)
			trips.DELETE("/:id", deps.TripHandler.DeleteTrip)
			trips.POST("/:id/complete", deps.TripHandler.CompleteTrip)
			trips.POST("/:id/uncomplete", deps.TripHandler.UncompleteTrip)
			trips.PUT("/:id/locations", deps.TripHandler.ReorderLocations)
		}

		// Cloud sync routes.
		sync := v1.Group("/sync")
		{
			sync.POST("", deps.SyncHandler.Sync)
			sync.POST("/upload", deps.SyncHandler.Upload)
			sync.POST("/download", deps.SyncHandler.Download)
			sync.GET("/status", deps.SyncHandler.Status)
			sync.GET("/files", deps.SyncHandler.Files)
			sync.GET("/files/info", deps.SyncHandler.FileInfo)
			sync.POST("/backup", deps.SyncHandler.Backup)
			sync.POST("/restore", deps.SyncHandler.Restore)
			sync.POST("/auto", deps.SyncHandler.AutoSync)
			sync.POST("/session/end", deps.SyncHandler.EndSession)
		}

		// Export routes.
		export := v1.Group("/export")
		{
			export.GET("/json", deps.ExportHandler.ExportJSON)
			export.GET("/csv", deps.ExportHandler.ExportCSV)
		}
	}

	return router
}
