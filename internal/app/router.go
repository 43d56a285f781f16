package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleetops/internal/handler"
	"fleetops/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler   *handler.RideHandler
	DriverHandler *handler.DriverHandler
	StatsHandler  *handler.StatsHandler
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
		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.GetAll)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.PATCH("/:id", deps.RideHandler.Update)
			rides.POST("/:id/status", deps.RideHandler.UpdateStatus)
			rides.POST("/:id/complete", deps.RideHandler.Complete)
			rides.POST("/:id/cancel", deps.RideHandler.Cancel)
			rides.GET("/:id/activity", deps.RideHandler.GetActivity)
		}

		// Fare estimation.
		v1.POST("/fares/estimate", deps.RideHandler.EstimateFare)

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.POST("/:id/verify", deps.DriverHandler.Verify)
			drivers.POST("/:id/suspend", deps.DriverHandler.Suspend)
			drivers.POST("/:id/reactivate", deps.DriverHandler.Reactivate)
			drivers.POST("/:id/documents", deps.DriverHandler.SubmitDocument)
			drivers.GET("/:id/documents", deps.DriverHandler.GetDocuments)
			drivers.POST("/:id/vehicles", deps.DriverHandler.RegisterVehicle)
			drivers.GET("/:id/vehicles", deps.DriverHandler.GetVehicles)
			drivers.GET("/:id/stats", deps.StatsHandler.DriverStats)
		}

		// Document review.
		v1.POST("/documents/:id/review", deps.DriverHandler.ReviewDocument)

		// Statistics.
		v1.GET("/stats/overview", deps.StatsHandler.Overview)
	}

	return router
}
