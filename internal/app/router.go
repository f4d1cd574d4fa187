package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/MahoudAyman/tuktuk/internal/handler"
	"github.com/MahoudAyman/tuktuk/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler      *handler.RideHandler
	DriverHandler    *handler.DriverHandler
	PassengerHandler *handler.PassengerHandler
	StreamHandler    *handler.StreamHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient))

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Passenger routes.
		passengers := v1.Group("/passengers")
		{
			passengers.POST("/register", deps.PassengerHandler.Register)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.RequestRide)
			rides.GET("/active", deps.RideHandler.ActiveRide)
			rides.GET("/pending", deps.RideHandler.PendingPool)
			rides.GET("/pool/events", deps.StreamHandler.PoolEvents)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.GET("/:id/events", deps.StreamHandler.RideEvents)
			rides.POST("/:id/accept", deps.RideHandler.AcceptRide)
			rides.POST("/:id/advance", deps.RideHandler.AdvanceRide)
			rides.POST("/:id/destination", deps.RideHandler.ChangeDestination)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("/nearby", deps.DriverHandler.Nearby)
			drivers.GET("/events", deps.StreamHandler.DriverEvents)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/availability", deps.DriverHandler.SetAvailability)
		}
	}

	return router
}
