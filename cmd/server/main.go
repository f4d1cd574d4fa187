package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/MahoudAyman/tuktuk/internal/app"
	"github.com/MahoudAyman/tuktuk/internal/config"
	"github.com/MahoudAyman/tuktuk/internal/feed"
	"github.com/MahoudAyman/tuktuk/internal/geo"
	"github.com/MahoudAyman/tuktuk/internal/handler"
	internalRedis "github.com/MahoudAyman/tuktuk/internal/redis"
	"github.com/MahoudAyman/tuktuk/internal/repository/postgres"
	"github.com/MahoudAyman/tuktuk/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// The relay keeps change-feed delivery alive across instances for as
	// long as the process runs.
	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()

	server := wireServer(relayCtx, db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	relayCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(relayCtx context.Context, db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Redis-backed driver geo index.
	locationStore := internalRedis.NewLocationStore(redisClient)

	// Repositories.
	passengerRepo := postgres.NewPassengerRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)

	// Change feed: in-process bus plus a Redis relay so events reach
	// subscribers on other instances.
	bus := feed.NewBus()
	relay := feed.NewRelay(bus, redisClient)
	go relay.Run(relayCtx)

	// Services.
	fareCfg := geo.FareConfig{Base: cfg.Fare.Base, PerKm: cfg.Fare.PerKm}
	matchingService := service.NewMatchingService(driverRepo, locationStore, cfg.Matching.RadiusKm)
	dispatchService := service.NewDispatchService(rideRepo, passengerRepo, driverRepo, matchingService, fareCfg, relay)
	lifecycleService := service.NewLifecycleService(rideRepo, driverRepo, relay)
	driverService := service.NewDriverService(driverRepo, locationStore, relay)

	// Handlers.
	rideHandler := handler.NewRideHandler(dispatchService, lifecycleService)
	driverHandler := handler.NewDriverHandler(driverService, dispatchService, driverRepo)
	passengerHandler := handler.NewPassengerHandler(passengerRepo)
	streamHandler := handler.NewStreamHandler(bus)

	router := app.NewRouter(app.RouterDeps{
		RideHandler:      rideHandler,
		DriverHandler:    driverHandler,
		PassengerHandler: passengerHandler,
		StreamHandler:    streamHandler,
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
