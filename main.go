// File: planora/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planora/config"
	"planora/cron"
	"planora/database"
	"planora/database/repository"
	"planora/handlers"
	"planora/middleware"
	"planora/routes"
	"planora/services/booking"
	"planora/services/notification"
	"planora/services/replacement"
	"planora/services/scheduling"
	"planora/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := repository.NewMongoBookingRepo()
	agentRepo := repository.NewMongoAgentRepo()
	availabilityRepo := repository.NewMongoAvailabilityRepo()
	replacementRepo := repository.NewMongoReplacementRepo()
	clientRepo := repository.NewMongoClientRepo()

	// Async queue for notification delivery and nightly jobs.
	queue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queue.Close()

	// services.
	notificationService, err := notification.NewDefaultNotificationService(clientRepo, agentRepo, queue)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	rules := scheduling.RulesFromConfig(config.AppConfig)
	estimator := scheduling.FixedTravelTimeEstimator{Minutes: config.AppConfig.TravelTimeFloorMinutes}
	detector := scheduling.NewConflictDetector(
		bookingRepo,
		availabilityRepo,
		agentRepo,
		estimator,
		rules,
		utils.GetCacheClient(),
		logger,
	)

	replacementService := replacement.NewReplacementService(
		replacementRepo,
		bookingRepo,
		agentRepo,
		detector,
		notificationService,
		utils.GetLockCacheClient(),
		logger,
		config.AppConfig.DefaultSearchRadiusKm,
		config.AppConfig.MaxProposalResults,
	)

	bookingService := booking.NewBookingService(
		bookingRepo,
		detector,
		replacementService,
		notificationService,
		logger,
		24*time.Hour,
	)

	// handlers.
	conflictHandler := handlers.NewConflictHandler(detector, agentRepo)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	replacementHandler := handlers.NewReplacementHandler(replacementService, bookingService)

	// Assemble the handler bundle and register routes.
	handlerBundle := handlers.NewHandlerBundle(conflictHandler, bookingHandler, replacementHandler)
	routes.RegisterRoutes(router, handlerBundle)

	// Background worker, nightly scheduler, and dependency health monitor.
	cron.InitWorker(notificationService, detector, agentRepo, bookingRepo)
	cron.StartScheduler()
	utils.StartHealthMonitor(map[string]*redis.Client{
		"cache": utils.GetCacheClient(),
		"lock":  utils.GetLockCacheClient(),
	}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
