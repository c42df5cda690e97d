// File: ledgerly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"ledgerly/config"
	"ledgerly/cron"
	"ledgerly/database"
	availabilityRepoPkg "ledgerly/database/repository/availability"
	bookingRepoPkg "ledgerly/database/repository/booking"
	connectionRepoPkg "ledgerly/database/repository/connection"
	synclogRepoPkg "ledgerly/database/repository/synclog"
	timeslotRepoPkg "ledgerly/database/repository/timeslot"
	"ledgerly/handlers"
	"ledgerly/middleware"
	"ledgerly/routes"
	availabilitySvc "ledgerly/services/availability"
	bookingSvc "ledgerly/services/booking"
	"ledgerly/services/syncer"
	"ledgerly/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	cache := utils.GetCacheClient()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	availRepo := availabilityRepoPkg.NewMongoAvailabilityRepo()
	slotRepo := timeslotRepoPkg.NewMongoTimeSlotRepo()
	bookRepo := bookingRepoPkg.NewMongoBookingRepo()
	syncLogRepo := synclogRepoPkg.NewMongoSyncLogRepo()
	connRepo := connectionRepoPkg.NewMongoConnectionRepo()

	// external connectors.
	calendarConnector := syncer.NewGoogleCalendarConnector(connRepo)
	crmConnector := syncer.NewOdooConnector()

	dispatcher := &syncer.DefaultSyncDispatcher{
		Calendar: calendarConnector,
		CRM:      crmConnector,
		Logs:     syncLogRepo,
		Bookings: bookRepo,
		Slots:    slotRepo,
	}

	// services.
	availabilityService := &availabilitySvc.DefaultAvailabilityService{
		Repo:  availRepo,
		Slots: slotRepo,
		Cache: cache,
	}
	bookingService := &bookingSvc.DefaultBookingService{
		Repo:       bookRepo,
		Slots:      slotRepo,
		SyncLogs:   syncLogRepo,
		Dispatcher: dispatcher,
		Cache:      cache,
	}

	// background sync retry queue.
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPass,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()
	cron.InitSyncRetryWorker(dispatcher)

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	adminHandler := handlers.NewAdminHandler(bookingService, dispatcher, queueClient)
	connectionHandler := handlers.NewConnectionHandler(calendarConnector, crmConnector, connRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Public endpoints.
		CreateBookingHandler: bookingHandler.CreateBookingHandler,
		ListDayHandler:       availabilityHandler.ListDayHandler,

		// Staff availability endpoints.
		CreateAvailabilityHandler: availabilityHandler.CreateAvailabilityHandler,
		UpdateAvailabilityHandler: availabilityHandler.UpdateAvailabilityHandler,
		DeleteAvailabilityHandler: availabilityHandler.DeleteAvailabilityHandler,
		ListAvailabilityHandler:   availabilityHandler.ListAvailabilityHandler,

		// Staff booking dashboard endpoints.
		ListBookingsHandler:    adminHandler.ListBookingsHandler,
		GetBookingHandler:      adminHandler.GetBookingHandler,
		CancelBookingHandler:   adminHandler.CancelBookingHandler,
		CompleteBookingHandler: adminHandler.CompleteBookingHandler,
		SyncHistoryHandler:     adminHandler.SyncHistoryHandler,
		StatsHandler:           adminHandler.StatsHandler,
		ResyncHandler:          adminHandler.ResyncHandler,

		// External connection endpoints.
		GoogleAuthURLHandler:      connectionHandler.GoogleAuthURLHandler,
		GoogleCallbackHandler:     connectionHandler.GoogleCallbackHandler,
		DisconnectCalendarHandler: connectionHandler.DisconnectCalendarHandler,
		ConnectionsStatusHandler:  connectionHandler.StatusHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor([]*redis.Client{cache}, database.MongoClient)

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
