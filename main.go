// File: clinicbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicbook/config"
	"clinicbook/cron"
	"clinicbook/database"
	appointmentRepo "clinicbook/database/repository/appointment"
	scheduleRepo "clinicbook/database/repository/schedule"
	"clinicbook/handlers"
	"clinicbook/middleware"
	"clinicbook/routes"
	"clinicbook/services/booking"
	"clinicbook/services/notification"
	"clinicbook/services/schedule"
	"clinicbook/services/scheduling"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	schedRepo := scheduleRepo.NewMongoScheduleRepo()

	if err := apptRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure appointment indexes: %v", err)
	}
	if err := schedRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure schedule indexes: %v", err)
	}

	// Event queue client.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()
	notificationService := notification.NewAsynqNotificationService(asynqClient)

	// services.
	schedulingEngine := &scheduling.DefaultSchedulingEngine{
		ScheduleRepo: schedRepo,
		ApptRepo:     apptRepo,
		Cache:        utils.GetCacheClient(),
		CacheTTL:     config.SlotCacheTTL(),
	}

	bookingService := &booking.DefaultBookingService{
		Repo:         apptRepo,
		Scheduler:    schedulingEngine,
		Notifier:     notificationService,
		CancelCutoff: config.CancelCutoff(),
		NoShowGrace:  config.NoShowGrace(),
		MaxRetries:   config.AppConfig.BookingMaxRetries,
		RetryBase:    time.Duration(config.AppConfig.BookingRetryBaseMs) * time.Millisecond,
	}

	scheduleService := &schedule.DefaultScheduleService{
		Repo:      schedRepo,
		Scheduler: schedulingEngine,
	}

	// handlers.
	schedulingHandler := handlers.NewSchedulingHandler(schedulingEngine)
	appointmentHandler := handlers.NewAppointmentHandler(bookingService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)

	handlerBundle := &handlers.HandlerBundle{
		// Availability endpoints.
		DaySlotsHandler:      schedulingHandler.DaySlotsHandler,
		SummaryHandler:       schedulingHandler.SummaryHandler,
		NextAvailableHandler: schedulingHandler.NextAvailableHandler,

		// Appointment endpoints.
		BookHandler:       appointmentHandler.BookHandler,
		ConfirmHandler:    appointmentHandler.ConfirmHandler,
		BeginHandler:      appointmentHandler.BeginHandler,
		CompleteHandler:   appointmentHandler.CompleteHandler,
		CancelHandler:     appointmentHandler.CancelHandler,
		GetHandler:        appointmentHandler.GetHandler,
		ListMineHandler:   appointmentHandler.ListMineHandler,
		ListAgendaHandler: appointmentHandler.ListAgendaHandler,

		// Schedule management endpoints.
		SetTemplateHandler:    scheduleHandler.SetTemplateHandler,
		SetWeekHandler:        scheduleHandler.SetWeekHandler,
		GetWeekHandler:        scheduleHandler.GetWeekHandler,
		DeleteDayHandler:      scheduleHandler.DeleteDayHandler,
		SetOverrideHandler:    scheduleHandler.SetOverrideHandler,
		ListOverridesHandler:  scheduleHandler.ListOverridesHandler,
		DeleteOverrideHandler: scheduleHandler.DeleteOverrideHandler,
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	routes.RegisterRoutes(router, handlerBundle)

	// Background worker: event delivery plus the periodic no-show sweep.
	cron.InitWorker(bookingService, notification.LogDispatcher{})

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
	database.CloseDB()

	logger.Sugar().Info("main: server stopped gracefully")
}
