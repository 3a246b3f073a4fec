package main

import (
	"rentora/internal/bookings/handler"
	"rentora/internal/bookings/repository"
	"rentora/internal/bookings/service"
	"rentora/internal/bookings/validator"
	"rentora/pkg/app"
	"rentora/pkg/config"
	"rentora/pkg/lock"
	"rentora/pkg/notifier"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")

	events := notifier.NewKafkaNotifier(cfg.KafkaBrokers, cfg.BookingEventsTopic, cfg.Log)
	bookingService := initServices(cfg, events)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()

	// Flush any buffered events before the process exits.
	if err := events.Close(); err != nil {
		cfg.Log.Error("Failed to close event writer", "error", err)
	}
}

func initServices(cfg *config.Config, events *notifier.KafkaNotifier) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	confirmLocker := lock.NewRedisLocker(cfg.Client.Redis, cfg.Log, cfg.LockRetryAttempts, cfg.LockRetryBackoff)

	bookingService := service.NewBookingService(
		bookingRepo,
		confirmLocker,
		events,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"events_topic", cfg.BookingEventsTopic,
	)
	return bookingService
}
