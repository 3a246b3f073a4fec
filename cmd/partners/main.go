package main

import (
	"rentora/internal/partners/handler"
	"rentora/internal/partners/repository"
	"rentora/internal/partners/service"
	"rentora/internal/partners/validator"
	"rentora/pkg/app"
	"rentora/pkg/config"
	"rentora/pkg/notifier"
	"rentora/pkg/ratelimit"
)

const ServiceName = "partners"

// Channel prefix for partner location pub/sub; subscribers listen on
// "partner:location:<partner id>".
const locationChannelPrefix = "partner:location:"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Partners service")
	partnerService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewPartnerHandler(partnerService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.PartnerService {
	partnerValidator := validator.NewPartnerValidator(cfg.Log)
	partnerRepo := repository.NewMongoPartnerRepository(cfg)
	gpsLimiter := ratelimit.NewRedisLimiter(cfg.Client.Redis)
	locationEvents := notifier.NewRedisNotifier(cfg.Client.Redis, locationChannelPrefix)

	partnerService := service.NewPartnerService(
		partnerRepo,
		gpsLimiter,
		locationEvents,
		partnerValidator,
		cfg,
	)

	cfg.Log.Info("Partner service initialized", "database", cfg.MongoDatabaseName)
	return partnerService
}
