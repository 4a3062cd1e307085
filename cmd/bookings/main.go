package main

import (
	"time"

	"bookmyworkspace/internal/bookings/handler"
	"bookmyworkspace/internal/bookings/repository"
	"bookmyworkspace/internal/bookings/service"
	"bookmyworkspace/internal/bookings/validator"
	"bookmyworkspace/pkg/app"
	"bookmyworkspace/pkg/auth"
	"bookmyworkspace/pkg/client"
	"bookmyworkspace/pkg/config"
	"bookmyworkspace/pkg/events"
	"bookmyworkspace/pkg/querycache"
)

const (
	ServiceName   = "bookings"
	queryCacheTTL = 30 * time.Second
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")

	publisher, err := events.NewPublisher(cfg.KafkaEnabled, cfg.Log, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	bookingService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg, ServiceName)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, initAuth(cfg), cfg.Log))
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) service.BookingService {
	bookingValidator, err := validator.NewBookingValidator()
	if err != nil {
		cfg.Log.Fatal("Failed to initialize booking validator", "error", err)
	}
	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		bookingValidator,
		client.NewWorkspaceClient(cfg.WorkspacesServiceURL),
		querycache.New(cfg.Log, queryCacheTTL),
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"workspaces_url", cfg.WorkspacesServiceURL,
	)
	return bookingService
}

func initAuth(cfg *config.Config) *auth.Authenticator {
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize token issuer", "error", err)
	}
	return auth.NewAuthenticator(issuer, auth.NewRevocationStore(cfg.Client.Redis), cfg.Log)
}
