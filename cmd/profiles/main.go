package main

import (
	"bookmyworkspace/internal/profiles/handler"
	"bookmyworkspace/internal/profiles/repository"
	"bookmyworkspace/internal/profiles/service"
	"bookmyworkspace/pkg/app"
	"bookmyworkspace/pkg/auth"
	"bookmyworkspace/pkg/client"
	"bookmyworkspace/pkg/config"
)

const ServiceName = "profiles"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Profiles service")

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize token issuer", "error", err)
	}
	authenticator := auth.NewAuthenticator(issuer, auth.NewRevocationStore(cfg.Client.Redis), cfg.Log)

	profileService, err := service.NewProfileService(
		repository.NewMongoProfileRepository(cfg),
		issuer,
		authenticator,
		cfg,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize profile service", "error", err)
	}
	cfg.Log.Info("Profile service initialized",
		"database", cfg.MongoDatabaseName,
		"bookings_url", cfg.BookingsServiceURL,
	)

	serverApp := app.NewApplication(cfg, ServiceName)
	serverApp.SetApp(handler.NewProfileHandler(
		profileService,
		client.NewBookingClient(cfg.BookingsServiceURL),
		authenticator,
		cfg.Log,
	))
	serverApp.Run()
}
