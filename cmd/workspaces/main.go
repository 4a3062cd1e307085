package main

import (
	"time"

	bookingsrepository "bookmyworkspace/internal/bookings/repository"
	"bookmyworkspace/internal/workspaces/handler"
	"bookmyworkspace/internal/workspaces/repository"
	"bookmyworkspace/internal/workspaces/service"
	"bookmyworkspace/internal/workspaces/validator"
	"bookmyworkspace/pkg/app"
	"bookmyworkspace/pkg/auth"
	"bookmyworkspace/pkg/config"
	"bookmyworkspace/pkg/events"
	"bookmyworkspace/pkg/querycache"
)

const (
	ServiceName   = "workspaces"
	queryCacheTTL = 30 * time.Second
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Workspaces service")

	publisher, err := events.NewPublisher(cfg.KafkaEnabled, cfg.Log, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	workspaceService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg, ServiceName)
	serverApp.SetApp(handler.NewWorkspaceHandler(workspaceService, initAuth(cfg), cfg.CORSAllowedOrigins, cfg.Log))
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) service.WorkspaceService {
	workspaceValidator, err := validator.NewWorkspaceValidator()
	if err != nil {
		cfg.Log.Fatal("Failed to initialize workspace validator", "error", err)
	}
	workspaceService := service.NewWorkspaceService(
		repository.NewMongoWorkspaceRepository(cfg),
		bookingsrepository.NewMongoBookingRepository(cfg),
		workspaceValidator,
		querycache.New(cfg.Log, queryCacheTTL),
		publisher,
		cfg,
	)

	cfg.Log.Info("Workspace service initialized", "database", cfg.MongoDatabaseName)
	return workspaceService
}

func initAuth(cfg *config.Config) *auth.Authenticator {
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize token issuer", "error", err)
	}
	return auth.NewAuthenticator(issuer, auth.NewRevocationStore(cfg.Client.Redis), cfg.Log)
}
