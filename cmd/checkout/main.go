package main

import (
	"time"

	bookingsrepository "bookmyworkspace/internal/bookings/repository"
	bookingsservice "bookmyworkspace/internal/bookings/service"
	bookingsvalidator "bookmyworkspace/internal/bookings/validator"
	"bookmyworkspace/internal/checkout/handler"
	"bookmyworkspace/internal/checkout/repository"
	"bookmyworkspace/internal/checkout/service"
	"bookmyworkspace/pkg/app"
	"bookmyworkspace/pkg/auth"
	"bookmyworkspace/pkg/client"
	"bookmyworkspace/pkg/config"
	"bookmyworkspace/pkg/events"
	"bookmyworkspace/pkg/querycache"
)

const ServiceName = "checkout"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Checkout service")

	publisher, err := events.NewPublisher(cfg.KafkaEnabled, cfg.Log, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	checkoutService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg, ServiceName)
	serverApp.SetApp(handler.NewCheckoutHandler(checkoutService, initAuth(cfg), cfg.CORSAllowedOrigins, cfg.Log))
	serverApp.OnShutdown(func() {
		checkoutService.Shutdown()
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

// initServices wires checkout to the bookings store directly so a confirmed
// payment is recorded under the guest's identity without a second hop.
func initServices(cfg *config.Config, publisher events.Publisher) service.CheckoutService {
	workspaces := client.NewWorkspaceClient(cfg.WorkspacesServiceURL)

	bookingValidator, err := bookingsvalidator.NewBookingValidator()
	if err != nil {
		cfg.Log.Fatal("Failed to initialize booking validator", "error", err)
	}
	recorder := bookingsservice.NewBookingService(
		bookingsrepository.NewMongoBookingRepository(cfg),
		bookingValidator,
		workspaces,
		querycache.New(cfg.Log, 0),
		publisher,
		cfg,
	)

	checkoutService, err := service.NewCheckoutService(
		repository.NewSessionRepository(cfg.Client.Redis, cfg.CheckoutSessionTTL),
		workspaces,
		recorder,
		publisher,
		service.NewBroker(),
		time.Now,
		cfg,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize checkout service", "error", err)
	}

	cfg.Log.Info("Checkout service initialized",
		"session_store", sessionStoreName(cfg),
		"processing_delay", cfg.PaymentProcessingDelay,
	)
	return checkoutService
}

func sessionStoreName(cfg *config.Config) string {
	if cfg.Client.Redis != nil {
		return "redis"
	}
	return "memory"
}

func initAuth(cfg *config.Config) *auth.Authenticator {
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize token issuer", "error", err)
	}
	return auth.NewAuthenticator(issuer, auth.NewRevocationStore(cfg.Client.Redis), cfg.Log)
}
