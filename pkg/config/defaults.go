package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "bookmyworkspace"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisDB = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	DefaultDotEnv   = ".env"

	DefaultJWTTTL = 24 * time.Hour

	DefaultCORSAllowedOrigins = "http://localhost:5173,http://localhost:8080"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaymentProcessingDelay = 2 * time.Second
	DefaultCheckoutSessionTTL     = 30 * time.Minute

	DefaultWorkspacesServiceURL = "http://localhost:8081"
	DefaultBookingsServiceURL   = "http://localhost:8082"

	DefaultKafkaEnabled       = false
	DefaultDefaultPhoneRegion = "IN"

	DefaultPaginationLimit = 100
)
