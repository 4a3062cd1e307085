package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bookmyworkspace/pkg/client"
	"bookmyworkspace/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/nyaruka/phonenumbers"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port string

	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	PaymentProcessingDelay time.Duration
	CheckoutSessionTTL     time.Duration

	WorkspacesServiceURL string
	BookingsServiceURL   string

	KafkaEnabled       bool
	DefaultPhoneRegion string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	dotenvErr := loadDotEnv(getEnvStr(EnvDotEnv, DefaultDotEnv))

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),
		JWTTTL:    getEnvDuration(EnvJWTTTL, DefaultJWTTTL),

		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins, DefaultCORSAllowedOrigins),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		PaymentProcessingDelay: getEnvDuration(EnvPaymentProcessingDelay, DefaultPaymentProcessingDelay),
		CheckoutSessionTTL:     getEnvDuration(EnvCheckoutSessionTTL, DefaultCheckoutSessionTTL),

		WorkspacesServiceURL: getEnvStr(EnvWorkspacesServiceURL, DefaultWorkspacesServiceURL),
		BookingsServiceURL:   getEnvStr(EnvBookingsServiceURL, DefaultBookingsServiceURL),

		KafkaEnabled:       getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		DefaultPhoneRegion: strings.ToUpper(getEnvStr(EnvDefaultPhoneRegion, DefaultDefaultPhoneRegion)),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if dotenvErr != nil {
		cfg.Log.Warn("Failed to load .env file", "error", dotenvErr)
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// loadDotEnv populates the environment from path. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects to Redis when REDIS_ADDR is set. Without it the Redis
// client stays nil and callers fall back to in-memory stores.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("Redis not configured, using in-memory stores")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

var (
	mongoURIPattern   = regexp.MustCompile(`^mongodb(\+srv)?://.{3,}`)
	serviceURLPattern = regexp.MustCompile(`^https?://[^/\s]+`)
)

// Validate reports every invalid setting at once.
func (cfg *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	port, err := strconv.Atoi(cfg.Port)
	check(err == nil && port >= 1 && port <= 65535, "Port must be between 1 and 65535, got: %s", cfg.Port)

	check(mongoURIPattern.MatchString(cfg.MongoURI),
		"MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI))
	check(cfg.MongoDatabaseName != "", "MongoDatabaseName cannot be empty")
	check(cfg.RedisDB >= 0, "RedisDB cannot be negative, got: %d", cfg.RedisDB)
	check(cfg.JWTSecret == "" || len(cfg.JWTSecret) >= 32, "JWTSecret must be at least 32 characters long")

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"JWTTTL", cfg.JWTTTL},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"CheckoutSessionTTL", cfg.CheckoutSessionTTL},
	} {
		check(d.value > 0, "%s must be positive, got: %s", d.name, d.value)
	}
	check(cfg.PaymentProcessingDelay >= 0, "PaymentProcessingDelay cannot be negative, got: %s", cfg.PaymentProcessingDelay)
	check(cfg.PaymentProcessingDelay < cfg.CheckoutSessionTTL,
		"PaymentProcessingDelay (%s) must be shorter than CheckoutSessionTTL (%s)", cfg.PaymentProcessingDelay, cfg.CheckoutSessionTTL)

	check(cfg.RateLimitRequests > 0, "RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests)
	check(cfg.MaxRequestSize > 0, "MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize)

	check(serviceURLPattern.MatchString(cfg.WorkspacesServiceURL),
		"WorkspacesServiceURL must be an http(s) URL, got: %s", cfg.WorkspacesServiceURL)
	check(serviceURLPattern.MatchString(cfg.BookingsServiceURL),
		"BookingsServiceURL must be an http(s) URL, got: %s", cfg.BookingsServiceURL)

	check(phonenumbers.GetCountryCodeForRegion(cfg.DefaultPhoneRegion) != 0,
		"DefaultPhoneRegion must be a known ISO region code, got: %s", cfg.DefaultPhoneRegion)

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_db", cfg.RedisDB,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_ttl", cfg.JWTTTL,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"payment_processing_delay", cfg.PaymentProcessingDelay,
		"checkout_session_ttl", cfg.CheckoutSessionTTL,
		"workspaces_service_url", cfg.WorkspacesServiceURL,
		"bookings_service_url", cfg.BookingsServiceURL,
		"kafka_enabled", cfg.KafkaEnabled,
		"default_phone_region", cfg.DefaultPhoneRegion,
	)
}

var mongoCredentials = regexp.MustCompile(`(mongodb(\+srv)?://)[^:/@]+:[^@]+@`)

func redactMongoURI(uri string) string {
	return mongoCredentials.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
