package kafka_config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"bookmyworkspace/pkg/logger"
)

var compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	RequireAcks  int    // -1 all, 0 none, 1 leader
	Compression  string // one of compressions
	Async        bool
}

type ConsumerConfig struct {
	StartOffset       int64 // -1 newest, -2 oldest
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	CommitInterval    time.Duration
	HeartbeatInterval time.Duration
	SessionTimeout    time.Duration
	RebalanceTimeout  time.Duration
	MaxRetries        int
}

// Topics names every stream the booking platform reads or writes.
type Topics struct {
	Bookings      string
	BookingsDLQ   string
	Workspaces    string
	WorkspacesDLQ string
	NotifierGroup string
}

type Config struct {
	Brokers          []string
	Producer         ProducerConfig
	Consumer         ConsumerConfig
	Topics           Topics
	EnableMiddleware bool
}

// Load reads the Kafka settings from the environment and validates them.
func Load() (*Config, error) {
	cfg := &Config{
		Brokers: splitBrokers(env(EnvKafkaBrokers, DefaultKafkaBrokers, asString)),
		Producer: ProducerConfig{
			MaxAttempts:  env(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts, strconv.Atoi),
			BatchTimeout: env(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout, time.ParseDuration),
			RequireAcks:  env(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks, strconv.Atoi),
			Compression:  env(EnvKafkaProducerCompression, DefaultProducerCompression, asString),
			Async:        env(EnvKafkaProducerAsync, DefaultProducerAsync, strconv.ParseBool),
		},
		Consumer: ConsumerConfig{
			StartOffset:       env(EnvKafkaConsumerStartOffset, int64(DefaultConsumerStartOffset), parseInt64),
			MinBytes:          env(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes, strconv.Atoi),
			MaxBytes:          env(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes, strconv.Atoi),
			MaxWait:           env(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait, time.ParseDuration),
			CommitInterval:    env(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval, time.ParseDuration),
			HeartbeatInterval: env(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval, time.ParseDuration),
			SessionTimeout:    env(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout, time.ParseDuration),
			RebalanceTimeout:  env(EnvKafkaConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout, time.ParseDuration),
			MaxRetries:        env(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries, strconv.Atoi),
		},
		Topics: Topics{
			Bookings:      env(EnvKafkaBookingsTopic, DefaultBookingsTopic, asString),
			BookingsDLQ:   env(EnvKafkaBookingsDLQTopic, DefaultBookingsDLQTopic, asString),
			Workspaces:    env(EnvKafkaWorkspacesTopic, DefaultWorkspacesTopic, asString),
			WorkspacesDLQ: env(EnvKafkaWorkspacesDLQTopic, DefaultWorkspacesDLQTopic, asString),
			NotifierGroup: env(EnvKafkaNotifierGroupID, DefaultNotifierGroupID, asString),
		},
		EnableMiddleware: env(EnvKafkaEnableMiddleware, DefaultEnableMiddleware, strconv.ParseBool),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (cfg *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(len(cfg.Brokers) > 0, "at least one Kafka broker is required")

	p := cfg.Producer
	check(p.MaxAttempts > 0, "Producer.MaxAttempts must be positive, got: %d", p.MaxAttempts)
	check(p.BatchTimeout > 0, "Producer.BatchTimeout must be positive, got: %s", p.BatchTimeout)
	check(slices.Contains(compressions, p.Compression),
		"Producer.Compression must be one of %v, got: %s", compressions, p.Compression)
	check(p.RequireAcks >= -1 && p.RequireAcks <= 1, "Producer.RequireAcks must be -1, 0 or 1, got: %d", p.RequireAcks)

	c := cfg.Consumer
	check(c.StartOffset >= -2, "Consumer.StartOffset must be -1, -2 or a real offset, got: %d", c.StartOffset)
	check(c.MinBytes > 0 && c.MaxBytes >= c.MinBytes,
		"Consumer byte bounds must satisfy 0 < MinBytes <= MaxBytes, got: %d..%d", c.MinBytes, c.MaxBytes)
	for name, d := range map[string]time.Duration{
		"MaxWait":           c.MaxWait,
		"CommitInterval":    c.CommitInterval,
		"HeartbeatInterval": c.HeartbeatInterval,
		"SessionTimeout":    c.SessionTimeout,
		"RebalanceTimeout":  c.RebalanceTimeout,
	} {
		check(d > 0, "Consumer.%s must be positive, got: %s", name, d)
	}
	check(c.MaxRetries >= 0, "Consumer.MaxRetries cannot be negative, got: %d", c.MaxRetries)

	check(cfg.Topics.Bookings != "" && cfg.Topics.Workspaces != "", "bookings and workspaces topics are required")
	check(cfg.Topics.Bookings != cfg.Topics.BookingsDLQ, "bookings DLQ must differ from the bookings topic")

	return errors.Join(errs...)
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	if log == nil {
		return
	}

	log.Info("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"producer_compression", cfg.Producer.Compression,
		"producer_require_acks", cfg.Producer.RequireAcks,
		"producer_async", cfg.Producer.Async,
		"consumer_start_offset", cfg.Consumer.StartOffset,
		"consumer_max_retries", cfg.Consumer.MaxRetries,
		"consumer_commit_interval", cfg.Consumer.CommitInterval,
		"enable_middleware", cfg.EnableMiddleware,
		"bookings_topic", cfg.Topics.Bookings,
		"workspaces_topic", cfg.Topics.Workspaces,
		"notifier_group_id", cfg.Topics.NotifierGroup,
	)
}

func splitBrokers(list string) []string {
	var brokers []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// env parses key with parse, keeping def when unset or malformed.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func asString(s string) (string, error) { return s, nil }

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
