package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != DefaultKafkaBrokers {
		t.Errorf("unexpected brokers %v", cfg.Brokers)
	}
	if cfg.Topics.Bookings != DefaultBookingsTopic || cfg.Topics.BookingsDLQ != DefaultBookingsDLQTopic {
		t.Errorf("unexpected booking topics %s / %s", cfg.Topics.Bookings, cfg.Topics.BookingsDLQ)
	}
	if cfg.Consumer.StartOffset != -1 || cfg.Producer.RequireAcks != -1 {
		t.Errorf("unexpected offsets/acks %d / %d", cfg.Consumer.StartOffset, cfg.Producer.RequireAcks)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv(EnvKafkaConsumerMaxWait, "2s")
	t.Setenv(EnvKafkaConsumerMaxRetries, "not-a-number")
	t.Setenv(EnvKafkaNotifierGroupID, "mailer")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Brokers)
	}
	if cfg.Consumer.MaxWait != 2*time.Second {
		t.Errorf("MaxWait = %s", cfg.Consumer.MaxWait)
	}
	if cfg.Consumer.MaxRetries != DefaultConsumerMaxRetries {
		t.Errorf("malformed value should keep the default, got %d", cfg.Consumer.MaxRetries)
	}
	if cfg.Topics.NotifierGroup != "mailer" {
		t.Errorf("NotifierGroup = %s", cfg.Topics.NotifierGroup)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"compression", EnvKafkaProducerCompression, "brotli", "Producer.Compression"},
		{"acks", EnvKafkaProducerRequireAcks, "3", "Producer.RequireAcks"},
		{"byte bounds", EnvKafkaConsumerMinBytes, "4194304", "byte bounds"},
		{"dlq equals topic", EnvKafkaBookingsDLQTopic, DefaultBookingsTopic, "DLQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
