package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"bookmyworkspace/pkg/kafka"
	"bookmyworkspace/pkg/logger"
)

func TestMetricsConsumerMiddleware(t *testing.T) {
	m := NewMetrics()
	mw := MetricsConsumerMiddleware(m)

	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("boom") }

	_ = mw(context.Background(), kafka.Message{}, ok)
	_ = mw(context.Background(), kafka.Message{}, ok)
	_ = mw(context.Background(), kafka.Message{}, fail)

	if got := m.MessagesConsumed.Load(); got != 2 {
		t.Errorf("expected 2 consumed, got %d", got)
	}
	if got := m.MessagesConsumedFailed.Load(); got != 1 {
		t.Errorf("expected 1 failed, got %d", got)
	}

	m.Reset()
	if m.MessagesConsumed.Load() != 0 || m.AvgConsumeDuration() != 0 {
		t.Error("expected counters reset")
	}
}

func TestMetricsProducerMiddleware(t *testing.T) {
	m := NewMetrics()
	mw := MetricsProducerMiddleware(m)

	err := mw(context.Background(), kafka.Message{}, func(ctx context.Context, msg kafka.Message) error {
		return errors.New("broker down")
	})
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if m.MessagesPublishedFailed.Load() != 1 || m.MessagesPublished.Load() != 0 {
		t.Error("unexpected producer counters")
	}
}

func TestLoggingConsumerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	mw := LoggingConsumerMiddleware(log)

	msg := kafka.Message{
		Topic:   "bookings.events",
		Key:     "WS12345678",
		Headers: map[string]string{kafka.HeaderEventType: "booking.confirmed"},
	}
	_ = mw(context.Background(), msg, func(ctx context.Context, msg kafka.Message) error {
		return errors.New("handler failed")
	})

	out := buf.String()
	if !strings.Contains(out, "failed to process message") || !strings.Contains(out, "booking.confirmed") {
		t.Errorf("unexpected log output: %s", out)
	}
}
