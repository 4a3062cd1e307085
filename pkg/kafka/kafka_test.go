package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("WS12345678").
		WithValue(map[string]string{"status": "confirmed"}).
		WithEventType("booking.confirmed").
		WithSource("checkout").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("expected timestamp header")
	}
	if msg.GetEventType() != "booking.confirmed" {
		t.Errorf("unexpected event type %q", msg.GetEventType())
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if decoded["status"] != "confirmed" {
		t.Errorf("unexpected payload %v", decoded)
	}
}

func TestMessageBuilder_EncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Fatal("expected encoding error")
	}
	if ClassifyError(err) != ErrorTypePermanent {
		t.Error("encoding errors should be permanent")
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	if msg.GetRetryCount() != 0 {
		t.Fatal("expected zero retries")
	}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("expected 12 retries, got %d", got)
	}

	msg.Headers[HeaderRetryCount] = "garbage"
	if msg.GetRetryCount() != 0 {
		t.Error("malformed header should read as zero")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"transient wrapper", NewTransientError("broker down", errors.New("x")), ErrorTypeTransient},
		{"permanent wrapper", NewPermanentError("bad payload", errors.New("x")), ErrorTypePermanent},
		{"deadline", fmt.Errorf("write: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("something odd"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("timeout", nil)
	if !ShouldRetry(transient, 0, 3) {
		t.Error("expected retry for transient error under limit")
	}
	if ShouldRetry(transient, 3, 3) {
		t.Error("expected no retry at limit")
	}
	if ShouldRetry(NewPermanentError("bad", nil), 0, 3) {
		t.Error("expected no retry for permanent error")
	}
}

func TestNewProducer_Validation(t *testing.T) {
	if _, err := NewProducer(nil, nil, "t", ""); err == nil {
		t.Error("expected error for nil config")
	}
}
