package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookmyworkspace/pkg/kafka"
	"bookmyworkspace/pkg/logger"
	"bookmyworkspace/pkg/middleware"
)

type fakeWriter struct {
	published []kafka.Message
	err       error
	closed    bool
}

func (f *fakeWriter) Publish(ctx context.Context, msg kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher() (*KafkaPublisher, *fakeWriter, *fakeWriter) {
	bookings, workspaces := &fakeWriter{}, &fakeWriter{}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return &KafkaPublisher{
		bookings:   bookings,
		workspaces: workspaces,
		source:     "checkout",
		now:        func() time.Time { return now },
	}, bookings, workspaces
}

func TestKafkaPublisher_PublishBooking(t *testing.T) {
	p, bookings, workspaces := newTestPublisher()
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	err := p.PublishBooking(ctx, TypeBookingConfirmed, BookingEvent{
		Reference:   "WS12345678",
		WorkspaceID: "ws-1",
		UserID:      "user-1",
		TotalAmount: 3000,
		Status:      "confirmed",
	})
	if err != nil {
		t.Fatalf("PublishBooking: %v", err)
	}
	if len(bookings.published) != 1 || len(workspaces.published) != 0 {
		t.Fatalf("message routed to wrong topic")
	}

	msg := bookings.published[0]
	if msg.Key != "ws-1" {
		t.Errorf("expected workspace key, got %q", msg.Key)
	}
	if msg.GetEventType() != TypeBookingConfirmed || msg.GetCorrelationID() != "req-1" {
		t.Errorf("unexpected headers %v", msg.Headers)
	}

	var decoded BookingEvent
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if decoded.Reference != "WS12345678" || decoded.OccurredAt.IsZero() {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestKafkaPublisher_PublishWorkspace(t *testing.T) {
	p, _, workspaces := newTestPublisher()
	if err := p.PublishWorkspace(context.Background(), TypeWorkspaceDeleted, WorkspaceEvent{WorkspaceID: "ws-9", OwnerID: "owner"}); err != nil {
		t.Fatalf("PublishWorkspace: %v", err)
	}
	if len(workspaces.published) != 1 || workspaces.published[0].GetEventType() != TypeWorkspaceDeleted {
		t.Error("expected workspace.deleted on the workspaces topic")
	}
}

func TestKafkaPublisher_PropagatesErrors(t *testing.T) {
	p, bookings, _ := newTestPublisher()
	bookings.err = errors.New("broker unavailable")
	if err := p.PublishBooking(context.Background(), TypeBookingCreated, BookingEvent{WorkspaceID: "ws"}); err == nil {
		t.Error("expected error")
	}
}

func TestKafkaPublisher_Close(t *testing.T) {
	p, bookings, workspaces := newTestPublisher()
	_ = p.Close()
	if !bookings.closed || !workspaces.closed {
		t.Error("expected both writers closed")
	}
}

func TestNewPublisher_Disabled(t *testing.T) {
	p, err := NewPublisher(false, logger.Discard(), "test")
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if _, ok := p.(*LogPublisher); !ok {
		t.Fatalf("expected LogPublisher, got %T", p)
	}
	if err := p.PublishBooking(context.Background(), TypeBookingCreated, BookingEvent{}); err != nil {
		t.Errorf("log publisher should never fail: %v", err)
	}
}
