package events

import (
	"context"
	"time"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeWorkspaceDeleted = "workspace.deleted"

	SchemaVersion = "1"
)

type BookingEvent struct {
	BookingID     string    `json:"booking_id"`
	Reference     string    `json:"booking_reference"`
	WorkspaceID   string    `json:"workspace_id"`
	WorkspaceName string    `json:"workspace_name,omitempty"`
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email,omitempty"`
	PlanName      string    `json:"plan_name,omitempty"`
	PartySize     int       `json:"party_size,omitempty"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	TotalAmount   int64     `json:"total_amount"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type WorkspaceEvent struct {
	WorkspaceID string    `json:"workspace_id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	City        string    `json:"city,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher emits domain events. Callers treat failures as non-fatal.
type Publisher interface {
	PublishBooking(ctx context.Context, eventType string, event BookingEvent) error
	PublishWorkspace(ctx context.Context, eventType string, event WorkspaceEvent) error
	Close() error
}
