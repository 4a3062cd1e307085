package model

import (
	"time"

	"bookmyworkspace/pkg/checkout"
)

// CheckoutSession is the server-side state of one open booking dialog.
// ProcessingUntil is when a gateway payment is due to complete; it is zero
// outside processing.
type CheckoutSession struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"user_id"`
	UserEmail       string                   `json:"user_email,omitempty"`
	WorkspaceID     string                   `json:"workspace_id"`
	WorkspaceName   string                   `json:"workspace_name"`
	Plan            checkout.Plan            `json:"plan"`
	Selection       checkout.Selection       `json:"selection"`
	Quote           checkout.Quote           `json:"quote"`
	Payment         checkout.PaymentSnapshot `json:"payment"`
	Status          string                   `json:"status,omitempty"`
	BookingID       string                   `json:"booking_record_id,omitempty"`
	LastError       string                   `json:"last_error,omitempty"`
	Closed          bool                     `json:"closed,omitempty"`
	ProcessingUntil time.Time                `json:"processing_until,omitzero"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

type CreateCheckoutRequest struct {
	WorkspaceID string `json:"workspace_id" validate:"required,mongodb"`
	PlanID      string `json:"plan_id" validate:"required,max=50"`
}

// UpdateSelectionRequest applies configurator mutations. Absolute values are
// applied before deltas.
type UpdateSelectionRequest struct {
	Duration       *int    `json:"duration,omitempty"`
	PartySize      *int    `json:"party_size,omitempty"`
	Date           *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time           *string `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	DurationDelta  *int    `json:"duration_delta,omitempty"`
	PartySizeDelta *int    `json:"party_size_delta,omitempty"`
}

type PaymentMethodRequest struct {
	Method string `json:"method" validate:"required"`
}
