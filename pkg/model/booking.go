package model

import (
	"time"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	WorkspaceID   string    `json:"workspace_id" bson:"workspace_id" validate:"required,mongodb"`
	UserID        string    `json:"user_id" bson:"user_id" validate:"required,max=64"`
	BookingType   string    `json:"booking_type" bson:"booking_type" validate:"required,oneof=hourly daily weekly monthly"`
	StartDate     time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" bson:"end_date" validate:"required,gtefield=StartDate"`
	TotalAmount   int64     `json:"total_amount" bson:"total_amount" validate:"gte=0"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	Reference     string    `json:"reference,omitempty" bson:"reference,omitempty" validate:"omitempty,booking_reference"`
	PaymentMethod string    `json:"payment_method,omitempty" bson:"payment_method,omitempty" validate:"omitempty,payment_method"`
	PaymentStatus string    `json:"payment_status,omitempty" bson:"payment_status,omitempty" validate:"omitempty,oneof=paid pending failed"`
	PlanID        string    `json:"plan_id,omitempty" bson:"plan_id,omitempty" validate:"omitempty,max=50"`
	PlanName      string    `json:"plan_name,omitempty" bson:"plan_name,omitempty" validate:"omitempty,max=100"`
	PartySize     int       `json:"party_size,omitempty" bson:"party_size,omitempty" validate:"omitempty,min=1,max=10"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

type BookingUpdate struct {
	Status        string `json:"status,omitempty" bson:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus string `json:"payment_status,omitempty" bson:"payment_status,omitempty" validate:"omitempty,oneof=paid pending failed"`
}

// BookingStats aggregates bookings across a set of workspaces.
type BookingStats struct {
	TotalRevenue      int64 `json:"total_revenue" bson:"total_revenue"`
	PendingBookings   int64 `json:"pending_bookings" bson:"pending_bookings"`
	ConfirmedBookings int64 `json:"confirmed_bookings" bson:"confirmed_bookings"`
	TotalBookings     int64 `json:"total_bookings" bson:"total_bookings"`
}
