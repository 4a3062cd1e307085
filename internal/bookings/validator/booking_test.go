package validator

import (
	"testing"
	"time"

	"bookmyworkspace/pkg/model"
)

func validBooking() *model.Booking {
	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	return &model.Booking{
		WorkspaceID: "507f1f77bcf86cd799439011",
		UserID:      "user-1",
		BookingType: "daily",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 2),
		TotalAmount: 1550,
		Status:      model.BookingStatusConfirmed,
		Reference:   "WS12345678",
		PartySize:   1,
	}
}

func TestValidate(t *testing.T) {
	v, err := NewBookingValidator()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		mutate  func(b *model.Booking)
		wantErr bool
	}{
		{name: "valid", mutate: func(*model.Booking) {}},
		{name: "end before start", mutate: func(b *model.Booking) { b.EndDate = b.StartDate.Add(-time.Hour) }, wantErr: true},
		{name: "bad reference", mutate: func(b *model.Booking) { b.Reference = "XX1" }, wantErr: true},
		{name: "unknown status", mutate: func(b *model.Booking) { b.Status = "held" }, wantErr: true},
		{name: "negative amount", mutate: func(b *model.Booking) { b.TotalAmount = -1 }, wantErr: true},
		{name: "bad workspace id", mutate: func(b *model.Booking) { b.WorkspaceID = "ws-1" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(b)
			err := v.Validate(b)
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.BookingStatusPending, model.BookingStatusConfirmed, true},
		{model.BookingStatusPending, model.BookingStatusCancelled, true},
		{model.BookingStatusConfirmed, model.BookingStatusCompleted, true},
		{model.BookingStatusCancelled, model.BookingStatusConfirmed, false},
		{model.BookingStatusCompleted, model.BookingStatusCancelled, false},
		{model.BookingStatusPending, model.BookingStatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
