package validation

import (
	"errors"
	"testing"
	"time"

	"bookmyworkspace/pkg/checkout"
	"bookmyworkspace/pkg/model"
)

func newValidator(t *testing.T) func(any) error {
	t.Helper()
	v, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return func(s any) error { return Struct(v, s) }
}

func validWorkspace() *model.Workspace {
	return &model.Workspace{
		OwnerID:     "9f1b7a52-6f0a-4b59-9d0e-2f1d9a6c0e11",
		Name:        "WeWork Galaxy",
		City:        "Bangalore",
		Area:        "Residency Road",
		Address:     "43, Residency Road, Shanthala Nagar",
		PricePerDay: 599,
		Capacity:    120,
		Amenities:   []string{"wifi", "coffee"},
		Images:      []string{"https://images.example.com/galaxy.jpg"},
		Rating:      4.8,
		Plans: []checkout.Plan{
			{ID: "day-pass", Name: "Day Pass", UnitPrice: 599, BillingUnit: checkout.Day},
		},
	}
}

func TestWorkspaceValidation(t *testing.T) {
	validate := newValidator(t)

	tests := []struct {
		name      string
		mutate    func(*model.Workspace)
		wantField string
	}{
		{name: "valid", mutate: func(*model.Workspace) {}},
		{name: "missing name", mutate: func(w *model.Workspace) { w.Name = "" }, wantField: "name"},
		{name: "zero day price", mutate: func(w *model.Workspace) { w.PricePerDay = 0 }, wantField: "price_per_day"},
		{name: "unknown amenity", mutate: func(w *model.Workspace) { w.Amenities = []string{"pool"} }, wantField: "amenities[0]"},
		{name: "bad image url", mutate: func(w *model.Workspace) { w.Images = []string{"not a url"} }, wantField: "images[0]"},
		{name: "rating above five", mutate: func(w *model.Workspace) { w.Rating = 5.5 }, wantField: "rating"},
		{name: "no plans", mutate: func(w *model.Workspace) { w.Plans = nil }, wantField: "plans"},
		{name: "bad billing unit", mutate: func(w *model.Workspace) { w.Plans[0].BillingUnit = "year" }, wantField: "billing_unit"},
		{
			name: "duplicate plan ids",
			mutate: func(w *model.Workspace) {
				w.Plans = append(w.Plans, checkout.Plan{ID: "day-pass", Name: "Again", UnitPrice: 1, BillingUnit: checkout.Day})
			},
			wantField: "plans",
		},
		{name: "bad phone", mutate: func(w *model.Workspace) { w.ContactPhone = "12345" }, wantField: "contact_phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := validWorkspace()
			tt.mutate(ws)
			err := validate(ws)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid workspace, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestBookingValidation(t *testing.T) {
	validate := newValidator(t)
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	booking := &model.Booking{
		WorkspaceID:   "65f1c2a4b7e9d3f1a2b4c6d8",
		UserID:        "9f1b7a52-6f0a-4b59-9d0e-2f1d9a6c0e11",
		BookingType:   "daily",
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 3),
		TotalAmount:   3000,
		Status:        model.BookingStatusConfirmed,
		Reference:     "WS12345678",
		PaymentMethod: string(checkout.PayAtVenue),
		PaymentStatus: string(checkout.PaymentPending),
		PartySize:     2,
	}
	if err := validate(booking); err != nil {
		t.Fatalf("expected valid booking, got %v", err)
	}

	booking.EndDate = start.AddDate(0, 0, -1)
	if err := validate(booking); err == nil {
		t.Error("expected end before start to fail")
	}

	booking.EndDate = start
	booking.Reference = "WS123"
	if err := validate(booking); err == nil {
		t.Error("expected malformed reference to fail")
	}

	booking.Reference = "WS12345678"
	booking.PaymentMethod = "cash"
	if err := validate(booking); err == nil {
		t.Error("expected unknown payment method to fail")
	}
}

func TestValidationErrors_Details(t *testing.T) {
	errs := ValidationErrors{{Field: "name", Message: "name is required"}}
	if errs.Details()["name"] != "name is required" {
		t.Errorf("unexpected details %v", errs.Details())
	}
	if errs.Error() == "" {
		t.Error("expected non-empty message")
	}
}
