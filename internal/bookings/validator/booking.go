package validator

import (
	"bookmyworkspace/pkg/model"
	"bookmyworkspace/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// transitions lists the statuses reachable from each status. Cancelled and
// completed bookings are final.
var transitions = map[string][]string{
	model.BookingStatusPending:   {model.BookingStatusConfirmed, model.BookingStatusCancelled},
	model.BookingStatusConfirmed: {model.BookingStatusCompleted, model.BookingStatusCancelled},
}

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() (*BookingValidator, error) {
	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	return &BookingValidator{validate: v}, nil
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	return validation.Struct(v.validate, booking)
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	return validation.Struct(v.validate, update)
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
