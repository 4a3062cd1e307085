// Package validation wraps go-playground/validator with the custom tags used by
// the domain models and a translation into field level errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bookmyworkspace/pkg/checkout"

	"github.com/go-playground/validator/v10"
)

// Amenities lists the amenity keys a listing may advertise.
var Amenities = []string{"wifi", "coffee", "ac", "parking", "meeting"}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as a field -> message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, e := range v {
		details[e.Field] = e.Message
	}
	return details
}

// New returns a validator with the domain tags registered and json field names
// reported in errors.
func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"billing_unit":      validateBillingUnit,
		"payment_method":    validatePaymentMethod,
		"amenity":           validateAmenity,
		"booking_reference": validateBookingReference,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %q validator: %w", tag, err)
		}
	}
	return v, nil
}

// Struct validates s and converts failures into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gtefield":
			message = fmt.Sprintf("%s must not be before %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "uuid4":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +918123456789)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "unique":
			message = fmt.Sprintf("%s must not contain duplicates", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must match the layout %s", err.Field(), err.Param())
		case "billing_unit":
			message = fmt.Sprintf("%s must be one of: hour day week month", err.Field())
		case "payment_method":
			message = fmt.Sprintf("%s must be one of: online upi pay_at_venue wallet", err.Field())
		case "amenity":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(Amenities, " "))
		case "booking_reference":
			message = fmt.Sprintf("%s must be WS followed by 8 digits", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

func validateBillingUnit(fl validator.FieldLevel) bool {
	return checkout.BillingUnit(fl.Field().String()).Valid()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return checkout.PaymentMethod(fl.Field().String()).Valid()
}

func validateAmenity(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, a := range Amenities {
		if a == value {
			return true
		}
	}
	return false
}

func validateBookingReference(fl validator.FieldLevel) bool {
	return checkout.IsBookingID(fl.Field().String())
}
