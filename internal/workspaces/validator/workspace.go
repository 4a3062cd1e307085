package validator

import (
	"fmt"

	"bookmyworkspace/pkg/checkout"
	"bookmyworkspace/pkg/model"
	"bookmyworkspace/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type WorkspaceValidator struct {
	validate *validator.Validate
}

func NewWorkspaceValidator() (*WorkspaceValidator, error) {
	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	return &WorkspaceValidator{validate: v}, nil
}

func (v *WorkspaceValidator) Validate(ws *model.Workspace) error {
	if err := validation.Struct(v.validate, ws); err != nil {
		return err
	}
	return v.validateBusinessRules(ws)
}

func (v *WorkspaceValidator) ValidateUpdate(updates *model.WorkspaceUpdate) error {
	return validation.Struct(v.validate, updates)
}

func (v *WorkspaceValidator) validateBusinessRules(ws *model.Workspace) error {
	var errs validation.ValidationErrors

	for i, plan := range ws.Plans {
		if plan.BillingUnit == checkout.Hour && ws.PricePerHour == nil {
			errs = append(errs, validation.ValidationError{
				Field:   fmt.Sprintf("plans[%d].billing_unit", i),
				Message: "hourly plans require price_per_hour",
			})
		}
	}

	if ws.PricePerWeek != nil && *ws.PricePerWeek < ws.PricePerDay {
		errs = append(errs, validation.ValidationError{
			Field:   "price_per_week",
			Message: "must not be lower than price_per_day",
		})
	}

	if ws.PricePerMonth != nil && ws.PricePerWeek != nil && *ws.PricePerMonth < *ws.PricePerWeek {
		errs = append(errs, validation.ValidationError{
			Field:   "price_per_month",
			Message: "must not be lower than price_per_week",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
