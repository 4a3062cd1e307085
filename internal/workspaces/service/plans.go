package service

import (
	"bookmyworkspace/pkg/checkout"
	"bookmyworkspace/pkg/model"
)

// DefaultPlans derives pricing tiers from the listing's prices when the owner
// does not supply plans. The day pass is always present.
func DefaultPlans(ws *model.Workspace) []checkout.Plan {
	plans := make([]checkout.Plan, 0, 4)

	if ws.PricePerHour != nil {
		plans = append(plans, checkout.Plan{
			ID:          "hot-desk",
			Name:        "Hot Desk",
			UnitPrice:   *ws.PricePerHour,
			BillingUnit: checkout.Hour,
			Features:    []string{"Any open desk", "High-speed WiFi", "Book by the hour"},
		})
	}

	plans = append(plans, checkout.Plan{
		ID:          "day-pass",
		Name:        "Day Pass",
		UnitPrice:   ws.PricePerDay,
		BillingUnit: checkout.Day,
		Features:    []string{"Full day access", "High-speed WiFi", "Complimentary coffee"},
		Popular:     true,
	})

	if ws.PricePerWeek != nil {
		plans = append(plans, checkout.Plan{
			ID:          "weekly",
			Name:        "Weekly",
			UnitPrice:   *ws.PricePerWeek,
			BillingUnit: checkout.Week,
			Features:    []string{"7 days access", "Meeting room credits", "Locker"},
		})
	}

	if ws.PricePerMonth != nil {
		plans = append(plans, checkout.Plan{
			ID:          "monthly",
			Name:        "Monthly",
			UnitPrice:   *ws.PricePerMonth,
			BillingUnit: checkout.Month,
			Features:    []string{"Dedicated desk", "Mail handling", "Meeting room credits"},
		})
	}

	return plans
}
