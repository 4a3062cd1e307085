package checkout

var serviceFees = map[BillingUnit]int64{
	Hour:  20,
	Day:   50,
	Week:  150,
	Month: 300,
}

// Total is the base price: unit price times duration times party size.
func Total(plan Plan, duration, partySize int) int64 {
	return plan.UnitPrice * int64(duration) * int64(partySize)
}

// ServiceFee is a flat charge per billing unit, added on top of Total.
func ServiceFee(unit BillingUnit) int64 {
	return serviceFees[unit]
}

// Quote is the price breakdown shown in the dialog. Total is what a booking
// charges; ServiceFee and GrandTotal are display only.
type Quote struct {
	UnitPrice     int64       `json:"unit_price"`
	BillingUnit   BillingUnit `json:"billing_unit"`
	Duration      int         `json:"duration"`
	DurationLabel string      `json:"duration_label"`
	PartySize     int         `json:"party_size"`
	Total         int64       `json:"total"`
	ServiceFee    int64       `json:"service_fee"`
	GrandTotal    int64       `json:"grand_total"`
}

func NewQuote(plan Plan, duration, partySize int) Quote {
	total := Total(plan, duration, partySize)
	fee := ServiceFee(plan.BillingUnit)
	return Quote{
		UnitPrice:     plan.UnitPrice,
		BillingUnit:   plan.BillingUnit,
		Duration:      duration,
		DurationLabel: plan.BillingUnit.Label(duration),
		PartySize:     partySize,
		Total:         total,
		ServiceFee:    fee,
		GrandTotal:    total + fee,
	}
}
