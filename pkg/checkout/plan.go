package checkout

import "fmt"

type BillingUnit string

const (
	Hour  BillingUnit = "hour"
	Day   BillingUnit = "day"
	Week  BillingUnit = "week"
	Month BillingUnit = "month"
)

const (
	MinPartySize = 1
	MaxPartySize = 10
)

var durationBounds = map[BillingUnit][2]int{
	Hour:  {1, 12},
	Day:   {1, 30},
	Week:  {1, 12},
	Month: {1, 12},
}

// BillingUnits lists the supported units in ascending granularity.
func BillingUnits() []BillingUnit {
	return []BillingUnit{Hour, Day, Week, Month}
}

func (u BillingUnit) Valid() bool {
	_, ok := durationBounds[u]
	return ok
}

// DurationBounds returns the inclusive duration range for the unit.
// Unknown units fall back to the widest hourly-style range [1,12].
func (u BillingUnit) DurationBounds() (int, int) {
	if b, ok := durationBounds[u]; ok {
		return b[0], b[1]
	}
	return 1, 12
}

// Label renders a duration with the unit name, pluralised: "1 hour", "3 days".
func (u BillingUnit) Label(n int) string {
	name := string(u)
	if !u.Valid() {
		name = "unit"
	}
	if n == 1 {
		return fmt.Sprintf("%d %s", n, name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}

// BookingType maps the unit onto the persisted booking type.
func (u BillingUnit) BookingType() string {
	switch u {
	case Hour:
		return "hourly"
	case Week:
		return "weekly"
	case Month:
		return "monthly"
	default:
		return "daily"
	}
}

// Plan is one pricing tier offered by a workspace. Plans are embedded in the
// workspace document and never change after the listing is created.
type Plan struct {
	ID          string      `json:"id" bson:"id" validate:"required,min=1,max=50"`
	Name        string      `json:"name" bson:"name" validate:"required,min=2,max=100"`
	UnitPrice   int64       `json:"unit_price" bson:"unit_price" validate:"required,gt=0"`
	BillingUnit BillingUnit `json:"billing_unit" bson:"billing_unit" validate:"required,billing_unit"`
	Features    []string    `json:"features" bson:"features" validate:"omitempty,max=20,dive,required,max=200"`
	Popular     bool        `json:"popular,omitempty" bson:"popular,omitempty"`
}
