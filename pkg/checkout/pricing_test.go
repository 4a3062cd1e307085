package checkout

import "testing"

func TestTotal(t *testing.T) {
	tests := []struct {
		name      string
		plan      Plan
		duration  int
		partySize int
		want      int64
	}{
		{"daily three days two people", Plan{UnitPrice: 500, BillingUnit: Day}, 3, 2, 3000},
		{"single hour", Plan{UnitPrice: 99, BillingUnit: Hour}, 1, 1, 99},
		{"max hourly", Plan{UnitPrice: 99, BillingUnit: Hour}, 12, 10, 11880},
		{"monthly", Plan{UnitPrice: 8000, BillingUnit: Month}, 2, 3, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Total(tt.plan, tt.duration, tt.partySize); got != tt.want {
				t.Errorf("Total() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTotal_StrictlyIncreasing(t *testing.T) {
	for _, unit := range BillingUnits() {
		plan := Plan{UnitPrice: 250, BillingUnit: unit}
		lo, hi := unit.DurationBounds()
		for d := lo; d <= hi; d++ {
			for p := MinPartySize; p <= MaxPartySize; p++ {
				got := Total(plan, d, p)
				if got != plan.UnitPrice*int64(d)*int64(p) {
					t.Fatalf("%s: Total(%d,%d) = %d", unit, d, p, got)
				}
				if d < hi && Total(plan, d+1, p) <= got {
					t.Fatalf("%s: not increasing in duration at %d", unit, d)
				}
				if p < MaxPartySize && Total(plan, d, p+1) <= got {
					t.Fatalf("%s: not increasing in party size at %d", unit, p)
				}
			}
		}
	}
}

func TestQuote_FeeAddedAfterBase(t *testing.T) {
	plan := Plan{UnitPrice: 500, BillingUnit: Day}
	q := NewQuote(plan, 3, 2)

	if q.Total != 3000 {
		t.Errorf("expected base total 3000, got %d", q.Total)
	}
	if q.ServiceFee != 50 {
		t.Errorf("expected day fee 50, got %d", q.ServiceFee)
	}
	if q.GrandTotal != 3050 {
		t.Errorf("expected grand total 3050, got %d", q.GrandTotal)
	}
	if q.UnitPrice != 500 {
		t.Errorf("fee must not change the unit price, got %d", q.UnitPrice)
	}
	if q.DurationLabel != "3 days" {
		t.Errorf("expected label '3 days', got %q", q.DurationLabel)
	}
}

func TestServiceFee(t *testing.T) {
	want := map[BillingUnit]int64{Hour: 20, Day: 50, Week: 150, Month: 300}
	for unit, fee := range want {
		if got := ServiceFee(unit); got != fee {
			t.Errorf("ServiceFee(%s) = %d, want %d", unit, got, fee)
		}
	}
}

func TestConfiguratorQuote_Scenarios(t *testing.T) {
	c := NewConfigurator(Plan{ID: "day", UnitPrice: 500, BillingUnit: Day}, fixedClock(testNow))
	c.SetDuration(3)
	c.SetPartySize(2)
	if got := c.Quote().Total; got != 3000 {
		t.Errorf("expected 3000, got %d", got)
	}

	h := NewConfigurator(hourlyPlan(), fixedClock(testNow))
	if got := h.SetDuration(15); got != 12 {
		t.Errorf("expected hourly duration clamped to 12, got %d", got)
	}
	if got := h.SetPartySize(0); got != 1 {
		t.Errorf("expected party size clamped to 1, got %d", got)
	}
}
