package checkout

import (
	"math"
	"testing"
	"time"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var testNow = time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

func hourlyPlan() Plan {
	return Plan{ID: "hot-desk", Name: "Hot Desk", UnitPrice: 99, BillingUnit: Hour}
}

func TestNewConfigurator_Defaults(t *testing.T) {
	c := NewConfigurator(hourlyPlan(), fixedClock(testNow))
	sel := c.Selection()

	if sel.Duration != 1 {
		t.Errorf("expected duration 1, got %d", sel.Duration)
	}
	if sel.PartySize != 1 {
		t.Errorf("expected party size 1, got %d", sel.PartySize)
	}
	if sel.Time != DefaultTime {
		t.Errorf("expected time %s, got %s", DefaultTime, sel.Time)
	}
	if !sel.Date.Equal(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected today's date, got %v", sel.Date)
	}
	if sel.PlanID != "hot-desk" {
		t.Errorf("expected plan id hot-desk, got %s", sel.PlanID)
	}

	daily := NewConfigurator(Plan{ID: "day", UnitPrice: 500, BillingUnit: Day}, fixedClock(testNow))
	if daily.Selection().Time != "" {
		t.Errorf("expected no time for daily plan, got %q", daily.Selection().Time)
	}
}

func TestSetDuration_ClampsPerBillingUnit(t *testing.T) {
	tests := []struct {
		name  string
		unit  BillingUnit
		input int
		want  int
	}{
		{"hour above max", Hour, 15, 12},
		{"hour below min", Hour, 0, 1},
		{"hour negative", Hour, -40, 1},
		{"hour in range", Hour, 7, 7},
		{"day above max", Day, 31, 30},
		{"day at max", Day, 30, 30},
		{"week above max", Week, 13, 12},
		{"month above max", Month, 100, 12},
		{"month min", Month, 1, 1},
		{"huge input", Day, math.MaxInt, 30},
		{"huge negative input", Week, math.MinInt, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfigurator(Plan{ID: "p", UnitPrice: 10, BillingUnit: tt.unit}, fixedClock(testNow))
			got := c.SetDuration(tt.input)
			if got != tt.want {
				t.Errorf("SetDuration(%d) = %d, want %d", tt.input, got, tt.want)
			}
			if c.Selection().Duration != tt.want {
				t.Errorf("stored duration = %d, want %d", c.Selection().Duration, tt.want)
			}
		})
	}
}

func TestStepDuration_NeverLeavesBounds(t *testing.T) {
	deltas := []int{-1, 1, 5, -5, 1000, -1000, math.MaxInt, math.MinInt}

	for _, unit := range BillingUnits() {
		c := NewConfigurator(Plan{ID: "p", UnitPrice: 10, BillingUnit: unit}, fixedClock(testNow))
		lo, hi := unit.DurationBounds()
		for _, d := range deltas {
			got := c.StepDuration(d)
			if got < lo || got > hi {
				t.Fatalf("%s: StepDuration(%d) left bounds: %d not in [%d,%d]", unit, d, got, lo, hi)
			}
		}
	}
}

func TestSetPartySize_Clamps(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{6, 6},
		{10, 10},
		{11, 10},
		{math.MaxInt, 10},
	}

	c := NewConfigurator(hourlyPlan(), fixedClock(testNow))
	for _, tt := range tests {
		if got := c.SetPartySize(tt.input); got != tt.want {
			t.Errorf("SetPartySize(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}

	c.SetPartySize(10)
	if got := c.StepPartySize(1); got != 10 {
		t.Errorf("StepPartySize(+1) at max = %d, want 10", got)
	}
	c.SetPartySize(1)
	if got := c.StepPartySize(-1); got != 1 {
		t.Errorf("StepPartySize(-1) at min = %d, want 1", got)
	}
}

func TestSetDate(t *testing.T) {
	c := NewConfigurator(hourlyPlan(), fixedClock(testNow))
	before := c.Selection()

	yesterday := testNow.AddDate(0, 0, -1)
	if c.SetDate(yesterday) {
		t.Error("expected past date to be rejected")
	}
	if c.Selection() != before {
		t.Error("selection changed after rejected date")
	}

	earlierToday := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)
	if !c.SetDate(earlierToday) {
		t.Error("expected an earlier hour of today to be accepted")
	}

	next := time.Date(2026, time.April, 2, 18, 45, 0, 0, time.UTC)
	if !c.SetDate(next) {
		t.Fatal("expected future date to be accepted")
	}
	want := time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC)
	if !c.Selection().Date.Equal(want) {
		t.Errorf("expected date truncated to %v, got %v", want, c.Selection().Date)
	}
}

func TestSetTime(t *testing.T) {
	c := NewConfigurator(hourlyPlan(), fixedClock(testNow))

	if !c.SetTime("14:00") {
		t.Error("expected 14:00 to be accepted")
	}
	if c.Selection().Time != "14:00" {
		t.Errorf("expected 14:00, got %s", c.Selection().Time)
	}
	for _, bad := range []string{"07:00", "22:00", "14:30", ""} {
		if c.SetTime(bad) {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
	if c.Selection().Time != "14:00" {
		t.Errorf("rejected slot changed the time to %s", c.Selection().Time)
	}

	daily := NewConfigurator(Plan{ID: "d", UnitPrice: 500, BillingUnit: Day}, fixedClock(testNow))
	before := daily.Quote()
	if daily.SetTime("10:00") {
		t.Error("expected SetTime to be inert for daily plans")
	}
	if daily.Quote() != before {
		t.Error("SetTime changed the quote for a daily plan")
	}
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	if len(slots) != 14 {
		t.Fatalf("expected 14 slots, got %d", len(slots))
	}
	if slots[0] != "08:00" || slots[13] != "21:00" {
		t.Errorf("unexpected slot range %s..%s", slots[0], slots[13])
	}
}

func TestRestoreConfigurator_ReclampsStoredValues(t *testing.T) {
	stored := Selection{
		PlanID:    "hot-desk",
		Date:      testNow.AddDate(0, 0, 3),
		Time:      "99:00",
		Duration:  40,
		PartySize: 0,
	}
	c := RestoreConfigurator(hourlyPlan(), stored, fixedClock(testNow))
	sel := c.Selection()

	if sel.Duration != 12 {
		t.Errorf("expected duration clamped to 12, got %d", sel.Duration)
	}
	if sel.PartySize != 1 {
		t.Errorf("expected party size clamped to 1, got %d", sel.PartySize)
	}
	if sel.Time != DefaultTime {
		t.Errorf("expected invalid stored time replaced by default, got %s", sel.Time)
	}
}

func TestPeriod(t *testing.T) {
	c := NewConfigurator(hourlyPlan(), fixedClock(testNow))
	c.SetTime("10:00")
	c.SetDuration(3)
	start, end := c.Period()
	if start.Hour() != 10 || end.Sub(start) != 3*time.Hour {
		t.Errorf("hourly period = %v..%v", start, end)
	}

	m := NewConfigurator(Plan{ID: "m", UnitPrice: 9000, BillingUnit: Month}, fixedClock(testNow))
	m.SetDuration(2)
	start, end = m.Period()
	if end.Before(start) {
		t.Fatal("end before start")
	}
	if end.Month() != time.May {
		t.Errorf("expected two-month period to end in May, got %v", end)
	}
}

func TestStale_AfterDayRollsOver(t *testing.T) {
	now := testNow
	clock := func() time.Time { return now }
	c := NewConfigurator(hourlyPlan(), clock)
	if c.Stale() {
		t.Fatal("fresh selection must not be stale")
	}

	now = now.Add(10 * time.Hour)
	if c.Stale() {
		t.Error("same calendar day must not be stale")
	}

	now = testNow.AddDate(0, 0, 1)
	if !c.Stale() {
		t.Error("selection for yesterday must be stale")
	}
}
