package checkout

import (
	"fmt"
	"math"
	"time"
)

// Clock returns the current time. Injected so date rules can be tested.
type Clock func() time.Time

const (
	DefaultTime    = "09:00"
	firstSlotHour  = 8
	timeSlotsCount = 14
)

// Selection is the transient booking configuration for one plan.
type Selection struct {
	PlanID    string    `json:"plan_id"`
	Date      time.Time `json:"date"`
	Time      string    `json:"time,omitempty"`
	Duration  int       `json:"duration"`
	PartySize int       `json:"party_size"`
}

// TimeSlots returns the hourly start times offered for hourly plans, 08:00 through 21:00.
func TimeSlots() []string {
	slots := make([]string, 0, timeSlotsCount)
	for i := range timeSlotsCount {
		slots = append(slots, fmt.Sprintf("%02d:00", firstSlotHour+i))
	}
	return slots
}

func isTimeSlot(t string) bool {
	for _, s := range TimeSlots() {
		if s == t {
			return true
		}
	}
	return false
}

// Configurator holds a Selection and keeps it inside the plan's bounds.
// Every mutator clamps; out-of-range input never becomes observable state.
type Configurator struct {
	plan Plan
	sel  Selection
	now  Clock
}

func NewConfigurator(plan Plan, now Clock) *Configurator {
	if now == nil {
		now = time.Now
	}
	c := &Configurator{
		plan: plan,
		now:  now,
		sel: Selection{
			PlanID:    plan.ID,
			Date:      startOfDay(now()),
			Duration:  1,
			PartySize: MinPartySize,
		},
	}
	if plan.BillingUnit == Hour {
		c.sel.Time = DefaultTime
	}
	return c
}

// RestoreConfigurator rebuilds a configurator from a stored selection,
// re-applying the bounds in case the stored values predate them.
func RestoreConfigurator(plan Plan, sel Selection, now Clock) *Configurator {
	c := NewConfigurator(plan, now)
	if !sel.Date.IsZero() {
		c.sel.Date = startOfDay(sel.Date)
	}
	if plan.BillingUnit == Hour && isTimeSlot(sel.Time) {
		c.sel.Time = sel.Time
	}
	c.SetDuration(sel.Duration)
	c.SetPartySize(sel.PartySize)
	return c
}

func (c *Configurator) Plan() Plan {
	return c.plan
}

func (c *Configurator) Selection() Selection {
	return c.sel
}

// SetDuration clamps n into the plan's duration bounds and returns the stored value.
func (c *Configurator) SetDuration(n int) int {
	lo, hi := c.plan.BillingUnit.DurationBounds()
	c.sel.Duration = clamp(n, lo, hi)
	return c.sel.Duration
}

// StepDuration moves the duration by delta, clamped.
func (c *Configurator) StepDuration(delta int) int {
	return c.SetDuration(saturatingAdd(c.sel.Duration, delta))
}

func (c *Configurator) SetPartySize(n int) int {
	c.sel.PartySize = clamp(n, MinPartySize, MaxPartySize)
	return c.sel.PartySize
}

func (c *Configurator) StepPartySize(delta int) int {
	return c.SetPartySize(saturatingAdd(c.sel.PartySize, delta))
}

// SetDate accepts d only when its calendar day is today or later.
// A past date leaves the selection unchanged and returns false.
func (c *Configurator) SetDate(d time.Time) bool {
	now := c.now()
	day := startOfDay(d.In(now.Location()))
	if day.Before(startOfDay(now)) {
		return false
	}
	c.sel.Date = day
	return true
}

// Stale reports whether the selected day has already passed, as happens when
// a selection is restored on a later day.
func (c *Configurator) Stale() bool {
	now := c.now()
	return startOfDay(c.sel.Date.In(now.Location())).Before(startOfDay(now))
}

// SetTime only applies to hourly plans and only to one of the offered slots.
func (c *Configurator) SetTime(t string) bool {
	if c.plan.BillingUnit != Hour || !isTimeSlot(t) {
		return false
	}
	c.sel.Time = t
	return true
}

func (c *Configurator) Quote() Quote {
	return NewQuote(c.plan, c.sel.Duration, c.sel.PartySize)
}

// Period returns the booked date range: start is the selected day (plus the
// slot for hourly plans), end is start advanced by the duration.
func (c *Configurator) Period() (time.Time, time.Time) {
	start := c.sel.Date
	if c.plan.BillingUnit == Hour {
		var hour int
		if _, err := fmt.Sscanf(c.sel.Time, "%d:00", &hour); err == nil {
			start = start.Add(time.Duration(hour) * time.Hour)
		}
	}

	n := c.sel.Duration
	var end time.Time
	switch c.plan.BillingUnit {
	case Hour:
		end = start.Add(time.Duration(n) * time.Hour)
	case Week:
		end = start.AddDate(0, 0, 7*n)
	case Month:
		end = start.AddDate(0, n, 0)
	default:
		end = start.AddDate(0, 0, n)
	}
	return start, end
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func saturatingAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	if b < 0 && a < math.MinInt-b {
		return math.MinInt
	}
	return a + b
}
