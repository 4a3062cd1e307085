package checkout

import (
	"fmt"
	"regexp"
	"sync"
	"time"
)

var reBookingID = regexp.MustCompile(`^WS\d{8}$`)

// IDGenerator issues confirmation references of the form "WS" + 8 digits,
// taken from the millisecond clock. Issued values are strictly increasing in
// milliseconds, so two calls never return the same reference even when the
// clock has not advanced or moved backwards.
type IDGenerator struct {
	mu     sync.Mutex
	now    Clock
	lastMs int64
}

func NewIDGenerator(now Clock) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.lastMs {
		ms = g.lastMs + 1
	}
	g.lastMs = ms
	return fmt.Sprintf("WS%08d", ms%100_000_000)
}

func IsBookingID(s string) bool {
	return reBookingID.MatchString(s)
}
