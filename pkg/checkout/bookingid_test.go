package checkout

import (
	"sync"
	"testing"
	"time"
)

func TestIDGenerator_Format(t *testing.T) {
	g := NewIDGenerator(fixedClock(time.UnixMilli(1_712_345_678_901)))
	id := g.Next()
	if id != "WS45678901" {
		t.Errorf("expected WS45678901, got %s", id)
	}
	if !IsBookingID(id) {
		t.Errorf("%s should be a valid booking id", id)
	}
}

func TestIDGenerator_ConsecutiveDistinct(t *testing.T) {
	g := NewIDGenerator(fixedClock(testNow))
	prev := g.Next()
	for i := 0; i < 1000; i++ {
		next := g.Next()
		if next == prev {
			t.Fatalf("consecutive ids are equal: %s", next)
		}
		prev = next
	}
}

func TestIDGenerator_ClockGoingBackwards(t *testing.T) {
	current := testNow
	g := NewIDGenerator(func() time.Time { return current })
	first := g.Next()
	current = testNow.Add(-time.Hour)
	second := g.Next()
	if first == second {
		t.Errorf("expected distinct ids after clock moved backwards, both %s", first)
	}
}

func TestIDGenerator_Concurrent(t *testing.T) {
	g := NewIDGenerator(fixedClock(testNow))
	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := g.Next()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %s", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestIsBookingID(t *testing.T) {
	tests := map[string]bool{
		"WS12345678":  true,
		"WS1234567":   false,
		"ws12345678":  false,
		"WS123456789": false,
		"WSabcdefgh":  false,
		"":            false,
	}
	for in, want := range tests {
		if got := IsBookingID(in); got != want {
			t.Errorf("IsBookingID(%q) = %v, want %v", in, got, want)
		}
	}
}
