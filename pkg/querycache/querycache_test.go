package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetch_CachesUntilInvalidated(t *testing.T) {
	c := New(nil, 0)
	key := NewKey("workspaces", "bangalore", 10, 0)

	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"WeWork Galaxy"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(context.Background(), c, key, fetch)
		if err != nil || len(got) != 1 {
			t.Fatalf("Fetch: %v %v", got, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected one fetch, got %d", calls.Load())
	}

	c.Invalidate("workspaces")
	_, _ = Fetch(context.Background(), c, key, fetch)
	if calls.Load() != 2 {
		t.Errorf("expected refetch after invalidate, got %d calls", calls.Load())
	}
}

func TestFetch_DeduplicatesConcurrentCallers(t *testing.T) {
	c := New(nil, 0)
	key := NewKey("bookings", "user-1")

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Fetch(context.Background(), c, key, fetch)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected a single in-flight fetch, got %d", calls.Load())
	}
	for i, r := range results {
		if r != 7 {
			t.Errorf("caller %d got %d", i, r)
		}
	}
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c := New(nil, 0)
	key := NewKey("workspaces", "id", "abc")

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("mongo down")
		}
		return "ok", nil
	}

	if _, err := Fetch(context.Background(), c, key, fetch); err == nil {
		t.Fatal("expected first fetch to fail")
	}
	got, err := Fetch(context.Background(), c, key, fetch)
	if err != nil || got != "ok" {
		t.Errorf("expected recovery on second fetch, got %q %v", got, err)
	}
}

func TestRefetchAndSubscribe(t *testing.T) {
	c := New(nil, 0)
	key := NewKey("workspaces", "featured")

	var notified []any
	var mu sync.Mutex
	unsubscribe := c.Subscribe(key, func(v any, err error) {
		mu.Lock()
		notified = append(notified, v)
		mu.Unlock()
	})

	n := 0
	fetch := func(ctx context.Context) (int, error) {
		n++
		return n, nil
	}

	_, _ = Fetch(context.Background(), c, key, fetch)
	_, _ = Fetch(context.Background(), c, key, fetch)
	got, _ := Refetch(context.Background(), c, key, fetch)
	if got != 2 {
		t.Errorf("expected refetch to produce a fresh value, got %d", got)
	}

	unsubscribe()
	_, _ = Refetch(context.Background(), c, key, fetch)

	mu.Lock()
	defer mu.Unlock()
	if len(notified) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(notified))
	}
}

func TestInvalidate_DropsInFlightResult(t *testing.T) {
	c := New(nil, 0)
	key := NewKey("workspaces", "all")

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = Fetch(context.Background(), c, key, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	c.Invalidate("workspaces")
	close(release)
	time.Sleep(20 * time.Millisecond)

	if c.Len() != 0 {
		t.Error("result fetched before invalidation must not be cached")
	}
}

func TestTTL(t *testing.T) {
	c := New(nil, time.Minute)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	key := NewKey("workspaces", "x")

	calls := 0
	fetch := func(ctx context.Context) (int, error) { calls++; return calls, nil }

	_, _ = Fetch(context.Background(), c, key, fetch)
	now = now.Add(2 * time.Minute)
	got, _ := Fetch(context.Background(), c, key, fetch)
	if got != 2 {
		t.Errorf("expected expired entry to be refetched, got %d", got)
	}
}

func TestLoad_RefreshContext(t *testing.T) {
	c := New(nil, 0)
	key := NewKey("bookings", "user", "u1", 20, 0)

	calls := 0
	fetch := func(ctx context.Context) (int, error) { calls++; return calls, nil }

	_, _ = Load(context.Background(), c, key, fetch)
	got, _ := Load(context.Background(), c, key, fetch)
	if got != 1 {
		t.Fatalf("expected cached value, got %d", got)
	}

	ctx := WithRefresh(context.Background())
	if !RefreshRequested(ctx) || RefreshRequested(context.Background()) {
		t.Fatal("refresh marker not carried by context")
	}
	got, _ = Load(ctx, c, key, fetch)
	if got != 2 {
		t.Errorf("expected refreshed value, got %d", got)
	}
	got, _ = Load(context.Background(), c, key, fetch)
	if got != 2 {
		t.Errorf("expected refreshed value to be cached, got %d", got)
	}
}

func TestInvalidateKey(t *testing.T) {
	c := New(nil, 0)
	owner := NewKey("workspaces.owner", "o1")
	other := NewKey("workspaces.owner", "o2")

	_, _ = Fetch(context.Background(), c, owner, func(ctx context.Context) (string, error) { return "a", nil })
	_, _ = Fetch(context.Background(), c, other, func(ctx context.Context) (string, error) { return "b", nil })

	c.InvalidateKey(owner)
	if c.Len() != 1 {
		t.Fatalf("expected only the other key to stay cached, got %d entries", c.Len())
	}

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Fetch(context.Background(), c, owner, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	c.InvalidateKey(owner)
	close(release)
	<-done

	got, _ := Fetch(context.Background(), c, owner, func(ctx context.Context) (string, error) { return "fresh", nil })
	if got != "fresh" {
		t.Errorf("result fetched before key invalidation must not be cached, got %q", got)
	}
}

func TestSubscribers(t *testing.T) {
	c := New(nil, 0)
	key := NewKey("workspaces.owner", "o1")

	first := c.Subscribe(key, func(any, error) {})
	second := c.Subscribe(key, func(any, error) {})
	if c.Subscribers(key) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", c.Subscribers(key))
	}
	first()
	second()
	if c.Subscribers(key) != 0 {
		t.Errorf("expected no subscribers, got %d", c.Subscribers(key))
	}
}
