package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	checkouterrors "bookmyworkspace/internal/checkout/errors"
	"bookmyworkspace/pkg/model"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "checkout:session:"

// SessionRepository stores open booking dialogs. Sessions expire after the
// configured TTL, counted from the last save.
type SessionRepository interface {
	Save(ctx context.Context, session *model.CheckoutSession) error
	FindByID(ctx context.Context, id string) (*model.CheckoutSession, error)
	Delete(ctx context.Context, id string) error
}

// NewSessionRepository uses Redis when a client is configured and falls back
// to process memory otherwise.
func NewSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	if rdb != nil {
		return NewRedisSessionRepository(rdb, ttl)
	}
	return NewMemorySessionRepository(ttl, time.Now)
}

type RedisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *model.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+session.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) FindByID(ctx context.Context, id string) (*model.CheckoutSession, error) {
	data, err := r.rdb.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, checkouterrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}

	var session model.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	if n == 0 {
		return checkouterrors.ErrSessionNotFound
	}
	return nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process. Entries are stored
// encoded so callers never share mutable state with the store.
type MemorySessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

func NewMemorySessionRepository(ttl time.Duration, now func() time.Time) *MemorySessionRepository {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionRepository{
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]memoryEntry),
	}
}

func (r *MemorySessionRepository) Save(_ context.Context, session *model.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictExpired()
	r.sessions[session.ID] = memoryEntry{data: data, expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *MemorySessionRepository) FindByID(_ context.Context, id string) (*model.CheckoutSession, error) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if ok && !r.now().Before(entry.expiresAt) {
		delete(r.sessions, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, checkouterrors.ErrSessionNotFound
	}

	var session model.CheckoutSession
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return checkouterrors.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepository) evictExpired() {
	now := r.now()
	for id, entry := range r.sessions {
		if !now.Before(entry.expiresAt) {
			delete(r.sessions, id)
		}
	}
}
