package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	checkouterrors "bookmyworkspace/internal/checkout/errors"
	"bookmyworkspace/pkg/model"
)

func TestMemorySessionRepository(t *testing.T) {
	now := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	repo := NewMemorySessionRepository(30*time.Minute, func() time.Time { return now })
	ctx := context.Background()

	session := &model.CheckoutSession{ID: "s1", UserID: "u1", WorkspaceName: "The Hive"}
	if err := repo.Save(ctx, session); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindByID(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.WorkspaceName != "The Hive" {
		t.Errorf("unexpected session %+v", got)
	}

	got.WorkspaceName = "mutated"
	again, _ := repo.FindByID(ctx, "s1")
	if again.WorkspaceName != "The Hive" {
		t.Error("store must not share state with callers")
	}

	now = now.Add(31 * time.Minute)
	if _, err := repo.FindByID(ctx, "s1"); !errors.Is(err, checkouterrors.ErrSessionNotFound) {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestMemorySessionRepository_Delete(t *testing.T) {
	repo := NewMemorySessionRepository(time.Minute, nil)
	ctx := context.Background()

	if err := repo.Delete(ctx, "missing"); !errors.Is(err, checkouterrors.ErrSessionNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	_ = repo.Save(ctx, &model.CheckoutSession{ID: "s1"})
	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, "s1"); !errors.Is(err, checkouterrors.ErrSessionNotFound) {
		t.Errorf("expected deleted session to be gone, got %v", err)
	}
}

func TestNewSessionRepository_FallsBackToMemory(t *testing.T) {
	if _, ok := NewSessionRepository(nil, time.Minute).(*MemorySessionRepository); !ok {
		t.Error("expected in-memory repository without redis")
	}
}
