package memory

import (
	"context"
	"testing"
	"time"

	"fin-query-be/pkg/store"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	ctx := context.Background()

	session := &store.Session{
		ID:     "s-1",
		UserID: "u-1",
		Status: store.StatusAwaitingUser,
		Slots: store.SlotSet{
			TargetEntity: &store.Entity{Normalized: "贵州茅台", Code: "600519"},
		},
		ChaseQuestion: "请问您关注哪个报告期（年份/季度）？",
	}

	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, found, err := repo.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if got.Status != store.StatusAwaitingUser || got.ChaseQuestion != session.ChaseQuestion {
		t.Errorf("Get() = %+v, want the saved session", got)
	}
	if got.Slots.TargetEntity == nil || got.Slots.TargetEntity.Code != "600519" {
		t.Errorf("slots lost on round trip: %+v", got.Slots)
	}
}

func TestSessionRepositoryMissAndDelete(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	ctx := context.Background()

	if _, found, err := repo.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found %v, err %v; want miss without error", found, err)
	}

	session := &store.Session{ID: "s-2", UserID: "u-1", Status: store.StatusCollecting}
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Delete(ctx, "s-2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, _ := repo.Get(ctx, "s-2"); found {
		t.Error("Get() after Delete() still finds the session")
	}
}

func TestSessionRepositoryExpiry(t *testing.T) {
	repo := NewSessionRepository(20 * time.Millisecond)
	ctx := context.Background()

	if err := repo.Save(ctx, &store.Session{ID: "s-3", Status: store.StatusCollecting}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if _, found, _ := repo.Get(ctx, "s-3"); found {
		t.Error("session survived past its TTL")
	}
}
