package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != "v" {
		t.Errorf("Get = (%q, %v), want (%q, true)", got, ok, "v")
	}
}

func TestMemoryStoreMiss(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected miss for absent key")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now()
	clock := base
	s.now = func() time.Time { return clock }

	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Just before the deadline the entry is still live.
	clock = base.Add(59 * time.Second)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("entry expired too early")
	}

	// At the deadline the entry is gone.
	clock = base.Add(time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("entry should have expired")
	}

	// And stays gone even if the clock rewinds (lazy deletion removed it).
	clock = base
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expired entry should have been deleted")
	}
}

func TestMemoryStoreNoTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now()
	clock := base
	s.now = func() time.Time { return clock }

	if err := s.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	clock = base.Add(24 * time.Hour)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Error("entry without TTL should not expire")
	}
}

func TestMemoryStoreExpiryKeepsConcurrentRefresh(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Now()
	s.now = func() time.Time { return base }
	if err := s.Set(ctx, "k", "old", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Interleave a writer refreshing the key at the exact moment the
	// reader decides the old entry is expired. The lazy deletion must
	// not throw away the refreshed entry.
	late := base.Add(2 * time.Minute)
	refreshed := false
	s.now = func() time.Time {
		if !refreshed {
			refreshed = true
			s.entries["k"] = memoryEntry{value: "new", expiresAt: late.Add(time.Hour)}
		}
		return late
	}

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("read of the expired entry should miss")
	}

	got, ok, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != "new" {
		t.Errorf("Get = (%q, %v), want (%q, true); refreshed entry was dropped", got, ok, "new")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Set(ctx, "k", "v", 0)
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("deleted key should miss")
	}
}
