package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb, zerolog.Nop())
}

func TestRedisStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t)

	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found, err := s.Get(ctx, "k")
	if err != nil || !found || got != "v" {
		t.Fatalf("Get = (%q, %v, %v), want (v, true, nil)", got, found, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, err := s.Get(ctx, "k"); err != nil || found {
		t.Fatalf("Get after delete = (found=%v, err=%v), want miss", found, err)
	}
}

func TestRedisStoreMissesDoNotOpenBreaker(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t)

	// Repeated misses against a healthy Redis are ordinary answers and
	// must never trip the circuit breaker.
	for i := 0; i < 5; i++ {
		val, found, err := s.Get(ctx, "ausente")
		if err != nil {
			t.Fatalf("Get #%d: %v", i, err)
		}
		if found || val != "" {
			t.Fatalf("Get #%d = (%q, %v), want miss", i, val, found)
		}
	}

	// The store keeps accepting writes afterwards.
	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set after misses: %v", err)
	}
	got, found, err := s.Get(ctx, "k")
	if err != nil || !found || got != "v" {
		t.Fatalf("Get = (%q, %v, %v), want (v, true, nil)", got, found, err)
	}
}
