package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// RedisStore implements Store over a Redis client. Every operation goes
// through a circuit breaker so that a dead Redis degrades to cache misses
// instead of stalling each request on a connection timeout.
type RedisStore struct {
	rdb *redis.Client
	cb  *gobreaker.CircuitBreaker
	log zerolog.Logger
}

// NewRedisStore creates a RedisStore with its circuit breaker.
func NewRedisStore(rdb *redis.Client, log zerolog.Logger) *RedisStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Redis-Cache",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Cache circuit breaker state change")
		},
	})

	return &RedisStore{
		rdb: rdb,
		cb:  cb,
		log: log.With().Str("component", "redis_store").Logger(),
	}
}

type getResult struct {
	value string
	found bool
}

// Get returns the value for key, or found=false on absence, breaker-open,
// or any Redis error. A key miss is translated inside the breaker call:
// it is a healthy answer from Redis and must not count as a failure.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		val, err := s.rdb.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return getResult{}, nil
		}
		if err != nil {
			return nil, err
		}
		return getResult{value: val, found: true}, nil
	})
	if err != nil {
		return "", false, err
	}
	r := res.(getResult)
	return r.value, r.found, nil
}

// Set stores value under key with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.rdb.Set(ctx, key, value, ttl).Err()
	})
	return err
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.rdb.Del(ctx, key).Err()
	})
	return err
}
