package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idempotency:checkin:"

// IdempotencyStore remembers which check-in a client Idempotency-Key produced.
// Key format: idempotency:checkin:<user_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Recall returns the check-in id stored for key, if any.
func (s *IdempotencyStore) Recall(ctx context.Context, key string) (int64, bool, error) {
	val, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency recall: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency recall: corrupt value %q: %w", val, err)
	}
	return id, true, nil
}

// Remember records checkInID for key. An existing entry is kept.
func (s *IdempotencyStore) Remember(ctx context.Context, key string, checkInID int64, ttl time.Duration) error {
	if err := s.client.SetNX(ctx, keyPrefix+key, checkInID, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *IdempotencyStore) Close() error {
	return s.client.Close()
}
