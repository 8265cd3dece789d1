// Package idempotency makes order submission safe to retry. The first
// request carrying a given Idempotency-Key claims it; later requests with the
// same key within the TTL are reported as duplicates.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 24 * time.Hour

type Store struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewStore(rdb redis.UniversalClient, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(sessionID, key string) string {
	return fmt.Sprintf("idem:submit:%s:%s", sessionID, key)
}

// Claim reports true when this call is the first to use key in the session.
func (s *Store) Claim(ctx context.Context, sessionID, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.Key(sessionID, key), "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return ok, nil
}

// Release gives a claimed key back, used when the submission it guarded was
// rejected and may be retried with the same key.
func (s *Store) Release(ctx context.Context, sessionID, key string) error {
	if err := s.rdb.Del(ctx, s.Key(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
