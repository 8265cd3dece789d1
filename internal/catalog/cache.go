package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const booksKey = "catalog:books"

var ErrCacheMiss = errors.New("cache miss")

type BookCache interface {
	Get(ctx context.Context) ([]Book, error)
	Set(ctx context.Context, books []Book) error
	Delete(ctx context.Context) error
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context) ([]Book, error) {
	data, err := r.client.Get(ctx, booksKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("unmarshal books failed: %w", err)
	}
	return books, nil
}

// Set stores the list for the base TTL plus up to four minutes of jitter so
// replicas do not refetch in lockstep.
func (r RedisCache) Set(ctx context.Context, books []Book) error {
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("marshal books failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, booksKey, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, booksKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
