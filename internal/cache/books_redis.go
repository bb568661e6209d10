package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bookshelf/internal/http-api/models"
)

const (
	bestRatingPrefix = "books:bestrating:list:"
	generationKey    = "books:bestrating:gen"
)

// BookCache keeps the best-rated list in Redis. A nil *BookCache is a valid
// no-op cache so the API runs without Redis.
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookCache connects to redisURL (redis:// or rediss://) and verifies the connection.
func NewBookCache(redisURL string, ttl time.Duration) (*BookCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewBookCacheWithClient(rdb, ttl), nil
}

// NewBookCacheWithClient wraps an existing client.
func NewBookCacheWithClient(client *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{client: client, ttl: ttl}
}

func bestRatingKey(limit int) string {
	return fmt.Sprintf("%s%d", bestRatingPrefix, limit)
}

// GetBestRated returns the cached list; ok is false on a miss.
func (c *BookCache) GetBestRated(ctx context.Context, limit int) ([]models.Book, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, bestRatingKey(limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get best rated: %w", err)
	}

	var books []models.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		// a corrupt entry is treated as a miss and dropped
		c.client.Del(ctx, bestRatingKey(limit))
		return nil, false, nil
	}
	return books, true, nil
}

// Generation returns the invalidation counter. Read it before loading the
// list from the database and pass it to SetBestRated.
func (c *BookCache) Generation(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get cache generation: %w", err)
	}
	return gen, nil
}

// SetBestRated stores the list with the configured TTL, but only while the
// generation still equals gen. A list read before an Invalidate is dropped.
func (c *BookCache) SetBestRated(ctx context.Context, limit int, gen int64, books []models.Book) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode best rated: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, bestRatingKey(limit), raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)
	// the generation moved between WATCH and EXEC
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("set best rated: %w", err)
	}
	return nil
}

// Invalidate bumps the generation, so in-flight fills are discarded, and
// drops every cached best-rated list.
func (c *BookCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	var cursor uint64
	for {
		// SCAN returns keys in batches without blocking
		keys, next, err := c.client.Scan(ctx, cursor, bestRatingPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan best rated keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete best rated keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping reports whether Redis is reachable; always nil for the no-op cache.
func (c *BookCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *BookCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
