package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
)

const gptListKeyPrefix = "gpts:list:"

// CachedGptRepository is a cache-aside decorator over a GptStore.
//
// Behaviour:
//   - ListGpts is served from Redis when the listing for that category is
//     cached, otherwise it is loaded from next and written back with ttl
//   - concurrent misses for the same key share one database load
//   - CreateGpt writes through next and then deletes every cached listing
//   - GetGpt is never cached
//
// Every Redis command (GET, SET, SCAN, DEL) runs through one circuit breaker.
// While the breaker is open the cache is skipped entirely, so a hung Redis
// costs nothing beyond the requests that tripped it. Redis is never required:
// failures fall back to the database.
type CachedGptRepository struct {
	next   GptStore
	rdb    redis.Cmdable
	ttl    time.Duration
	sf     singleflight.Group
	cb     *gobreaker.CircuitBreaker
	logger *zerolog.Logger
}

// NewCachedGptRepository wraps next with a Redis cache. The breaker opens when
// at least half of five or more Redis calls in a 10s window fail, and tries
// Redis again after 30s. A canceled request is not counted as a Redis failure.
func NewCachedGptRepository(next GptStore, rdb redis.Cmdable, ttl time.Duration, logger *zerolog.Logger) *CachedGptRepository {
	st := gobreaker.Settings{
		Name:        "gpt-cache",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache circuit breaker state changed")
		},
	}

	return &CachedGptRepository{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

func gptListKey(category string) string {
	if category == "" {
		return gptListKeyPrefix + "all"
	}
	return gptListKeyPrefix + "category:" + category
}

// ListGpts returns the listing for category ("" for all), from Redis when
// possible.
func (c *CachedGptRepository) ListGpts(ctx context.Context, category string) ([]model.CustomGpt, error) {
	key := gptListKey(category)

	if gpts, ok := c.readCache(ctx, key); ok {
		return gpts, nil
	}

	// The load is shared by every waiter, so one caller going away must not
	// cancel it for the others.
	loadCtx := context.WithoutCancel(ctx)

	result, err, shared := c.sf.Do(key, func() (any, error) {
		gpts, err := c.next.ListGpts(loadCtx, category)
		if err != nil {
			return nil, err
		}
		c.writeCache(loadCtx, key, gpts)
		return gpts, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug().Str("key", key).Msg("shared gpt list load")
	}

	return result.([]model.CustomGpt), nil
}

// readCache returns the cached listing and whether it was a hit.
func (c *CachedGptRepository) readCache(ctx context.Context, key string) ([]model.CustomGpt, bool) {
	val, err := c.cb.Execute(func() (any, error) {
		res, err := c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return res, err
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("gpt cache read failed, using database")
		return nil, false
	}

	raw, ok := val.([]byte)
	if !ok || raw == nil {
		return nil, false
	}

	var gpts []model.CustomGpt
	if err := json.Unmarshal(raw, &gpts); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable gpt cache entry")
		return nil, false
	}
	return gpts, true
}

// writeCache stores a freshly loaded listing. Failures are only logged.
func (c *CachedGptRepository) writeCache(ctx context.Context, key string, gpts []model.CustomGpt) {
	data, err := json.Marshal(gpts)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode gpt list for cache")
		return
	}

	_, err = c.cb.Execute(func() (any, error) {
		return nil, c.rdb.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to write gpt cache")
	}
}

// CreateGpt inserts through the database and invalidates every listing.
func (c *CachedGptRepository) CreateGpt(ctx context.Context, input model.InsertCustomGpt) (*model.CustomGpt, error) {
	gpt, err := c.next.CreateGpt(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := c.Invalidate(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate gpt cache")
	}
	return gpt, nil
}

// GetGpt reads straight from the database.
func (c *CachedGptRepository) GetGpt(ctx context.Context, id int64) (*model.CustomGpt, error) {
	return c.next.GetGpt(ctx, id)
}

// Invalidate deletes every cached listing. With the breaker open it returns
// gobreaker.ErrOpenState without touching Redis; the listings then expire
// through their TTL.
func (c *CachedGptRepository) Invalidate(ctx context.Context) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.deleteListings(ctx)
	})
	return err
}

func (c *CachedGptRepository) deleteListings(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, gptListKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan gpt cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete gpt cache keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
