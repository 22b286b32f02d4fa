package rates

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/kursbot/core/logger"
)

// CachedProvider wraps a Provider with a Redis read-through cache.
// Cache failures never fail a lookup: on any Redis error the request
// falls through to the underlying source.
type CachedProvider struct {
	src Provider
	rdb *redis.Client
	ttl time.Duration
}

// NewCachedProvider builds a cache in front of src.
func NewCachedProvider(src Provider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedProvider{src: src, rdb: rdb, ttl: ttl}
}

func cacheKey(from, to string) string {
	return fmt.Sprintf("rate:%s:%s", from, to)
}

// Rate implements Provider.
func (p *CachedProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	key := cacheKey(from, to)

	val, err := p.rdb.Get(ctx, key).Result()
	if err == nil {
		if rate, perr := strconv.ParseFloat(val, 64); perr == nil && rate > 0 {
			logger.Debug(ctx, "rates", "cache.lookup",
				slog.String("cache", "hit"), slog.String("pair", from+"/"+to))
			return rate, nil
		}
	} else if err != redis.Nil {
		logger.Warn(ctx, "rates", "cache.error", slog.String("err", err.Error()))
	}

	rate, err := p.src.Rate(ctx, from, to)
	if err != nil {
		return 0, err
	}

	if serr := p.rdb.Set(ctx, key, strconv.FormatFloat(rate, 'f', -1, 64), p.ttl).Err(); serr != nil {
		logger.Warn(ctx, "rates", "cache.error", slog.String("err", serr.Error()))
	}
	logger.Debug(ctx, "rates", "cache.lookup",
		slog.String("cache", "miss"), slog.String("pair", from+"/"+to))
	return rate, nil
}
