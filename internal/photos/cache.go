package photos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mindwell-health/practice-api/pkg/logging"
	"github.com/redis/go-redis/v9"
)

// Searcher is the client surface the cache wraps.
type Searcher interface {
	Search(ctx context.Context, query string, page, perPage int) (*SearchResult, error)
}

// CachedSearcher serves repeated queries from Redis. Stock photo results are
// stable enough that a short TTL removes most upstream calls.
type CachedSearcher struct {
	inner  Searcher
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewCachedSearcher(inner Searcher, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedSearcher {
	if inner == nil {
		panic("photos: searcher required")
	}
	if redisClient == nil {
		panic("photos: redis client required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedSearcher{inner: inner, redis: redisClient, ttl: ttl, logger: logger}
}

func cacheKey(query string, page, perPage int) string {
	return fmt.Sprintf("photos:search:%s:%d:%d", strings.ToLower(strings.TrimSpace(query)), page, perPage)
}

// Search checks the cache before the upstream API. Cache failures degrade to
// the upstream call.
func (c *CachedSearcher) Search(ctx context.Context, query string, page, perPage int) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrQueryRequired
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 80 {
		perPage = 15
	}

	key := cacheKey(query, page, perPage)
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cached SearchResult
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		c.logger.Warn("photos cache entry corrupt, refetching", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("photos cache read failed", "error", err)
	}

	result, err := c.inner.Search(ctx, query, page, perPage)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("photos cache write failed", "error", err)
		}
	}
	return result, nil
}
