package categorize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
	"github.com/redis/go-redis/v9"

	"warmpath/internal/normalize"
)

// Cache memoizes categorizations keyed by normalized title and employer.
// The in-process tier is bounded by TTL and safe to discard at any time;
// an optional redis tier shares classifier results across replicas so the
// same title/employer pair is not re-classified on every node.
type Cache struct {
	tier   *sfcache.TieredCache[string, Categorization]
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// DefaultCacheTTL bounds in-process entries. Titles change slowly;
// a day-scale TTL keeps the cache useful without growing unbounded.
const DefaultCacheTTL = 24 * time.Hour

// NewCache builds the in-process cache tier. TTL <= 0 falls back to the
// default.
func NewCache(ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	tier, err := sfcache.NewTiered[string, Categorization](
		null.New[string, Categorization](),
		sfcache.TTL(ttl),
	)
	if err != nil {
		return nil, fmt.Errorf("create categorization cache: %w", err)
	}
	return &Cache{tier: tier, ttl: ttl, logger: slog.Default()}, nil
}

// WithRedis attaches a shared redis tier. Redis failures degrade to the
// in-process tier; they never fail a categorization.
func (c *Cache) WithRedis(client *redis.Client) *Cache {
	c.redis = client
	return c
}

// Key builds the memoization key for a title/employer pair. Returns ""
// when there is nothing stable to key on; such contacts bypass the cache.
func Key(title, employer string) string {
	nt := normalize.Title(title)
	ne := normalize.CompanyName(employer)
	if nt == "" && ne == "" {
		return ""
	}
	return nt + "|" + ne
}

// GetSet returns the cached categorization for key or computes, stores and
// returns it. Concurrent callers for the same key share one computation.
func (c *Cache) GetSet(ctx context.Context, key string, compute func(ctx context.Context) (Categorization, error)) (Categorization, error) {
	return c.tier.GetSet(ctx, key, func(ctx context.Context) (Categorization, error) {
		if c.redis != nil {
			if cached, err := c.redisGet(ctx, key); err == nil {
				return cached, nil
			}
		}
		result, err := compute(ctx)
		if err != nil {
			return Categorization{}, err
		}
		if c.redis != nil {
			c.redisSet(ctx, key, result)
		}
		return result, nil
	})
}

func (c *Cache) redisGet(ctx context.Context, key string) (Categorization, error) {
	raw, err := c.redis.Get(ctx, "warmpath:categorization:"+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("categorization cache read failed", "err", err)
		}
		return Categorization{}, err
	}
	var result Categorization
	if err := json.Unmarshal(raw, &result); err != nil {
		return Categorization{}, err
	}
	return result, nil
}

func (c *Cache) redisSet(ctx context.Context, key string, result Categorization) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, "warmpath:categorization:"+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("categorization cache write failed", "err", err)
	}
}
