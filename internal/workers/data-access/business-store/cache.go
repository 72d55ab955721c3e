package businessstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wenwen-recommender/internal/common/metrics"
	"wenwen-recommender/internal/models"
)

// CachedFinder is a cache-aside layer over a BusinessFinder. Empty results
// are cached too. A Redis failure falls through to the source.
type CachedFinder struct {
	source BusinessFinder
	redis  redis.Cmdable
	ttl    time.Duration
	prefix string
	logger Logger
}

func NewCachedFinder(source BusinessFinder, client redis.Cmdable, config *Config, log Logger) *CachedFinder {
	prefix := config.CachePrefix
	if prefix == "" {
		prefix = "biz"
	}
	return &CachedFinder{
		source: source,
		redis:  client,
		ttl:    config.CacheTTL,
		prefix: prefix,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"backend":  "redis",
		}),
	}
}

// CacheKey is prefix:op:arg:limit.
func (c *CachedFinder) CacheKey(op models.Operation, arg string, limit int) string {
	return fmt.Sprintf("%s:%s:%s:%d", c.prefix, op, arg, limit)
}

func (c *CachedFinder) FindBusinessesByCategory(ctx context.Context, category string, limit int) ([]models.BusinessRecord, error) {
	return c.lookup(ctx, models.OpFindBusinessesByCategory, category, limit, func() ([]models.BusinessRecord, error) {
		return c.source.FindBusinessesByCategory(ctx, category, limit)
	})
}

func (c *CachedFinder) FindBusinessByName(ctx context.Context, name string) ([]models.BusinessRecord, error) {
	return c.lookup(ctx, models.OpFindBusinessByName, name, 1, func() ([]models.BusinessRecord, error) {
		return c.source.FindBusinessByName(ctx, name)
	})
}

func (c *CachedFinder) FindPartnerBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return c.lookup(ctx, models.OpFindPartnerBusinesses, "", limit, func() ([]models.BusinessRecord, error) {
		return c.source.FindPartnerBusinesses(ctx, limit)
	})
}

func (c *CachedFinder) FindTopBusinesses(ctx context.Context, limit int) ([]models.BusinessRecord, error) {
	return c.lookup(ctx, models.OpFindTopBusinesses, "", limit, func() ([]models.BusinessRecord, error) {
		return c.source.FindTopBusinesses(ctx, limit)
	})
}

func (c *CachedFinder) lookup(ctx context.Context, op models.Operation, arg string, limit int, load func() ([]models.BusinessRecord, error)) ([]models.BusinessRecord, error) {
	key := c.CacheKey(op, arg, limit)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var records []models.BusinessRecord
		if jsonErr := json.Unmarshal([]byte(val), &records); jsonErr == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			if records == nil {
				records = []models.BusinessRecord{}
			}
			return records, nil
		}
		metrics.CacheLookups.WithLabelValues("corrupt").Inc()
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache read failed, using source", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	records, err := load()
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.BusinessRecord{}
	}

	data, err := json.Marshal(records)
	if err == nil {
		err = c.redis.Set(ctx, key, data, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return records, nil
}
