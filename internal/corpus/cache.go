// internal/corpus/cache.go
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/common/metrics"
	"gematria-workers/internal/gematria"
)

const valueKeyPrefix = "gematria:values:"

// ValueCache memoizes full ValueVectors in Redis. Redis failures are
// logged and the value is computed directly, so a cache outage never fails
// a lookup.
type ValueCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    logger.Logger
}

// NewValueCache returns a cache; a nil client disables caching.
func NewValueCache(client redis.Cmdable, ttl time.Duration, log logger.Logger) *ValueCache {
	return &ValueCache{client: client, ttl: ttl, log: log}
}

func ValueKey(token string) string { return valueKeyPrefix + token }

// Values returns token's values under systems.
func (c *ValueCache) Values(ctx context.Context, token string, systems []gematria.NumeralSystem) gematria.ValueVector {
	if c == nil || c.client == nil {
		return gematria.ComputeValues(token, systems)
	}

	key := ValueKey(token)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached gematria.ValueVector
		if jerr := json.Unmarshal(raw, &cached); jerr == nil && cached.Covers(systems) {
			metrics.ValueCacheLookups.WithLabelValues("hit").Inc()
			return cached.Project(systems)
		}
		metrics.ValueCacheLookups.WithLabelValues("miss").Inc()
	} else if errors.Is(err, redis.Nil) {
		metrics.ValueCacheLookups.WithLabelValues("miss").Inc()
	} else {
		metrics.ValueCacheLookups.WithLabelValues("error").Inc()
		c.log.Warn("value cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	all := gematria.ComputeAll(token)
	if data, jerr := json.Marshal(all); jerr == nil {
		if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.log.Warn("value cache write failed", map[string]interface{}{
				"key":   key,
				"error": serr.Error(),
			})
		}
	}
	return all.Project(systems)
}
