package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/isdelr/placeit-be/internal/models"
)

const cacheKeyPrefix = "placeit:geocode:"

// Cached serves repeated queries from Redis before asking the wrapped Geocoder.
// Cache failures are logged and fall through to the upstream. Concurrent
// misses for the same key share one upstream call, which outlives any single
// caller's cancellation and is bounded by timeout instead.
type Cached struct {
	next    Geocoder
	redis   *redis.Client
	ttl     time.Duration
	timeout time.Duration
	flight  singleflight.Group
}

// NewCached wraps next with a Redis cache whose entries live for ttl.
func NewCached(next Geocoder, client *redis.Client, ttl, timeout time.Duration) *Cached {
	return &Cached{next: next, redis: client, ttl: ttl, timeout: timeout}
}

// CacheKey normalizes query into the Redis key used for it.
func CacheKey(query string) string {
	folded := norm.NFC.String(strings.ToLower(query))
	return cacheKeyPrefix + strings.Join(strings.Fields(folded), " ")
}

// Search implements Geocoder.
func (c *Cached) Search(ctx context.Context, query string) (models.Location, error) {
	key := CacheKey(query)

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var loc models.Location
		if err := json.Unmarshal(raw, &loc); err == nil {
			return loc, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable geocode cache entry")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Msg("Geocode cache read failed")
	}

	ch := c.flight.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		loc, err := c.next.Search(shared, query)
		if err != nil {
			return models.Location{}, err
		}
		if payload, err := json.Marshal(loc); err == nil {
			if err := c.redis.Set(shared, key, payload, c.ttl).Err(); err != nil {
				log.Warn().Err(err).Msg("Geocode cache write failed")
			}
		}
		return loc, nil
	})

	select {
	case <-ctx.Done():
		return models.Location{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.Location{}, res.Err
		}
		return res.Val.(models.Location), nil
	}
}

var _ Geocoder = (*Cached)(nil)
