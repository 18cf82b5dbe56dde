// Package cache keeps geocoding results in Redis so repeated lookups of the
// same business location don't cost a maps request.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/freedome/freedome"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"github.com/freedome/freedome/prom"
	"github.com/freedome/freedome/search"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix = "freedome:geocode:"

	// DefaultTTL is how long a geocoded address is kept.
	DefaultTTL = 30 * 24 * time.Hour
)

// Geocoder is the lookup that fills the cache.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (freedome.Coordinates, error)
}

// GeocodeCache wraps a Geocoder with a Redis cache. Only successful lookups are
// stored. Redis failures fall through to the wrapped Geocoder.
type GeocodeCache struct {
	Client *redis.Client
	Next   Geocoder
	TTL    time.Duration
}

// Key is the cache key for an address. Addresses that differ only in case,
// accents or punctuation share a key.
func Key(address string) string {
	return keyPrefix + strings.Join(search.Tokens(address), " ")
}

// Geocode returns the cached coordinates for address or looks them up.
func (c *GeocodeCache) Geocode(ctx context.Context, address string) (freedome.Coordinates, error) {
	const op errors.Op = "cache.Geocode"

	logger := log.FromContext(ctx)
	key := Key(address)

	data, err := c.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var coords freedome.Coordinates
		if err := json.Unmarshal(data, &coords); err == nil {
			prom.GeocodeCacheHit()
			return coords, nil
		}
		logger.Warn("bad geocode cache entry", zap.String("key", key))
	case err != redis.Nil:
		logger.Warn("geocode cache read failed", zap.Error(err))
	}
	prom.GeocodeCacheMiss()

	coords, err := c.Next.Geocode(ctx, address)
	if err != nil {
		return coords, errors.E(op, err)
	}

	ttl := c.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	data, err = json.Marshal(coords)
	if err != nil {
		return coords, errors.E(op, errors.Internal, err)
	}
	if err := c.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warn("geocode cache write failed", zap.Error(err))
	}

	return coords, nil
}
