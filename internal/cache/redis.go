package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBackend is a TagCache shared between server replicas. Each entry is a
// plain string key; each tag is a Redis set holding the keys that carry it.
//
// Tag sets are not pruned when an entry is removed through another tag, so an
// invalidation may delete a key that no longer depends on the tag. That only
// ever causes an extra miss.
type RedisBackend struct {
	client    *redis.Client
	keyPrefix string
	logger    zerolog.Logger
}

// NewRedisBackend connects to the Redis server at url and pings it.
func NewRedisBackend(ctx context.Context, url, keyPrefix string, logger zerolog.Logger) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping redis: %v", ErrCacheUnavailable, err)
	}

	logger.Info().Str("redis_address", opts.Addr).Msg("Connected to Redis")
	return NewRedisBackendFromClient(client, keyPrefix, logger), nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *redis.Client, keyPrefix string, logger zerolog.Logger) *RedisBackend {
	if keyPrefix == "" {
		keyPrefix = "translation_api:"
	}
	return &RedisBackend{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger.With().Str("component", "RedisBackend").Logger(),
	}
}

func (c *RedisBackend) entryKey(key string) string { return c.keyPrefix + "entry:" + key }
func (c *RedisBackend) tagKey(tag string) string   { return c.keyPrefix + "tag:" + tag }

// Get implements TagCache.Get.
func (c *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		cacheMisses.WithLabelValues(backendRedis).Inc()
		return nil, false, nil
	}
	if err != nil {
		cacheErrors.WithLabelValues(backendRedis, "get").Inc()
		c.logger.Error().Err(err).Str("key", key).Msg("Redis get failed")
		return nil, false, fmt.Errorf("%w: redis get: %v", ErrCacheUnavailable, err)
	}
	cacheHits.WithLabelValues(backendRedis).Inc()
	return data, true, nil
}

// Set implements TagCache.Set. The entry and its tag memberships are written
// in one MULTI/EXEC transaction so an invalidation never sees one without the
// other.
func (c *RedisBackend) Set(ctx context.Context, key string, payload []byte, ttl time.Duration, tags []string) error {
	if ttl < 0 {
		ttl = Permanent
	}
	entryKey := c.entryKey(key)

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entryKey, string(payload), ttl)
		for _, tag := range dedupe(tags) {
			pipe.SAdd(ctx, c.tagKey(tag), entryKey)
		}
		return nil
	})
	if err != nil {
		cacheErrors.WithLabelValues(backendRedis, "set").Inc()
		c.logger.Error().Err(err).Str("key", key).Msg("Redis set failed")
		return fmt.Errorf("%w: redis set: %v", ErrCacheUnavailable, err)
	}

	cacheWrites.WithLabelValues(backendRedis).Inc()
	c.logger.Debug().Str("key", key).Strs("tags", tags).Msg("Stored entry in Redis")
	return nil
}

// invalidateTagScript reads a tag set and deletes its members together with
// the set itself. Running it as one script keeps a concurrent SADD from
// landing between the read and the delete, which would strip the membership
// of an entry that is still stored.
//
// Member keys are not declared in KEYS, so the script needs a single-node
// Redis (or all keys in one hash slot).
const invalidateTagLua = `
local members = redis.call('SMEMBERS', KEYS[1])
for i = 1, #members, 500 do
	redis.call('DEL', unpack(members, i, math.min(i + 499, #members)))
end
redis.call('DEL', KEYS[1])
return #members
`

var invalidateTagScript = redis.NewScript(invalidateTagLua)

// InvalidateTags implements TagCache.InvalidateTags. Each tag is dropped
// atomically.
func (c *RedisBackend) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		n, err := invalidateTagScript.Run(ctx, c.client, []string{c.tagKey(tag)}).Int()
		if err != nil {
			cacheErrors.WithLabelValues(backendRedis, "invalidate").Inc()
			return fmt.Errorf("%w: redis invalidate %s: %v", ErrCacheUnavailable, tag, err)
		}
		cacheInvalidations.WithLabelValues(backendRedis).Inc()
		c.logger.Debug().Str("tag", tag).Int("entries", n).Msg("Invalidated tag")
	}
	return nil
}

// Ping tests the Redis connection.
func (c *RedisBackend) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisBackend) Close() error {
	return c.client.Close()
}

var _ TagCache = (*RedisBackend)(nil)
