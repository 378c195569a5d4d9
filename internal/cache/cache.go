package cache

import (
	"context"
	"errors"
	"time"
)

// Permanent stores an entry without expiry. Such entries only leave the
// cache through tag invalidation.
const Permanent time.Duration = 0

// ErrCacheUnavailable wraps any failure talking to the cache backend.
var ErrCacheUnavailable = errors.New("cache backend unavailable")

// TagCache is a key-value cache for opaque payloads where every entry carries
// a set of dependency tags. Invalidating a tag removes all entries carrying it.
// Implementations must be safe for concurrent use.
type TagCache interface {
	// Get returns the payload and whether it was present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the payload under key with the given tags. A ttl <= 0 means
	// the entry does not expire.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration, tags []string) error

	// InvalidateTags removes every entry carrying at least one of the tags.
	InvalidateTags(ctx context.Context, tags ...string) error
}
