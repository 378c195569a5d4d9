// Package translation serves translation items through a tag-invalidated
// read-through cache.
//
// List entries carry the global list tag plus one tag per contributing record;
// point entries carry only their record's tag. Entries are stored without
// expiry and leave the cache only when one of their tags is invalidated by
// whoever changes the records. This package never invalidates.
package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"translation-api/internal/cache"
	"translation-api/internal/database"
	"translation-api/internal/models"

	"github.com/rs/zerolog"
)

// RecordStore is the read side of translation storage.
type RecordStore interface {
	Query(ctx context.Context, q database.Query) ([]uint, error)
	Load(ctx context.Context, id uint) (*models.Translation, error)
	LoadMany(ctx context.Context, ids []uint) (map[uint]*models.Translation, error)
}

// Service holds the shared collaborators. It is safe for concurrent use;
// per-request state lives in a Session.
type Service struct {
	store  RecordStore
	cache  cache.TagCache
	maxAge int
	logger zerolog.Logger
}

// NewService creates a Service. maxAge is the client cache lifetime in
// seconds advertised by sessions.
func NewService(store RecordStore, tagCache cache.TagCache, maxAge int, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  tagCache,
		maxAge: maxAge,
		logger: logger.With().Str("component", "translation").Logger(),
	}
}

// Session is the request-scoped view of the service. It accumulates the cache
// metadata of every record read on a cache miss.
type Session struct {
	svc  *Service
	meta *CacheMetadata
}

// NewSession starts a request scope with fresh cache metadata.
func (s *Service) NewSession() *Session {
	return &Session{svc: s, meta: NewCacheMetadata(s.maxAge)}
}

// ListCacheKey returns the cache key for a list query. An empty category
// means all categories.
func ListCacheKey(category string) string {
	if category == "" {
		return "list:ALL"
	}
	return "list:" + category
}

// ItemCacheKey returns the cache key for a point lookup.
func ItemCacheKey(key string) string {
	return "item:" + key
}

// ListAll returns the published items, optionally restricted to the category
// with the given display name, in store order. Matching is by name, so
// renaming a category changes which items match. An empty filtered result is
// recomputed on every call.
func (s *Session) ListAll(ctx context.Context, category string) ([]Item, error) {
	cid := ListCacheKey(category)

	var items []Item
	hit, err := s.svc.lookup(ctx, cid, &items)
	if err != nil {
		return nil, err
	}
	if hit {
		return items, nil
	}

	ids, err := s.svc.store.Query(ctx, database.Query{Category: category, AccessCheck: true})
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	records, err := s.svc.store.LoadMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}

	items = make([]Item, 0, len(ids))
	tags := []string{models.TranslationListCacheTag}
	for _, id := range ids {
		r, ok := records[id]
		if !ok {
			// Removed between query and load.
			continue
		}
		items = append(items, s.build(r))
		tags = append(tags, r.CacheTag())
	}

	// Arbitrary category names would each leave a permanent entry that only
	// the list tag clears, so empty filtered results are not stored.
	if category != "" && len(items) == 0 {
		return items, nil
	}
	if err := s.svc.write(ctx, cid, items, tags); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByKey returns the item with the given key, or nil when none exists.
// Duplicate keys resolve to the first record in store order. Not-found
// results are never cached.
func (s *Session) GetByKey(ctx context.Context, key string) (*Item, error) {
	cid := ItemCacheKey(key)

	var item Item
	hit, err := s.svc.lookup(ctx, cid, &item)
	if err != nil {
		return nil, err
	}
	if hit {
		return &item, nil
	}

	ids, err := s.svc.store.Query(ctx, database.Query{Key: key, HasKey: true, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("get translation %q: %w", key, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	r, err := s.svc.store.Load(ctx, ids[0])
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get translation %q: %w", key, err)
	}

	item = s.build(r)
	if err := s.svc.write(ctx, cid, item, []string{r.CacheTag()}); err != nil {
		return nil, err
	}
	return &item, nil
}

// ResponseCacheMetadata returns a snapshot of the accumulated metadata.
func (s *Session) ResponseCacheMetadata() *CacheMetadata {
	return s.meta.Clone()
}

// build projects a record and records it as a response dependency.
func (s *Session) build(r *models.Translation) Item {
	s.meta.AddTags(r.CacheTag())
	return BuildItem(r)
}

// lookup decodes a cached payload into dst. Undecodable entries count as a
// miss and get overwritten by the caller.
func (s *Service) lookup(ctx context.Context, cid string, dst any) (bool, error) {
	payload, ok, err := s.cache.Get(ctx, cid)
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", cid, err)
	}
	if !ok {
		s.logger.Debug().Str("cid", cid).Msg("Cache miss")
		return false, nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		s.logger.Warn().Err(err).Str("cid", cid).Msg("Discarding undecodable cache entry")
		return false, nil
	}
	s.logger.Debug().Str("cid", cid).Msg("Cache hit")
	return true, nil
}

func (s *Service) write(ctx context.Context, cid string, value any, tags []string) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", cid, err)
	}
	if err := s.cache.Set(ctx, cid, payload, cache.Permanent, tags); err != nil {
		return fmt.Errorf("cache set %s: %w", cid, err)
	}
	return nil
}
