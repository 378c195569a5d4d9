// Package invalidation drops cache tags and tells subscribers about it.
package invalidation

import (
	"context"
	"encoding/json"
	"fmt"
	"translation-api/internal/cache"

	"github.com/rs/zerolog"
)

// EventTagsInvalidated is the event type published after tags were dropped.
const EventTagsInvalidated = "cache_tags_invalidated"

// Event is the message broadcast to stream subscribers.
type Event struct {
	Type string   `json:"type"`
	Tags []string `json:"tags"`
}

// Broadcaster delivers a message to every subscriber.
type Broadcaster interface {
	Broadcast(message []byte) int
}

// Service invalidates tags on the cache backend and publishes an Event so
// fronting caches can purge their own copies.
type Service struct {
	cache       cache.TagCache
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewService creates a Service. broadcaster may be nil.
func NewService(tagCache cache.TagCache, broadcaster Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		cache:       tagCache,
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "invalidation").Logger(),
	}
}

// InvalidateTags removes all entries carrying any of the tags.
func (s *Service) InvalidateTags(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	if err := s.cache.InvalidateTags(ctx, tags...); err != nil {
		return fmt.Errorf("invalidate tags: %w", err)
	}

	if s.broadcaster == nil {
		return nil
	}
	msg, err := json.Marshal(Event{Type: EventTagsInvalidated, Tags: tags})
	if err != nil {
		return fmt.Errorf("encode invalidation event: %w", err)
	}
	n := s.broadcaster.Broadcast(msg)
	s.logger.Debug().Strs("tags", tags).Int("subscribers", n).Msg("Published invalidation")
	return nil
}
