package translation

import (
	"sort"
	"translation-api/internal/models"
)

// DefaultMaxAge is the client cache lifetime in seconds advertised on
// cacheable responses.
const DefaultMaxAge = 900

// CacheMetadata accumulates the cache tags and max-age of everything that
// contributed to one response. It is not safe for concurrent use and must not
// outlive the request it was created for.
type CacheMetadata struct {
	tags   map[string]struct{}
	maxAge int
}

// NewCacheMetadata returns metadata seeded with the global list tag.
func NewCacheMetadata(maxAge int) *CacheMetadata {
	m := &CacheMetadata{
		tags:   make(map[string]struct{}),
		maxAge: maxAge,
	}
	m.AddTags(models.TranslationListCacheTag)
	return m
}

// Uncacheable returns metadata that forbids client caching.
func Uncacheable() *CacheMetadata {
	return &CacheMetadata{tags: make(map[string]struct{}), maxAge: 0}
}

// AddTags adds dependency tags.
func (m *CacheMetadata) AddTags(tags ...string) {
	for _, t := range tags {
		m.tags[t] = struct{}{}
	}
}

// AddDependency merges another metadata set: tags are unioned and the lower
// max-age wins.
func (m *CacheMetadata) AddDependency(other *CacheMetadata) {
	for t := range other.tags {
		m.tags[t] = struct{}{}
	}
	if other.maxAge < m.maxAge {
		m.maxAge = other.maxAge
	}
}

// Tags returns the accumulated tags in sorted order.
func (m *CacheMetadata) Tags() []string {
	out := make([]string, 0, len(m.tags))
	for t := range m.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MaxAge returns the advertised client cache lifetime in seconds.
func (m *CacheMetadata) MaxAge() int {
	return m.maxAge
}

// Clone returns an independent copy.
func (m *CacheMetadata) Clone() *CacheMetadata {
	c := &CacheMetadata{tags: make(map[string]struct{}, len(m.tags)), maxAge: m.maxAge}
	for t := range m.tags {
		c.tags[t] = struct{}{}
	}
	return c
}
