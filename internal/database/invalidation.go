package database

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"translation-api/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Invalidator removes cache entries by tag.
type Invalidator interface {
	InvalidateTags(ctx context.Context, tags ...string) error
}

const affectedKey = "translation_api:affected_translations"

var (
	translationsTable = models.Translation{}.TableName()
	categoriesTable   = models.Category{}.TableName()
)

type invalidationHook struct {
	inv    Invalidator
	logger zerolog.Logger
}

// RegisterInvalidation installs gorm callbacks that invalidate cache tags
// whenever translations or categories are written through db:
//
//   - a translation write invalidates its record tag and the list tag
//   - a category write invalidates the list tag and the record tags of every
//     translation in that category, since the label is part of each item
//
// Tags are invalidated after the statement's own transaction commits. Ids are
// collected before the write so conditional updates and deletes are covered
// too. Writes that belong to a larger transaction must run through
// Transaction, which holds their tags back until the outer commit; a write
// inside a plain db.Transaction is invalidated before its commit, leaving a
// window in which a concurrent read can cache the old row.
func RegisterInvalidation(db *gorm.DB, inv Invalidator, logger zerolog.Logger) error {
	h := &invalidationHook{inv: inv, logger: logger.With().Str("component", "invalidation").Logger()}
	cb := db.Callback()

	steps := []struct {
		name string
		err  error
	}{
		{"update collect", cb.Update().Before("gorm:update").Register("translation_api:collect_update", h.collect)},
		{"delete collect", cb.Delete().Before("gorm:delete").Register("translation_api:collect_delete", h.collect)},
		{"create invalidate", cb.Create().After("gorm:commit_or_rollback_transaction").Register("translation_api:invalidate_create", h.invalidate)},
		{"update invalidate", cb.Update().After("gorm:commit_or_rollback_transaction").Register("translation_api:invalidate_update", h.invalidate)},
		{"delete invalidate", cb.Delete().After("gorm:commit_or_rollback_transaction").Register("translation_api:invalidate_delete", h.invalidate)},
	}
	for _, s := range steps {
		if s.err != nil {
			return fmt.Errorf("register %s callback: %w", s.name, s.err)
		}
	}
	return nil
}

// collect records the translation ids a pending update or delete touches.
func (h *invalidationHook) collect(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}

	switch db.Statement.Schema.Table {
	case translationsTable:
		ids := statementIDs(db)
		if len(ids) == 0 {
			ids = whereIDs(db)
		}
		db.InstanceSet(affectedKey, ids)
	case categoriesTable:
		categoryIDs := statementIDs(db)
		if len(categoryIDs) == 0 {
			categoryIDs = whereIDs(db)
		}
		if len(categoryIDs) == 0 {
			return
		}
		var ids []uint
		err := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Translation{}).
			Where("category_id IN ?", categoryIDs).
			Pluck("id", &ids).Error
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to resolve translations of changed category")
			return
		}
		db.InstanceSet(affectedKey, ids)
	}
}

// invalidate runs after commit and drops the affected cache tags.
func (h *invalidationHook) invalidate(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}

	table := db.Statement.Schema.Table
	if table != translationsTable && table != categoriesTable {
		return
	}

	var ids []uint
	if v, ok := db.InstanceGet(affectedKey); ok {
		ids, _ = v.([]uint)
	} else if table == translationsTable {
		ids = statementIDs(db)
	}

	tags := []string{models.TranslationListCacheTag}
	for _, id := range ids {
		tags = append(tags, models.TranslationCacheTag(id))
	}
	if table == translationsTable && len(ids) == 0 {
		h.logger.Warn().Msg("Could not resolve changed translation ids; only the list tag is invalidated")
	}

	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if p, ok := ctx.Value(pendingKey{}).(*pendingInvalidation); ok {
		p.add(h.inv, tags)
		return
	}
	if _, inTx := db.Statement.ConnPool.(gorm.TxCommitter); inTx {
		h.logger.Warn().Strs("tags", tags).Msg("Invalidating inside an uncommitted transaction; use database.Transaction")
	}
	if err := h.inv.InvalidateTags(ctx, tags...); err != nil {
		// The write has already gone through; all we can do is report it.
		h.logger.Error().Err(err).Strs("tags", tags).Msg("Failed to invalidate cache tags")
		return
	}
	h.logger.Debug().Strs("tags", tags).Msg("Invalidated cache tags")
}

type pendingKey struct{}

// pendingInvalidation collects the tags of writes made inside Transaction.
type pendingInvalidation struct {
	mu   sync.Mutex
	inv  Invalidator
	tags []string
}

func (p *pendingInvalidation) add(inv Invalidator, tags []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inv = inv
	p.tags = append(p.tags, tags...)
}

func (p *pendingInvalidation) flush(ctx context.Context) error {
	p.mu.Lock()
	inv := p.inv
	seen := make(map[string]struct{}, len(p.tags))
	var tags []string
	for _, t := range p.tags {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	p.tags = nil
	p.mu.Unlock()

	if inv == nil || len(tags) == 0 {
		return nil
	}
	if err := inv.InvalidateTags(ctx, tags...); err != nil {
		return fmt.Errorf("invalidate after commit: %w", err)
	}
	return nil
}

// Transaction runs fn in a database transaction. Cache tags of the writes made
// through tx are invalidated once, after the transaction has committed, and
// dropped if it rolls back. Nested calls join the outermost transaction.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if _, ok := ctx.Value(pendingKey{}).(*pendingInvalidation); ok {
		return db.WithContext(ctx).Transaction(fn)
	}

	p := &pendingInvalidation{}
	if err := db.WithContext(context.WithValue(ctx, pendingKey{}, p)).Transaction(fn); err != nil {
		return err
	}
	return p.flush(ctx)
}

// statementIDs extracts non-zero primary keys from the statement's model and
// destination values.
func statementIDs(db *gorm.DB) []uint {
	pk := db.Statement.Schema.PrioritizedPrimaryField
	if pk == nil {
		return nil
	}
	ctx := db.Statement.Context

	seen := make(map[uint]struct{})
	var ids []uint
	add := func(rv reflect.Value) {
		for _, id := range valueIDs(ctx, pk, rv) {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	add(db.Statement.ReflectValue)
	if db.Statement.Model != nil {
		add(reflect.ValueOf(db.Statement.Model))
	}
	return ids
}

func valueIDs(ctx context.Context, pk *schema.Field, rv reflect.Value) []uint {
	rv = reflect.Indirect(rv)
	if !rv.IsValid() {
		return nil
	}

	var ids []uint
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			ids = append(ids, valueIDs(ctx, pk, rv.Index(i))...)
		}
	case reflect.Struct:
		if rv.Type() != pk.Schema.ModelType {
			return nil
		}
		if v, zero := pk.ValueOf(ctx, rv); !zero {
			if id, ok := v.(uint); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// whereIDs resolves the ids matched by the statement's WHERE clause.
func whereIDs(db *gorm.DB) []uint {
	c, ok := db.Statement.Clauses["WHERE"]
	if !ok {
		return nil
	}
	where, ok := c.Expression.(clause.Where)
	if !ok || len(where.Exprs) == 0 {
		return nil
	}

	var ids []uint
	err := db.Session(&gorm.Session{NewDB: true}).
		Table(db.Statement.Table).
		Clauses(where).
		Pluck("id", &ids).Error
	if err != nil {
		return nil
	}
	return ids
}
