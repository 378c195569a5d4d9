package database

import (
	"context"
	"errors"
	"fmt"
	"translation-api/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned by Load when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Query selects translation records.
type Query struct {
	// Category filters by the category's display name, not its id.
	Category string
	// Key filters by exact translation key when HasKey is set.
	Key    string
	HasKey bool
	// AccessCheck restricts the result to published records.
	AccessCheck bool
	// SortByTitle orders by title instead of id.
	SortByTitle bool
	// Limit caps the number of ids; 0 means unlimited.
	Limit int
}

// TranslationStore is the gorm-backed record store for translations.
type TranslationStore struct {
	db *gorm.DB
}

// NewTranslationStore wraps a database connection.
func NewTranslationStore(db *gorm.DB) *TranslationStore {
	return &TranslationStore{db: db}
}

// Query returns the ids of matching records in store order.
func (s *TranslationStore) Query(ctx context.Context, q Query) ([]uint, error) {
	tx := s.db.WithContext(ctx).Model(&models.Translation{})

	if q.Category != "" {
		tx = tx.Joins("JOIN categories ON categories.id = translations.category_id AND categories.deleted_at IS NULL").
			Where("categories.name = ?", q.Category)
	}
	if q.HasKey {
		tx = tx.Where("translations.translation_key = ?", q.Key)
	}
	if q.AccessCheck {
		tx = tx.Where("translations.published = ?", true)
	}
	if q.SortByTitle {
		tx = tx.Order("translations.title asc").Order("translations.id asc")
	} else {
		tx = tx.Order("translations.id asc")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var ids []uint
	if err := tx.Pluck("translations.id", &ids).Error; err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	return ids, nil
}

// Load returns one record with its category resolved.
func (s *TranslationStore) Load(ctx context.Context, id uint) (*models.Translation, error) {
	var t models.Translation
	err := s.db.WithContext(ctx).Preload("Category").First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load translation %d: %w", id, err)
	}
	return &t, nil
}

// LoadMany returns the records for ids keyed by id. Unknown ids are absent
// from the result.
func (s *TranslationStore) LoadMany(ctx context.Context, ids []uint) (map[uint]*models.Translation, error) {
	out := make(map[uint]*models.Translation, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.Translation
	if err := s.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}
