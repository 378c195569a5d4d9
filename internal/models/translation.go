package models

import (
	"strconv"

	"gorm.io/gorm"
)

// TranslationListCacheTag is attached to every list-shaped cache entry.
// Any change to the set of translation records invalidates it.
const TranslationListCacheTag = "translation_item_list"

// Translation represents a single translation record.
type Translation struct {
	gorm.Model
	Title      string    `json:"title" gorm:"not null"`
	Key        string    `json:"key" gorm:"column:translation_key;index;not null"`
	CategoryID *uint     `json:"categoryId" gorm:"column:category_id;index"`
	Category   *Category `json:"category,omitempty"`
	De         *string   `json:"de"`
	En         *string   `json:"en"`
	Fr         *string   `json:"fr"`
	It         *string   `json:"it"`
	Published  bool      `json:"published" gorm:"not null;default:false"`
}

// TableName specifies the table name for Translation Model
func (Translation) TableName() string {
	return "translations"
}

// CacheTag returns the tag that identifies cache entries built from this record.
func (t Translation) CacheTag() string {
	return TranslationCacheTag(t.ID)
}

// CategoryName returns the display name of the referenced category, or nil
// when no category is set or the reference did not resolve.
func (t Translation) CategoryName() *string {
	if t.CategoryID == nil || t.Category == nil {
		return nil
	}
	name := t.Category.Name
	return &name
}

// TranslationCacheTag builds the per-record cache tag for a translation id.
func TranslationCacheTag(id uint) string {
	return "translation:" + strconv.FormatUint(uint64(id), 10)
}
