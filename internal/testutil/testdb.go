package testutil

import (
	"translation-api/internal/database"
	"translation-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
// The pool is pinned to one connection; every new connection would otherwise
// open its own empty in-memory database.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database.Models...); err != nil {
		return nil, err
	}
	return db, nil
}

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// SeedCategory creates a category with the given name.
func SeedCategory(db *gorm.DB, name string) (*models.Category, error) {
	c := &models.Category{Name: name}
	if err := db.Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// SeedTranslation creates a published translation in the given category
// (nil for none) with all four languages set.
func SeedTranslation(db *gorm.DB, key string, category *models.Category, de, en, fr, it string) (*models.Translation, error) {
	t := &models.Translation{
		Title:     key,
		Key:       key,
		De:        Str(de),
		En:        Str(en),
		Fr:        Str(fr),
		It:        Str(it),
		Published: true,
	}
	if category != nil {
		t.CategoryID = &category.ID
	}
	if err := db.Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}
