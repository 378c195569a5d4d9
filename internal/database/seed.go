package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"translation-api/internal/models"

	"gorm.io/gorm"
)

// SeedRecord is one entry of a seed file.
type SeedRecord struct {
	Title     string  `json:"title"`
	Key       string  `json:"key"`
	Category  string  `json:"category"`
	De        *string `json:"de"`
	En        *string `json:"en"`
	Fr        *string `json:"fr"`
	It        *string `json:"it"`
	Published *bool   `json:"published"`
}

// SeedFromFile loads a JSON array of SeedRecord and upserts it.
func SeedFromFile(ctx context.Context, db *gorm.DB, path string) (int, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from operator config
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var records []SeedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	return Seed(ctx, db, records)
}

// Seed upserts records by key, creating categories by name as needed. All
// records are written in one transaction; cache tags are invalidated after it
// commits.
func Seed(ctx context.Context, db *gorm.DB, records []SeedRecord) (int, error) {
	n := 0
	err := Transaction(ctx, db, func(tx *gorm.DB) error {
		for _, r := range records {
			if err := seedOne(tx, r); err != nil {
				return fmt.Errorf("seed record %d: %w", n, err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func seedOne(tx *gorm.DB, r SeedRecord) error {
	if r.Key == "" {
		return errors.New("key is required")
	}

	var categoryID *uint
	if r.Category != "" {
		var cat models.Category
		if err := tx.Where(models.Category{Name: r.Category}).FirstOrCreate(&cat).Error; err != nil {
			return fmt.Errorf("category %q: %w", r.Category, err)
		}
		categoryID = &cat.ID
	}

	var t models.Translation
	err := tx.Where("translation_key = ?", r.Key).First(&t).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup %q: %w", r.Key, err)
	}

	t.Key = r.Key
	t.Title = r.Title
	if t.Title == "" {
		t.Title = r.Key
	}
	t.CategoryID = categoryID
	t.Category = nil
	t.De, t.En, t.Fr, t.It = r.De, r.En, r.Fr, r.It
	t.Published = r.Published == nil || *r.Published

	if err := tx.Save(&t).Error; err != nil {
		return fmt.Errorf("save %q: %w", r.Key, err)
	}
	return nil
}
