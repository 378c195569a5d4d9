package database_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"translation-api/internal/database"
	"translation-api/internal/models"
	"translation-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestSeed_UpsertsByKey(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	ctx := context.Background()

	n, err := database.Seed(ctx, db, []database.SeedRecord{
		{Key: "hello", Category: "UI", De: testutil.Str("Hallo"), En: testutil.Str("Hello")},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	unpublished := false
	n, err = database.Seed(ctx, db, []database.SeedRecord{
		{Key: "hello", Title: "Greeting", Category: "UI", En: testutil.Str("Hi"), Published: &unpublished},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	var rows []models.Translation
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "Greeting", rows[0].Title)
	require.Equal(t, "Hi", *rows[0].En)
	require.Nil(t, rows[0].De)
	require.False(t, rows[0].Published)

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	require.Equal(t, int64(1), categories)
}

func TestSeed_RequiresKey(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	_, err = database.Seed(context.Background(), db, []database.SeedRecord{{Title: "no key"}})
	require.Error(t, err)
}

func TestSeedFromFile(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"key":"hello","category":"UI","de":"Hallo","en":"Hello","fr":"Bonjour","it":"Ciao"},
		{"key":"bye","category":"UI","de":"Tschüss","en":"Bye","fr":"Au revoir","it":"Ciao ciao"}
	]`), 0o600))

	n, err := database.SeedFromFile(context.Background(), db, path)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = database.SeedFromFile(context.Background(), db, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestSeedFromFile_SampleData(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	n, err := database.SeedFromFile(context.Background(), db, filepath.Join("..", "..", "testdata", "translations.seed.json"))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	store := database.NewTranslationStore(db)
	ids, err := store.Query(context.Background(), database.Query{AccessCheck: true})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	ids, err = store.Query(context.Background(), database.Query{Category: "Legal", AccessCheck: true})
	require.NoError(t, err)
	require.Len(t, ids, 1)
}
