package database_test

import (
	"context"
	"testing"

	"translation-api/internal/database"
	"translation-api/internal/models"
	"translation-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestTranslationStore_QueryAndLoad(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	ctx := context.Background()

	ui, err := testutil.SeedCategory(db, "UI")
	require.NoError(t, err)
	legal, err := testutil.SeedCategory(db, "Legal")
	require.NoError(t, err)

	hello, err := testutil.SeedTranslation(db, "hello", ui, "Hallo", "Hello", "Bonjour", "Ciao")
	require.NoError(t, err)
	_, err = testutil.SeedTranslation(db, "terms", legal, "AGB", "Terms", "CGV", "Termini")
	require.NoError(t, err)
	draft := &models.Translation{Title: "draft", Key: "draft", Published: false}
	require.NoError(t, db.Create(draft).Error)

	store := database.NewTranslationStore(db)

	ids, err := store.Query(ctx, database.Query{AccessCheck: true})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	ids, err = store.Query(ctx, database.Query{})
	require.NoError(t, err)
	require.Len(t, ids, 3, "without access check unpublished records are included")

	ids, err = store.Query(ctx, database.Query{Category: "UI", AccessCheck: true})
	require.NoError(t, err)
	require.Equal(t, []uint{hello.ID}, ids)

	ids, err = store.Query(ctx, database.Query{Key: "draft", HasKey: true, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []uint{draft.ID}, ids)

	loaded, err := store.Load(ctx, hello.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", loaded.Key)
	require.NotNil(t, loaded.CategoryName())
	require.Equal(t, "UI", *loaded.CategoryName())

	_, err = store.Load(ctx, 9999)
	require.ErrorIs(t, err, database.ErrNotFound)

	many, err := store.LoadMany(ctx, []uint{hello.ID, draft.ID, 9999})
	require.NoError(t, err)
	require.Len(t, many, 2)
	require.Nil(t, many[draft.ID].CategoryName())
}

func TestTranslationStore_SortByTitle(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	for _, title := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, db.Create(&models.Translation{Title: title, Key: title, Published: true}).Error)
	}

	store := database.NewTranslationStore(db)
	ids, err := store.Query(context.Background(), database.Query{AccessCheck: true, SortByTitle: true})
	require.NoError(t, err)

	rows, err := store.LoadMany(context.Background(), ids)
	require.NoError(t, err)
	var titles []string
	for _, id := range ids {
		titles = append(titles, rows[id].Title)
	}
	require.Equal(t, []string{"alpha", "mid", "zeta"}, titles)
}

func TestTranslationStore_DeletedCategoryDoesNotResolve(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	ui, err := testutil.SeedCategory(db, "UI")
	require.NoError(t, err)
	tr, err := testutil.SeedTranslation(db, "hello", ui, "Hallo", "Hello", "Bonjour", "Ciao")
	require.NoError(t, err)
	require.NoError(t, db.Delete(ui).Error)

	store := database.NewTranslationStore(db)
	loaded, err := store.Load(context.Background(), tr.ID)
	require.NoError(t, err)
	require.Nil(t, loaded.CategoryName())

	ids, err := store.Query(context.Background(), database.Query{Category: "UI"})
	require.NoError(t, err)
	require.Empty(t, ids)
}
