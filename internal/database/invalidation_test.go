package database_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"translation-api/internal/database"
	"translation-api/internal/models"
	"translation-api/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type spyInvalidator struct {
	mu    sync.Mutex
	calls [][]string
}

func (s *spyInvalidator) InvalidateTags(_ context.Context, tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]string(nil), tags...))
	return nil
}

func (s *spyInvalidator) last() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

func (s *spyInvalidator) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func newInvalidatingDB(t *testing.T) (*gorm.DB, *spyInvalidator) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	spy := &spyInvalidator{}
	require.NoError(t, database.RegisterInvalidation(db, spy, zerolog.Nop()))
	return db, spy
}

func TestInvalidation_TranslationCreateAndUpdate(t *testing.T) {
	db, spy := newInvalidatingDB(t)

	tr, err := testutil.SeedTranslation(db, "hello", nil, "Hallo", "Hello", "Bonjour", "Ciao")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{models.TranslationListCacheTag, tr.CacheTag()}, spy.last())

	spy.reset()
	require.NoError(t, db.Model(tr).Update("en", "Hi").Error)
	require.ElementsMatch(t, []string{models.TranslationListCacheTag, tr.CacheTag()}, spy.last())
}

func TestInvalidation_ConditionalDeleteResolvesIDs(t *testing.T) {
	db, spy := newInvalidatingDB(t)

	_, err := testutil.SeedTranslation(db, "hello", nil, "Hallo", "Hello", "Bonjour", "Ciao")
	require.NoError(t, err)
	bye, err := testutil.SeedTranslation(db, "bye", nil, "Tschüss", "Bye", "Au revoir", "Ciao ciao")
	require.NoError(t, err)

	spy.reset()
	require.NoError(t, db.Where("translation_key = ?", "bye").Delete(&models.Translation{}).Error)
	require.ElementsMatch(t, []string{models.TranslationListCacheTag, bye.CacheTag()}, spy.last())
}

func TestInvalidation_CategoryRenameInvalidatesMembers(t *testing.T) {
	db, spy := newInvalidatingDB(t)

	legal, err := testutil.SeedCategory(db, "Legal")
	require.NoError(t, err)
	terms, err := testutil.SeedTranslation(db, "terms", legal, "AGB", "Terms", "CGV", "Termini")
	require.NoError(t, err)
	_, err = testutil.SeedTranslation(db, "hello", nil, "Hallo", "Hello", "Bonjour", "Ciao")
	require.NoError(t, err)

	spy.reset()
	require.NoError(t, db.Model(legal).Update("name", "Law").Error)
	require.ElementsMatch(t, []string{models.TranslationListCacheTag, terms.CacheTag()}, spy.last())
}

func TestInvalidation_FailedWriteDoesNotInvalidate(t *testing.T) {
	db, spy := newInvalidatingDB(t)

	_, err := testutil.SeedCategory(db, "UI")
	require.NoError(t, err)
	spy.reset()

	// Duplicate name violates the unique index.
	err = db.Create(&models.Category{Name: "UI"}).Error
	require.Error(t, err)
	require.Empty(t, spy.calls)
}

func TestTransaction_InvalidatesAfterCommit(t *testing.T) {
	db, spy := newInvalidatingDB(t)
	ctx := context.Background()

	tr, err := testutil.SeedTranslation(db, "hello", nil, "Hallo", "Hello", "Bonjour", "Ciao")
	require.NoError(t, err)
	spy.reset()

	err = database.Transaction(ctx, db, func(tx *gorm.DB) error {
		require.NoError(t, tx.Model(tr).Update("en", "Hi").Error)
		require.NoError(t, tx.Model(&models.Translation{}).Where("id = ?", tr.ID).Update("de", "Servus").Error)
		require.Empty(t, spy.calls, "nothing may be invalidated before the commit")
		return nil
	})
	require.NoError(t, err)

	require.Len(t, spy.calls, 1)
	require.ElementsMatch(t, []string{models.TranslationListCacheTag, tr.CacheTag()}, spy.last())
}

func TestTransaction_RollbackDoesNotInvalidate(t *testing.T) {
	db, spy := newInvalidatingDB(t)
	ctx := context.Background()

	tr, err := testutil.SeedTranslation(db, "hello", nil, "Hallo", "Hello", "Bonjour", "Ciao")
	require.NoError(t, err)
	spy.reset()

	errAbort := errors.New("abort")
	err = database.Transaction(ctx, db, func(tx *gorm.DB) error {
		require.NoError(t, tx.Model(tr).Update("en", "Hi").Error)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	require.Empty(t, spy.calls)

	var reloaded models.Translation
	require.NoError(t, db.First(&reloaded, tr.ID).Error)
	require.Equal(t, "Hello", *reloaded.En)
}

func TestTransaction_NestedJoinsOuter(t *testing.T) {
	db, spy := newInvalidatingDB(t)
	ctx := context.Background()

	a, err := testutil.SeedTranslation(db, "a", nil, "", "A", "", "")
	require.NoError(t, err)
	b, err := testutil.SeedTranslation(db, "b", nil, "", "B", "", "")
	require.NoError(t, err)
	spy.reset()

	err = database.Transaction(ctx, db, func(tx *gorm.DB) error {
		require.NoError(t, tx.Model(a).Update("en", "A2").Error)
		return database.Transaction(tx.Statement.Context, tx, func(inner *gorm.DB) error {
			return inner.Model(b).Update("en", "B2").Error
		})
	})
	require.NoError(t, err)

	require.Len(t, spy.calls, 1)
	require.ElementsMatch(t, []string{models.TranslationListCacheTag, a.CacheTag(), b.CacheTag()}, spy.last())
}
