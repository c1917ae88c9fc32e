package backup

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "shelf.db")
	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func seedShelf(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	user := &domain.User{
		Syncable:    domain.Syncable{ID: "user-1", CreatedAt: now, UpdatedAt: now},
		Email:       "alice@example.com",
		DisplayName: "Alice",
	}
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	book := &domain.Book{
		Syncable: domain.Syncable{ID: "book-1", CreatedAt: now, UpdatedAt: now},
		UserID:   "user-1",
		Title:    "Dune",
		Author:   "Frank Herbert",
	}
	require.NoError(t, s.CreateBook(ctx, book))

	quote := &domain.Quote{
		Syncable: domain.Syncable{ID: "quote-1", CreatedAt: now, UpdatedAt: now},
		UserID:   "user-1",
		BookID:   "book-1",
		Text:     "Fear is the mind-killer.",
	}
	require.NoError(t, s.CreateQuote(ctx, quote))
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()

	src := setupStore(t)
	seedShelf(t, src)

	backupDir := t.TempDir()
	svc := NewService(src, backupDir, "test-shelf", "dev", discardLogger())

	result, err := svc.Create(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counts.Users)
	assert.Equal(t, 1, result.Counts.Books)
	assert.Equal(t, 1, result.Counts.Quotes)
	assert.NotEmpty(t, result.Checksum)
	assert.Positive(t, result.Size)

	// Restore into an empty database
	dst := setupStore(t)
	restore := NewRestoreService(dst, discardLogger())

	restored, err := restore.Restore(ctx, result.Path, RestoreOptions{})
	require.NoError(t, err)
	assert.Empty(t, restored.Errors)
	assert.Equal(t, 1, restored.Imported["users"])
	assert.Equal(t, 1, restored.Imported["books"])
	assert.Equal(t, 1, restored.Imported["quotes"])

	book, err := dst.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)

	user, err := dst.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.DisplayName)

	quotes, err := dst.ListBookQuotes(ctx, "book-1")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Fear is the mind-killer.", quotes[0].Text)
}

func TestRestoreSkipsExistingEntities(t *testing.T) {
	ctx := context.Background()

	src := setupStore(t)
	seedShelf(t, src)

	svc := NewService(src, t.TempDir(), "test-shelf", "dev", discardLogger())
	result, err := svc.Create(ctx, Options{})
	require.NoError(t, err)

	// Restoring into the source database leaves everything in place.
	restore := NewRestoreService(src, discardLogger())
	restored, err := restore.Restore(ctx, result.Path, RestoreOptions{})
	require.NoError(t, err)

	assert.Empty(t, restored.Errors)
	assert.Zero(t, restored.Imported["books"])
	assert.Equal(t, 1, restored.Skipped["users"])
	assert.Equal(t, 1, restored.Skipped["books"])
	assert.Equal(t, 1, restored.Skipped["quotes"])
}

func TestRestoreDryRun(t *testing.T) {
	ctx := context.Background()

	src := setupStore(t)
	seedShelf(t, src)

	svc := NewService(src, t.TempDir(), "test-shelf", "dev", discardLogger())
	result, err := svc.Create(ctx, Options{})
	require.NoError(t, err)

	dst := setupStore(t)
	restore := NewRestoreService(dst, discardLogger())

	restored, err := restore.Restore(ctx, result.Path, RestoreOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, restored.Imported["books"])

	// Nothing was written
	_, err = dst.GetBook(ctx, "book-1")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	src := setupStore(t)
	seedShelf(t, src)

	svc := NewService(src, t.TempDir(), "test-shelf", "dev", discardLogger())
	result, err := svc.Create(ctx, Options{})
	require.NoError(t, err)

	restore := NewRestoreService(src, discardLogger())
	validation, err := restore.Validate(ctx, result.Path)
	require.NoError(t, err)

	assert.True(t, validation.Valid)
	require.NotNil(t, validation.Manifest)
	assert.Equal(t, FormatVersion, validation.Manifest.Version)
	assert.Equal(t, 1, validation.ExpectedCounts.Books)
}

func TestValidateRejectsGarbage(t *testing.T) {
	restore := NewRestoreService(setupStore(t), discardLogger())

	validation, err := restore.Validate(context.Background(), filepath.Join(t.TempDir(), "missing.zip"))
	require.NoError(t, err)
	assert.False(t, validation.Valid)
	assert.NotEmpty(t, validation.Errors)
}

func TestListGetDelete(t *testing.T) {
	ctx := context.Background()

	src := setupStore(t)
	seedShelf(t, src)

	svc := NewService(src, t.TempDir(), "test-shelf", "dev", discardLogger())
	result, err := svc.Create(ctx, Options{})
	require.NoError(t, err)

	backups, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, result.Path, backups[0].Path)

	info, err := svc.Get(ctx, backups[0].ID)
	require.NoError(t, err)
	assert.Equal(t, result.Size, info.Size)

	require.NoError(t, svc.Delete(ctx, backups[0].ID))

	_, err = svc.Get(ctx, backups[0].ID)
	assert.ErrorIs(t, err, ErrBackupNotFound)

	err = svc.Delete(ctx, backups[0].ID)
	assert.ErrorIs(t, err, ErrBackupNotFound)
}
