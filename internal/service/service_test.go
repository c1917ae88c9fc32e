package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/id"
	"github.com/Garbson/LitShelf/internal/localstore"
	"github.com/Garbson/LitShelf/internal/store"
)

// testEnv bundles the stores the services run on in tests.
type testEnv struct {
	store  *store.Store
	local  *localstore.Store
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithOptions(t, store.Options{})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnvWithOptions(t *testing.T, o store.Options) *testEnv {
	t.Helper()

	logger := discardLogger()

	dir := t.TempDir()
	st, err := store.NewWithOptions(filepath.Join(dir, "shelf"), nil, store.NewNoopEmitter(), o)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	local, err := localstore.Open(filepath.Join(dir, "local.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	return &testEnv{store: st, local: local, logger: logger}
}

// createUser stores a user directly and returns it.
func (e *testEnv) createUser(t *testing.T, email, displayName string) *domain.User {
	t.Helper()

	user := &domain.User{
		Syncable:            domain.Syncable{ID: id.NewUserID()},
		Email:               email,
		DisplayName:         displayName,
		AvailableForFriends: true,
	}
	user.InitTimestamps()
	require.NoError(t, e.store.Users.Create(context.Background(), user.ID, user))
	return user
}

// befriend creates an accepted friendship between two users.
func (e *testEnv) befriend(t *testing.T, a, b *domain.User) {
	t.Helper()

	friendship := domain.NewFriendship(a.ID, b.ID)
	friendship.Status = domain.FriendshipAccepted
	require.NoError(t, e.store.CreateFriendship(context.Background(), friendship))
}

// createBook stores a book for a user directly and returns it.
func (e *testEnv) createBook(t *testing.T, userID, title, author string) *domain.Book {
	t.Helper()

	bookID, err := id.Generate("book")
	require.NoError(t, err)

	book := &domain.Book{
		Syncable: domain.Syncable{ID: bookID},
		UserID:   userID,
		Title:    title,
		Author:   author,
	}
	book.InitTimestamps()
	require.NoError(t, e.store.CreateBook(context.Background(), book))
	return book
}

// fakeMetadata is a canned MetadataProvider that counts lookups.
type fakeMetadata struct {
	details *domain.BookDetails
	err     error
	calls   int
}

func (f *fakeMetadata) BestMatch(_ context.Context, _, _ string) (*domain.BookDetails, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

func timePtr(t time.Time) *time.Time { return &t }
