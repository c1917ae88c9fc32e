package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, nil, NewNoopEmitter())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func setupTestStoreWithOptions(t *testing.T, o Options) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewWithOptions(dbPath, nil, NewNoopEmitter(), o)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func testBook(id, userID string) *domain.Book {
	now := time.Now()
	return &domain.Book{
		Syncable: domain.Syncable{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:    userID,
		Title:     "Dune",
		Author:    "Frank Herbert",
		Genre:     "Science Fiction",
		PageCount: 412,
		Status:    domain.StatusWishlist,
	}
}

func testUser(id, email string) *domain.User {
	now := time.Now()
	return &domain.User{
		Syncable: domain.Syncable{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:       email,
		DisplayName: "Test User",
	}
}
