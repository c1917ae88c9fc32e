package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garbson/LitShelf/internal/domain"
	domainerrors "github.com/Garbson/LitShelf/internal/errors"
)

func duneDetails() *domain.BookDetails {
	return &domain.BookDetails{
		Description:   "The desert planet Arrakis.",
		PageCount:     412,
		Genre:         "Fiction",
		CoverImageURL: "https://books.example.com/dune.jpg",
		GoogleBookID:  "gK98gXR8onwC",
	}
}

func TestAddBookEnriches(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	metadata := &fakeMetadata{details: duneDetails()}
	shelf := NewBookshelfService(env.store, metadata, nil, env.logger)

	book, err := shelf.AddBook(context.Background(), user.ID, AddBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
	})
	require.NoError(t, err)

	assert.Equal(t, 412, book.PageCount)
	assert.Equal(t, "Fiction", book.Genre)
	assert.Equal(t, "gK98gXR8onwC", book.GoogleBookID)
	assert.Equal(t, domain.StatusWishlist, book.Status)
	assert.Equal(t, 1, metadata.calls)
}

func TestAddBookKeepsProvidedFields(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	metadata := &fakeMetadata{details: duneDetails()}
	shelf := NewBookshelfService(env.store, metadata, nil, env.logger)

	book, err := shelf.AddBook(context.Background(), user.ID, AddBookRequest{
		Title:     "Dune",
		Author:    "Frank Herbert",
		PageCount: 500,
		Genre:     "Sci-Fi Classics",
	})
	require.NoError(t, err)

	// Catalog details never overwrite what the user supplied.
	assert.Equal(t, 500, book.PageCount)
	assert.Equal(t, "Sci-Fi Classics", book.Genre)
	assert.Equal(t, "The desert planet Arrakis.", book.Description)
}

func TestAddBookCatalogFailureSoft(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	metadata := &fakeMetadata{err: errors.New("catalog unreachable")}
	shelf := NewBookshelfService(env.store, metadata, nil, env.logger)

	book, err := shelf.AddBook(context.Background(), user.ID, AddBookRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
	})
	require.NoError(t, err)
	assert.Zero(t, book.PageCount)
}

func TestAddBookValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)

	_, err := shelf.AddBook(context.Background(), user.ID, AddBookRequest{Author: "No Title"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestListBooksBackfillPersists(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	env.createBook(t, user.ID, "Dune", "Frank Herbert")

	metadata := &fakeMetadata{details: duneDetails()}
	shelf := NewBookshelfService(env.store, metadata, nil, env.logger)
	ctx := context.Background()

	books, err := shelf.ListBooks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 412, books[0].PageCount)
	assert.Equal(t, 1, metadata.calls)

	// The enriched book was persisted, so a second list does not need
	// the catalog again.
	books, err = shelf.ListBooks(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 412, books[0].PageCount)
	assert.Equal(t, 1, metadata.calls)
}

func TestUpdateBookStatusStampsDates(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	book := env.createBook(t, user.ID, "Dune", "Frank Herbert")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)
	ctx := context.Background()

	reading := int(domain.StatusReading)
	updated, err := shelf.UpdateBook(ctx, user.ID, book.ID, UpdateBookRequest{Status: &reading})
	require.NoError(t, err)
	require.NotNil(t, updated.StartedReadingAt)
	assert.Nil(t, updated.FinishedReadingAt)

	completed := int(domain.StatusCompleted)
	updated, err = shelf.UpdateBook(ctx, user.ID, book.ID, UpdateBookRequest{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.FinishedReadingAt)
}

func TestUpdateBookProgressCompletes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	book := env.createBook(t, user.ID, "Dune", "Frank Herbert")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)
	ctx := context.Background()

	pages := 412
	_, err := shelf.UpdateBook(ctx, user.ID, book.ID, UpdateBookRequest{PageCount: &pages})
	require.NoError(t, err)

	// Reaching the last page moves the book to Completed.
	current := 412
	updated, err := shelf.UpdateBook(ctx, user.ID, book.ID, UpdateBookRequest{CurrentPage: &current})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.NotNil(t, updated.FinishedReadingAt)

	// Partial progress does not.
	book2 := env.createBook(t, user.ID, "Dune Messiah", "Frank Herbert")
	_, err = shelf.UpdateBook(ctx, user.ID, book2.ID, UpdateBookRequest{PageCount: &pages})
	require.NoError(t, err)
	half := 200
	updated, err = shelf.UpdateBook(ctx, user.ID, book2.ID, UpdateBookRequest{CurrentPage: &half})
	require.NoError(t, err)
	assert.NotEqual(t, domain.StatusCompleted, updated.Status)
}

func TestUpdateBookInvalidStatusFallsBack(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	book := env.createBook(t, user.ID, "Dune", "Frank Herbert")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)

	bogus := 99
	updated, err := shelf.UpdateBook(context.Background(), user.ID, book.ID, UpdateBookRequest{Status: &bogus})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWishlist, updated.Status)
}

func TestBookOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Owner")
	other := env.createUser(t, "other@example.com", "Other")
	book := env.createBook(t, owner.ID, "Dune", "Frank Herbert")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)
	ctx := context.Background()

	_, err := shelf.GetBook(ctx, other.ID, book.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = shelf.DeleteBook(ctx, other.ID, book.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestFriendShelfRequiresFriendship(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	env.createBook(t, bob.ID, "Dune", "Frank Herbert")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)
	ctx := context.Background()

	_, err := shelf.FriendShelf(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	env.befriend(t, alice, bob)

	books, err := shelf.FriendShelf(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestAddQuoteDedup(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	book := env.createBook(t, user.ID, "Dune", "Frank Herbert")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)
	ctx := context.Background()

	first, err := shelf.AddQuote(ctx, user.ID, AddQuoteRequest{
		BookID: book.ID,
		Text:   "Fear is the mind-killer.",
	})
	require.NoError(t, err)

	// The exact same text comes back as the existing quote.
	again, err := shelf.AddQuote(ctx, user.ID, AddQuoteRequest{
		BookID: book.ID,
		Text:   "  Fear is the mind-killer.  ",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	quotes, err := shelf.ListBookQuotes(ctx, user.ID, book.ID)
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
}

func TestUpdateQuote(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	book := env.createBook(t, user.ID, "Dune", "Frank Herbert")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)
	ctx := context.Background()

	quote, err := shelf.AddQuote(ctx, user.ID, AddQuoteRequest{BookID: book.ID, Text: "original"})
	require.NoError(t, err)

	text := "edited"
	page := 42
	updated, err := shelf.UpdateQuote(ctx, user.ID, quote.ID, UpdateQuoteRequest{Text: &text, Page: &page})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	require.NotNil(t, updated.Page)
	assert.Equal(t, 42, *updated.Page)
}

func TestDeleteBookCascadesQuotes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "reader@example.com", "Reader")
	book := env.createBook(t, user.ID, "Dune", "Frank Herbert")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)
	ctx := context.Background()

	quote, err := shelf.AddQuote(ctx, user.ID, AddQuoteRequest{BookID: book.ID, Text: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, shelf.DeleteBook(ctx, user.ID, book.ID))

	_, err = shelf.UpdateQuote(ctx, user.ID, quote.ID, UpdateQuoteRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
