package store

import (
	"context"
	"testing"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuote(id, userID, bookID, text string) *domain.Quote {
	return &domain.Quote{
		Syncable: domain.Syncable{ID: id},
		UserID:   userID,
		BookID:   bookID,
		Text:     text,
	}
}

func TestCreateQuote_AndListByBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateQuote(ctx, testQuote("quote-1", "alice", "book-1", "First quote")))
	require.NoError(t, s.CreateQuote(ctx, testQuote("quote-2", "alice", "book-1", "Second quote")))
	require.NoError(t, s.CreateQuote(ctx, testQuote("quote-3", "alice", "book-2", "Other book")))

	quotes, err := s.ListBookQuotes(ctx, "book-1")
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

func TestCreateQuote_Duplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	quote := testQuote("quote-1", "alice", "book-1", "Some text")
	require.NoError(t, s.CreateQuote(ctx, quote))
	assert.ErrorIs(t, s.CreateQuote(ctx, quote), ErrQuoteExists)
}

func TestListUserQuotes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateQuote(ctx, testQuote("quote-1", "alice", "book-1", "Alice quote")))
	require.NoError(t, s.CreateQuote(ctx, testQuote("quote-2", "bob", "book-9", "Bob quote")))

	quotes, err := s.ListUserQuotes(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Alice quote", quotes[0].Text)
}

func TestDeleteQuote(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateQuote(ctx, testQuote("quote-1", "alice", "book-1", "Gone soon")))
	require.NoError(t, s.DeleteQuote(ctx, "quote-1"))

	_, err := s.GetQuote(ctx, "quote-1")
	assert.ErrorIs(t, err, ErrQuoteNotFound)

	quotes, err := s.ListBookQuotes(ctx, "book-1")
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestDeleteQuote_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.DeleteQuote(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestUpdateQuote(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	quote := testQuote("quote-1", "alice", "book-1", "Original text")
	require.NoError(t, s.CreateQuote(ctx, quote))

	quote.Text = "Edited text"
	require.NoError(t, s.UpdateQuote(ctx, quote))

	got, err := s.GetQuote(ctx, "quote-1")
	require.NoError(t, err)
	assert.Equal(t, "Edited text", got.Text)
}

func TestUpdateQuote_NotFound(t *testing.T) {
	s := setupTestStore(t)

	quote := testQuote("quote-missing", "alice", "book-1", "text")
	assert.ErrorIs(t, s.UpdateQuote(context.Background(), quote), ErrQuoteNotFound)
}
