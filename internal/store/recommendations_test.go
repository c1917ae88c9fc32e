package store

import (
	"context"
	"testing"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecommendation(id, senderID, recipientID string) *domain.Recommendation {
	return &domain.Recommendation{
		Syncable:    domain.Syncable{ID: id},
		SenderID:    senderID,
		RecipientID: recipientID,
		BookID:      "book-1",
		BookTitle:   "Dune",
		BookAuthor:  "Frank Herbert",
		Status:      domain.RecommendationPending,
	}
}

func TestCreateRecommendation_AndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRecommendation(ctx, testRecommendation("rec-1", "bob", "alice")))
	require.NoError(t, s.CreateRecommendation(ctx, testRecommendation("rec-2", "carol", "alice")))
	require.NoError(t, s.CreateRecommendation(ctx, testRecommendation("rec-3", "alice", "bob")))

	received, err := s.ListReceivedRecommendations(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, received, 2)

	sent, err := s.ListSentRecommendations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "bob", sent[0].RecipientID)
}

func TestUpdateRecommendation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rec := testRecommendation("rec-1", "bob", "alice")
	require.NoError(t, s.CreateRecommendation(ctx, rec))

	require.True(t, rec.Resolve(domain.RecommendationAccepted))
	require.NoError(t, s.UpdateRecommendation(ctx, rec))

	got, err := s.GetRecommendation(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RecommendationAccepted, got.Status)
	assert.NotNil(t, got.ResolvedAt)
}

func TestUpdateRecommendation_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdateRecommendation(context.Background(), testRecommendation("missing", "bob", "alice"))
	assert.ErrorIs(t, err, ErrRecommendationNotFound)
}

func TestRecommendations_SchemaDisabled(t *testing.T) {
	s := setupTestStoreWithOptions(t, Options{DisableRecommendations: true})
	ctx := context.Background()

	err := s.CreateRecommendation(ctx, testRecommendation("rec-1", "bob", "alice"))
	assert.True(t, IsSchemaMissing(err))

	_, err = s.ListReceivedRecommendations(ctx, "alice")
	assert.True(t, IsSchemaMissing(err))

	_, err = s.GetRecommendation(ctx, "rec-1")
	assert.True(t, IsSchemaMissing(err))

	err = s.UpdateRecommendation(ctx, testRecommendation("rec-1", "bob", "alice"))
	assert.True(t, IsSchemaMissing(err))
}

func TestDeleteRecommendation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rec := testRecommendation("rec-1", "alice", "bob")
	require.NoError(t, s.CreateRecommendation(ctx, rec))

	require.NoError(t, s.DeleteRecommendation(ctx, "rec-1"))

	_, err := s.GetRecommendation(ctx, "rec-1")
	assert.ErrorIs(t, err, ErrRecommendationNotFound)

	received, err := s.ListReceivedRecommendations(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, received)
}
