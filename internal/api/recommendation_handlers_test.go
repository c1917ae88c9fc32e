package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndAcceptRecommendation(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")

	ts.befriend(t, aliceToken, bobToken, aliceID, bobID)
	bookID := ts.addBook(t, aliceToken, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/recommendations",
		"Authorization: Bearer "+aliceToken,
		map[string]any{
			"recipient_ids": []string{bobID},
			"book_id":       bookID,
			"message":       "You will love this one.",
		},
	)
	require.Equal(t, http.StatusOK, resp.Code, "send failed: %s", resp.Body.String())

	created := decodeEnvelope[ListRecommendationsResponse](t, resp)
	require.Len(t, created.Data.Recommendations, 1)
	sent := created.Data.Recommendations[0]
	assert.Equal(t, "pending", sent.Status)
	assert.Equal(t, "Dune", sent.BookTitle)
	assert.Equal(t, "You will love this one.", sent.Message)

	// Bob sees it pending.
	resp = ts.api.Get("/api/v1/recommendations/pending/count", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)
	count := decodeEnvelope[PendingCountResponse](t, resp)
	assert.Equal(t, 1, count.Data.Count)

	// Accepting adds a wishlist copy to Bob's shelf.
	resp = ts.api.Post("/api/v1/recommendations/"+sent.ID+"/accept",
		"Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)

	accepted := decodeEnvelope[RecommendationResponse](t, resp)
	assert.Equal(t, "accepted", accepted.Data.Status)
	assert.NotNil(t, accepted.Data.ResolvedAt)

	resp = ts.api.Get("/api/v1/books", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)
	shelf := decodeEnvelope[ListBooksResponse](t, resp)
	require.Len(t, shelf.Data.Books, 1)
	assert.Equal(t, "Dune", shelf.Data.Books[0].Title)
	assert.Equal(t, 0, shelf.Data.Books[0].Status)
	assert.NotEqual(t, bookID, shelf.Data.Books[0].ID, "the copy gets its own ID")
}

func TestRecommendationRequiresFriendship(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.signup(t, "alice@example.com", "Alice")
	_, bobID := ts.signup(t, "bob@example.com", "Bob")

	bookID := ts.addBook(t, aliceToken, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/recommendations",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"recipient_ids": []string{bobID}, "book_id": bookID},
	)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRejectRecommendationKeepsShelfUntouched(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")

	ts.befriend(t, aliceToken, bobToken, aliceID, bobID)
	bookID := ts.addBook(t, aliceToken, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/recommendations",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"recipient_ids": []string{bobID}, "book_id": bookID},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	recID := decodeEnvelope[ListRecommendationsResponse](t, resp).Data.Recommendations[0].ID

	resp = ts.api.Post("/api/v1/recommendations/"+recID+"/reject",
		"Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)

	rejected := decodeEnvelope[RecommendationResponse](t, resp)
	assert.Equal(t, "rejected", rejected.Data.Status)

	resp = ts.api.Get("/api/v1/books", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)
	shelf := decodeEnvelope[ListBooksResponse](t, resp)
	assert.Empty(t, shelf.Data.Books)

	// Resolved recommendations cannot be re-resolved.
	resp = ts.api.Post("/api/v1/recommendations/"+recID+"/accept",
		"Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestOnlyRecipientResolvesRecommendation(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")

	ts.befriend(t, aliceToken, bobToken, aliceID, bobID)
	bookID := ts.addBook(t, aliceToken, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/recommendations",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"recipient_ids": []string{bobID}, "book_id": bookID},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	recID := decodeEnvelope[ListRecommendationsResponse](t, resp).Data.Recommendations[0].ID

	resp = ts.api.Post("/api/v1/recommendations/"+recID+"/accept",
		"Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestDeleteRecommendation(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")

	ts.befriend(t, aliceToken, bobToken, aliceID, bobID)
	bookID := ts.addBook(t, aliceToken, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/recommendations",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"recipient_ids": []string{bobID}, "book_id": bookID},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	recID := decodeEnvelope[ListRecommendationsResponse](t, resp).Data.Recommendations[0].ID

	resp = ts.api.Delete("/api/v1/recommendations/"+recID,
		"Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/recommendations/sent", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)
	sent := decodeEnvelope[ListRecommendationsResponse](t, resp)
	assert.Empty(t, sent.Data.Recommendations)
}
