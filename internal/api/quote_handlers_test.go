package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddQuoteAndListByBook(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.signup(t, "alice@example.com", "Alice")

	bookID := ts.addBook(t, token, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/quotes",
		"Authorization: Bearer "+token,
		map[string]any{"book_id": bookID, "text": "Fear is the mind-killer.", "page": 12},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	created := decodeEnvelope[QuoteResponse](t, resp)
	assert.Equal(t, bookID, created.Data.BookID)
	assert.Equal(t, "Fear is the mind-killer.", created.Data.Text)
	require.NotNil(t, created.Data.Page)
	assert.Equal(t, 12, *created.Data.Page)

	resp = ts.api.Get("/api/v1/books/"+bookID+"/quotes", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	list := decodeEnvelope[ListQuotesResponse](t, resp)
	require.Len(t, list.Data.Quotes, 1)
	assert.Equal(t, created.Data.ID, list.Data.Quotes[0].ID)
}

func TestAddQuoteDeduplicatesText(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.signup(t, "alice@example.com", "Alice")

	bookID := ts.addBook(t, token, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/quotes",
		"Authorization: Bearer "+token,
		map[string]any{"book_id": bookID, "text": "Fear is the mind-killer."},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	first := decodeEnvelope[QuoteResponse](t, resp)

	// Same text with surrounding whitespace returns the existing quote.
	resp = ts.api.Post("/api/v1/quotes",
		"Authorization: Bearer "+token,
		map[string]any{"book_id": bookID, "text": "  Fear is the mind-killer.  "},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	second := decodeEnvelope[QuoteResponse](t, resp)

	assert.Equal(t, first.Data.ID, second.Data.ID)
}

func TestAddQuoteForUnknownBook(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.signup(t, "alice@example.com", "Alice")

	resp := ts.api.Post("/api/v1/quotes",
		"Authorization: Bearer "+token,
		map[string]any{"book_id": "book_missing", "text": "Lost words."},
	)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateAndDeleteQuote(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.signup(t, "alice@example.com", "Alice")

	bookID := ts.addBook(t, token, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/quotes",
		"Authorization: Bearer "+token,
		map[string]any{"book_id": bookID, "text": "Fear is the mind-killer."},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	quoteID := decodeEnvelope[QuoteResponse](t, resp).Data.ID

	resp = ts.api.Patch("/api/v1/quotes/"+quoteID,
		"Authorization: Bearer "+token,
		map[string]any{"text": "I must not fear.", "page": 8},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	updated := decodeEnvelope[QuoteResponse](t, resp)
	assert.Equal(t, "I must not fear.", updated.Data.Text)
	require.NotNil(t, updated.Data.Page)
	assert.Equal(t, 8, *updated.Data.Page)

	resp = ts.api.Delete("/api/v1/quotes/"+quoteID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Patch("/api/v1/quotes/"+quoteID,
		"Authorization: Bearer "+token,
		map[string]any{"text": "gone"},
	)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestQuotesAreOwnerScoped(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.signup(t, "alice@example.com", "Alice")
	bobToken, _ := ts.signup(t, "bob@example.com", "Bob")

	bookID := ts.addBook(t, aliceToken, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/quotes",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"book_id": bookID, "text": "Fear is the mind-killer."},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	quoteID := decodeEnvelope[QuoteResponse](t, resp).Data.ID

	resp = ts.api.Delete("/api/v1/quotes/"+quoteID, "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
