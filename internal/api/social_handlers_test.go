package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// befriend runs the request/accept flow between two users.
func (ts *testServer) befriend(t *testing.T, requesterToken, recipientToken, requesterID, recipientID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+requesterToken,
		map[string]any{"user_id": recipientID},
	)
	require.Equal(t, http.StatusOK, resp.Code, "send request failed: %s", resp.Body.String())

	resp = ts.api.Post("/api/v1/friends/requests/"+requesterID+"/accept",
		"Authorization: Bearer "+recipientToken)
	require.Equal(t, http.StatusOK, resp.Code, "accept failed: %s", resp.Body.String())
}

func TestFriendRequestFlow(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")

	resp := ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"user_id": bobID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	sent := decodeEnvelope[FriendshipResponse](t, resp)
	assert.Equal(t, "pending", sent.Data.Status)
	assert.Equal(t, aliceID, sent.Data.RequestedBy)

	// Bob sees it incoming, Alice sees it outgoing.
	resp = ts.api.Get("/api/v1/friends/requests/incoming", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)
	incoming := decodeEnvelope[ListRequestsResponse](t, resp)
	require.Len(t, incoming.Data.Requests, 1)
	assert.Equal(t, aliceID, incoming.Data.Requests[0].Profile.ID)

	resp = ts.api.Get("/api/v1/friends/requests/sent", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)
	outgoing := decodeEnvelope[ListRequestsResponse](t, resp)
	require.Len(t, outgoing.Data.Requests, 1)
	assert.Equal(t, bobID, outgoing.Data.Requests[0].Profile.ID)

	// Bob accepts; both users now list each other as friends.
	resp = ts.api.Post("/api/v1/friends/requests/"+aliceID+"/accept",
		"Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)

	accepted := decodeEnvelope[FriendshipResponse](t, resp)
	assert.Equal(t, "accepted", accepted.Data.Status)

	resp = ts.api.Get("/api/v1/friends", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)
	friends := decodeEnvelope[ListFriendsResponse](t, resp)
	require.Len(t, friends.Data.Friends, 1)
	assert.Equal(t, bobID, friends.Data.Friends[0].ID)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.signup(t, "alice@example.com", "Alice")

	resp := ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+token,
		map[string]any{"user_id": userID},
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDuplicateFriendRequest(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.signup(t, "alice@example.com", "Alice")
	_, bobID := ts.signup(t, "bob@example.com", "Bob")

	resp := ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"user_id": bobID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"user_id": bobID},
	)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestRequesterCannotAcceptOwnRequest(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.signup(t, "alice@example.com", "Alice")
	_, bobID := ts.signup(t, "bob@example.com", "Bob")

	resp := ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"user_id": bobID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/friends/requests/"+bobID+"/accept",
		"Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRejectAndCancelRequests(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")

	// Reject.
	resp := ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"user_id": bobID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/friends/requests/"+aliceID+"/reject",
		"Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)

	rejected := decodeEnvelope[FriendshipResponse](t, resp)
	assert.Equal(t, "rejected", rejected.Data.Status)

	// A rejected pair can try again; this time Alice cancels her own
	// request.
	resp = ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"user_id": bobID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/friends/requests/"+bobID,
		"Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/friends/requests/incoming", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)
	incoming := decodeEnvelope[ListRequestsResponse](t, resp)
	assert.Empty(t, incoming.Data.Requests)
}

func TestRemoveFriend(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")

	ts.befriend(t, aliceToken, bobToken, aliceID, bobID)

	resp := ts.api.Delete("/api/v1/friends/"+bobID, "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/friends", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)
	friends := decodeEnvelope[ListFriendsResponse](t, resp)
	assert.Empty(t, friends.Data.Friends)
}

func TestSearchUsers(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")
	_, carolID := ts.signup(t, "carol@example.com", "Carol")

	ts.befriend(t, aliceToken, bobToken, aliceID, bobID)

	resp := ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"user_id": carolID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/users/search", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	results := decodeEnvelope[SearchUsersResponse](t, resp)
	require.Len(t, results.Data.Users, 2)

	byID := make(map[string]string, len(results.Data.Users))
	for _, u := range results.Data.Users {
		byID[u.Profile.ID] = u.Friendship
	}
	assert.Equal(t, "friends", byID[bobID])
	assert.Equal(t, "pending_outgoing", byID[carolID])

	// Query filtering.
	resp = ts.api.Get("/api/v1/users/search?q=carol", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	filtered := decodeEnvelope[SearchUsersResponse](t, resp)
	require.Len(t, filtered.Data.Users, 1)
	assert.Equal(t, carolID, filtered.Data.Users[0].Profile.ID)
}

func TestFriendQuotesAndProfile(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")

	bookID := ts.addBook(t, aliceToken, "Dune", "Frank Herbert")
	resp := ts.api.Post("/api/v1/quotes",
		"Authorization: Bearer "+aliceToken,
		map[string]any{"book_id": bookID, "text": "Fear is the mind-killer."},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	// Quotes are friends-only.
	resp = ts.api.Get("/api/v1/friends/"+aliceID+"/quotes", "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	ts.befriend(t, aliceToken, bobToken, aliceID, bobID)

	resp = ts.api.Get("/api/v1/friends/"+aliceID+"/quotes", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)

	quotes := decodeEnvelope[FriendQuotesResponse](t, resp)
	require.Len(t, quotes.Data.Quotes, 1)
	assert.Equal(t, "Fear is the mind-killer.", quotes.Data.Quotes[0].Quote.Text)
	assert.Equal(t, "Dune", quotes.Data.Quotes[0].BookTitle)
	assert.Equal(t, "Frank Herbert", quotes.Data.Quotes[0].BookAuthor)

	resp = ts.api.Get("/api/v1/friends/"+aliceID+"/profile", "Authorization: Bearer "+bobToken)
	require.Equal(t, http.StatusOK, resp.Code)

	profile := decodeEnvelope[ProfileResponse](t, resp)
	assert.Equal(t, "Alice", profile.Data.DisplayName)
}

func TestFriendEndpointsServeFromWatchSnapshot(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, aliceID := ts.signup(t, "alice@example.com", "Alice")
	bobToken, bobID := ts.signup(t, "bob@example.com", "Bob")

	require.NoError(t, ts.services.Social.Watch(context.Background(), aliceID))

	// Bob's request lands in Alice's snapshot, which the requests
	// endpoint serves once the watch catches up.
	resp := ts.api.Post("/api/v1/friends/requests",
		"Authorization: Bearer "+bobToken,
		map[string]any{"user_id": aliceID},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	require.Eventually(t, func() bool {
		resp := ts.api.Get("/api/v1/friends/requests", "Authorization: Bearer "+aliceToken)
		if resp.Code != http.StatusOK {
			return false
		}
		reqs := decodeEnvelope[ListRequestsResponse](t, resp)
		return len(reqs.Data.Requests) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp = ts.api.Post("/api/v1/friends/requests/"+bobID+"/accept",
		"Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	require.Eventually(t, func() bool {
		resp := ts.api.Get("/api/v1/friends", "Authorization: Bearer "+aliceToken)
		if resp.Code != http.StatusOK {
			return false
		}
		friends := decodeEnvelope[ListFriendsResponse](t, resp)
		return len(friends.Data.Friends) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Logging out everywhere tears the watch down.
	resp = ts.api.Post("/api/v1/auth/logout-all", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)
	_, ok := ts.services.Social.Snapshot(aliceID)
	assert.False(t, ok)
}
