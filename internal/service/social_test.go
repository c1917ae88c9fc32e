package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garbson/LitShelf/internal/domain"
	domainerrors "github.com/Garbson/LitShelf/internal/errors"
	"github.com/Garbson/LitShelf/internal/sse"
	"github.com/Garbson/LitShelf/internal/store"
)

func TestSendFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	social := NewSocialService(env.store, nil, env.logger)
	ctx := context.Background()

	friendship, err := social.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipPending, friendship.Status)
	assert.Equal(t, alice.ID, friendship.RequestedBy)

	// Self requests and unknown users are rejected up front.
	_, err = social.SendFriendRequest(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	_, err = social.SendFriendRequest(ctx, alice.ID, "user_missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// A duplicate request, from either side, reports the pending edge.
	_, err = social.SendFriendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
	_, err = social.SendFriendRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestSendFriendRequestByEmail(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	social := NewSocialService(env.store, nil, env.logger)
	ctx := context.Background()

	friendship, err := social.SendFriendRequest(ctx, alice.ID, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, friendship.Contains(bob.ID))
	assert.Equal(t, alice.ID, friendship.RequestedBy)

	// The email lookup is case-insensitive, an unknown address is not found.
	_, err = social.SendFriendRequest(ctx, alice.ID, "BOB@Example.com")
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
	_, err = social.SendFriendRequest(ctx, alice.ID, "nobody@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSendFriendRequestAlreadyFriends(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	env.befriend(t, alice, bob)
	social := NewSocialService(env.store, nil, env.logger)

	_, err := social.SendFriendRequest(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAcceptFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	social := NewSocialService(env.store, nil, env.logger)
	ctx := context.Background()

	_, err := social.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// The requester cannot accept their own request.
	_, err = social.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	friendship, err := social.AcceptFriendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipAccepted, friendship.Status)

	// Responding again hits a resolved request.
	_, err = social.AcceptFriendRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, domainerrors.ErrStateConflict)

	friends, err := social.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].ID)
}

func TestRejectThenReRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	social := NewSocialService(env.store, nil, env.logger)
	ctx := context.Background()

	_, err := social.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = social.RejectFriendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	// Bob can now ask Alice in turn; the edge flips back to pending with
	// a new requester.
	friendship, err := social.SendFriendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipPending, friendship.Status)
	assert.Equal(t, bob.ID, friendship.RequestedBy)

	_, err = social.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
}

func TestCancelFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	social := NewSocialService(env.store, nil, env.logger)
	ctx := context.Background()

	_, err := social.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Only the requester can withdraw it.
	err = social.CancelFriendRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, social.CancelFriendRequest(ctx, alice.ID, bob.ID))

	_, err = social.AcceptFriendRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRemoveFriend(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	env.befriend(t, alice, bob)
	social := NewSocialService(env.store, nil, env.logger)
	ctx := context.Background()

	require.NoError(t, social.RemoveFriend(ctx, alice.ID, bob.ID))

	friends, err := social.ListFriends(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	err = social.RemoveFriend(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListRequests(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	carol := env.createUser(t, "carol@example.com", "Carol")
	social := NewSocialService(env.store, nil, env.logger)
	ctx := context.Background()

	_, err := social.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = social.SendFriendRequest(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	incoming, err := social.ListIncomingRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, carol.ID, incoming[0].Profile.ID)

	outgoing, err := social.ListSentRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, bob.ID, outgoing[0].Profile.ID)
}

func TestSearchUsersAnnotations(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	carol := env.createUser(t, "carol@example.com", "Carol")
	dave := env.createUser(t, "dave@example.com", "Dave")
	env.createUser(t, "erin@example.com", "Erin")
	env.befriend(t, alice, bob)
	social := NewSocialService(env.store, nil, env.logger)
	ctx := context.Background()

	_, err := social.SendFriendRequest(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	_, err = social.SendFriendRequest(ctx, dave.ID, alice.ID)
	require.NoError(t, err)

	results, err := social.SearchUsers(ctx, alice.ID, "")
	require.NoError(t, err)
	require.Len(t, results, 4) // everyone but Alice herself

	byID := make(map[string]FriendshipAnnotation, len(results))
	for _, r := range results {
		byID[r.Profile.ID] = r.Friendship
	}
	assert.Equal(t, AnnotationFriends, byID[bob.ID])
	assert.Equal(t, AnnotationPendingOutgoing, byID[carol.ID])
	assert.Equal(t, AnnotationPendingIncoming, byID[dave.ID])

	// Results come back sorted by display name.
	assert.Equal(t, "Bob", results[0].Profile.DisplayName)
	assert.Equal(t, "Erin", results[3].Profile.DisplayName)

	// Queries match display name or email, case-insensitively.
	results, err = social.SearchUsers(ctx, alice.ID, "CAROL")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, carol.ID, results[0].Profile.ID)
}

func TestSearchUsersSkipsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	hidden := env.createUser(t, "hidden@example.com", "Hidden")
	ctx := context.Background()

	hidden.AvailableForFriends = false
	require.NoError(t, env.store.Users.Update(ctx, hidden.ID, hidden))

	social := NewSocialService(env.store, nil, env.logger)
	results, err := social.SearchUsers(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFriendQuotes(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")
	book := env.createBook(t, bob.ID, "Dune", "Frank Herbert")
	shelf := NewBookshelfService(env.store, nil, nil, env.logger)
	social := NewSocialService(env.store, nil, env.logger)
	ctx := context.Background()

	_, err := shelf.AddQuote(ctx, bob.ID, AddQuoteRequest{BookID: book.ID, Text: "Fear is the mind-killer."})
	require.NoError(t, err)

	// Quotes are only visible to accepted friends.
	_, err = social.FriendQuotes(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	env.befriend(t, alice, bob)

	quotes, err := social.FriendQuotes(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Dune", quotes[0].BookTitle)
	assert.Equal(t, "Frank Herbert", quotes[0].BookAuthor)
}

func TestWatchTracksFriendshipChanges(t *testing.T) {
	logger := discardLogger()
	manager := sse.NewManager(logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Start(ctx)

	dir := t.TempDir()
	st, err := store.New(filepath.Join(dir, "shelf"), nil, manager)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	env := &testEnv{store: st, logger: logger}
	alice := env.createUser(t, "alice@example.com", "Alice")
	bob := env.createUser(t, "bob@example.com", "Bob")

	social := NewSocialService(st, manager, logger)
	t.Cleanup(social.Close)

	require.NoError(t, social.Watch(ctx, alice.ID))

	snapshot, ok := social.Snapshot(alice.ID)
	require.True(t, ok)
	assert.Empty(t, snapshot.Friends)

	_, err = social.SendFriendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snapshot, _ := social.Snapshot(alice.ID)
		return len(snapshot.Incoming) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = social.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snapshot, _ := social.Snapshot(alice.ID)
		return len(snapshot.Friends) == 1 && len(snapshot.Incoming) == 0
	}, 2*time.Second, 10*time.Millisecond)

	social.Unwatch(alice.ID)
	_, ok = social.Snapshot(alice.ID)
	assert.False(t, ok)
	social.Unwatch(alice.ID) // repeated unwatch is fine
}
