package store

import (
	"context"
	"testing"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFriendship_DuplicateRegardlessOfDirection(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateFriendship(ctx, domain.NewFriendship("bob", "alice")))

	// The reverse direction maps to the same canonical pair.
	err := s.CreateFriendship(ctx, domain.NewFriendship("alice", "bob"))
	assert.ErrorIs(t, err, ErrFriendshipExists)
}

func TestCreateFriendship_InvalidPair(t *testing.T) {
	s := setupTestStore(t)

	err := s.CreateFriendship(context.Background(), domain.NewFriendship("alice", "alice"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetFriendship_EitherOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateFriendship(ctx, domain.NewFriendship("bob", "alice")))

	f, err := s.GetFriendship(ctx, domain.NewFriendshipKey("alice", "bob"))
	require.NoError(t, err)
	assert.Equal(t, "bob", f.RequestedBy)

	f, err = s.GetFriendship(ctx, domain.NewFriendshipKey("bob", "alice"))
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipPending, f.Status)
}

func TestUpdateFriendship(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	f := domain.NewFriendship("bob", "alice")
	require.NoError(t, s.CreateFriendship(ctx, f))

	f.Status = domain.FriendshipAccepted
	require.NoError(t, s.UpdateFriendship(ctx, f))

	got, err := s.GetFriendship(ctx, f.FriendshipKey)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipAccepted, got.Status)
}

func TestUpdateFriendship_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdateFriendship(context.Background(), domain.NewFriendship("bob", "alice"))
	assert.ErrorIs(t, err, ErrFriendshipNotFound)
}

func TestListUserFriendships_BothMembersSeeIt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateFriendship(ctx, domain.NewFriendship("bob", "alice")))
	require.NoError(t, s.CreateFriendship(ctx, domain.NewFriendship("carol", "alice")))

	aliceFriendships, err := s.ListUserFriendships(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, aliceFriendships, 2)

	bobFriendships, err := s.ListUserFriendships(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, bobFriendships, 1)

	daveFriendships, err := s.ListUserFriendships(ctx, "dave")
	require.NoError(t, err)
	assert.Empty(t, daveFriendships)
}

func TestDeleteFriendship(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	f := domain.NewFriendship("bob", "alice")
	require.NoError(t, s.CreateFriendship(ctx, f))
	require.NoError(t, s.DeleteFriendship(ctx, f.FriendshipKey))

	_, err := s.GetFriendship(ctx, f.FriendshipKey)
	assert.ErrorIs(t, err, ErrFriendshipNotFound)

	friendships, err := s.ListUserFriendships(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, friendships)
}
