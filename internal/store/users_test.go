package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_EmailIndexCaseInsensitive(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := testUser("alice-id", "Alice@Example.com")
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	got, err := s.GetUserByEmail(ctx, "alice@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "alice-id", got.ID)
}

func TestUsers_DuplicateEmailRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := testUser("alice-id", "alice@example.com")
	require.NoError(t, s.Users.Create(ctx, first.ID, first))

	second := testUser("other-id", "ALICE@example.com")
	err := s.Users.Create(ctx, second.ID, second)
	assert.True(t, IsAlreadyExists(err))
}

func TestListAvailableUsers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	alice := testUser("alice-id", "alice@example.com")
	alice.AvailableForFriends = true
	require.NoError(t, s.Users.Create(ctx, alice.ID, alice))

	bob := testUser("bob-id", "bob@example.com")
	bob.AvailableForFriends = true
	require.NoError(t, s.Users.Create(ctx, bob.ID, bob))

	hidden := testUser("carol-id", "carol@example.com")
	require.NoError(t, s.Users.Create(ctx, hidden.ID, hidden))

	// Alice searching should see bob but not herself or carol.
	users, err := s.ListAvailableUsers(ctx, "alice-id")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob-id", users[0].ID)
}

func TestGetUsersByIDs_SkipsMissing(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	alice := testUser("alice-id", "alice@example.com")
	require.NoError(t, s.Users.Create(ctx, alice.ID, alice))

	users, err := s.GetUsersByIDs(ctx, []string{"alice-id", "ghost-id"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Contains(t, users, "alice-id")
}
