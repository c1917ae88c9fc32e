package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Garbson/LitShelf/internal/domain"
)

// normalizeEmail lowercases and trims an email for case-insensitive
// lookups.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// initUsers initializes the Users entity on the store.
// Uses case-insensitive email indexing via normalizeEmail transformation.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail, // Transform lookups to be case-insensitive
		)
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.Users.GetByIndex(ctx, "email", email)
}

// ListAvailableUsers returns all users who opted in to being found by
// other users, excluding the given user.
func (s *Store) ListAvailableUsers(ctx context.Context, excludeUserID string) ([]*domain.User, error) {
	var users []*domain.User
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		if user.ID == excludeUserID || !user.AvailableForFriends {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// GetUsersByIDs retrieves multiple users at once, skipping missing IDs.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(ids))
	for _, userID := range ids {
		user, err := s.Users.Get(ctx, userID)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("get user %s: %w", userID, err)
		}
		users[user.ID] = user
	}
	return users, nil
}
