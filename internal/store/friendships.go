package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/sse"
)

const (
	friendshipPrefix       = "friendship:"
	friendshipByUserPrefix = "idx:friendships:user:"
)

var (
	ErrFriendshipNotFound = errors.New("friendship not found")
	ErrFriendshipExists   = errors.New("friendship already exists")
)

func friendshipUserKey(userID string, key domain.FriendshipKey) []byte {
	return []byte(friendshipByUserPrefix + userID + ":" + key.StorageID())
}

// CreateFriendship stores a new friendship record. The record is keyed
// by the canonical user pair, so at most one record exists for any two
// users regardless of who requested.
func (s *Store) CreateFriendship(ctx context.Context, f *domain.Friendship) error {
	if !f.FriendshipKey.Valid() {
		return fmt.Errorf("invalid friendship pair: %w", ErrInvalidInput)
	}

	key := []byte(friendshipPrefix + f.StorageID())

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check friendship exists: %w", err)
	}
	if exists {
		return ErrFriendshipExists
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal friendship: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// One listing key per member.
		if err := txn.Set(friendshipUserKey(f.UserID1, f.FriendshipKey), []byte{}); err != nil {
			return err
		}
		return txn.Set(friendshipUserKey(f.UserID2, f.FriendshipKey), []byte{})
	})
	if err != nil {
		return fmt.Errorf("create friendship: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "friendship requested",
			slog.String("requested_by", f.RequestedBy),
			slog.String("recipient", f.Recipient()),
		)
	}

	s.eventEmitter.Emit(sse.NewFriendshipRequestedEvent(f.UserID1, f))
	s.eventEmitter.Emit(sse.NewFriendshipRequestedEvent(f.UserID2, f))
	return nil
}

// GetFriendship retrieves the friendship between two users, if any.
func (s *Store) GetFriendship(_ context.Context, key domain.FriendshipKey) (*domain.Friendship, error) {
	var f domain.Friendship
	if err := s.get([]byte(friendshipPrefix+key.StorageID()), &f); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrFriendshipNotFound
		}
		return nil, fmt.Errorf("get friendship: %w", err)
	}
	return &f, nil
}

// UpdateFriendship persists a status change on an existing friendship.
func (s *Store) UpdateFriendship(ctx context.Context, f *domain.Friendship) error {
	key := []byte(friendshipPrefix + f.StorageID())

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check friendship exists: %w", err)
	}
	if !exists {
		return ErrFriendshipNotFound
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal friendship: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("update friendship: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "friendship updated",
			slog.String("user_id_1", f.UserID1),
			slog.String("user_id_2", f.UserID2),
			slog.String("status", string(f.Status)),
		)
	}

	s.eventEmitter.Emit(sse.NewFriendshipUpdatedEvent(f.UserID1, f))
	s.eventEmitter.Emit(sse.NewFriendshipUpdatedEvent(f.UserID2, f))
	return nil
}

// DeleteFriendship removes a friendship record and its listing keys.
func (s *Store) DeleteFriendship(ctx context.Context, key domain.FriendshipKey) error {
	f, err := s.GetFriendship(ctx, key)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(friendshipPrefix + key.StorageID())); err != nil {
			return err
		}
		if err := txn.Delete(friendshipUserKey(key.UserID1, key)); err != nil {
			return err
		}
		return txn.Delete(friendshipUserKey(key.UserID2, key))
	})
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}

	s.eventEmitter.Emit(sse.NewFriendshipDeletedEvent(f.UserID1, key))
	s.eventEmitter.Emit(sse.NewFriendshipDeletedEvent(f.UserID2, key))
	return nil
}

// ListAllFriendships returns every friendship record in the store.
// Used for backup export.
func (s *Store) ListAllFriendships(ctx context.Context) ([]*domain.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(friendshipPrefix)

	var friendships []*domain.Friendship
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var f domain.Friendship
				if err := json.Unmarshal(val, &f); err != nil {
					return fmt.Errorf("unmarshal friendship: %w", err)
				}
				friendships = append(friendships, &f)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all friendships: %w", err)
	}
	return friendships, nil
}

// ListUserFriendships returns every friendship record involving the
// user, in any status.
func (s *Store) ListUserFriendships(ctx context.Context, userID string) ([]*domain.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(friendshipByUserPrefix + userID + ":")

	var storageIDs []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			storageIDs = append(storageIDs, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user friendships: %w", err)
	}

	friendships := make([]*domain.Friendship, 0, len(storageIDs))
	for _, storageID := range storageIDs {
		var f domain.Friendship
		if err := s.get([]byte(friendshipPrefix+storageID), &f); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get friendship %s: %w", storageID, err)
		}
		friendships = append(friendships, &f)
	}
	return friendships, nil
}
