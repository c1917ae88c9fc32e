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
	recommendationPrefix            = "rec:"
	recommendationByRecipientPrefix = "idx:recs:recipient:"
	recommendationBySenderPrefix    = "idx:recs:sender:"
)

var (
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrRecommendationExists   = errors.New("recommendation already exists")
)

func recommendationRecipientKey(userID, recID string) []byte {
	return []byte(recommendationByRecipientPrefix + userID + ":" + recID)
}

func recommendationSenderKey(userID, recID string) []byte {
	return []byte(recommendationBySenderPrefix + userID + ":" + recID)
}

// checkRecommendationSchema fails with ErrSchemaMissing when the
// recommendation tables are disabled for this database.
func (s *Store) checkRecommendationSchema() error {
	if !s.recommendationsEnabled {
		return ErrSchemaMissing
	}
	return nil
}

// CreateRecommendation stores a new recommendation.
func (s *Store) CreateRecommendation(ctx context.Context, rec *domain.Recommendation) error {
	if err := s.checkRecommendationSchema(); err != nil {
		return err
	}

	key := []byte(recommendationPrefix + rec.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check recommendation exists: %w", err)
	}
	if exists {
		return ErrRecommendationExists
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal recommendation: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		if err := txn.Set(recommendationRecipientKey(rec.RecipientID, rec.ID), []byte{}); err != nil {
			return err
		}
		return txn.Set(recommendationSenderKey(rec.SenderID, rec.ID), []byte{})
	})
	if err != nil {
		return fmt.Errorf("create recommendation: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "recommendation created",
			slog.String("id", rec.ID),
			slog.String("sender", rec.SenderID),
			slog.String("recipient", rec.RecipientID),
			slog.String("book_title", rec.BookTitle),
		)
	}

	s.eventEmitter.Emit(sse.NewRecommendationCreatedEvent(rec.RecipientID, rec))
	s.eventEmitter.Emit(sse.NewRecommendationCreatedEvent(rec.SenderID, rec))
	return nil
}

// GetRecommendation retrieves a recommendation by ID.
func (s *Store) GetRecommendation(_ context.Context, id string) (*domain.Recommendation, error) {
	if err := s.checkRecommendationSchema(); err != nil {
		return nil, err
	}

	var rec domain.Recommendation
	if err := s.get([]byte(recommendationPrefix+id), &rec); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrRecommendationNotFound
		}
		return nil, fmt.Errorf("get recommendation: %w", err)
	}
	return &rec, nil
}

// UpdateRecommendation persists a status change.
func (s *Store) UpdateRecommendation(ctx context.Context, rec *domain.Recommendation) error {
	if err := s.checkRecommendationSchema(); err != nil {
		return err
	}

	key := []byte(recommendationPrefix + rec.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check recommendation exists: %w", err)
	}
	if !exists {
		return ErrRecommendationNotFound
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal recommendation: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("update recommendation: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "recommendation updated",
			slog.String("id", rec.ID),
			slog.String("status", string(rec.Status)),
		)
	}

	s.eventEmitter.Emit(sse.NewRecommendationUpdatedEvent(rec.RecipientID, rec))
	s.eventEmitter.Emit(sse.NewRecommendationUpdatedEvent(rec.SenderID, rec))
	return nil
}

// DeleteRecommendation removes a recommendation in any state.
func (s *Store) DeleteRecommendation(ctx context.Context, id string) error {
	if err := s.checkRecommendationSchema(); err != nil {
		return err
	}

	rec, err := s.GetRecommendation(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(recommendationPrefix + id)); err != nil {
			return err
		}
		if err := txn.Delete(recommendationRecipientKey(rec.RecipientID, id)); err != nil {
			return err
		}
		return txn.Delete(recommendationSenderKey(rec.SenderID, id))
	})
	if err != nil {
		return fmt.Errorf("delete recommendation: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "recommendation deleted",
			slog.String("id", id),
		)
	}

	s.eventEmitter.Emit(sse.NewRecommendationUpdatedEvent(rec.RecipientID, rec))
	s.eventEmitter.Emit(sse.NewRecommendationUpdatedEvent(rec.SenderID, rec))
	return nil
}

// ListReceivedRecommendations returns recommendations sent to a user.
func (s *Store) ListReceivedRecommendations(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	return s.listRecommendationsByPrefix(ctx, recommendationByRecipientPrefix+userID+":")
}

// ListSentRecommendations returns recommendations a user has sent.
func (s *Store) ListSentRecommendations(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	return s.listRecommendationsByPrefix(ctx, recommendationBySenderPrefix+userID+":")
}

// ListAllRecommendations returns every recommendation in the store.
// Used for backup export. Unlike the service-facing operations this
// does not depend on the recommendation schema flag, so a backup taken
// in fallback mode still captures whatever was persisted remotely.
func (s *Store) ListAllRecommendations(ctx context.Context) ([]*domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(recommendationPrefix)

	var recs []*domain.Recommendation
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec domain.Recommendation
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("unmarshal recommendation: %w", err)
				}
				recs = append(recs, &rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all recommendations: %w", err)
	}
	return recs, nil
}

func (s *Store) listRecommendationsByPrefix(ctx context.Context, keyPrefix string) ([]*domain.Recommendation, error) {
	if err := s.checkRecommendationSchema(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(keyPrefix)

	var recIDs []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			recIDs = append(recIDs, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	recs := make([]*domain.Recommendation, 0, len(recIDs))
	for _, recID := range recIDs {
		rec, err := s.GetRecommendation(ctx, recID)
		if err != nil {
			if errors.Is(err, ErrRecommendationNotFound) {
				continue
			}
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
