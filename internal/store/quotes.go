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
	quotePrefix       = "quote:"
	quoteByUserPrefix = "idx:quotes:user:"
	quoteByBookPrefix = "idx:quotes:book:"
)

var (
	ErrQuoteNotFound = errors.New("quote not found")
	ErrQuoteExists   = errors.New("quote already exists")
)

func quoteUserKey(userID, quoteID string) []byte {
	return []byte(quoteByUserPrefix + userID + ":" + quoteID)
}

func quoteBookKey(bookID, quoteID string) []byte {
	return []byte(quoteByBookPrefix + bookID + ":" + quoteID)
}

// CreateQuote saves a quote for a book.
func (s *Store) CreateQuote(ctx context.Context, quote *domain.Quote) error {
	key := []byte(quotePrefix + quote.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check quote exists: %w", err)
	}
	if exists {
		return ErrQuoteExists
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(quote)
		if err != nil {
			return fmt.Errorf("marshal quote: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		if err := txn.Set(quoteUserKey(quote.UserID, quote.ID), []byte{}); err != nil {
			return err
		}

		return txn.Set(quoteBookKey(quote.BookID, quote.ID), []byte{})
	})
	if err != nil {
		return fmt.Errorf("create quote: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "quote created",
			slog.String("id", quote.ID),
			slog.String("book_id", quote.BookID),
		)
	}

	s.eventEmitter.Emit(sse.NewQuoteCreatedEvent(quote))
	return nil
}

// GetQuote retrieves a quote by ID.
func (s *Store) GetQuote(_ context.Context, id string) (*domain.Quote, error) {
	key := []byte(quotePrefix + id)

	var quote domain.Quote
	if err := s.get(key, &quote); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return &quote, nil
}

// UpdateQuote saves changes to an existing quote. The quote's owner and
// book binding never change on update.
func (s *Store) UpdateQuote(ctx context.Context, quote *domain.Quote) error {
	key := []byte(quotePrefix + quote.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check quote exists: %w", err)
	}
	if !exists {
		return ErrQuoteNotFound
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(quote)
		if err != nil {
			return fmt.Errorf("marshal quote: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}

	s.eventEmitter.Emit(sse.NewQuoteUpdatedEvent(quote))
	return nil
}

// DeleteQuote removes a quote.
func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(quotePrefix + id)); err != nil {
			return err
		}
		if err := txn.Delete(quoteUserKey(quote.UserID, id)); err != nil {
			return err
		}
		return txn.Delete(quoteBookKey(quote.BookID, id))
	})
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}

	s.eventEmitter.Emit(sse.NewQuoteDeletedEvent(quote.UserID, id, quote.BookID))
	return nil
}

// ListBookQuotes returns all quotes saved for a book.
func (s *Store) ListBookQuotes(ctx context.Context, bookID string) ([]*domain.Quote, error) {
	return s.listQuotesByPrefix(ctx, quoteByBookPrefix+bookID+":")
}

// ListUserQuotes returns all quotes a user has saved across books.
func (s *Store) ListUserQuotes(ctx context.Context, userID string) ([]*domain.Quote, error) {
	return s.listQuotesByPrefix(ctx, quoteByUserPrefix+userID+":")
}

// ListAllQuotes returns every quote in the store. Used for backup export.
func (s *Store) ListAllQuotes(ctx context.Context) ([]*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(quotePrefix)

	var quotes []*domain.Quote
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var quote domain.Quote
				if err := json.Unmarshal(val, &quote); err != nil {
					return fmt.Errorf("unmarshal quote: %w", err)
				}
				quotes = append(quotes, &quote)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all quotes: %w", err)
	}
	return quotes, nil
}

func (s *Store) listQuotesByPrefix(ctx context.Context, keyPrefix string) ([]*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(keyPrefix)

	var quoteIDs []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			quoteIDs = append(quoteIDs, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	quotes := make([]*domain.Quote, 0, len(quoteIDs))
	for _, quoteID := range quoteIDs {
		quote, err := s.GetQuote(ctx, quoteID)
		if err != nil {
			if errors.Is(err, ErrQuoteNotFound) {
				continue
			}
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}
