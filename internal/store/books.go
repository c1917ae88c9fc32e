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
	bookPrefix       = "book:"
	bookByUserPrefix = "idx:books:user:"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrBookExists   = errors.New("book already exists")
)

// bookUserKey builds the per-user listing key for a book.
func bookUserKey(userID, bookID string) []byte {
	return []byte(bookByUserPrefix + userID + ":" + bookID)
}

// CreateBook creates a new book on a user's shelf.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if exists {
		return ErrBookExists
	}

	// Use transaction to create book indices atomically
	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Create user index for per-shelf listing
		return txn.Set(bookUserKey(book.UserID, book.ID), []byte{})
	})
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("user_id", book.UserID),
			slog.String("title", book.Title),
		)
	}

	s.eventEmitter.Emit(sse.NewBookCreatedEvent(book))

	// Index for search asynchronously
	if s.searchIndexer != nil {
		go func() {
			if err := s.searchIndexer.IndexBook(context.Background(), book); err != nil {
				if s.logger != nil {
					s.logger.Warn("failed to index book for search", "book_id", book.ID, "error", err)
				}
			}
		}()
	}

	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	key := []byte(bookPrefix + id)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// UpdateBook updates an existing book.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	key := []byte(bookPrefix + book.ID)

	// Get old book for index updates
	oldBook, err := s.GetBook(ctx, book.ID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Books never move between shelves, but keep the index honest
		// if the owner ever changes.
		if oldBook.UserID != book.UserID {
			if err := txn.Delete(bookUserKey(oldBook.UserID, book.ID)); err != nil {
				return err
			}
			if err := txn.Set(bookUserKey(book.UserID, book.ID), []byte{}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	s.eventEmitter.Emit(sse.NewBookUpdatedEvent(book))

	if s.searchIndexer != nil {
		go func() {
			if err := s.searchIndexer.IndexBook(context.Background(), book); err != nil {
				if s.logger != nil {
					s.logger.Warn("failed to index book for search", "book_id", book.ID, "error", err)
				}
			}
		}()
	}

	return nil
}

// DeleteBook removes a book and its quotes.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}

	// Delete the book's quotes first so nothing dangles.
	quotes, err := s.ListBookQuotes(ctx, id)
	if err != nil {
		return fmt.Errorf("list quotes for delete: %w", err)
	}
	for _, quote := range quotes {
		if err := s.DeleteQuote(ctx, quote.ID); err != nil {
			return fmt.Errorf("delete quote %s: %w", quote.ID, err)
		}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(bookPrefix + id)); err != nil {
			return err
		}
		return txn.Delete(bookUserKey(book.UserID, id))
	})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book deleted",
			slog.String("id", id),
			slog.String("user_id", book.UserID),
		)
	}

	s.eventEmitter.Emit(sse.NewBookDeletedEvent(book.UserID, id))

	if s.searchIndexer != nil {
		go func() {
			if err := s.searchIndexer.DeleteBook(context.Background(), id); err != nil {
				if s.logger != nil {
					s.logger.Warn("failed to remove book from search index", "book_id", id, "error", err)
				}
			}
		}()
	}

	return nil
}

// ListUserBooks returns all books on a user's shelf.
func (s *Store) ListUserBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(bookByUserPrefix + userID + ":")

	var bookIDs []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			bookIDs = append(bookIDs, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}

	books := make([]*domain.Book, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		book, err := s.GetBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, ErrBookNotFound) {
				continue // index pointing at a deleted book
			}
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// ListAllBooks returns every book in the store across all shelves.
// Used for rebuilding the search index on startup.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(bookPrefix)

	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return fmt.Errorf("unmarshal book: %w", err)
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}
	return books, nil
}

// CountUserBooksByStatus counts a user's books completed in a given
// status. Used by the dashboard and the friends reading ranking.
func (s *Store) CountUserBooksByStatus(ctx context.Context, userID string, status domain.ReadingStatus) (int, error) {
	books, err := s.ListUserBooks(ctx, userID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, book := range books {
		if book.Status == status {
			count++
		}
	}
	return count, nil
}
