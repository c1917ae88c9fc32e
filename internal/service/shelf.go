// Package service implements the application services behind the HTTP API:
// bookshelf management, statistics, the social graph, recommendations and
// authentication.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Garbson/LitShelf/internal/domain"
	domainerrors "github.com/Garbson/LitShelf/internal/errors"
	"github.com/Garbson/LitShelf/internal/id"
	"github.com/Garbson/LitShelf/internal/search"
	"github.com/Garbson/LitShelf/internal/store"
)

// MetadataProvider resolves book details from an external catalog.
type MetadataProvider interface {
	BestMatch(ctx context.Context, title, author string) (*domain.BookDetails, error)
}

// ShelfSearcher runs full-text queries over a user's shelf.
type ShelfSearcher interface {
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
}

// BookshelfService manages a user's book collection and quotes.
type BookshelfService struct {
	store    *store.Store
	metadata MetadataProvider // nil disables enrichment
	searcher ShelfSearcher    // nil disables search
	logger   *slog.Logger
}

// NewBookshelfService creates a new bookshelf service.
func NewBookshelfService(
	st *store.Store,
	metadata MetadataProvider,
	searcher ShelfSearcher,
	logger *slog.Logger,
) *BookshelfService {
	return &BookshelfService{
		store:    st,
		metadata: metadata,
		searcher: searcher,
		logger:   logger,
	}
}

// AddBookRequest contains the data for a book being added to a shelf.
type AddBookRequest struct {
	Title         string `json:"title" validate:"required,max=512"`
	Author        string `json:"author" validate:"required,max=256"`
	CoverImageURL string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	Description   string `json:"description,omitempty"`
	PageCount     int    `json:"page_count,omitempty" validate:"omitempty,min=0"`
	Genre         string `json:"genre,omitempty" validate:"omitempty,max=128"`
	Status        *int   `json:"status,omitempty"`
	GoogleBookID  string `json:"google_book_id,omitempty"`
}

// AddBook adds a book to the user's shelf. Missing metadata is filled from
// the catalog when a provider is configured; catalog failures never block
// the add itself, but store failures do.
func (s *BookshelfService) AddBook(ctx context.Context, userID string, req AddBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Syncable: domain.Syncable{
			ID: bookID,
		},
		UserID:        userID,
		Title:         strings.TrimSpace(req.Title),
		Author:        strings.TrimSpace(req.Author),
		CoverImageURL: req.CoverImageURL,
		Description:   req.Description,
		PageCount:     req.PageCount,
		Genre:         req.Genre,
		GoogleBookID:  req.GoogleBookID,
	}
	book.InitTimestamps()
	book.SetStatus(domain.CoerceReadingStatus(req.Status))

	s.enrich(ctx, book)

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// ListBooks returns the user's shelf, back-filling catalog metadata for
// books that are missing it. Enriched books are persisted before they are
// returned, so the backfill happens once per book.
func (s *BookshelfService) ListBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	books, err := s.store.ListUserBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	for _, book := range books {
		s.backfill(ctx, book)
	}
	return books, nil
}

// GetBook returns one of the user's books, back-filling metadata.
func (s *BookshelfService) GetBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.getOwnedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	s.backfill(ctx, book)
	return book, nil
}

// FriendShelf returns a friend's shelf. The caller must have an accepted
// friendship with the owner. The view is read-only: no metadata backfill.
func (s *BookshelfService) FriendShelf(ctx context.Context, userID, friendID string) ([]*domain.Book, error) {
	if err := s.requireFriendship(ctx, userID, friendID); err != nil {
		return nil, err
	}

	books, err := s.store.ListUserBooks(ctx, friendID)
	if err != nil {
		return nil, fmt.Errorf("list friend books: %w", err)
	}
	return books, nil
}

// GetFriendBook returns a single book from a friend's shelf, read-only.
func (s *BookshelfService) GetFriendBook(ctx context.Context, userID, friendID, bookID string) (*domain.Book, error) {
	if err := s.requireFriendship(ctx, userID, friendID); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.UserID != friendID {
		return nil, domainerrors.NotFound("book not found")
	}
	return book, nil
}

// UpdateBookRequest contains book fields to change. Nil fields are left
// untouched.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,max=512"`
	Author        *string `json:"author,omitempty" validate:"omitempty,max=256"`
	CoverImageURL *string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	Description   *string `json:"description,omitempty"`
	PageCount     *int    `json:"page_count,omitempty" validate:"omitempty,min=0"`
	Genre         *string `json:"genre,omitempty" validate:"omitempty,max=128"`
	Notes         *string `json:"notes,omitempty"`
	Status        *int    `json:"status,omitempty"`
	Rating        *int    `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	CurrentPage   *int    `json:"current_page,omitempty" validate:"omitempty,min=0"`
}

// UpdateBook applies changes to one of the user's books. Status changes
// stamp the reading dates, and reaching the last page moves the book to
// Completed.
func (s *BookshelfService) UpdateBook(ctx context.Context, userID, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.getOwnedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.CoverImageURL != nil {
		book.CoverImageURL = *req.CoverImageURL
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.PageCount != nil {
		book.PageCount = *req.PageCount
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.Notes != nil {
		book.Notes = *req.Notes
	}
	if req.Rating != nil {
		book.Rating = *req.Rating
	}
	if req.Status != nil {
		book.SetStatus(domain.CoerceReadingStatus(req.Status))
	}
	if req.CurrentPage != nil {
		book.CurrentPage = *req.CurrentPage
		if book.ProgressComplete() && book.Status != domain.StatusCompleted {
			book.SetStatus(domain.StatusCompleted)
		}
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// DeleteBook removes one of the user's books along with its quotes.
func (s *BookshelfService) DeleteBook(ctx context.Context, userID, bookID string) error {
	if _, err := s.getOwnedBook(ctx, userID, bookID); err != nil {
		return err
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// AddQuoteRequest contains a quote to save.
type AddQuoteRequest struct {
	BookID string `json:"book_id" validate:"required"`
	Text   string `json:"text" validate:"required,max=4096"`
	Page   *int   `json:"page,omitempty" validate:"omitempty,min=0"`
}

// AddQuote saves a quote for one of the user's books. Saving a quote whose
// text already exists on the book returns the existing quote instead of
// creating a duplicate.
func (s *BookshelfService) AddQuote(ctx context.Context, userID string, req AddQuoteRequest) (*domain.Quote, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.getOwnedBook(ctx, userID, req.BookID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)

	existing, err := s.store.ListBookQuotes(ctx, req.BookID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	for _, q := range existing {
		if q.Text == text {
			return q, nil
		}
	}

	quoteID, err := id.Generate("quote")
	if err != nil {
		return nil, fmt.Errorf("generate quote ID: %w", err)
	}

	quote := &domain.Quote{
		Syncable: domain.Syncable{
			ID: quoteID,
		},
		UserID: userID,
		BookID: req.BookID,
		Text:   text,
		Page:   req.Page,
	}
	quote.InitTimestamps()

	if err := s.store.CreateQuote(ctx, quote); err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return quote, nil
}

// UpdateQuoteRequest contains quote fields to change.
type UpdateQuoteRequest struct {
	Text *string `json:"text,omitempty" validate:"omitempty,max=4096"`
	Page *int    `json:"page,omitempty" validate:"omitempty,min=0"`
}

// UpdateQuote edits one of the user's quotes.
func (s *BookshelfService) UpdateQuote(ctx context.Context, userID, quoteID string, req UpdateQuoteRequest) (*domain.Quote, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	quote, err := s.getOwnedQuote(ctx, userID, quoteID)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		quote.Text = strings.TrimSpace(*req.Text)
	}
	if req.Page != nil {
		quote.Page = req.Page
	}
	quote.Touch()

	if err := s.store.UpdateQuote(ctx, quote); err != nil {
		return nil, fmt.Errorf("update quote: %w", err)
	}
	return quote, nil
}

// DeleteQuote removes one of the user's quotes.
func (s *BookshelfService) DeleteQuote(ctx context.Context, userID, quoteID string) error {
	if _, err := s.getOwnedQuote(ctx, userID, quoteID); err != nil {
		return err
	}

	if err := s.store.DeleteQuote(ctx, quoteID); err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	return nil
}

// ListBookQuotes returns the quotes saved for one of the user's books.
func (s *BookshelfService) ListBookQuotes(ctx context.Context, userID, bookID string) ([]*domain.Quote, error) {
	if _, err := s.getOwnedBook(ctx, userID, bookID); err != nil {
		return nil, err
	}
	quotes, err := s.store.ListBookQuotes(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

// ListQuotes returns every quote the user has saved across books.
func (s *BookshelfService) ListQuotes(ctx context.Context, userID string) ([]*domain.Quote, error) {
	quotes, err := s.store.ListUserQuotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

// Search runs a full-text query over the user's shelf.
func (s *BookshelfService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if s.searcher == nil {
		return nil, domainerrors.Internal("search is not configured")
	}
	return s.searcher.Search(ctx, params)
}

// getOwnedBook loads a book and verifies ownership. Books owned by other
// users surface as NotFound so ownership is not leaked.
func (s *BookshelfService) getOwnedBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.UserID != userID {
		return nil, domainerrors.NotFound("book not found")
	}
	return book, nil
}

func (s *BookshelfService) getOwnedQuote(ctx context.Context, userID, quoteID string) (*domain.Quote, error) {
	quote, err := s.store.GetQuote(ctx, quoteID)
	if err != nil {
		if errors.Is(err, store.ErrQuoteNotFound) {
			return nil, domainerrors.NotFound("quote not found")
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if quote.UserID != userID {
		return nil, domainerrors.NotFound("quote not found")
	}
	return quote, nil
}

// requireFriendship verifies an accepted friendship between two users.
func (s *BookshelfService) requireFriendship(ctx context.Context, userID, otherID string) error {
	key := domain.NewFriendshipKey(userID, otherID)
	friendship, err := s.store.GetFriendship(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrFriendshipNotFound) {
			return domainerrors.Forbidden("not friends with this user")
		}
		return fmt.Errorf("get friendship: %w", err)
	}
	if friendship.Status != domain.FriendshipAccepted {
		return domainerrors.Forbidden("not friends with this user")
	}
	return nil
}

// enrich fills empty metadata on a new book from the catalog. Failures are
// logged and ignored.
func (s *BookshelfService) enrich(ctx context.Context, book *domain.Book) {
	if s.metadata == nil || !book.NeedsEnrichment() {
		return
	}

	details, err := s.metadata.BestMatch(ctx, book.Title, book.Author)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("metadata lookup failed",
				"title", book.Title,
				"error", err,
			)
		}
		return
	}
	if details != nil {
		book.Merge(*details)
	}
}

// backfill enriches an already stored book and persists the result before
// it is handed out.
func (s *BookshelfService) backfill(ctx context.Context, book *domain.Book) {
	if s.metadata == nil || !book.NeedsEnrichment() {
		return
	}

	details, err := s.metadata.BestMatch(ctx, book.Title, book.Author)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("metadata backfill failed",
				"book_id", book.ID,
				"error", err,
			)
		}
		return
	}
	if details == nil || !book.Merge(*details) {
		return
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist backfilled metadata",
			"book_id", book.ID,
			"error", err,
		)
	}
}
