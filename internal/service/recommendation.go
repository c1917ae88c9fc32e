package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Garbson/LitShelf/internal/domain"
	domainerrors "github.com/Garbson/LitShelf/internal/errors"
	"github.com/Garbson/LitShelf/internal/id"
	"github.com/Garbson/LitShelf/internal/localstore"
	"github.com/Garbson/LitShelf/internal/store"
)

// recommendationBackend is the storage strategy behind the recommendation
// service. The remote backend persists to the shared store; the local
// backend mirrors the same operations onto local storage.
type recommendationBackend interface {
	Create(ctx context.Context, rec *domain.Recommendation) error
	Get(ctx context.Context, recID string) (*domain.Recommendation, error)
	Update(ctx context.Context, rec *domain.Recommendation) error
	Delete(ctx context.Context, recID string) error
	ListReceived(ctx context.Context, userID string) ([]*domain.Recommendation, error)
	ListSent(ctx context.Context, userID string) ([]*domain.Recommendation, error)
}

// remoteRecommendations is the shared-store backend.
type remoteRecommendations struct {
	store *store.Store
}

func (r *remoteRecommendations) Create(ctx context.Context, rec *domain.Recommendation) error {
	return r.store.CreateRecommendation(ctx, rec)
}

func (r *remoteRecommendations) Get(ctx context.Context, recID string) (*domain.Recommendation, error) {
	return r.store.GetRecommendation(ctx, recID)
}

func (r *remoteRecommendations) Update(ctx context.Context, rec *domain.Recommendation) error {
	return r.store.UpdateRecommendation(ctx, rec)
}

func (r *remoteRecommendations) Delete(ctx context.Context, recID string) error {
	return r.store.DeleteRecommendation(ctx, recID)
}

func (r *remoteRecommendations) ListReceived(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	return r.store.ListReceivedRecommendations(ctx, userID)
}

func (r *remoteRecommendations) ListSent(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	return r.store.ListSentRecommendations(ctx, userID)
}

// localRecommendations is the fallback backend over local storage. The
// first time a user's inbox is read it seeds sample recommendations, so
// the feature demonstrates itself even without a reachable backend.
type localRecommendations struct {
	store  *localstore.Store
	logger *slog.Logger

	mu     sync.Mutex
	seeded map[string]bool
}

func newLocalRecommendations(st *localstore.Store, logger *slog.Logger) *localRecommendations {
	return &localRecommendations{
		store:  st,
		logger: logger,
		seeded: make(map[string]bool),
	}
}

func (l *localRecommendations) Create(ctx context.Context, rec *domain.Recommendation) error {
	return l.store.SaveRecommendation(ctx, rec)
}

func (l *localRecommendations) Get(ctx context.Context, recID string) (*domain.Recommendation, error) {
	return l.store.GetRecommendation(ctx, recID)
}

func (l *localRecommendations) Update(ctx context.Context, rec *domain.Recommendation) error {
	return l.store.SaveRecommendation(ctx, rec)
}

func (l *localRecommendations) Delete(ctx context.Context, recID string) error {
	return l.store.DeleteRecommendation(ctx, recID)
}

func (l *localRecommendations) ListReceived(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	l.seedDemoData(ctx, userID)
	return l.store.ListReceivedRecommendations(ctx, userID)
}

func (l *localRecommendations) ListSent(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	return l.store.ListSentRecommendations(ctx, userID)
}

// seedDemoData runs once per user per process and only when the user has
// no local recommendations yet.
func (l *localRecommendations) seedDemoData(ctx context.Context, userID string) {
	l.mu.Lock()
	if l.seeded[userID] {
		l.mu.Unlock()
		return
	}
	l.seeded[userID] = true
	l.mu.Unlock()

	existing, err := l.store.ListReceivedRecommendations(ctx, userID)
	if err != nil || len(existing) > 0 {
		return
	}

	for _, demo := range demoRecommendations(userID) {
		if err := l.store.SaveRecommendation(ctx, demo); err != nil {
			if l.logger != nil {
				l.logger.Warn("failed to seed demo recommendation", "error", err)
			}
			return
		}
	}
}

func demoRecommendations(userID string) []*domain.Recommendation {
	samples := []struct {
		id      string
		title   string
		author  string
		genre   string
		pages   int
		message string
	}{
		{"rec-demo-1", "The Name of the Wind", "Patrick Rothfuss", "Fantasy", 662, "A friend would have sent you this."},
		{"rec-demo-2", "Project Hail Mary", "Andy Weir", "Science Fiction", 476, "Sample recommendation while offline."},
	}

	recs := make([]*domain.Recommendation, 0, len(samples))
	for _, sample := range samples {
		rec := &domain.Recommendation{
			Syncable: domain.Syncable{
				ID: sample.id + "-" + userID,
			},
			SenderID:      "demo",
			RecipientID:   userID,
			BookTitle:     sample.title,
			BookAuthor:    sample.author,
			BookGenre:     sample.genre,
			BookPageCount: sample.pages,
			Message:       sample.message,
			Status:        domain.RecommendationPending,
		}
		rec.InitTimestamps()
		recs = append(recs, rec)
	}
	return recs
}

// RecommendationService lets friends recommend books to each other.
//
// It runs one of two interchangeable storage backends. In remote mode
// recommendations live in the shared store. When the shared store reports
// its recommendation schema as missing, the service permanently switches
// to the local backend for the rest of the process. The switch is
// one-way: once a schema-missing error is seen, no further remote calls
// are attempted.
type RecommendationService struct {
	store  *store.Store
	logger *slog.Logger

	remote *remoteRecommendations
	local  *localRecommendations

	mu       sync.Mutex
	fallback bool
}

// NewRecommendationService creates a new recommendation service.
// With remoteEnabled false the service starts directly in fallback mode.
func NewRecommendationService(
	st *store.Store,
	local *localstore.Store,
	remoteEnabled bool,
	logger *slog.Logger,
) *RecommendationService {
	return &RecommendationService{
		store:    st,
		logger:   logger,
		remote:   &remoteRecommendations{store: st},
		local:    newLocalRecommendations(local, logger),
		fallback: !remoteEnabled,
	}
}

// InFallback reports whether the service is serving from local storage.
func (s *RecommendationService) InFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback
}

// backend returns the active storage backend.
func (s *RecommendationService) backend() recommendationBackend {
	if s.InFallback() {
		return s.local
	}
	return s.remote
}

// enterFallback flips the service onto the local backend. Idempotent.
func (s *RecommendationService) enterFallback() {
	s.mu.Lock()
	already := s.fallback
	s.fallback = true
	s.mu.Unlock()

	if !already && s.logger != nil {
		s.logger.Warn("recommendation schema unavailable, switching to local fallback storage")
	}
}

// run executes op against the active backend. A schema-missing error from
// the remote backend flips the mode and retries the operation once
// against local storage; every other error is returned as-is.
func (s *RecommendationService) run(op func(b recommendationBackend) error) error {
	err := op(s.backend())
	if err != nil && store.IsSchemaMissing(err) {
		s.enterFallback()
		return op(s.backend())
	}
	return err
}

// isRecommendationNotFound covers both backends' not-found shapes.
func isRecommendationNotFound(err error) bool {
	return errors.Is(err, store.ErrRecommendationNotFound) || store.IsNotFound(err)
}

// SendRecommendationRequest contains a recommendation to send.
type SendRecommendationRequest struct {
	RecipientIDs []string `json:"recipient_ids" validate:"required,min=1,dive,required"`
	BookID       string   `json:"book_id" validate:"required"`
	Message      string   `json:"message,omitempty" validate:"omitempty,max=1024"`
}

// Send recommends one of the sender's books to one or more friends,
// creating one recommendation per recipient. The book's details are
// snapshotted onto each recommendation so it survives the book being
// deleted later. All recipients are checked before anything is written.
func (s *RecommendationService) Send(ctx context.Context, senderID string, req SendRecommendationRequest) ([]*domain.Recommendation, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	recipients := make([]string, 0, len(req.RecipientIDs))
	seen := make(map[string]bool, len(req.RecipientIDs))
	for _, recipientID := range req.RecipientIDs {
		if recipientID == senderID {
			return nil, domainerrors.Validation("cannot recommend a book to yourself")
		}
		if seen[recipientID] {
			continue
		}
		seen[recipientID] = true

		if err := s.requireFriendship(ctx, senderID, recipientID); err != nil {
			return nil, err
		}
		recipients = append(recipients, recipientID)
	}

	book, err := s.store.GetBook(ctx, req.BookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.UserID != senderID {
		return nil, domainerrors.NotFound("book not found")
	}

	recs := make([]*domain.Recommendation, 0, len(recipients))
	for _, recipientID := range recipients {
		recID, err := id.Generate("rec")
		if err != nil {
			return nil, fmt.Errorf("generate recommendation ID: %w", err)
		}

		rec := &domain.Recommendation{
			Syncable: domain.Syncable{
				ID: recID,
			},
			SenderID:      senderID,
			RecipientID:   recipientID,
			BookID:        book.ID,
			BookTitle:     book.Title,
			BookAuthor:    book.Author,
			BookCoverURL:  book.CoverImageURL,
			BookGenre:     book.Genre,
			BookPageCount: book.PageCount,
			Message:       req.Message,
			Status:        domain.RecommendationPending,
		}
		rec.InitTimestamps()

		err = s.run(func(b recommendationBackend) error {
			return b.Create(ctx, rec)
		})
		if err != nil {
			return nil, fmt.Errorf("create recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ListReceived returns recommendations addressed to the user.
func (s *RecommendationService) ListReceived(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	var recs []*domain.Recommendation
	err := s.run(func(b recommendationBackend) error {
		var err error
		recs, err = b.ListReceived(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list received recommendations: %w", err)
	}
	return recs, nil
}

// ListSent returns recommendations the user sent.
func (s *RecommendationService) ListSent(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	var recs []*domain.Recommendation
	err := s.run(func(b recommendationBackend) error {
		var err error
		recs, err = b.ListSent(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list sent recommendations: %w", err)
	}
	return recs, nil
}

// PendingCount returns how many received recommendations await a response.
func (s *RecommendationService) PendingCount(ctx context.Context, userID string) (int, error) {
	recs, err := s.ListReceived(ctx, userID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, rec := range recs {
		if rec.Status == domain.RecommendationPending {
			count++
		}
	}
	return count, nil
}

// Accept marks a pending recommendation as accepted. In remote mode the
// recommended book is added to the recipient's shelf as a wishlist entry;
// in fallback mode the status changes without touching the shelf.
func (s *RecommendationService) Accept(ctx context.Context, userID, recID string) (*domain.Recommendation, error) {
	rec, err := s.resolve(ctx, userID, recID, domain.RecommendationAccepted)
	if err != nil {
		return nil, err
	}

	if !s.InFallback() {
		book := rec.AsBook()
		bookID, err := id.Generate("book")
		if err != nil {
			return nil, fmt.Errorf("generate book ID: %w", err)
		}
		book.ID = bookID
		book.InitTimestamps()

		if err := s.store.CreateBook(ctx, book); err != nil {
			// The recommendation is already resolved; surface the shelf
			// failure without undoing it.
			return nil, fmt.Errorf("add recommended book: %w", err)
		}
	}

	return rec, nil
}

// Reject marks a pending recommendation as rejected.
func (s *RecommendationService) Reject(ctx context.Context, userID, recID string) (*domain.Recommendation, error) {
	return s.resolve(ctx, userID, recID, domain.RecommendationRejected)
}

// resolve transitions a pending recommendation to a terminal status.
func (s *RecommendationService) resolve(ctx context.Context, userID, recID string, status domain.RecommendationStatus) (*domain.Recommendation, error) {
	rec, err := s.get(ctx, recID)
	if err != nil {
		return nil, err
	}

	if rec.RecipientID != userID {
		return nil, domainerrors.Forbidden("only the recipient can respond to a recommendation")
	}
	if !rec.Resolve(status) {
		return nil, domainerrors.StateConflict("recommendation already resolved")
	}

	err = s.run(func(b recommendationBackend) error {
		return b.Update(ctx, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("update recommendation: %w", err)
	}
	return rec, nil
}

// Delete removes a recommendation in any state. Sender and recipient may
// both delete.
func (s *RecommendationService) Delete(ctx context.Context, userID, recID string) error {
	rec, err := s.get(ctx, recID)
	if err != nil {
		return err
	}

	if rec.SenderID != userID && rec.RecipientID != userID {
		return domainerrors.Forbidden("not a participant of this recommendation")
	}

	err = s.run(func(b recommendationBackend) error {
		return b.Delete(ctx, recID)
	})
	if err != nil {
		return fmt.Errorf("delete recommendation: %w", err)
	}
	return nil
}

func (s *RecommendationService) get(ctx context.Context, recID string) (*domain.Recommendation, error) {
	var rec *domain.Recommendation
	err := s.run(func(b recommendationBackend) error {
		var err error
		rec, err = b.Get(ctx, recID)
		return err
	})
	if err != nil {
		if isRecommendationNotFound(err) {
			return nil, domainerrors.NotFound("recommendation not found")
		}
		return nil, fmt.Errorf("get recommendation: %w", err)
	}
	return rec, nil
}

// requireFriendship verifies an accepted friendship between two users.
func (s *RecommendationService) requireFriendship(ctx context.Context, userID, otherID string) error {
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
