package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Garbson/LitShelf/internal/domain"
	domainerrors "github.com/Garbson/LitShelf/internal/errors"
	"github.com/Garbson/LitShelf/internal/sse"
	"github.com/Garbson/LitShelf/internal/store"
)

// FriendshipAnnotation describes how a user relates to the caller.
type FriendshipAnnotation string

const (
	AnnotationNone            FriendshipAnnotation = "none"
	AnnotationFriends         FriendshipAnnotation = "friends"
	AnnotationPendingIncoming FriendshipAnnotation = "pending_incoming"
	AnnotationPendingOutgoing FriendshipAnnotation = "pending_outgoing"
)

// FriendRequest pairs a pending friendship with the other party's profile.
type FriendRequest struct {
	Friendship *domain.Friendship `json:"friendship"`
	Profile    domain.Profile     `json:"profile"`
}

// UserSearchResult is a discoverable user annotated with their
// relationship to the caller.
type UserSearchResult struct {
	Profile    domain.Profile       `json:"profile"`
	Friendship FriendshipAnnotation `json:"friendship"`
}

// FriendQuote is a friend's quote with its book attribution attached.
type FriendQuote struct {
	Quote      *domain.Quote `json:"quote"`
	BookTitle  string        `json:"book_title,omitempty"`
	BookAuthor string        `json:"book_author,omitempty"`
}

// SocialSnapshot is the cached view a watch keeps for a user.
type SocialSnapshot struct {
	Friends  []domain.Profile `json:"friends"`
	Incoming []FriendRequest  `json:"incoming"`
	Outgoing []FriendRequest  `json:"outgoing"`
}

// SocialService manages the friendship graph.
type SocialService struct {
	store   *store.Store
	manager *sse.Manager // nil disables live watches
	logger  *slog.Logger

	mu      sync.Mutex
	watches map[string]*socialWatch
}

// socialWatch is a live subscription that keeps a user's snapshot fresh.
type socialWatch struct {
	sub  *sse.Subscription
	done chan struct{}

	mu       sync.RWMutex
	snapshot SocialSnapshot
}

// NewSocialService creates a new social graph service.
func NewSocialService(st *store.Store, manager *sse.Manager, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:   st,
		manager: manager,
		logger:  logger,
		watches: make(map[string]*socialWatch),
	}
}

// SendFriendRequest creates a pending friendship edge from the caller to
// another user, addressed by user ID or by email. A rejected edge can be
// re-requested; accepted and pending edges are reported distinctly.
func (s *SocialService) SendFriendRequest(ctx context.Context, userID, target string) (*domain.Friendship, error) {
	otherID, err := s.resolveUser(ctx, target)
	if err != nil {
		return nil, err
	}

	if userID == otherID {
		return nil, domainerrors.Validation("cannot send a friend request to yourself")
	}

	key := domain.NewFriendshipKey(userID, otherID)
	existing, err := s.store.GetFriendship(ctx, key)
	if err != nil && !errors.Is(err, store.ErrFriendshipNotFound) {
		return nil, fmt.Errorf("get friendship: %w", err)
	}

	if existing != nil {
		switch existing.Status {
		case domain.FriendshipAccepted:
			return nil, domainerrors.AlreadyExists("already friends with this user")
		case domain.FriendshipPending:
			return nil, domainerrors.Conflict("friend request already pending")
		case domain.FriendshipRejected:
			// A rejected edge can be asked again.
			existing.Status = domain.FriendshipPending
			existing.RequestedBy = userID
			existing.Touch()
			if err := s.store.UpdateFriendship(ctx, existing); err != nil {
				return nil, fmt.Errorf("update friendship: %w", err)
			}
			return existing, nil
		}
	}

	friendship := domain.NewFriendship(userID, otherID)
	if err := s.store.CreateFriendship(ctx, friendship); err != nil {
		if errors.Is(err, store.ErrFriendshipExists) {
			return nil, domainerrors.Conflict("friend request already pending")
		}
		return nil, fmt.Errorf("create friendship: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("friend request sent", "from", userID, "to", otherID)
	}
	return friendship, nil
}

// AcceptFriendRequest accepts a pending request addressed to the caller.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, userID, otherID string) (*domain.Friendship, error) {
	return s.respond(ctx, userID, otherID, domain.FriendshipAccepted)
}

// RejectFriendRequest rejects a pending request addressed to the caller.
func (s *SocialService) RejectFriendRequest(ctx context.Context, userID, otherID string) (*domain.Friendship, error) {
	return s.respond(ctx, userID, otherID, domain.FriendshipRejected)
}

func (s *SocialService) respond(ctx context.Context, userID, otherID string, status domain.FriendshipStatus) (*domain.Friendship, error) {
	friendship, err := s.getFriendship(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	if !friendship.Pending() {
		return nil, domainerrors.StateConflict("friend request already resolved")
	}
	if !friendship.CanRespond(userID) {
		return nil, domainerrors.Forbidden("only the recipient can respond to a friend request")
	}

	friendship.Status = status
	friendship.Touch()

	if err := s.store.UpdateFriendship(ctx, friendship); err != nil {
		return nil, fmt.Errorf("update friendship: %w", err)
	}
	return friendship, nil
}

// CancelFriendRequest withdraws a pending request the caller sent.
func (s *SocialService) CancelFriendRequest(ctx context.Context, userID, otherID string) error {
	friendship, err := s.getFriendship(ctx, userID, otherID)
	if err != nil {
		return err
	}

	if !friendship.Pending() {
		return domainerrors.StateConflict("friend request already resolved")
	}
	if friendship.RequestedBy != userID {
		return domainerrors.Forbidden("only the requester can cancel a friend request")
	}

	if err := s.store.DeleteFriendship(ctx, friendship.FriendshipKey); err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	return nil
}

// RemoveFriend deletes an accepted friendship.
func (s *SocialService) RemoveFriend(ctx context.Context, userID, otherID string) error {
	friendship, err := s.getFriendship(ctx, userID, otherID)
	if err != nil {
		return err
	}

	if friendship.Status != domain.FriendshipAccepted {
		return domainerrors.NotFound("friendship not found")
	}

	if err := s.store.DeleteFriendship(ctx, friendship.FriendshipKey); err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	return nil
}

// ListFriends returns the profiles of the user's accepted friends.
func (s *SocialService) ListFriends(ctx context.Context, userID string) ([]domain.Profile, error) {
	friendships, err := s.store.ListUserFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}

	var friendIDs []string
	for _, f := range friendships {
		if f.Status == domain.FriendshipAccepted {
			friendIDs = append(friendIDs, f.Other(userID))
		}
	}

	users, err := s.store.GetUsersByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	profiles := make([]domain.Profile, 0, len(friendIDs))
	for _, friendID := range friendIDs {
		if user, ok := users[friendID]; ok {
			profiles = append(profiles, user.Profile())
		}
	}
	return profiles, nil
}

// ListIncomingRequests returns pending requests addressed to the user.
func (s *SocialService) ListIncomingRequests(ctx context.Context, userID string) ([]FriendRequest, error) {
	return s.listRequests(ctx, userID, true)
}

// ListSentRequests returns pending requests the user sent.
func (s *SocialService) ListSentRequests(ctx context.Context, userID string) ([]FriendRequest, error) {
	return s.listRequests(ctx, userID, false)
}

func (s *SocialService) listRequests(ctx context.Context, userID string, incoming bool) ([]FriendRequest, error) {
	friendships, err := s.store.ListUserFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}

	var pending []*domain.Friendship
	var otherIDs []string
	for _, f := range friendships {
		if !f.Pending() {
			continue
		}
		if incoming == (f.RequestedBy != userID) {
			pending = append(pending, f)
			otherIDs = append(otherIDs, f.Other(userID))
		}
	}

	users, err := s.store.GetUsersByIDs(ctx, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	requests := make([]FriendRequest, 0, len(pending))
	for _, f := range pending {
		other, ok := users[f.Other(userID)]
		if !ok {
			continue
		}
		requests = append(requests, FriendRequest{
			Friendship: f,
			Profile:    other.Profile(),
		})
	}
	return requests, nil
}

// SearchUsers lists discoverable users matching the query, annotated with
// their relationship to the caller. An empty query lists everyone who is
// available for friends.
func (s *SocialService) SearchUsers(ctx context.Context, userID, query string) ([]UserSearchResult, error) {
	users, err := s.store.ListAvailableUsers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	friendships, err := s.store.ListUserFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}
	annotations := make(map[string]FriendshipAnnotation, len(friendships))
	for _, f := range friendships {
		other := f.Other(userID)
		switch {
		case f.Status == domain.FriendshipAccepted:
			annotations[other] = AnnotationFriends
		case f.Pending() && f.RequestedBy == userID:
			annotations[other] = AnnotationPendingOutgoing
		case f.Pending():
			annotations[other] = AnnotationPendingIncoming
		}
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	results := make([]UserSearchResult, 0, len(users))
	for _, user := range users {
		if needle != "" &&
			!strings.Contains(strings.ToLower(user.DisplayName), needle) &&
			!strings.Contains(strings.ToLower(user.Email), needle) {
			continue
		}

		annotation, ok := annotations[user.ID]
		if !ok {
			annotation = AnnotationNone
		}
		results = append(results, UserSearchResult{
			Profile:    user.Profile(),
			Friendship: annotation,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Profile.DisplayName < results[j].Profile.DisplayName
	})
	return results, nil
}

// FriendQuotes returns a friend's quotes, newest first, with book titles
// attached. A quote whose book can no longer be loaded is still returned,
// just without attribution.
func (s *SocialService) FriendQuotes(ctx context.Context, userID, friendID string) ([]FriendQuote, error) {
	if err := s.requireFriendship(ctx, userID, friendID); err != nil {
		return nil, err
	}

	quotes, err := s.store.ListUserQuotes(ctx, friendID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})

	result := make([]FriendQuote, 0, len(quotes))
	for _, quote := range quotes {
		fq := FriendQuote{Quote: quote}
		if book, err := s.store.GetBook(ctx, quote.BookID); err == nil {
			fq.BookTitle = book.Title
			fq.BookAuthor = book.Author
		}
		result = append(result, fq)
	}
	return result, nil
}

// FriendProfile returns a friend's public profile.
func (s *SocialService) FriendProfile(ctx context.Context, userID, friendID string) (*domain.Profile, error) {
	if err := s.requireFriendship(ctx, userID, friendID); err != nil {
		return nil, err
	}

	user, err := s.store.Users.Get(ctx, friendID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	profile := user.Profile()
	return &profile, nil
}

// Watch opens a live subscription for a user's social graph. Every
// friendship event addressed to the user triggers a refetch of the full
// snapshot; the refetches are unsequenced, so the last write wins.
// Watching an already watched user is a no-op.
func (s *SocialService) Watch(ctx context.Context, userID string) error {
	if s.manager == nil {
		return domainerrors.Internal("live updates are not configured")
	}

	s.mu.Lock()
	if _, ok := s.watches[userID]; ok {
		s.mu.Unlock()
		return nil
	}

	sub, err := s.manager.Subscribe(userID,
		sse.EventFriendshipRequested,
		sse.EventFriendshipUpdated,
		sse.EventFriendshipDeleted,
	)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("subscribe: %w", err)
	}

	watch := &socialWatch{
		sub:  sub,
		done: make(chan struct{}),
	}
	s.watches[userID] = watch
	s.mu.Unlock()

	s.refresh(ctx, userID, watch)

	go func() {
		for {
			select {
			case _, ok := <-sub.C:
				if !ok {
					return
				}
				s.refresh(context.Background(), userID, watch)
			case <-watch.done:
				return
			}
		}
	}()

	return nil
}

// Unwatch closes a user's live subscription. Safe to call repeatedly.
func (s *SocialService) Unwatch(userID string) {
	s.mu.Lock()
	watch, ok := s.watches[userID]
	if ok {
		delete(s.watches, userID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	close(watch.done)
	s.manager.Unsubscribe(watch.sub)
}

// Snapshot returns the cached social snapshot for a watched user.
func (s *SocialService) Snapshot(userID string) (SocialSnapshot, bool) {
	s.mu.Lock()
	watch, ok := s.watches[userID]
	s.mu.Unlock()
	if !ok {
		return SocialSnapshot{}, false
	}

	watch.mu.RLock()
	defer watch.mu.RUnlock()
	return watch.snapshot, true
}

// Shutdown implements the container shutdown hook.
func (s *SocialService) Shutdown() error {
	s.Close()
	return nil
}

// Close tears down all live subscriptions.
func (s *SocialService) Close() {
	s.mu.Lock()
	watches := s.watches
	s.watches = make(map[string]*socialWatch)
	s.mu.Unlock()

	for _, watch := range watches {
		close(watch.done)
		s.manager.Unsubscribe(watch.sub)
	}
}

// refresh refetches a watched user's snapshot and replaces it whole.
func (s *SocialService) refresh(ctx context.Context, userID string, watch *socialWatch) {
	friends, err := s.ListFriends(ctx, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("social snapshot refresh failed", "user_id", userID, "error", err)
		}
		return
	}
	incoming, err := s.ListIncomingRequests(ctx, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("social snapshot refresh failed", "user_id", userID, "error", err)
		}
		return
	}
	outgoing, err := s.ListSentRequests(ctx, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("social snapshot refresh failed", "user_id", userID, "error", err)
		}
		return
	}

	watch.mu.Lock()
	watch.snapshot = SocialSnapshot{
		Friends:  friends,
		Incoming: incoming,
		Outgoing: outgoing,
	}
	watch.mu.Unlock()
}

// resolveUser maps a user ID or an email address to a user ID.
func (s *SocialService) resolveUser(ctx context.Context, target string) (string, error) {
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(target, "@") {
		user, err = s.store.GetUserByEmail(ctx, target)
	} else {
		user, err = s.store.Users.Get(ctx, target)
	}
	if err != nil {
		if store.IsNotFound(err) {
			return "", domainerrors.NotFound("user not found")
		}
		return "", fmt.Errorf("resolve user: %w", err)
	}
	return user.ID, nil
}

func (s *SocialService) getFriendship(ctx context.Context, userID, otherID string) (*domain.Friendship, error) {
	key := domain.NewFriendshipKey(userID, otherID)
	friendship, err := s.store.GetFriendship(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrFriendshipNotFound) {
			return nil, domainerrors.NotFound("friendship not found")
		}
		return nil, fmt.Errorf("get friendship: %w", err)
	}
	return friendship, nil
}

// requireFriendship verifies an accepted friendship between two users.
func (s *SocialService) requireFriendship(ctx context.Context, userID, otherID string) error {
	friendship, err := s.getFriendship(ctx, userID, otherID)
	if err != nil {
		var derr *domainerrors.Error
		if errors.As(err, &derr) && derr.Code == domainerrors.CodeNotFound {
			return domainerrors.Forbidden("not friends with this user")
		}
		return err
	}
	if friendship.Status != domain.FriendshipAccepted {
		return domainerrors.Forbidden("not friends with this user")
	}
	return nil
}
