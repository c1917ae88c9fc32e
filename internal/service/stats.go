package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/Garbson/LitShelf/internal/domain"
	domainerrors "github.com/Garbson/LitShelf/internal/errors"
	"github.com/Garbson/LitShelf/internal/localstore"
	"github.com/Garbson/LitShelf/internal/sse"
	"github.com/Garbson/LitShelf/internal/store"
)

// StatsService aggregates dashboard statistics and manages reading goals.
type StatsService struct {
	store   *store.Store
	local   *localstore.Store
	emitter store.EventEmitter
	logger  *slog.Logger
}

// NewStatsService creates a new statistics service.
func NewStatsService(
	st *store.Store,
	local *localstore.Store,
	emitter store.EventEmitter,
	logger *slog.Logger,
) *StatsService {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	return &StatsService{
		store:   st,
		local:   local,
		emitter: emitter,
		logger:  logger,
	}
}

// Dashboard builds the full dashboard for a user and year.
func (s *StatsService) Dashboard(ctx context.Context, userID, year string) (*domain.DashboardStats, error) {
	books, err := s.store.ListUserBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	stats := &domain.DashboardStats{
		TotalBooks:        len(books),
		GenreDistribution: make(map[string]int),
	}

	var completed []*domain.Book
	for _, book := range books {
		stats.GenreDistribution[book.GenreBucket()]++

		switch book.Status {
		case domain.StatusWishlist:
			stats.WishlistCount++
		case domain.StatusReading:
			stats.ReadingCount++
			if stats.CurrentlyReading == nil || startedAfter(book, stats.CurrentlyReading) {
				stats.CurrentlyReading = book
			}
		case domain.StatusCompleted:
			stats.CompletedCount++
			completed = append(completed, book)
			if stats.LastCompleted == nil || finishedAfter(book, stats.LastCompleted) {
				stats.LastCompleted = book
			}
		}
	}

	stats.AverageReadingDays = averageReadingDays(completed, time.Now())

	quotes, err := s.store.ListUserQuotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	stats.TotalQuotes = len(quotes)
	for _, q := range quotes {
		if stats.LastQuote == nil || q.CreatedAt.After(stats.LastQuote.CreatedAt) {
			stats.LastQuote = q
		}
	}

	goal, err := s.GetReadingGoal(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	goal.Completed = stats.CompletedCount
	stats.Goal = *goal

	ranking, err := s.Ranking(ctx, userID)
	if err != nil {
		// The dashboard is still useful without the ranking.
		if s.logger != nil {
			s.logger.Warn("failed to build reading ranking", "user_id", userID, "error", err)
		}
	} else {
		stats.Ranking = ranking
	}

	return stats, nil
}

// GetReadingGoal resolves the yearly goal target through the fallback
// chain: local storage, then the user's stored goals, then the default.
// A target found further down the chain is echoed back into local storage.
func (s *StatsService) GetReadingGoal(ctx context.Context, userID, year string) (*domain.ReadingGoal, error) {
	if year == "" {
		year = strconv.Itoa(time.Now().Year())
	}

	if s.local != nil {
		target, err := s.local.GetReadingGoal(ctx, userID, year)
		if err == nil {
			return &domain.ReadingGoal{Year: year, Target: target}, nil
		}
		if !store.IsNotFound(err) {
			return nil, fmt.Errorf("local goal lookup: %w", err)
		}
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	target, ok := user.GoalFor(year)
	if !ok {
		target = domain.DefaultReadingGoal
	}

	if s.local != nil {
		if err := s.local.SetReadingGoal(ctx, userID, year, target); err != nil && s.logger != nil {
			s.logger.Warn("failed to cache reading goal locally",
				"user_id", userID,
				"error", err,
			)
		}
	}

	return &domain.ReadingGoal{Year: year, Target: target}, nil
}

// SetReadingGoal records a new goal target in both local storage and the
// user's profile, and announces the change.
func (s *StatsService) SetReadingGoal(ctx context.Context, userID, year string, target int) (*domain.ReadingGoal, error) {
	if target <= 0 {
		return nil, domainerrors.Validation("goal target must be positive")
	}
	if year == "" {
		year = strconv.Itoa(time.Now().Year())
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.SetGoal(year, target)
	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if s.local != nil {
		if err := s.local.SetReadingGoal(ctx, userID, year, target); err != nil && s.logger != nil {
			s.logger.Warn("failed to store reading goal locally",
				"user_id", userID,
				"error", err,
			)
		}
	}

	s.emitter.Emit(sse.NewGoalUpdatedEvent(userID, year, target))

	return &domain.ReadingGoal{Year: year, Target: target}, nil
}

// Ranking builds the completed-books leaderboard of the user and their
// accepted friends, most books first.
func (s *StatsService) Ranking(ctx context.Context, userID string) ([]domain.RankingEntry, error) {
	friendships, err := s.store.ListUserFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}

	memberIDs := []string{userID}
	for _, f := range friendships {
		if f.Status == domain.FriendshipAccepted {
			memberIDs = append(memberIDs, f.Other(userID))
		}
	}

	users, err := s.store.GetUsersByIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	ranking := make([]domain.RankingEntry, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		user, ok := users[memberID]
		if !ok {
			continue
		}

		count, err := s.store.CountUserBooksByStatus(ctx, memberID, domain.StatusCompleted)
		if err != nil {
			return nil, fmt.Errorf("count completed books: %w", err)
		}

		ranking = append(ranking, domain.RankingEntry{
			UserID:         memberID,
			DisplayName:    user.DisplayName,
			AvatarURL:      user.AvatarURL,
			BooksCompleted: count,
			IsCurrentUser:  memberID == userID,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].BooksCompleted > ranking[j].BooksCompleted
	})
	return ranking, nil
}

// averageReadingDays estimates how long a finished book takes. Books with
// both reading dates are averaged directly; without any dated book the
// completed count is spread over the days elapsed this year; with no
// completed books at all a fixed default applies.
func averageReadingDays(completed []*domain.Book, now time.Time) float64 {
	var total, dated int
	for _, book := range completed {
		if days, ok := book.ReadingDays(); ok {
			total += days
			dated++
		}
	}
	if dated > 0 {
		return float64(total) / float64(dated)
	}

	if len(completed) > 0 {
		janFirst := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		elapsed := int(now.Sub(janFirst).Hours()/24) + 1
		return float64(elapsed) / float64(len(completed))
	}

	return domain.DefaultAverageReadingDays
}

func startedAfter(a, b *domain.Book) bool {
	if a.StartedReadingAt == nil {
		return false
	}
	if b.StartedReadingAt == nil {
		return true
	}
	return a.StartedReadingAt.After(*b.StartedReadingAt)
}

func finishedAfter(a, b *domain.Book) bool {
	if a.FinishedReadingAt == nil {
		return false
	}
	if b.FinishedReadingAt == nil {
		return true
	}
	return a.FinishedReadingAt.After(*b.FinishedReadingAt)
}
