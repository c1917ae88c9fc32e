package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Garbson/LitShelf/internal/color"
	"github.com/Garbson/LitShelf/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/dashboard",
		Summary:     "Dashboard statistics",
		Description: "Returns shelf counts, reading pace, genre distribution and goal progress",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReadingGoal",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/goal",
		Summary:     "Get reading goal",
		Description: "Returns the user's reading goal for a year",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetReadingGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "setReadingGoal",
		Method:      http.MethodPut,
		Path:        "/api/v1/stats/goal",
		Summary:     "Set reading goal",
		Description: "Sets the user's reading goal for a year",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetReadingGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRanking",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/ranking",
		Summary:     "Friends ranking",
		Description: "Returns the reading ranking across the user and their friends",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRanking)
}

// === DTOs ===

// ReadingGoalResponse contains a reading goal in API responses.
type ReadingGoalResponse struct {
	Year      string `json:"year" doc:"Goal year"`
	Target    int    `json:"target" doc:"Books to complete"`
	Completed int    `json:"completed" doc:"Books completed so far"`
}

// RankingEntryResponse is one row of the friends reading ranking.
type RankingEntryResponse struct {
	UserID         string `json:"user_id" doc:"User ID"`
	DisplayName    string `json:"display_name" doc:"Display name"`
	AvatarURL      string `json:"avatar_url,omitempty" doc:"Avatar URL"`
	AvatarColor    string `json:"avatar_color" doc:"Deterministic fallback avatar color"`
	BooksCompleted int    `json:"books_completed" doc:"Books completed"`
	IsCurrentUser  bool   `json:"is_current_user" doc:"Whether this row is the requester"`
}

// DashboardResponse aggregates everything the dashboard shows.
type DashboardResponse struct {
	TotalBooks         int                    `json:"total_books" doc:"Books on the shelf"`
	WishlistCount      int                    `json:"wishlist_count" doc:"Wishlist books"`
	ReadingCount       int                    `json:"reading_count" doc:"Books in progress"`
	CompletedCount     int                    `json:"completed_count" doc:"Completed books"`
	TotalQuotes        int                    `json:"total_quotes" doc:"Saved quotes"`
	GenreDistribution  map[string]int         `json:"genre_distribution" doc:"Book count per genre"`
	AverageReadingDays float64                `json:"average_reading_days" doc:"Average days to finish a book"`
	CurrentlyReading   *BookResponse          `json:"currently_reading,omitempty" doc:"Most recent book in progress"`
	LastCompleted      *BookResponse          `json:"last_completed,omitempty" doc:"Most recently completed book"`
	LastQuote          *QuoteResponse         `json:"last_quote,omitempty" doc:"Most recently saved quote"`
	Goal               ReadingGoalResponse    `json:"goal" doc:"Reading goal progress for the year"`
	Ranking            []RankingEntryResponse `json:"ranking,omitempty" doc:"Friends reading ranking"`
}

// DashboardInput contains dashboard query parameters.
type DashboardInput struct {
	Authorization string `header:"Authorization"`
	Year          string `query:"year" doc:"Goal year (defaults to the current year)"`
}

// DashboardOutput wraps the dashboard response for Huma.
type DashboardOutput struct {
	Body DashboardResponse
}

// ReadingGoalInput contains parameters for reading a goal.
type ReadingGoalInput struct {
	Authorization string `header:"Authorization"`
	Year          string `query:"year" doc:"Goal year (defaults to the current year)"`
}

// ReadingGoalOutput wraps a reading goal for Huma.
type ReadingGoalOutput struct {
	Body ReadingGoalResponse
}

// SetReadingGoalRequest is the request body for setting a goal.
type SetReadingGoalRequest struct {
	Year   string `json:"year,omitempty" doc:"Goal year (defaults to the current year)"`
	Target int    `json:"target" doc:"Books to complete"`
}

// SetReadingGoalInput wraps the set goal request for Huma.
type SetReadingGoalInput struct {
	Authorization string `header:"Authorization"`
	Body          SetReadingGoalRequest
}

// RankingInput carries the bearer token.
type RankingInput struct {
	Authorization string `header:"Authorization"`
}

// RankingResponse contains the friends reading ranking.
type RankingResponse struct {
	Ranking []RankingEntryResponse `json:"ranking" doc:"Entries ordered by books completed"`
}

// RankingOutput wraps the ranking response for Huma.
type RankingOutput struct {
	Body RankingResponse
}

func mapReadingGoal(goal domain.ReadingGoal) ReadingGoalResponse {
	return ReadingGoalResponse{
		Year:      goal.Year,
		Target:    goal.Target,
		Completed: goal.Completed,
	}
}

func mapRanking(entries []domain.RankingEntry) []RankingEntryResponse {
	resp := make([]RankingEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, RankingEntryResponse{
			UserID:         entry.UserID,
			DisplayName:    entry.DisplayName,
			AvatarURL:      entry.AvatarURL,
			AvatarColor:    color.ForUser(entry.UserID),
			BooksCompleted: entry.BooksCompleted,
			IsCurrentUser:  entry.IsCurrentUser,
		})
	}
	return resp
}

// === Handlers ===

func (s *Server) handleDashboard(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.Dashboard(ctx, userID, input.Year)
	if err != nil {
		return nil, err
	}

	resp := DashboardResponse{
		TotalBooks:         stats.TotalBooks,
		WishlistCount:      stats.WishlistCount,
		ReadingCount:       stats.ReadingCount,
		CompletedCount:     stats.CompletedCount,
		TotalQuotes:        stats.TotalQuotes,
		GenreDistribution:  stats.GenreDistribution,
		AverageReadingDays: stats.AverageReadingDays,
		Goal:               mapReadingGoal(stats.Goal),
		Ranking:            mapRanking(stats.Ranking),
	}
	if stats.CurrentlyReading != nil {
		book := mapBookResponse(stats.CurrentlyReading)
		resp.CurrentlyReading = &book
	}
	if stats.LastCompleted != nil {
		book := mapBookResponse(stats.LastCompleted)
		resp.LastCompleted = &book
	}
	if stats.LastQuote != nil {
		quote := mapQuoteResponse(stats.LastQuote)
		resp.LastQuote = &quote
	}
	return &DashboardOutput{Body: resp}, nil
}

func (s *Server) handleGetReadingGoal(ctx context.Context, input *ReadingGoalInput) (*ReadingGoalOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	goal, err := s.services.Stats.GetReadingGoal(ctx, userID, input.Year)
	if err != nil {
		return nil, err
	}
	return &ReadingGoalOutput{Body: mapReadingGoal(*goal)}, nil
}

func (s *Server) handleSetReadingGoal(ctx context.Context, input *SetReadingGoalInput) (*ReadingGoalOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	goal, err := s.services.Stats.SetReadingGoal(ctx, userID, input.Body.Year, input.Body.Target)
	if err != nil {
		return nil, err
	}
	return &ReadingGoalOutput{Body: mapReadingGoal(*goal)}, nil
}

func (s *Server) handleRanking(ctx context.Context, _ *RankingInput) (*RankingOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Stats.Ranking(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &RankingOutput{Body: RankingResponse{Ranking: mapRanking(entries)}}, nil
}
