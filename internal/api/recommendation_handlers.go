package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/service"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "sendRecommendation",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations",
		Summary:     "Send recommendation",
		Description: "Recommends one of the user's books to one or more friends",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSendRecommendation)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReceivedRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/received",
		Summary:     "Received recommendations",
		Description: "Returns recommendations sent to the user",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReceivedRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSentRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/sent",
		Summary:     "Sent recommendations",
		Description: "Returns recommendations the user has sent",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSentRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "pendingRecommendationCount",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/pending/count",
		Summary:     "Pending recommendation count",
		Description: "Returns how many received recommendations await a response",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePendingRecommendationCount)

	huma.Register(s.api, huma.Operation{
		OperationID: "acceptRecommendation",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations/{id}/accept",
		Summary:     "Accept recommendation",
		Description: "Accepts a recommendation and adds the book to the user's wishlist",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAcceptRecommendation)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectRecommendation",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations/{id}/reject",
		Summary:     "Reject recommendation",
		Description: "Rejects a recommendation without touching the shelf",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectRecommendation)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRecommendation",
		Method:      http.MethodDelete,
		Path:        "/api/v1/recommendations/{id}",
		Summary:     "Delete recommendation",
		Description: "Deletes a recommendation the user sent or received",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteRecommendation)
}

// === DTOs ===

// RecommendationResponse contains recommendation data in API responses.
type RecommendationResponse struct {
	ID            string     `json:"id" doc:"Recommendation ID"`
	SenderID      string     `json:"sender_id" doc:"User who sent it"`
	RecipientID   string     `json:"recipient_id" doc:"User who received it"`
	BookID        string     `json:"book_id" doc:"Recommended book ID"`
	BookTitle     string     `json:"book_title" doc:"Book title at send time"`
	BookAuthor    string     `json:"book_author,omitempty" doc:"Book author at send time"`
	BookCoverURL  string     `json:"book_cover_url,omitempty" doc:"Book cover at send time"`
	BookGenre     string     `json:"book_genre,omitempty" doc:"Book genre at send time"`
	BookPageCount int        `json:"book_page_count,omitempty" doc:"Book page count at send time"`
	Message       string     `json:"message,omitempty" doc:"Personal note from the sender"`
	Status        string     `json:"status" doc:"pending, accepted or rejected"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty" doc:"When the recommendation was resolved"`
	CreatedAt     time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time  `json:"updated_at" doc:"Last update time"`
}

// ListRecommendationsResponse contains a list of recommendations.
type ListRecommendationsResponse struct {
	Recommendations []RecommendationResponse `json:"recommendations" doc:"Recommendations"`
}

// SendRecommendationRequest is the request body for sending one.
type SendRecommendationRequest struct {
	RecipientIDs []string `json:"recipient_ids" validate:"required,min=1" doc:"Friends to recommend to"`
	BookID       string   `json:"book_id" validate:"required" doc:"Book on the sender's shelf"`
	Message      string   `json:"message,omitempty" validate:"omitempty,max=1024" doc:"Personal note"`
}

// SendRecommendationInput wraps the send request for Huma.
type SendRecommendationInput struct {
	Authorization string `header:"Authorization"`
	Body          SendRecommendationRequest
}

// RecommendationOutput wraps a recommendation for Huma.
type RecommendationOutput struct {
	Body RecommendationResponse
}

// ListRecommendationsInput carries the bearer token.
type ListRecommendationsInput struct {
	Authorization string `header:"Authorization"`
}

// ListRecommendationsOutput wraps a recommendation list for Huma.
type ListRecommendationsOutput struct {
	Body ListRecommendationsResponse
}

// PendingCountResponse carries the pending recommendation count.
type PendingCountResponse struct {
	Count int `json:"count" doc:"Pending recommendations awaiting a response"`
}

// PendingCountOutput wraps the pending count for Huma.
type PendingCountOutput struct {
	Body PendingCountResponse
}

// RecommendationInput identifies a recommendation by ID.
type RecommendationInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Recommendation ID"`
}

func mapRecommendation(rec *domain.Recommendation) RecommendationResponse {
	return RecommendationResponse{
		ID:            rec.ID,
		SenderID:      rec.SenderID,
		RecipientID:   rec.RecipientID,
		BookID:        rec.BookID,
		BookTitle:     rec.BookTitle,
		BookAuthor:    rec.BookAuthor,
		BookCoverURL:  rec.BookCoverURL,
		BookGenre:     rec.BookGenre,
		BookPageCount: rec.BookPageCount,
		Message:       rec.Message,
		Status:        string(rec.Status),
		ResolvedAt:    rec.ResolvedAt,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func mapRecommendationList(recs []*domain.Recommendation) ListRecommendationsResponse {
	resp := ListRecommendationsResponse{Recommendations: make([]RecommendationResponse, 0, len(recs))}
	for _, rec := range recs {
		resp.Recommendations = append(resp.Recommendations, mapRecommendation(rec))
	}
	return resp
}

// === Handlers ===

func (s *Server) handleSendRecommendation(ctx context.Context, input *SendRecommendationInput) (*ListRecommendationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.services.Recommendation.Send(ctx, userID, service.SendRecommendationRequest{
		RecipientIDs: input.Body.RecipientIDs,
		BookID:       input.Body.BookID,
		Message:      input.Body.Message,
	})
	if err != nil {
		return nil, err
	}
	return &ListRecommendationsOutput{Body: mapRecommendationList(recs)}, nil
}

func (s *Server) handleReceivedRecommendations(ctx context.Context, _ *ListRecommendationsInput) (*ListRecommendationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.services.Recommendation.ListReceived(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListRecommendationsOutput{Body: mapRecommendationList(recs)}, nil
}

func (s *Server) handleSentRecommendations(ctx context.Context, _ *ListRecommendationsInput) (*ListRecommendationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.services.Recommendation.ListSent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListRecommendationsOutput{Body: mapRecommendationList(recs)}, nil
}

func (s *Server) handlePendingRecommendationCount(ctx context.Context, _ *ListRecommendationsInput) (*PendingCountOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.services.Recommendation.PendingCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PendingCountOutput{Body: PendingCountResponse{Count: count}}, nil
}

func (s *Server) handleAcceptRecommendation(ctx context.Context, input *RecommendationInput) (*RecommendationOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.services.Recommendation.Accept(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &RecommendationOutput{Body: mapRecommendation(rec)}, nil
}

func (s *Server) handleRejectRecommendation(ctx context.Context, input *RecommendationInput) (*RecommendationOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.services.Recommendation.Reject(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &RecommendationOutput{Body: mapRecommendation(rec)}, nil
}

func (s *Server) handleDeleteRecommendation(ctx context.Context, input *RecommendationInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recommendation.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Recommendation deleted"}}, nil
}
