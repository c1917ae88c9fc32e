package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/service"
)

func (s *Server) registerQuoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listQuotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/quotes",
		Summary:     "List all my quotes",
		Description: "Returns every quote the user has saved across books",
		Tags:        []string{"Quotes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListQuotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "addQuote",
		Method:      http.MethodPost,
		Path:        "/api/v1/quotes",
		Summary:     "Add quote",
		Description: "Saves a quote for one of the user's books",
		Tags:        []string{"Quotes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddQuote)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateQuote",
		Method:      http.MethodPatch,
		Path:        "/api/v1/quotes/{id}",
		Summary:     "Update quote",
		Description: "Edits one of the user's quotes",
		Tags:        []string{"Quotes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateQuote)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteQuote",
		Method:      http.MethodDelete,
		Path:        "/api/v1/quotes/{id}",
		Summary:     "Delete quote",
		Description: "Removes one of the user's quotes",
		Tags:        []string{"Quotes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteQuote)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookQuotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{bookId}/quotes",
		Summary:     "List book quotes",
		Description: "Returns the quotes saved for one of the user's books",
		Tags:        []string{"Quotes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookQuotes)
}

// === DTOs ===

// QuoteResponse contains quote data in API responses.
type QuoteResponse struct {
	ID        string    `json:"id" doc:"Quote ID"`
	BookID    string    `json:"book_id" doc:"Book the quote belongs to"`
	Text      string    `json:"text" doc:"Quote text"`
	Page      *int      `json:"page,omitempty" doc:"Page number"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListQuotesResponse contains a list of quotes.
type ListQuotesResponse struct {
	Quotes []QuoteResponse `json:"quotes" doc:"Saved quotes"`
}

// ListQuotesInput carries the bearer token.
type ListQuotesInput struct {
	Authorization string `header:"Authorization"`
}

// ListQuotesOutput wraps the quote list for Huma.
type ListQuotesOutput struct {
	Body ListQuotesResponse
}

// AddQuoteRequest is the request body for saving a quote.
type AddQuoteRequest struct {
	BookID string `json:"book_id" validate:"required" doc:"Book the quote belongs to"`
	Text   string `json:"text" validate:"required,max=4096" doc:"Quote text"`
	Page   *int   `json:"page,omitempty" validate:"omitempty,min=0" doc:"Page number"`
}

// AddQuoteInput wraps the add quote request for Huma.
type AddQuoteInput struct {
	Authorization string `header:"Authorization"`
	Body          AddQuoteRequest
}

// QuoteOutput wraps a single quote response for Huma.
type QuoteOutput struct {
	Body QuoteResponse
}

// UpdateQuoteRequest is the request body for editing a quote.
type UpdateQuoteRequest struct {
	Text *string `json:"text,omitempty" validate:"omitempty,max=4096" doc:"Quote text"`
	Page *int    `json:"page,omitempty" validate:"omitempty,min=0" doc:"Page number"`
}

// UpdateQuoteInput wraps the update quote request for Huma.
type UpdateQuoteInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Quote ID"`
	Body          UpdateQuoteRequest
}

// DeleteQuoteInput contains parameters for deleting a quote.
type DeleteQuoteInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Quote ID"`
}

// BookQuotesInput contains parameters for listing a book's quotes.
type BookQuotesInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
}

func mapQuoteResponse(quote *domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:        quote.ID,
		BookID:    quote.BookID,
		Text:      quote.Text,
		Page:      quote.Page,
		CreatedAt: quote.CreatedAt,
		UpdatedAt: quote.UpdatedAt,
	}
}

func mapQuoteList(quotes []*domain.Quote) ListQuotesResponse {
	resp := ListQuotesResponse{Quotes: make([]QuoteResponse, 0, len(quotes))}
	for _, quote := range quotes {
		resp.Quotes = append(resp.Quotes, mapQuoteResponse(quote))
	}
	return resp
}

// === Handlers ===

func (s *Server) handleListQuotes(ctx context.Context, _ *ListQuotesInput) (*ListQuotesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	quotes, err := s.services.Shelf.ListQuotes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListQuotesOutput{Body: mapQuoteList(quotes)}, nil
}

func (s *Server) handleAddQuote(ctx context.Context, input *AddQuoteInput) (*QuoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	quote, err := s.services.Shelf.AddQuote(ctx, userID, service.AddQuoteRequest{
		BookID: input.Body.BookID,
		Text:   input.Body.Text,
		Page:   input.Body.Page,
	})
	if err != nil {
		return nil, err
	}
	return &QuoteOutput{Body: mapQuoteResponse(quote)}, nil
}

func (s *Server) handleUpdateQuote(ctx context.Context, input *UpdateQuoteInput) (*QuoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	quote, err := s.services.Shelf.UpdateQuote(ctx, userID, input.ID, service.UpdateQuoteRequest{
		Text: input.Body.Text,
		Page: input.Body.Page,
	})
	if err != nil {
		return nil, err
	}
	return &QuoteOutput{Body: mapQuoteResponse(quote)}, nil
}

func (s *Server) handleDeleteQuote(ctx context.Context, input *DeleteQuoteInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shelf.DeleteQuote(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Quote deleted"}}, nil
}

func (s *Server) handleListBookQuotes(ctx context.Context, input *BookQuotesInput) (*ListQuotesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	quotes, err := s.services.Shelf.ListBookQuotes(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}
	return &ListQuotesOutput{Body: mapQuoteList(quotes)}, nil
}
