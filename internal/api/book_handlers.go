package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Garbson/LitShelf/internal/domain"
	domainerrors "github.com/Garbson/LitShelf/internal/errors"
	"github.com/Garbson/LitShelf/internal/search"
	"github.com/Garbson/LitShelf/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List my books",
		Description: "Returns the authenticated user's shelf",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Add book",
		Description: "Adds a book to the shelf, filling missing metadata from the catalog",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/search",
		Summary:     "Search my books",
		Description: "Runs a full-text query over the user's shelf",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns one of the user's books",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates book fields, reading status and progress",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a book and its quotes",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFriendBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends/{friendId}/books",
		Summary:     "List a friend's books",
		Description: "Returns a friend's shelf, read-only",
		Tags:        []string{"Books", "Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFriendBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFriendBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends/{friendId}/books/{id}",
		Summary:     "Get a friend's book",
		Description: "Returns a single book from a friend's shelf, read-only",
		Tags:        []string{"Books", "Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFriendBook)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID                string     `json:"id" doc:"Book ID"`
	Title             string     `json:"title" doc:"Title"`
	Author            string     `json:"author" doc:"Author"`
	CoverImageURL     string     `json:"cover_image_url,omitempty" doc:"Cover image URL"`
	Description       string     `json:"description,omitempty" doc:"Description"`
	PageCount         int        `json:"page_count,omitempty" doc:"Total pages"`
	Genre             string     `json:"genre,omitempty" doc:"Genre"`
	Status            int        `json:"status" doc:"Reading status (0 wishlist, 1 completed, 2 reading)"`
	Rating            int        `json:"rating,omitempty" doc:"Rating 0-5"`
	CurrentPage       int        `json:"current_page" doc:"Current page"`
	StartedReadingAt  *time.Time `json:"started_reading_at,omitempty" doc:"When reading started"`
	FinishedReadingAt *time.Time `json:"finished_reading_at,omitempty" doc:"When reading finished"`
	Notes             string     `json:"notes,omitempty" doc:"Personal notes"`
	GoogleBookID      string     `json:"google_book_id,omitempty" doc:"Google Books volume ID"`
	CreatedAt         time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt         time.Time  `json:"updated_at" doc:"Last update time"`
}

// ListBooksResponse contains a list of books.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Books on the shelf"`
}

// ListBooksInput carries the bearer token.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
}

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// AddBookRequest is the request body for adding a book.
type AddBookRequest struct {
	Title         string `json:"title" validate:"required,max=512" doc:"Title"`
	Author        string `json:"author" validate:"required,max=256" doc:"Author"`
	CoverImageURL string `json:"cover_image_url,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
	Description   string `json:"description,omitempty" doc:"Description"`
	PageCount     int    `json:"page_count,omitempty" validate:"omitempty,min=0" doc:"Total pages"`
	Genre         string `json:"genre,omitempty" validate:"omitempty,max=128" doc:"Genre"`
	Status        *int   `json:"status,omitempty" doc:"Initial reading status"`
	GoogleBookID  string `json:"google_book_id,omitempty" doc:"Google Books volume ID"`
}

// AddBookInput wraps the add book request for Huma.
type AddBookInput struct {
	Authorization string `header:"Authorization"`
	Body          AddBookRequest
}

// BookOutput wraps a single book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// UpdateBookRequest is the request body for updating a book.
// Omitted fields are left untouched.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,max=512" doc:"Title"`
	Author        *string `json:"author,omitempty" validate:"omitempty,max=256" doc:"Author"`
	CoverImageURL *string `json:"cover_image_url,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
	Description   *string `json:"description,omitempty" doc:"Description"`
	PageCount     *int    `json:"page_count,omitempty" validate:"omitempty,min=0" doc:"Total pages"`
	Genre         *string `json:"genre,omitempty" validate:"omitempty,max=128" doc:"Genre"`
	Notes         *string `json:"notes,omitempty" doc:"Personal notes"`
	Status        *int    `json:"status,omitempty" doc:"Reading status"`
	Rating        *int    `json:"rating,omitempty" validate:"omitempty,min=0,max=5" doc:"Rating 0-5"`
	CurrentPage   *int    `json:"current_page,omitempty" validate:"omitempty,min=0" doc:"Current page"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// FriendBooksInput contains parameters for listing a friend's shelf.
type FriendBooksInput struct {
	Authorization string `header:"Authorization"`
	FriendID      string `path:"friendId" doc:"Friend user ID"`
}

// FriendBookInput contains parameters for getting a friend's book.
type FriendBookInput struct {
	Authorization string `header:"Authorization"`
	FriendID      string `path:"friendId" doc:"Friend user ID"`
	ID            string `path:"id" doc:"Book ID"`
}

// SearchBooksInput contains full-text search parameters.
type SearchBooksInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Search query"`
	Genre         string `query:"genre" doc:"Filter by genre"`
	Status        string `query:"status" doc:"Filter by reading status (0=wishlist, 1=completed, 2=reading)"`
	Limit         int    `query:"limit" doc:"Maximum results (default 20)"`
	Offset        int    `query:"offset" doc:"Result offset"`
	SortBy        string `query:"sort_by" doc:"Sort field (title, author, created_at, updated_at)"`
	SortOrder     string `query:"sort_order" doc:"Sort order (asc, desc)"`
}

// SearchHitResponse is one search result.
type SearchHitResponse struct {
	ID         string            `json:"id" doc:"Book ID"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Title      string            `json:"title" doc:"Title"`
	Author     string            `json:"author,omitempty" doc:"Author"`
	Genre      string            `json:"genre,omitempty" doc:"Genre"`
	Status     int               `json:"status" doc:"Reading status"`
	PageCount  int               `json:"page_count,omitempty" doc:"Total pages"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted fragments per field"`
}

// SearchBooksResponse contains search results.
type SearchBooksResponse struct {
	Query  string              `json:"query" doc:"Query that was run"`
	Hits   []SearchHitResponse `json:"hits" doc:"Matching books"`
	Total  uint64              `json:"total" doc:"Total matches"`
	TookMs int64               `json:"took_ms" doc:"Search duration in milliseconds"`
}

// SearchBooksOutput wraps the search response for Huma.
type SearchBooksOutput struct {
	Body SearchBooksResponse
}

func mapBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:                book.ID,
		Title:             book.Title,
		Author:            book.Author,
		CoverImageURL:     book.CoverImageURL,
		Description:       book.Description,
		PageCount:         book.PageCount,
		Genre:             book.Genre,
		Status:            int(book.Status),
		Rating:            book.Rating,
		CurrentPage:       book.CurrentPage,
		StartedReadingAt:  book.StartedReadingAt,
		FinishedReadingAt: book.FinishedReadingAt,
		Notes:             book.Notes,
		GoogleBookID:      book.GoogleBookID,
		CreatedAt:         book.CreatedAt,
		UpdatedAt:         book.UpdatedAt,
	}
}

func mapBookList(books []*domain.Book) ListBooksResponse {
	resp := ListBooksResponse{Books: make([]BookResponse, 0, len(books))}
	for _, book := range books {
		resp.Books = append(resp.Books, mapBookResponse(book))
	}
	return resp
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *ListBooksInput) (*ListBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Shelf.ListBooks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: mapBookList(books)}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Shelf.AddBook(ctx, userID, service.AddBookRequest{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		CoverImageURL: input.Body.CoverImageURL,
		Description:   input.Body.Description,
		PageCount:     input.Body.PageCount,
		Genre:         input.Body.Genre,
		Status:        input.Body.Status,
		GoogleBookID:  input.Body.GoogleBookID,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Shelf.GetBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Shelf.UpdateBook(ctx, userID, input.ID, service.UpdateBookRequest{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		CoverImageURL: input.Body.CoverImageURL,
		Description:   input.Body.Description,
		PageCount:     input.Body.PageCount,
		Genre:         input.Body.Genre,
		Notes:         input.Body.Notes,
		Status:        input.Body.Status,
		Rating:        input.Body.Rating,
		CurrentPage:   input.Body.CurrentPage,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shelf.DeleteBook(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleListFriendBooks(ctx context.Context, input *FriendBooksInput) (*ListBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Shelf.FriendShelf(ctx, userID, input.FriendID)
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: mapBookList(books)}, nil
}

func (s *Server) handleGetFriendBook(ctx context.Context, input *FriendBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Shelf.GetFriendBook(ctx, userID, input.FriendID, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	// Wishlist is status 0, so the absent-filter sentinel has to be the
	// empty string rather than a zero int.
	var status *domain.ReadingStatus
	if input.Status != "" {
		n, err := strconv.Atoi(input.Status)
		if err != nil {
			return nil, domainerrors.Validation("status must be a number")
		}
		st := domain.ReadingStatus(n)
		if !st.Valid() {
			return nil, domainerrors.Validation("unknown reading status")
		}
		status = &st
	}

	result, err := s.services.Shelf.Search(ctx, search.SearchParams{
		UserID:    userID,
		Query:     input.Query,
		Genre:     input.Genre,
		Status:    status,
		Limit:     input.Limit,
		Offset:    input.Offset,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
		Highlight: true,
	})
	if err != nil {
		return nil, err
	}

	resp := SearchBooksResponse{
		Query:  result.Query,
		Hits:   make([]SearchHitResponse, 0, len(result.Hits)),
		Total:  result.Total,
		TookMs: result.TookMs,
	}
	for _, hit := range result.Hits {
		resp.Hits = append(resp.Hits, SearchHitResponse{
			ID:         hit.ID,
			Score:      hit.Score,
			Title:      hit.Title,
			Author:     hit.Author,
			Genre:      hit.Genre,
			Status:     hit.Status,
			PageCount:  hit.PageCount,
			Highlights: hit.Highlights,
		})
	}
	return &SearchBooksOutput{Body: resp}, nil
}
