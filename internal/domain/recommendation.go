package domain

import "time"

// RecommendationStatus represents the state of a book recommendation.
type RecommendationStatus string

const (
	// RecommendationPending means the recipient has not responded yet.
	RecommendationPending RecommendationStatus = "pending"
	// RecommendationAccepted means the recipient added the book.
	RecommendationAccepted RecommendationStatus = "accepted"
	// RecommendationRejected means the recipient declined the book.
	RecommendationRejected RecommendationStatus = "rejected"
)

// Valid checks if the status is one of the known values.
func (s RecommendationStatus) Valid() bool {
	switch s {
	case RecommendationPending, RecommendationAccepted, RecommendationRejected:
		return true
	default:
		return false
	}
}

// Recommendation is a book suggestion sent from one friend to another.
// The book fields are denormalized at send time so the recommendation
// stays readable even if the sender later removes the book.
type Recommendation struct {
	Syncable
	SenderID      string               `json:"sender_id"`
	RecipientID   string               `json:"recipient_id"`
	BookID        string               `json:"book_id"`
	BookTitle     string               `json:"book_title"`
	BookAuthor    string               `json:"book_author,omitempty"`
	BookCoverURL  string               `json:"book_cover_url,omitempty"`
	BookGenre     string               `json:"book_genre,omitempty"`
	BookPageCount int                  `json:"book_page_count,omitempty"`
	Message       string               `json:"message,omitempty"`
	Status        RecommendationStatus `json:"status"`
	ResolvedAt    *time.Time           `json:"resolved_at,omitempty"`
}

// Resolved reports whether the recommendation has reached a terminal
// state. Accepted and rejected recommendations never change again.
func (r *Recommendation) Resolved() bool {
	return r.Status == RecommendationAccepted || r.Status == RecommendationRejected
}

// Resolve moves a pending recommendation to a terminal status and
// stamps the resolution time. It reports false when the recommendation
// was already resolved or the target status is not terminal.
func (r *Recommendation) Resolve(status RecommendationStatus) bool {
	if r.Resolved() {
		return false
	}
	if status != RecommendationAccepted && status != RecommendationRejected {
		return false
	}
	now := time.Now()
	r.Status = status
	r.ResolvedAt = &now
	r.Touch()
	return true
}

// AsBook builds a wishlist book for the recipient from the
// recommendation's denormalized book fields.
func (r *Recommendation) AsBook() *Book {
	return &Book{
		UserID:        r.RecipientID,
		Title:         r.BookTitle,
		Author:        r.BookAuthor,
		CoverImageURL: r.BookCoverURL,
		Genre:         r.BookGenre,
		PageCount:     r.BookPageCount,
		Status:        StatusWishlist,
	}
}
