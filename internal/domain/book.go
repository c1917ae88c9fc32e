package domain

import (
	"strings"
	"time"
)

// ReadingStatus tracks where a book sits in the reader's pipeline.
// The zero value is Wishlist, so records written without a status
// naturally fall back to it.
type ReadingStatus int

const (
	// StatusWishlist marks a book the user wants to read.
	StatusWishlist ReadingStatus = 0
	// StatusCompleted marks a book the user finished.
	StatusCompleted ReadingStatus = 1
	// StatusReading marks a book in progress.
	StatusReading ReadingStatus = 2
)

// Valid checks if the status is one of the known values.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusWishlist, StatusCompleted, StatusReading:
		return true
	default:
		return false
	}
}

// String returns a human-readable label for logs and debugging.
func (s ReadingStatus) String() string {
	switch s {
	case StatusWishlist:
		return "wishlist"
	case StatusCompleted:
		return "completed"
	case StatusReading:
		return "reading"
	default:
		return "unknown"
	}
}

// CoerceReadingStatus normalizes a raw status value from a client or an
// old record. A missing or out-of-range value becomes Wishlist.
func CoerceReadingStatus(v *int) ReadingStatus {
	if v == nil {
		return StatusWishlist
	}
	s := ReadingStatus(*v)
	if !s.Valid() {
		return StatusWishlist
	}
	return s
}

// UncategorizedGenre is the bucket books without a genre fall into when
// building the genre distribution.
const UncategorizedGenre = "Uncategorized"

// Book represents a single book on a user's shelf.
type Book struct {
	Syncable
	UserID            string        `json:"user_id"`
	Title             string        `json:"title"`
	Author            string        `json:"author"`
	CoverImageURL     string        `json:"cover_image_url,omitempty"`
	Description       string        `json:"description,omitempty"`
	PageCount         int           `json:"page_count,omitempty"`
	Genre             string        `json:"genre,omitempty"`
	Status            ReadingStatus `json:"status"`
	Rating            int           `json:"rating,omitempty"`
	CurrentPage       int           `json:"current_page"`
	StartedReadingAt  *time.Time    `json:"started_reading_at,omitempty"`
	FinishedReadingAt *time.Time    `json:"finished_reading_at,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	GoogleBookID      string        `json:"google_book_id,omitempty"`
}

// NeedsEnrichment reports whether the book is missing metadata that a
// catalog lookup could fill in.
func (b *Book) NeedsEnrichment() bool {
	return b.CoverImageURL == "" || b.Description == "" || b.PageCount == 0 || b.Genre == ""
}

// GenreBucket returns the genre used for distribution stats, folding
// empty genres into the uncategorized bucket.
func (b *Book) GenreBucket() string {
	g := strings.TrimSpace(b.Genre)
	if g == "" {
		return UncategorizedGenre
	}
	return g
}

// ProgressComplete reports whether the current page has reached the
// final page. Books without a known page count never complete this way.
func (b *Book) ProgressComplete() bool {
	return b.PageCount > 0 && b.CurrentPage >= b.PageCount
}

// ReadingDays returns the whole days spent reading, clamped to a
// minimum of one day, and false when either date is missing.
func (b *Book) ReadingDays() (int, bool) {
	if b.StartedReadingAt == nil || b.FinishedReadingAt == nil {
		return 0, false
	}
	days := int(b.FinishedReadingAt.Sub(*b.StartedReadingAt).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days, true
}

// SetStatus moves the book to a new reading status and stamps the
// reading dates on first entry. Starting a book records the start date,
// finishing it records the finish date; existing dates are kept.
func (b *Book) SetStatus(s ReadingStatus) {
	b.Status = s
	now := time.Now()
	switch s {
	case StatusReading:
		if b.StartedReadingAt == nil {
			b.StartedReadingAt = &now
		}
	case StatusCompleted:
		if b.FinishedReadingAt == nil {
			b.FinishedReadingAt = &now
		}
	}
}

// BookDetails is the metadata a catalog lookup can contribute to a book.
type BookDetails struct {
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	Description   string `json:"description,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
	Genre         string `json:"genre,omitempty"`
	GoogleBookID  string `json:"google_book_id,omitempty"`
}

// Merge fills the book's empty metadata fields from the details and
// reports whether anything changed. Populated fields are never
// overwritten.
func (b *Book) Merge(d BookDetails) bool {
	changed := false
	if b.CoverImageURL == "" && d.CoverImageURL != "" {
		b.CoverImageURL = d.CoverImageURL
		changed = true
	}
	if b.Description == "" && d.Description != "" {
		b.Description = d.Description
		changed = true
	}
	if b.PageCount == 0 && d.PageCount > 0 {
		b.PageCount = d.PageCount
		changed = true
	}
	if b.Genre == "" && d.Genre != "" {
		b.Genre = d.Genre
		changed = true
	}
	if b.GoogleBookID == "" && d.GoogleBookID != "" {
		b.GoogleBookID = d.GoogleBookID
		changed = true
	}
	return changed
}

// Quote is a passage the user saved from one of their books.
type Quote struct {
	Syncable
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
	Text   string `json:"text"`
	Page   *int   `json:"page,omitempty"`
}
