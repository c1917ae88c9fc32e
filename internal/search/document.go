// Package search provides full-text search over a user's bookshelf using
// Bleve. Queries match title, author, description and genre with fuzzy and
// prefix fallbacks, scoped to a single owner.
package search

import (
	"github.com/Garbson/LitShelf/internal/domain"
)

// BookDocument is the document structure for the Bleve index.
type BookDocument struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Status      int    `json:"status"`
	PageCount   int    `json:"page_count,omitempty"`

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewBookDocument builds an index document from a shelf book.
func NewBookDocument(book *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          book.ID,
		UserID:      book.UserID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		Genre:       book.GenreBucket(),
		Status:      int(book.Status),
		PageCount:   book.PageCount,
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *BookDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"user_id":    d.UserID,
		"title":      d.Title,
		"author":     d.Author,
		"status":     d.Status,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Genre != "" {
		m["genre"] = d.Genre
	}
	if d.PageCount > 0 {
		m["page_count"] = d.PageCount
	}
	return m
}
