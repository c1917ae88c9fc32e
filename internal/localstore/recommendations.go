package localstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/store"
)

// recommendationColumns is the ordered list of columns selected in
// recommendation queries. Must match the scan order in scanRecommendation.
const recommendationColumns = `id, sender_id, recipient_id, book_id, book_title,
	book_author, book_cover_url, book_genre, book_page_count, message, status,
	resolved_at, created_at, updated_at`

// scanRecommendation scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Recommendation.
func scanRecommendation(scanner interface{ Scan(dest ...any) error }) (*domain.Recommendation, error) {
	var rec domain.Recommendation

	var (
		status     string
		resolvedAt sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&rec.ID,
		&rec.SenderID,
		&rec.RecipientID,
		&rec.BookID,
		&rec.BookTitle,
		&rec.BookAuthor,
		&rec.BookCoverURL,
		&rec.BookGenre,
		&rec.BookPageCount,
		&rec.Message,
		&status,
		&resolvedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Status = domain.RecommendationStatus(status)

	rec.ResolvedAt, err = parseNullableTime(resolvedAt)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	rec.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// SaveRecommendation creates or replaces a recommendation.
func (s *Store) SaveRecommendation(ctx context.Context, rec *domain.Recommendation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO recommendations (
			id, sender_id, recipient_id, book_id, book_title, book_author,
			book_cover_url, book_genre, book_page_count, message, status,
			resolved_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.SenderID,
		rec.RecipientID,
		rec.BookID,
		rec.BookTitle,
		rec.BookAuthor,
		rec.BookCoverURL,
		rec.BookGenre,
		rec.BookPageCount,
		rec.Message,
		string(rec.Status),
		nullTimeString(rec.ResolvedAt),
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	return err
}

// GetRecommendation retrieves a recommendation by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetRecommendation(ctx context.Context, id string) (*domain.Recommendation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations WHERE id = ?`, id)

	rec, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListReceivedRecommendations returns recommendations addressed to a user,
// newest first.
func (s *Store) ListReceivedRecommendations(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	return s.listRecommendations(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations
		 WHERE recipient_id = ? ORDER BY created_at DESC`, userID)
}

// ListSentRecommendations returns recommendations sent by a user, newest first.
func (s *Store) ListSentRecommendations(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	return s.listRecommendations(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations
		 WHERE sender_id = ? ORDER BY created_at DESC`, userID)
}

func (s *Store) listRecommendations(ctx context.Context, query string, args ...any) ([]*domain.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// DeleteRecommendation removes a recommendation by ID. Deleting a missing
// recommendation is not an error.
func (s *Store) DeleteRecommendation(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recommendations WHERE id = ?`, id)
	return err
}
