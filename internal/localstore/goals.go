package localstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Garbson/LitShelf/internal/store"
)

// GetReadingGoal retrieves the stored goal target for a user and year.
// Returns store.ErrNotFound if no goal has been saved for that year.
func (s *Store) GetReadingGoal(ctx context.Context, userID, year string) (int, error) {
	var target int
	err := s.db.QueryRowContext(ctx,
		`SELECT target FROM reading_goals WHERE user_id = ? AND year = ?`,
		userID, year).Scan(&target)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return target, nil
}

// SetReadingGoal creates or replaces the goal target for a user and year.
func (s *Store) SetReadingGoal(ctx context.Context, userID, year string, target int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reading_goals (user_id, year, target, updated_at)
		VALUES (?, ?, ?, ?)`,
		userID, year, target, formatTime(time.Now()))
	return err
}
