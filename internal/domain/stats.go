package domain

// ReadingGoal pairs a yearly target with the progress toward it.
type ReadingGoal struct {
	Year      string `json:"year"`
	Target    int    `json:"target"`
	Completed int    `json:"completed"`
}

// RankingEntry is one row of the friends reading ranking, ordered by
// books completed.
type RankingEntry struct {
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	BooksCompleted int    `json:"books_completed"`
	IsCurrentUser  bool   `json:"is_current_user"`
}

// DashboardStats aggregates everything the dashboard shows about a
// user's shelf.
type DashboardStats struct {
	TotalBooks         int            `json:"total_books"`
	WishlistCount      int            `json:"wishlist_count"`
	ReadingCount       int            `json:"reading_count"`
	CompletedCount     int            `json:"completed_count"`
	TotalQuotes        int            `json:"total_quotes"`
	GenreDistribution  map[string]int `json:"genre_distribution"`
	AverageReadingDays float64        `json:"average_reading_days"`
	CurrentlyReading   *Book          `json:"currently_reading,omitempty"`
	LastCompleted      *Book          `json:"last_completed,omitempty"`
	LastQuote          *Quote         `json:"last_quote,omitempty"`
	Goal               ReadingGoal    `json:"goal"`
	Ranking            []RankingEntry `json:"ranking,omitempty"`
}

// DefaultAverageReadingDays is the estimate used when no completed book
// has both reading dates.
const DefaultAverageReadingDays = 14
