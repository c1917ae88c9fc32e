package googlebooks

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Garbson/LitShelf/internal/domain"
)

// DefaultBaseURL is the public Google Books API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Client provides access to the Google Books volumes API for book metadata.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	baseURL     string
	apiKey      string

	// memo caches best-match lookups by normalized "title|author" so the
	// same book is never resolved against the API twice in one process.
	mu   sync.RWMutex
	memo map[string]*domain.BookDetails
}

// NewClient creates a new Google Books client.
// Unauthenticated access is limited upstream, so requests are throttled
// to one per second with a small burst.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:      logger,
		baseURL:     baseURL,
		apiKey:      apiKey,
		memo:        make(map[string]*domain.BookDetails),
	}
}

// Close releases resources. Currently a no-op but included for interface consistency.
func (c *Client) Close() {
	// No persistent resources to close
}

// wait blocks until rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

func (c *Client) memoGet(key string) (*domain.BookDetails, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.memo[key]
	return d, ok
}

func (c *Client) memoSet(key string, d *domain.BookDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo[key] = d
}
