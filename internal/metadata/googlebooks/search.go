package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/genre"
)

const defaultLimit = 10

// SearchVolumes searches Google Books for volumes matching the free-form query.
func (c *Client) SearchVolumes(ctx context.Context, query string) ([]VolumeResult, error) {
	return c.search(ctx, query)
}

// BestMatch resolves the most relevant volume for a title and author pair,
// returned as book details ready to merge into a shelf book. Matches are
// memoized per process, so repeated lookups for the same pair never hit the
// API again. Returns nil when no volume matches.
func (c *Client) BestMatch(ctx context.Context, title, author string) (*domain.BookDetails, error) {
	key := memoKey(title, author)
	if d, ok := c.memoGet(key); ok {
		return d, nil
	}

	query := fmt.Sprintf("intitle:%s", strings.TrimSpace(title))
	if author != "" {
		query += fmt.Sprintf(" inauthor:%s", strings.TrimSpace(author))
	}

	results, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		// Retry with a loose query; strict field matching misses volumes
		// whose catalog title differs slightly from the user's.
		results, err = c.search(ctx, strings.TrimSpace(title+" "+author))
		if err != nil {
			return nil, err
		}
	}

	best := pickBestMatch(results, title, author)
	if best == nil {
		c.memoSet(key, nil)
		return nil, nil
	}

	details := &domain.BookDetails{
		Title:         best.Title,
		Author:        best.Author,
		CoverImageURL: best.CoverImageURL,
		Description:   best.Description,
		PageCount:     best.PageCount,
		Genre:         best.Genre,
		GoogleBookID:  best.ID,
	}
	c.memoSet(key, details)
	return details, nil
}

// search performs a volumes query against the API.
func (c *Client) search(ctx context.Context, query string) ([]VolumeResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", defaultLimit))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := c.baseURL + "/volumes?" + params.Encode()

	c.logger.Debug("searching Google Books",
		"query", query,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var volumesResp volumesResponse
	if err := json.UnmarshalRead(resp.Body, &volumesResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("Google Books search results",
		"query", query,
		"count", volumesResp.TotalItems,
	)

	results := make([]VolumeResult, 0, len(volumesResp.Items))
	for i := range volumesResp.Items {
		v := &volumesResp.Items[i]
		if v.VolumeInfo.Title == "" {
			continue
		}

		result := VolumeResult{
			ID:            v.ID,
			Title:         v.VolumeInfo.Title,
			Description:   cleanDescription(v.VolumeInfo.Description),
			PageCount:     v.VolumeInfo.PageCount,
			CoverImageURL: coverURL(v.VolumeInfo.ImageLinks),
			PublishedDate: v.VolumeInfo.PublishedDate,
		}
		if len(v.VolumeInfo.Authors) > 0 {
			result.Author = strings.Join(v.VolumeInfo.Authors, ", ")
		}
		if len(v.VolumeInfo.Categories) > 0 {
			result.Genre = genre.Canonical(v.VolumeInfo.Categories[0])
		}

		results = append(results, result)
	}

	return results, nil
}

// pickBestMatch prefers an exact title match with the requested author,
// then an exact title match, then the first result.
func pickBestMatch(results []VolumeResult, title, author string) *VolumeResult {
	if len(results) == 0 {
		return nil
	}

	wantTitle := strings.ToLower(strings.TrimSpace(title))
	wantAuthor := strings.ToLower(strings.TrimSpace(author))

	var titleMatch *VolumeResult
	for i := range results {
		r := &results[i]
		gotTitle := strings.ToLower(strings.TrimSpace(r.Title))
		if gotTitle != wantTitle {
			continue
		}
		if wantAuthor != "" && strings.Contains(strings.ToLower(r.Author), wantAuthor) {
			return r
		}
		if titleMatch == nil {
			titleMatch = r
		}
	}
	if titleMatch != nil {
		return titleMatch
	}
	return &results[0]
}

// coverURL picks the best available image link, upgraded to HTTPS.
// The API hands out http:// thumbnail links even over TLS.
func coverURL(links imageLinks) string {
	u := links.Thumbnail
	if u == "" {
		u = links.SmallThumbnail
	}
	return strings.Replace(u, "http://", "https://", 1)
}

func memoKey(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
}
