// Package googlebooks provides a client for the Google Books volumes API.
package googlebooks

// VolumeResult represents a book volume from a Google Books search.
type VolumeResult struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
	Genre         string `json:"genre,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
}

// volumesResponse is the raw Google Books API response.
type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

// volume is a single item from a volumes query.
type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors,omitempty"`
	Description   string     `json:"description,omitempty"`
	PageCount     int        `json:"pageCount,omitempty"`
	Categories    []string   `json:"categories,omitempty"`
	PublishedDate string     `json:"publishedDate,omitempty"`
	ImageLinks    imageLinks `json:"imageLinks,omitempty"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
}
