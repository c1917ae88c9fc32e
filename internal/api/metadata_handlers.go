package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerMetadataRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/metadata/search",
		Summary:     "Search the book catalog",
		Description: "Searches the Google Books catalog for volumes matching a query",
		Tags:        []string{"Metadata"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchCatalog)
}

// CatalogSearchInput contains catalog search parameters.
type CatalogSearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" required:"true" doc:"Search query"`
}

// VolumeResponse is one catalog search result.
type VolumeResponse struct {
	ID            string `json:"id" doc:"Google Books volume ID"`
	Title         string `json:"title" doc:"Title"`
	Author        string `json:"author" doc:"Author"`
	Description   string `json:"description,omitempty" doc:"Description"`
	PageCount     int    `json:"page_count,omitempty" doc:"Total pages"`
	Genre         string `json:"genre,omitempty" doc:"Genre"`
	CoverImageURL string `json:"cover_image_url,omitempty" doc:"Cover image URL"`
	PublishedDate string `json:"published_date,omitempty" doc:"Published date"`
}

// CatalogSearchResponse contains catalog search results.
type CatalogSearchResponse struct {
	Volumes []VolumeResponse `json:"volumes" doc:"Matching volumes"`
}

// CatalogSearchOutput wraps the catalog results for Huma.
type CatalogSearchOutput struct {
	Body CatalogSearchResponse
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *CatalogSearchInput) (*CatalogSearchOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if s.services.Catalog == nil {
		return nil, huma.Error503ServiceUnavailable("Catalog search is not configured")
	}

	volumes, err := s.services.Catalog.SearchVolumes(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	resp := CatalogSearchResponse{Volumes: make([]VolumeResponse, 0, len(volumes))}
	for _, v := range volumes {
		resp.Volumes = append(resp.Volumes, VolumeResponse{
			ID:            v.ID,
			Title:         v.Title,
			Author:        v.Author,
			Description:   v.Description,
			PageCount:     v.PageCount,
			Genre:         v.Genre,
			CoverImageURL: v.CoverImageURL,
			PublishedDate: v.PublishedDate,
		})
	}
	return &CatalogSearchOutput{Body: resp}, nil
}
