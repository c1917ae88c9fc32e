package providers

import (
	"github.com/samber/do/v2"

	"github.com/Garbson/LitShelf/internal/config"
	"github.com/Garbson/LitShelf/internal/logger"
	"github.com/Garbson/LitShelf/internal/metadata/googlebooks"
)

// ProvideCatalogClient provides the Google Books client used for metadata
// search and enrichment.
func ProvideCatalogClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := googlebooks.NewClient(cfg.Catalog.GoogleBooksBaseURL, cfg.Catalog.GoogleBooksAPIKey, log.Logger)

	if cfg.Catalog.GoogleBooksAPIKey == "" {
		log.Info("Google Books client configured without API key, using unauthenticated quota")
	}

	return client, nil
}
