package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/Garbson/LitShelf/internal/config"
	"github.com/Garbson/LitShelf/internal/logger"
	"github.com/Garbson/LitShelf/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the bleve full-text index and wires it into the
// store so book writes are indexed as they happen.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(index)

	log.Info("Search index initialized", "path", cfg.Data.SearchIndexPath())

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindexIfNeeded repopulates an empty search index from the
// store. This covers the first start after an index rebuild, where the index
// mapping changed but the shelf data is intact.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	count, err := indexHandle.DocumentCount()
	if err != nil {
		log.Warn("Failed to read search index document count", "error", err)
		return
	}
	if count > 0 {
		return
	}

	go func() {
		books, err := storeHandle.ListAllBooks(context.Background())
		if err != nil {
			log.Error("Search reindex failed to list books", "error", err)
			return
		}
		if len(books) == 0 {
			return
		}
		if err := indexHandle.IndexBooks(books); err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		log.Info("Search index rebuilt", "books", len(books))
	}()
}
