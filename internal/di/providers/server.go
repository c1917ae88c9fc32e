package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/Garbson/LitShelf/internal/api"
	"github.com/Garbson/LitShelf/internal/config"
	"github.com/Garbson/LitShelf/internal/logger"
	"github.com/Garbson/LitShelf/internal/metadata/googlebooks"
	"github.com/Garbson/LitShelf/internal/service"
)

// HTTPServerHandle wraps the HTTP server with graceful shutdown.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer assembles the API server and wraps it in an http.Server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	services := &api.Services{
		Auth:           do.MustInvoke[*service.AuthService](i),
		Session:        do.MustInvoke[*service.SessionService](i),
		Shelf:          do.MustInvoke[*service.BookshelfService](i),
		Stats:          do.MustInvoke[*service.StatsService](i),
		Social:         do.MustInvoke[*service.SocialService](i),
		Recommendation: do.MustInvoke[*service.RecommendationService](i),
		Catalog:        do.MustInvoke[*googlebooks.Client](i),
	}

	server := api.NewServer(storeHandle.Store, services, sseHandle.Manager, log.Logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", httpServer.Addr)

	return &HTTPServerHandle{Server: httpServer}, nil
}
