package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/Garbson/LitShelf/internal/config"
	"github.com/Garbson/LitShelf/internal/localstore"
	"github.com/Garbson/LitShelf/internal/logger"
	"github.com/Garbson/LitShelf/internal/sse"
	"github.com/Garbson/LitShelf/internal/store"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the shelf store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the shelf database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	dbPath := cfg.Data.ShelfDBPath()
	db, err := store.New(dbPath, log.Logger, sseHandle.Manager)
	if err != nil {
		return nil, err
	}

	log.Info("Shelf database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// LocalStoreHandle wraps the local fallback store with shutdown capability.
type LocalStoreHandle struct {
	*localstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *LocalStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideLocalStore provides the SQLite fallback store for reading goals
// and offline recommendations.
func ProvideLocalStore(i do.Injector) (*LocalStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := localstore.Open(cfg.Data.LocalDBPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Local database initialized", "path", cfg.Data.LocalDBPath())

	return &LocalStoreHandle{Store: db}, nil
}
