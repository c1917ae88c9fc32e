// Package main provides the entry point for the LitShelf server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/Garbson/LitShelf/internal/di"
	"github.com/Garbson/LitShelf/internal/di/providers"
	"github.com/Garbson/LitShelf/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// Handles that wrap external resources get an explicit close so a
	// shutdown failure in one does not skip the others
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		log.Info("Closing shelf database...")
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close shelf database", "error", err)
		}
	}

	if localHandle, err := do.Invoke[*providers.LocalStoreHandle](injector); err == nil {
		log.Info("Closing local database...")
		if err := localHandle.Shutdown(); err != nil {
			log.Error("Failed to close local database", "error", err)
		}
	}

	if searchHandle, err := do.Invoke[*providers.SearchIndexHandle](injector); err == nil {
		log.Info("Closing search index...")
		if err := searchHandle.Shutdown(); err != nil {
			log.Error("Failed to close search index", "error", err)
		}
	}

	log.Info("Shelved. Goodbye.")
}
