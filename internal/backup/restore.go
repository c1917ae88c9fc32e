package backup

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"encoding/json/v2"

	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/store"
)

// RestoreOptions configures restoration.
type RestoreOptions struct {
	DryRun bool // Validate and count without writing
}

// RestoreResult contains the outcome of a restore operation.
type RestoreResult struct {
	Imported map[string]int `json:"imported"`
	Skipped  map[string]int `json:"skipped"`
	Errors   []RestoreError `json:"errors,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// RestoreError describes a non-fatal error during restore.
type RestoreError struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id,omitempty"`
	Error      string `json:"error"`
}

// ValidationResult describes backup validity.
type ValidationResult struct {
	Valid          bool         `json:"valid"`
	Manifest       *Manifest    `json:"manifest,omitempty"`
	ExpectedCounts EntityCounts `json:"expected_counts"`
	Errors         []string     `json:"errors,omitempty"`
	Warnings       []string     `json:"warnings,omitempty"`
}

// RestoreService restores shelf data from backup archives.
type RestoreService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewRestoreService creates a RestoreService.
func NewRestoreService(s *store.Store, logger *slog.Logger) *RestoreService {
	return &RestoreService{store: s, logger: logger}
}

// Restore imports entities from a backup archive. Entities that already
// exist in the database are skipped, so restoring into a live database
// merges the backup in without clobbering local data.
func (s *RestoreService) Restore(ctx context.Context, path string, opts RestoreOptions) (*RestoreResult, error) {
	start := time.Now()

	s.logger.Info("starting restore", "path", path, "dry_run", opts.DryRun)

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer zr.Close()

	manifest, err := readManifest(zr)
	if err != nil {
		return nil, err
	}
	if manifest.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %s (want %s)", ErrVersionMismatch, manifest.Version, FormatVersion)
	}

	result := &RestoreResult{
		Imported: make(map[string]int),
		Skipped:  make(map[string]int),
	}

	// Users first so owner references resolve, then books before quotes.
	restoreEntities(ctx, zr, "users", "entities/users.jsonl", result, opts.DryRun,
		func(ctx context.Context, u *domain.User) error {
			return s.store.Users.Create(ctx, u.ID, u)
		})
	restoreEntities(ctx, zr, "books", "entities/books.jsonl", result, opts.DryRun,
		s.store.CreateBook)
	restoreEntities(ctx, zr, "quotes", "entities/quotes.jsonl", result, opts.DryRun,
		s.store.CreateQuote)
	restoreEntities(ctx, zr, "friendships", "entities/friendships.jsonl", result, opts.DryRun,
		s.store.CreateFriendship)
	restoreEntities(ctx, zr, "recommendations", "entities/recommendations.jsonl", result, opts.DryRun,
		s.store.CreateRecommendation)

	result.Duration = time.Since(start)

	s.logger.Info("restore complete",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"duration", result.Duration)

	return result, nil
}

// restoreEntities streams one entity file into the store. Missing files
// are tolerated; a backup from an older format may not carry them.
func restoreEntities[T any](
	ctx context.Context,
	zr *zip.ReadCloser,
	entityType, path string,
	result *RestoreResult,
	dryRun bool,
	create func(context.Context, *T) error,
) {
	rc, err := openFile(zr, path)
	if err != nil {
		return
	}

	for entity, err := range newJSONLReader[T](rc).all() {
		if err != nil {
			result.Errors = append(result.Errors, RestoreError{
				EntityType: entityType,
				Error:      err.Error(),
			})
			continue
		}
		if dryRun {
			result.Imported[entityType]++
			continue
		}
		if err := create(ctx, &entity); err != nil {
			if isExists(err) {
				result.Skipped[entityType]++
				continue
			}
			result.Errors = append(result.Errors, RestoreError{
				EntityType: entityType,
				Error:      err.Error(),
			})
			continue
		}
		result.Imported[entityType]++
	}
}

// isExists reports whether an error means the entity is already present.
func isExists(err error) bool {
	return errors.Is(err, store.ErrAlreadyExists) ||
		errors.Is(err, store.ErrBookExists) ||
		errors.Is(err, store.ErrQuoteExists) ||
		errors.Is(err, store.ErrFriendshipExists) ||
		errors.Is(err, store.ErrRecommendationExists)
}

func readManifest(zr *zip.ReadCloser) (*Manifest, error) {
	rc, err := openFile(zr, "manifest.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	defer rc.Close()

	var manifest Manifest
	if err := json.UnmarshalRead(rc, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return &manifest, nil
}

// Validate checks a backup without importing.
func (s *RestoreService) Validate(_ context.Context, path string) (*ValidationResult, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []string{fmt.Sprintf("failed to open backup: %v", err)},
		}, nil
	}
	defer zr.Close()

	result := &ValidationResult{Valid: true}

	manifest, err := readManifest(zr)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}

	result.Manifest = manifest
	result.ExpectedCounts = manifest.Counts

	if manifest.Version != FormatVersion {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("unsupported version %s (want %s)", manifest.Version, FormatVersion))
	}

	requiredFiles := []string{
		"entities/users.jsonl",
		"entities/books.jsonl",
	}
	for _, name := range requiredFiles {
		if _, err := openFile(zr, name); err != nil {
			result.Warnings = append(result.Warnings, "missing file: "+name)
		}
	}

	return result, nil
}
