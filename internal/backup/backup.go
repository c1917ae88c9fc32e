package backup

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"encoding/json/v2"

	"github.com/Garbson/LitShelf/internal/store"
)

const archiveSuffix = ".litshelf.zip"

// Options configures backup creation.
type Options struct {
	OutputPath string // Where to write the backup file; generated when empty
}

// Result contains the outcome of a backup operation.
type Result struct {
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Counts   EntityCounts  `json:"counts"`
	Duration time.Duration `json:"duration"`
	Checksum string        `json:"checksum"`
}

// Info describes an existing backup.
type Info struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Service manages backup creation and listing for a shelf database.
type Service struct {
	store      *store.Store
	backupDir  string
	serverName string
	version    string
	logger     *slog.Logger
}

// NewService creates a backup Service.
func NewService(s *store.Store, backupDir, serverName, version string, logger *slog.Logger) *Service {
	return &Service{
		store:      s,
		backupDir:  backupDir,
		serverName: serverName,
		version:    version,
		logger:     logger,
	}
}

// Create writes a full backup of the shelf database to a zip archive.
// Sessions are deliberately excluded; they are transient auth state.
func (s *Service) Create(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		timestamp := time.Now().Format("2006-01-02-150405")
		outputPath = filepath.Join(s.backupDir, "backup-"+timestamp+archiveSuffix)
	}

	s.logger.Info("creating backup", "output", outputPath)

	counts, err := s.writeArchive(ctx, outputPath)
	if err != nil {
		os.Remove(outputPath)
		return nil, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}

	checksum, err := fileChecksum(outputPath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Path:     outputPath,
		Size:     info.Size(),
		Counts:   counts,
		Duration: time.Since(start),
		Checksum: checksum,
	}

	s.logger.Info("backup complete",
		"path", result.Path,
		"size", result.Size,
		"duration", result.Duration,
		"checksum", result.Checksum)

	return result, nil
}

func (s *Service) writeArchive(ctx context.Context, path string) (EntityCounts, error) {
	var counts EntityCounts

	f, err := os.Create(path)
	if err != nil {
		return counts, fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	if counts.Users, err = writeEntities(zw, "entities/users.jsonl", s.listUsers(ctx)); err != nil {
		return counts, err
	}

	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return counts, err
	}
	if counts.Books, err = writeSlice(zw, "entities/books.jsonl", books); err != nil {
		return counts, err
	}

	quotes, err := s.store.ListAllQuotes(ctx)
	if err != nil {
		return counts, err
	}
	if counts.Quotes, err = writeSlice(zw, "entities/quotes.jsonl", quotes); err != nil {
		return counts, err
	}

	friendships, err := s.store.ListAllFriendships(ctx)
	if err != nil {
		return counts, err
	}
	if counts.Friendships, err = writeSlice(zw, "entities/friendships.jsonl", friendships); err != nil {
		return counts, err
	}

	recs, err := s.store.ListAllRecommendations(ctx)
	if err != nil {
		return counts, err
	}
	if counts.Recommendations, err = writeSlice(zw, "entities/recommendations.jsonl", recs); err != nil {
		return counts, err
	}

	manifest := Manifest{
		Version:    FormatVersion,
		CreatedAt:  time.Now().UTC(),
		ServerName: s.serverName,
		AppVersion: s.version,
		Counts:     counts,
	}
	mw, err := zw.Create("manifest.json")
	if err != nil {
		return counts, fmt.Errorf("create manifest: %w", err)
	}
	if err := json.MarshalWrite(mw, manifest); err != nil {
		return counts, fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return counts, fmt.Errorf("finalize archive: %w", err)
	}
	return counts, nil
}

// listUsers collects all users via the generic entity iterator.
func (s *Service) listUsers(ctx context.Context) func(yield func(any, error) bool) {
	return func(yield func(any, error) bool) {
		for user, err := range s.store.Users.List(ctx) {
			if !yield(user, err) {
				return
			}
		}
	}
}

func writeEntities(zw *zip.Writer, path string, entities func(yield func(any, error) bool)) (int, error) {
	w, err := newJSONLWriter(zw, path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	for entity, err := range entities {
		if err != nil {
			return w.count, fmt.Errorf("list for %s: %w", path, err)
		}
		if err := w.write(entity); err != nil {
			return w.count, fmt.Errorf("write %s: %w", path, err)
		}
	}
	return w.count, nil
}

func writeSlice[T any](zw *zip.Writer, path string, entities []T) (int, error) {
	w, err := newJSONLWriter(zw, path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	for _, entity := range entities {
		if err := w.write(entity); err != nil {
			return w.count, fmt.Errorf("write %s: %w", path, err)
		}
	}
	return w.count, nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// List returns all available backups, newest first.
func (s *Service) List(_ context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, Info{
			ID:        strings.TrimSuffix(entry.Name(), archiveSuffix),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Get returns a backup by ID.
func (s *Service) Get(_ context.Context, id string) (*Info, error) {
	path := s.GetPath(id)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &Info{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a backup.
func (s *Service) Delete(_ context.Context, id string) error {
	path := s.GetPath(id)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}

	return os.Remove(path)
}

// GetPath returns the file path for a backup ID.
func (s *Service) GetPath(id string) string {
	return filepath.Join(s.backupDir, id+archiveSuffix)
}
