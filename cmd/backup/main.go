// Package main provides a tool to back up and restore the shelf database.
//
// Usage:
//
//	DB_PATH=~/LitShelf/data/shelf go run ./cmd/backup create
//	DB_PATH=~/LitShelf/data/shelf go run ./cmd/backup list
//	DB_PATH=~/LitShelf/data/shelf go run ./cmd/backup restore <path> [--dry-run]
//	go run ./cmd/backup validate <path>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Garbson/LitShelf/internal/backup"
	"github.com/Garbson/LitShelf/internal/store"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to resolve home directory: %v", err)
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(home, "LitShelf", "data", "shelf")
	}
	backupDir := os.Getenv("BACKUP_DIR")
	if backupDir == "" {
		backupDir = filepath.Join(home, "LitShelf", "backups")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	svc := backup.NewService(s, backupDir, "LitShelf Server", "dev", logger)
	restore := backup.NewRestoreService(s, logger)

	switch flag.Arg(0) {
	case "create":
		result, err := svc.Create(ctx, backup.Options{})
		if err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
		fmt.Printf("Backup written to %s (%d bytes)\n", result.Path, result.Size)
		fmt.Printf("  users=%d books=%d quotes=%d friendships=%d recommendations=%d\n",
			result.Counts.Users, result.Counts.Books, result.Counts.Quotes,
			result.Counts.Friendships, result.Counts.Recommendations)
		fmt.Printf("  sha256=%s\n", result.Checksum)

	case "list":
		backups, err := svc.List(ctx)
		if err != nil {
			log.Fatalf("Failed to list backups: %v", err)
		}
		if len(backups) == 0 {
			fmt.Println("No backups found")
			return
		}
		for _, b := range backups {
			fmt.Printf("%s  %10d bytes  %s\n", b.ID, b.Size, b.CreatedAt.Format("2006-01-02 15:04:05"))
		}

	case "restore":
		args := flag.Args()[1:]
		fs := flag.NewFlagSet("restore", flag.ExitOnError)
		dryRun := fs.Bool("dry-run", false, "Count entities without writing")
		_ = fs.Parse(args)
		if fs.NArg() != 1 {
			log.Fatal("restore requires a backup file path")
		}

		result, err := restore.Restore(ctx, fs.Arg(0), backup.RestoreOptions{DryRun: *dryRun})
		if err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
		fmt.Printf("Imported: %v\n", result.Imported)
		fmt.Printf("Skipped:  %v\n", result.Skipped)
		for _, e := range result.Errors {
			fmt.Printf("Error (%s): %s\n", e.EntityType, e.Error)
		}

	case "validate":
		if flag.NArg() != 2 {
			log.Fatal("validate requires a backup file path")
		}
		result, err := restore.Validate(ctx, flag.Arg(1))
		if err != nil {
			log.Fatalf("Validation failed: %v", err)
		}
		if result.Valid {
			fmt.Println("Backup is valid")
			fmt.Printf("  created: %s\n", result.Manifest.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("  counts:  %+v\n", result.ExpectedCounts)
		} else {
			fmt.Println("Backup is INVALID")
			for _, e := range result.Errors {
				fmt.Printf("  error: %s\n", e)
			}
		}
		for _, w := range result.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}

	case "delete":
		if flag.NArg() != 2 {
			log.Fatal("delete requires a backup ID")
		}
		if err := svc.Delete(ctx, flag.Arg(1)); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		fmt.Println("Backup deleted")

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: backup <create|list|restore|validate|delete> [args]")
	flag.PrintDefaults()
}
