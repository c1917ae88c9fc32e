package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"encoding/json/v2"

	"github.com/dgraph-io/badger/v4"

	"github.com/Garbson/LitShelf/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "LitShelf", "data", "shelf")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	statusCounts := make(map[domain.ReadingStatus]int)
	genreCounts := make(map[string]int)
	bookCount := 0
	shown := 0

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("book:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte("book:")); it.ValidForPrefix([]byte("book:")); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}

				bookCount++
				statusCounts[book.Status]++
				genreCounts[book.GenreBucket()]++

				if shown < 5 {
					shown++
					fmt.Printf("Book: %s\n", book.Title)
					fmt.Printf("  ID: %s\n", book.ID)
					fmt.Printf("  Owner: %s\n", book.UserID)
					fmt.Printf("  Author: %s\n", book.Author)
					fmt.Printf("  Status: %d  Page: %d/%d\n", book.Status, book.CurrentPage, book.PageCount)
					if book.GoogleBookID != "" {
						fmt.Printf("  Google Books: %s\n", book.GoogleBookID)
					}
					fmt.Println()
				}

				return nil
			})
			if err != nil {
				log.Printf("Error reading book %s: %v", string(item.Key()), err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	userCount := countPrefix(db, "user:")
	quoteCount := countPrefix(db, "quote:")
	friendshipCount := countPrefix(db, "friendship:")
	recCount := countPrefix(db, "rec:")
	sessionCount := countPrefix(db, "session:")

	fmt.Println("=== Summary ===")
	fmt.Printf("Users: %d\n", userCount)
	fmt.Printf("Books: %d\n", bookCount)
	fmt.Printf("Quotes: %d\n", quoteCount)
	fmt.Printf("Friendships: %d\n", friendshipCount)
	fmt.Printf("Recommendations: %d\n", recCount)
	fmt.Printf("Sessions: %d\n", sessionCount)
	fmt.Println()

	if bookCount > 0 {
		fmt.Println("Books by status:")
		fmt.Printf("  wishlist: %d\n", statusCounts[domain.StatusWishlist])
		fmt.Printf("  reading:  %d\n", statusCounts[domain.StatusReading])
		fmt.Printf("  finished: %d\n", statusCounts[domain.StatusCompleted])
		fmt.Println()

		fmt.Println("Genre distribution:")
		for genre, n := range genreCounts {
			fmt.Printf("  %-24s %d\n", genre, n)
		}
	}
}

// countPrefix counts primary keys under a prefix, skipping index keys.
func countPrefix(db *badger.DB, prefix string) int {
	count := 0
	_ = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key, "idx:") {
				continue
			}
			count++
		}
		return nil
	})
	return count
}
