// Package main provides a tool to seed the database with test shelf data.
//
// This creates a handful of users with books across every reading status,
// quotes, and friendships, to exercise the dashboard, ranking, and social
// features against realistic data.
//
// Usage:
//
//	DB_PATH=~/LitShelf/data/shelf go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/Garbson/LitShelf/internal/auth"
	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/id"
	"github.com/Garbson/LitShelf/internal/store"
)

// seedUsers are the accounts created by the tool. All share the password
// "testpass123".
var seedUsers = []struct {
	name  string
	email string
}{
	{"Alex Rivera", "alex@example.com"},
	{"Jordan Chen", "jordan@example.com"},
	{"Sam Taylor", "sam@example.com"},
	{"Casey Morgan", "casey@example.com"},
}

// seedBooks is a small catalog the tool distributes across users.
var seedBooks = []struct {
	title  string
	author string
	genre  string
	pages  int
}{
	{"Dune", "Frank Herbert", "Science Fiction", 412},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "Science Fiction", 304},
	{"Pride and Prejudice", "Jane Austen", "Classics", 432},
	{"The Name of the Wind", "Patrick Rothfuss", "Fantasy", 662},
	{"Thinking, Fast and Slow", "Daniel Kahneman", "Nonfiction", 499},
	{"The Remains of the Day", "Kazuo Ishiguro", "Fiction", 258},
	{"Piranesi", "Susanna Clarke", "Fantasy", 245},
	{"Braiding Sweetgrass", "Robin Wall Kimmerer", "Nonfiction", 391},
}

var seedQuotes = []string{
	"Fear is the mind-killer.",
	"The truth depends on a walk around the lake.",
	"It is a truth universally acknowledged.",
	"Words are pale shadows of forgotten names.",
	"The beauty of the house is immeasurable.",
}

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "LitShelf", "data", "shelf")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	userIDs := createUsers(ctx, s)
	if len(userIDs) == 0 {
		log.Fatal("No users available to seed")
	}

	for _, userID := range userIDs {
		seedShelf(ctx, s, rng, userID)
	}

	createFriendships(ctx, s, userIDs)

	fmt.Println("\nSeeding complete!")
}

func createUsers(ctx context.Context, s *store.Store) []string {
	fmt.Println("\n=== Creating Users ===")

	passwordHash, err := auth.HashPassword("testpass123")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	var userIDs []string

	for _, u := range seedUsers {
		if existing, _ := s.GetUserByEmail(ctx, u.email); existing != nil {
			fmt.Printf("  User %s already exists, reusing\n", u.email)
			userIDs = append(userIDs, existing.ID)
			continue
		}

		user := &domain.User{
			Syncable: domain.Syncable{
				ID:        id.NewUserID(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Email:               u.email,
			PasswordHash:        passwordHash,
			DisplayName:         u.name,
			AvailableForFriends: true,
		}

		if err := s.Users.Create(ctx, user.ID, user); err != nil {
			log.Printf("  Failed to create user %s: %v", u.name, err)
			continue
		}

		fmt.Printf("  Created user: %s (%s)\n", u.name, u.email)
		userIDs = append(userIDs, user.ID)
	}

	return userIDs
}

func seedShelf(ctx context.Context, s *store.Store, rng *rand.Rand, userID string) {
	existing, err := s.ListUserBooks(ctx, userID)
	if err != nil {
		log.Printf("Failed to list books for user %s: %v", userID, err)
		return
	}
	if len(existing) > 0 {
		fmt.Printf("  User %s already has %d books, skipping shelf seed\n", userID, len(existing))
		return
	}

	// Pick 4-6 books with a spread of statuses
	numBooks := min(4+rng.Intn(3), len(seedBooks))
	shuffled := rng.Perm(len(seedBooks))
	now := time.Now()

	quotesCreated := 0
	for i := range numBooks {
		b := seedBooks[shuffled[i]]

		book := &domain.Book{
			Syncable: domain.Syncable{
				ID:        id.MustGenerate("book"),
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:    userID,
			Title:     b.title,
			Author:    b.author,
			Genre:     b.genre,
			PageCount: b.pages,
		}

		switch i % 3 {
		case 0:
			book.Status = domain.StatusWishlist
		case 1:
			book.Status = domain.StatusReading
			started := now.AddDate(0, 0, -rng.Intn(30)-1)
			book.StartedReadingAt = &started
			book.CurrentPage = b.pages * (20 + rng.Intn(60)) / 100
		case 2:
			book.Status = domain.StatusCompleted
			started := now.AddDate(0, 0, -rng.Intn(60)-14)
			finished := started.AddDate(0, 0, rng.Intn(14)+3)
			book.StartedReadingAt = &started
			book.FinishedReadingAt = &finished
			book.CurrentPage = b.pages
			book.Rating = 3 + rng.Intn(3)
		}

		if err := s.CreateBook(ctx, book); err != nil {
			log.Printf("  Failed to create book %s: %v", b.title, err)
			continue
		}

		// A quote or two for non-wishlist books
		if book.Status != domain.StatusWishlist {
			quote := &domain.Quote{
				Syncable: domain.Syncable{
					ID:        id.MustGenerate("quote"),
					CreatedAt: now,
					UpdatedAt: now,
				},
				UserID: userID,
				BookID: book.ID,
				Text:   seedQuotes[rng.Intn(len(seedQuotes))],
			}
			if err := s.CreateQuote(ctx, quote); err != nil {
				log.Printf("  Failed to create quote: %v", err)
			} else {
				quotesCreated++
			}
		}
	}

	fmt.Printf("  Seeded %d books and %d quotes for user %s\n", numBooks, quotesCreated, userID)
}

// createFriendships links every seeded user to the first one, accepting
// all but the last request so there is a pending entry to look at.
func createFriendships(ctx context.Context, s *store.Store, userIDs []string) {
	if len(userIDs) < 2 {
		return
	}

	fmt.Println("\n=== Creating Friendships ===")
	now := time.Now()

	for i, other := range userIDs[1:] {
		key := domain.NewFriendshipKey(userIDs[0], other)

		if _, err := s.GetFriendship(ctx, key); err == nil {
			fmt.Printf("  Friendship %s already exists, skipping\n", key.StorageID())
			continue
		}

		status := domain.FriendshipAccepted
		if i == len(userIDs)-2 {
			status = domain.FriendshipPending
		}

		f := &domain.Friendship{
			FriendshipKey: key,
			Status:        status,
			RequestedBy:   userIDs[0],
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := s.CreateFriendship(ctx, f); err != nil {
			log.Printf("  Failed to create friendship: %v", err)
			continue
		}

		fmt.Printf("  %s <-> %s (%s)\n", userIDs[0], other, status)
	}
}
