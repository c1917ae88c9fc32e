// Package sse implements Server-Sent Events for real-time shelf and
// social updates. Clients receive changes to their own data plus the
// social events addressed to them; services can also subscribe
// in-process to react to changes.
package sse

import (
	"time"

	"github.com/Garbson/LitShelf/internal/domain"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventBookCreated represents a book being added to a shelf.
	EventBookCreated EventType = "book.created"
	// EventBookUpdated represents a book update.
	EventBookUpdated EventType = "book.updated"
	// EventBookDeleted represents a book removal.
	EventBookDeleted EventType = "book.deleted"

	// EventQuoteCreated represents a saved quote.
	EventQuoteCreated EventType = "quote.created"
	// EventQuoteUpdated represents an edited quote.
	EventQuoteUpdated EventType = "quote.updated"
	// EventQuoteDeleted represents a removed quote.
	EventQuoteDeleted EventType = "quote.deleted"

	// EventFriendshipRequested represents an incoming friend request.
	EventFriendshipRequested EventType = "friendship.requested"
	// EventFriendshipUpdated represents a friend request being
	// accepted or rejected.
	EventFriendshipUpdated EventType = "friendship.updated"
	// EventFriendshipDeleted represents a removed friendship.
	EventFriendshipDeleted EventType = "friendship.deleted"

	// EventRecommendationCreated represents an incoming recommendation.
	EventRecommendationCreated EventType = "recommendation.created"
	// EventRecommendationUpdated represents a recommendation being
	// accepted or rejected.
	EventRecommendationUpdated EventType = "recommendation.updated"

	// EventGoalUpdated represents a changed yearly reading goal.
	EventGoalUpdated EventType = "goal.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct
// deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID filters delivery to a single user. Every shelf and social
	// event is user-specific; events affecting two users are emitted
	// once per user.
	UserID string `json:"-"`
}

// BookEventData is the data payload for book events.
type BookEventData struct {
	Book *domain.Book `json:"book"`
}

// BookDeletedEventData is the data payload for book delete events.
type BookDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	BookID    string    `json:"book_id"`
}

// QuoteEventData is the data payload for quote events.
type QuoteEventData struct {
	Quote *domain.Quote `json:"quote"`
}

// QuoteDeletedEventData is the data payload for quote delete events.
type QuoteDeletedEventData struct {
	QuoteID string `json:"quote_id"`
	BookID  string `json:"book_id"`
}

// FriendshipEventData is the data payload for friendship events.
type FriendshipEventData struct {
	Friendship *domain.Friendship `json:"friendship"`
}

// FriendshipDeletedEventData is the data payload for friendship delete events.
type FriendshipDeletedEventData struct {
	UserID1 string `json:"user_id_1"`
	UserID2 string `json:"user_id_2"`
}

// RecommendationEventData is the data payload for recommendation events.
type RecommendationEventData struct {
	Recommendation *domain.Recommendation `json:"recommendation"`
}

// GoalEventData is the data payload for reading goal events.
type GoalEventData struct {
	Year   string `json:"year"`
	Target int    `json:"target"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewBookCreatedEvent creates a book.created event for the book's owner.
func NewBookCreatedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookCreated,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
		UserID:    book.UserID,
	}
}

// NewBookUpdatedEvent creates a book.updated event for the book's owner.
func NewBookUpdatedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookUpdated,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
		UserID:    book.UserID,
	}
}

// NewBookDeletedEvent creates a book.deleted event for the book's owner.
func NewBookDeletedEvent(userID, bookID string) Event {
	return Event{
		Type: EventBookDeleted,
		Data: BookDeletedEventData{
			BookID:    bookID,
			DeletedAt: time.Now(),
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewQuoteCreatedEvent creates a quote.created event for the quote's owner.
func NewQuoteCreatedEvent(quote *domain.Quote) Event {
	return Event{
		Type:      EventQuoteCreated,
		Data:      QuoteEventData{Quote: quote},
		Timestamp: time.Now(),
		UserID:    quote.UserID,
	}
}

// NewQuoteUpdatedEvent creates a quote.updated event for the quote's owner.
func NewQuoteUpdatedEvent(quote *domain.Quote) Event {
	return Event{
		Type:      EventQuoteUpdated,
		Data:      QuoteEventData{Quote: quote},
		Timestamp: time.Now(),
		UserID:    quote.UserID,
	}
}

// NewQuoteDeletedEvent creates a quote.deleted event for the quote's owner.
func NewQuoteDeletedEvent(userID, quoteID, bookID string) Event {
	return Event{
		Type: EventQuoteDeleted,
		Data: QuoteDeletedEventData{
			QuoteID: quoteID,
			BookID:  bookID,
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewFriendshipRequestedEvent creates a friendship.requested event
// addressed to one member of the pair. Emit once per member.
func NewFriendshipRequestedEvent(userID string, f *domain.Friendship) Event {
	return Event{
		Type:      EventFriendshipRequested,
		Data:      FriendshipEventData{Friendship: f},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewFriendshipUpdatedEvent creates a friendship.updated event
// addressed to one member of the pair. Emit once per member.
func NewFriendshipUpdatedEvent(userID string, f *domain.Friendship) Event {
	return Event{
		Type:      EventFriendshipUpdated,
		Data:      FriendshipEventData{Friendship: f},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewFriendshipDeletedEvent creates a friendship.deleted event
// addressed to one member of the pair. Emit once per member.
func NewFriendshipDeletedEvent(userID string, key domain.FriendshipKey) Event {
	return Event{
		Type: EventFriendshipDeleted,
		Data: FriendshipDeletedEventData{
			UserID1: key.UserID1,
			UserID2: key.UserID2,
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewRecommendationCreatedEvent creates a recommendation.created event
// addressed to one of the two participants. Emit once per participant.
func NewRecommendationCreatedEvent(userID string, rec *domain.Recommendation) Event {
	return Event{
		Type:      EventRecommendationCreated,
		Data:      RecommendationEventData{Recommendation: rec},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewRecommendationUpdatedEvent creates a recommendation.updated event
// addressed to one of the two participants. Emit once per participant.
func NewRecommendationUpdatedEvent(userID string, rec *domain.Recommendation) Event {
	return Event{
		Type:      EventRecommendationUpdated,
		Data:      RecommendationEventData{Recommendation: rec},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewGoalUpdatedEvent creates a goal.updated event for the goal's owner.
func NewGoalUpdatedEvent(userID, year string, target int) Event {
	return Event{
		Type: EventGoalUpdated,
		Data: GoalEventData{
			Year:   year,
			Target: target,
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: time.Now()},
		Timestamp: time.Now(),
	}
}
