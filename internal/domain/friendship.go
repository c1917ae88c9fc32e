package domain

import "time"

// FriendshipStatus represents the state of a friendship request.
type FriendshipStatus string

const (
	// FriendshipPending means the request is awaiting a response.
	FriendshipPending FriendshipStatus = "pending"
	// FriendshipAccepted means both users are friends.
	FriendshipAccepted FriendshipStatus = "accepted"
	// FriendshipRejected means the recipient declined the request.
	FriendshipRejected FriendshipStatus = "rejected"
)

// Valid checks if the status is one of the known values.
func (s FriendshipStatus) Valid() bool {
	switch s {
	case FriendshipPending, FriendshipAccepted, FriendshipRejected:
		return true
	default:
		return false
	}
}

// FriendshipKey is the canonical unordered pair of user IDs identifying
// a friendship. UserID1 always sorts before UserID2, so the pair (a, b)
// and (b, a) map to the same key.
type FriendshipKey struct {
	UserID1 string `json:"user_id_1"`
	UserID2 string `json:"user_id_2"`
}

// NewFriendshipKey builds the canonical key for two users regardless of
// argument order.
func NewFriendshipKey(a, b string) FriendshipKey {
	if b < a {
		a, b = b, a
	}
	return FriendshipKey{UserID1: a, UserID2: b}
}

// Valid reports whether the key holds two distinct users in canonical
// order.
func (k FriendshipKey) Valid() bool {
	return k.UserID1 != "" && k.UserID2 != "" && k.UserID1 < k.UserID2
}

// Contains reports whether the given user is part of the pair.
func (k FriendshipKey) Contains(userID string) bool {
	return k.UserID1 == userID || k.UserID2 == userID
}

// Other returns the pair member that is not the given user. It returns
// an empty string when the user is not part of the pair.
func (k FriendshipKey) Other(userID string) string {
	switch userID {
	case k.UserID1:
		return k.UserID2
	case k.UserID2:
		return k.UserID1
	default:
		return ""
	}
}

// StorageID returns the key encoded for use as a primary storage key.
func (k FriendshipKey) StorageID() string {
	return k.UserID1 + "|" + k.UserID2
}

// Friendship links two users. The key is canonical, so a single record
// represents the relationship in both directions.
type Friendship struct {
	FriendshipKey
	Status      FriendshipStatus `json:"status"`
	RequestedBy string           `json:"requested_by_user_id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewFriendship creates a pending request from one user to another.
func NewFriendship(requesterID, recipientID string) *Friendship {
	now := time.Now()
	return &Friendship{
		FriendshipKey: NewFriendshipKey(requesterID, recipientID),
		Status:        FriendshipPending,
		RequestedBy:   requesterID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Touch updates the modification timestamp.
func (f *Friendship) Touch() {
	f.UpdatedAt = time.Now()
}

// Recipient returns the user the request was sent to.
func (f *Friendship) Recipient() string {
	return f.Other(f.RequestedBy)
}

// Pending reports whether the request is still awaiting a response.
func (f *Friendship) Pending() bool {
	return f.Status == FriendshipPending
}

// CanRespond reports whether the given user may accept or reject the
// request. Only the recipient of a pending request can respond.
func (f *Friendship) CanRespond(userID string) bool {
	return f.Pending() && f.Recipient() == userID
}
