package domain

import "time"

// DefaultReadingGoal is the yearly book target used when the user has
// never set one.
const DefaultReadingGoal = 20

// User represents a registered account.
type User struct {
	Syncable
	Email               string         `json:"email"`
	PasswordHash        string         `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName         string         `json:"display_name"`
	AvatarURL           string         `json:"avatar_url,omitempty"`
	AvailableForFriends bool           `json:"available_for_friends"`
	ReadingGoals        map[string]int `json:"reading_goals,omitempty"` // Year -> target books, e.g. "2026" -> 24
	LastLoginAt         time.Time      `json:"last_login_at,omitempty"`
}

// GoalFor returns the user's reading goal for the given year and
// whether one was set.
func (u *User) GoalFor(year string) (int, bool) {
	if u.ReadingGoals == nil {
		return 0, false
	}
	target, ok := u.ReadingGoals[year]
	return target, ok
}

// SetGoal records the user's reading goal for the given year.
func (u *User) SetGoal(year string, target int) {
	if u.ReadingGoals == nil {
		u.ReadingGoals = make(map[string]int)
	}
	u.ReadingGoals[year] = target
	u.Touch()
}

// Profile is the public view of a user, safe to show to other users.
type Profile struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	DisplayName         string `json:"display_name"`
	AvatarURL           string `json:"avatar_url,omitempty"`
	AvailableForFriends bool   `json:"available_for_friends"`
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:                  u.ID,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		AvatarURL:           u.AvatarURL,
		AvailableForFriends: u.AvailableForFriends,
	}
}

// Session tracks a refresh token issued to a device.
type Session struct {
	Syncable
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash"`
	UserAgent        string    `json:"user_agent,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	LastUsedAt       time.Time `json:"last_used_at"`
}

// Expired reports whether the session's refresh token is past its
// expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
