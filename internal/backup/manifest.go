package backup

import "time"

// FormatVersion is the backup format version. Increment major on breaking changes.
const FormatVersion = "1.0"

// Manifest describes backup contents and metadata.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Server identity
	ServerName string `json:"server_name"`
	AppVersion string `json:"app_version"`

	// Content summary
	Counts EntityCounts `json:"counts"`
}

// EntityCounts tracks entity counts for validation and progress reporting.
type EntityCounts struct {
	Users           int `json:"users"`
	Books           int `json:"books"`
	Quotes          int `json:"quotes"`
	Friendships     int `json:"friendships"`
	Recommendations int `json:"recommendations"`
}
