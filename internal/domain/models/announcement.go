// internal/domain/models/announcement.go
package models

import "time"

// Announcement is a message posted by an admin. The collection is kept
// newest first, so the latest announcement is at index 0.
type Announcement struct {
	ID      string    `json:"id"` // creation time in unix millis, as text
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}
