package models

import "time"

// Notification is an operator-visible message with an optional link
type Notification struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	LinkPath  string    `json:"link_path"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
