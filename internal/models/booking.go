// internal/models/booking.go
package models

import "time"

// Booking is a scheduled interview record. Rows are append-only; there is no
// update or delete path.
type Booking struct {
	Token       string    `json:"token"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ScheduledAt time.Time `json:"scheduled_at"` // UTC
	CreatedAt   time.Time `json:"created_at"`   // UTC
	ResumeText  *string   `json:"resume_text,omitempty"`
	ResumeURL   *string   `json:"resume_url,omitempty"`
}
