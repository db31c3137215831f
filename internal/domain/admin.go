package domain

import "time"

// Admin represents a staff account allowed into the console.
type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
