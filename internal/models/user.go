package models

import "time"

// User represents an authenticated account. Every Client and Invoice row
// belongs to exactly one user via its UserID.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Username is case-sensitive unique; the constraint is what rejects
	// duplicate signups, there is no pre-check.
	Username string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed
}
