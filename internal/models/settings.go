package models

import "time"

// Settings is the business profile printed on invoices. Exactly one row
// exists per deployment; it is created empty at startup and only ever
// updated. Reads of an invoice attach the current row, not a snapshot from
// when the invoice was saved.
type Settings struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	YourName          string    `gorm:"size:255" json:"your_name"`
	BusinessName      string    `gorm:"size:255" json:"business_name"`
	BusinessAddress   string    `gorm:"size:500" json:"business_address"`
	DefaultHourlyRate float64   `json:"default_hourly_rate"`
	ACHAccount        string    `gorm:"size:100" json:"ach_account"`
	ACHRouting        string    `gorm:"size:100" json:"ach_routing"`
	ZelleContact      string    `gorm:"size:255" json:"zelle_contact"`
}
