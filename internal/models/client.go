package models

import "time"

// Client is a customer known to one user. Rows are created only as a side
// effect of saving an invoice with a new client name (upsert-on-save);
// deleting a client never touches invoices, which carry their own copy of
// the name and address.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"not null;uniqueIndex:idx_clients_user_name" json:"user_id"`

	Name    string `gorm:"size:255;not null;uniqueIndex:idx_clients_user_name" json:"name"`
	Address string `gorm:"size:500" json:"address,omitempty"`
}
