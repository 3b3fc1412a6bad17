package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

// Invoice is an hourly-rate invoice owned by one user. ClientName and
// ClientAddress are a denormalized copy taken at save time, so later edits
// to the Client row never alter past invoices. Dates are stored as
// "2006-01-02" text, the same form they travel in JSON.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"not null;uniqueIndex:idx_invoices_user_number" json:"user_id"`

	InvoiceNumber string `gorm:"size:100;not null;uniqueIndex:idx_invoices_user_number" json:"invoice_number"`

	ClientName    string `gorm:"size:255;not null" json:"client_name"`
	ClientAddress string `gorm:"size:500" json:"client_address,omitempty"`

	InvoiceDate  string `gorm:"size:10;not null" json:"invoice_date"`
	DueDate      string `gorm:"size:10" json:"due_date,omitempty"`
	PaymentTerms string `gorm:"size:255" json:"payment_terms,omitempty"`

	// HourlyRate applies uniformly to every line item; there is no
	// per-line override.
	HourlyRate float64 `gorm:"not null" json:"hourly_rate"`

	Status InvoiceStatus `gorm:"size:20;default:'draft'" json:"status"`

	// Total is cached on the row but always recomputed from the line
	// items before a write; a client-supplied value is ignored.
	Total float64 `gorm:"default:0" json:"total"`

	LineItems []LineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"line_items,omitempty"`

	// Settings is attached on single-invoice reads for the printable
	// view. Never persisted with the invoice.
	Settings *Settings `gorm:"-" json:"settings,omitempty"`
}

// ComputeTotal returns the sum of hours times the invoice's hourly rate
// across its line items.
func (inv *Invoice) ComputeTotal() float64 {
	var total float64
	for _, item := range inv.LineItems {
		total += float64(item.Hours) * inv.HourlyRate
	}
	return total
}

// LineItem is one row of work on an invoice. Line items have no identity
// across edits: every invoice update deletes the existing set and inserts
// the submitted one, with OrderIndex set to the 0-based submission position.
type LineItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	InvoiceID   uint   `gorm:"index;not null" json:"invoice_id"`
	Description string `gorm:"size:500;not null" json:"description"`
	Hours       Hours  `gorm:"type:real;not null" json:"hours"`
	OrderIndex  int    `gorm:"not null" json:"order_index"`
}

// Hours is a float64 that also accepts a quoted numeric string in JSON,
// because the browser form submits hours as text. Null, an empty string, or
// a string that does not parse all decode to NaN so the service can drop
// the item instead of failing the whole request body; submitted items carry
// it as a pointer, so an absent field stays nil and is dropped the same way.
type Hours float64

// ParsedOK reports whether the value decoded to a usable number.
func (h Hours) ParsedOK() bool {
	return !math.IsNaN(float64(h))
}

func (h *Hours) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*h = Hours(math.NaN())
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*h = Hours(math.NaN())
			return nil
		}
		*h = Hours(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*h = Hours(f)
	return nil
}
