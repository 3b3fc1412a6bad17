package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/timebill/internal/models"
	"github.com/diewo77/timebill/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceService owns every read and write of the invoice aggregate: the
// invoice row, its line items, and the client upsert that saving an invoice
// implies. Writes run in a single transaction so a failure partway leaves
// the aggregate exactly as it was.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// InvoiceInput is the submitted invoice. Total is accepted for wire
// compatibility but ignored; the service recomputes it from the line items.
type InvoiceInput struct {
	InvoiceNumber string               `json:"invoice_number"`
	ClientName    string               `json:"client_name"`
	ClientAddress string               `json:"client_address"`
	InvoiceDate   string               `json:"invoice_date"`
	DueDate       string               `json:"due_date"`
	PaymentTerms  string               `json:"payment_terms"`
	HourlyRate    float64              `json:"hourly_rate"`
	Status        models.InvoiceStatus `json:"status"`
	Total         float64              `json:"total"`
	LineItems     []LineItemInput      `json:"line_items"`
}

// LineItemInput carries hours as a pointer so an absent field is
// distinguishable from an explicit zero.
type LineItemInput struct {
	Description string        `json:"description"`
	Hours       *models.Hours `json:"hours"`
}

var invoiceStatuses = []string{
	string(models.InvoiceStatusDraft),
	string(models.InvoiceStatusSent),
	string(models.InvoiceStatusPaid),
}

func (in *InvoiceInput) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("invoice_number", in.InvoiceNumber, v)
	validation.Required("client_name", in.ClientName, v)
	validation.Date("invoice_date", in.InvoiceDate, v)
	validation.OptionalDate("due_date", in.DueDate, v)
	validation.NonNegativeFloat("hourly_rate", in.HourlyRate, v)
	if in.Status != "" {
		validation.OneOf("status", string(in.Status), invoiceStatuses, v)
	}
	return v
}

// keptItems filters the submitted line items the way the form expects:
// rows with a blank description, or hours that are missing, unparseable, or
// negative, are dropped, not rejected. Empty trailing form rows come
// through that way.
func keptItems(items []LineItemInput) []LineItemInput {
	kept := make([]LineItemInput, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			continue
		}
		if it.Hours == nil || !it.Hours.ParsedOK() || *it.Hours < 0 {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// upsertClient creates the client row for (userID, name) if absent, or
// overwrites its address when a non-empty different one is supplied. This is
// the only place client rows come from.
func upsertClient(tx *gorm.DB, userID uint, name, address string) error {
	var client models.Client
	err := tx.Where("user_id = ? AND name = ?", userID, name).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.Client{UserID: userID, Name: name, Address: address}).Error
	}
	if err != nil {
		return err
	}
	if address != "" && address != client.Address {
		return tx.Model(&client).Update("address", address).Error
	}
	return nil
}

// Create validates and persists a new invoice with its line items, creating
// or refreshing the client row on the way. Returns ErrConflict when the
// invoice number is already used by this user.
func (s *InvoiceService) Create(ctx context.Context, userID uint, in InvoiceInput) (*models.Invoice, error) {
	if v := in.validate(); !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	status := in.Status
	if status == "" {
		status = models.InvoiceStatusDraft
	}

	inv := &models.Invoice{
		UserID:        userID,
		InvoiceNumber: in.InvoiceNumber,
		ClientName:    in.ClientName,
		ClientAddress: in.ClientAddress,
		InvoiceDate:   in.InvoiceDate,
		DueDate:       in.DueDate,
		PaymentTerms:  in.PaymentTerms,
		HourlyRate:    in.HourlyRate,
		Status:        status,
	}
	items := keptItems(in.LineItems)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertClient(tx, userID, in.ClientName, in.ClientAddress); err != nil {
			return err
		}
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		for i, it := range items {
			li := models.LineItem{
				InvoiceID:   inv.ID,
				Description: it.Description,
				Hours:       *it.Hours,
				OrderIndex:  i,
			}
			if err := tx.Create(&li).Error; err != nil {
				return err
			}
			inv.LineItems = append(inv.LineItems, li)
		}
		return tx.Model(inv).Update("total", inv.ComputeTotal()).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return s.Get(ctx, inv.ID, userID)
}

// Update rewrites the invoice row and replaces its entire line-item set in
// one transaction. ErrNotFound when the id does not exist for this user —
// an invoice owned by someone else looks identical to a missing one.
func (s *InvoiceService) Update(ctx context.Context, id, userID uint, in InvoiceInput) (*models.Invoice, error) {
	if v := in.validate(); !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	status := in.Status
	if status == "" {
		status = models.InvoiceStatusDraft
	}
	items := keptItems(in.LineItems)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&inv).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := upsertClient(tx, userID, in.ClientName, in.ClientAddress); err != nil {
			return err
		}

		inv.InvoiceNumber = in.InvoiceNumber
		inv.ClientName = in.ClientName
		inv.ClientAddress = in.ClientAddress
		inv.InvoiceDate = in.InvoiceDate
		inv.DueDate = in.DueDate
		inv.PaymentTerms = in.PaymentTerms
		inv.HourlyRate = in.HourlyRate
		inv.Status = status

		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		inv.LineItems = nil
		for i, it := range items {
			li := models.LineItem{
				InvoiceID:   inv.ID,
				Description: it.Description,
				Hours:       *it.Hours,
				OrderIndex:  i,
			}
			if err := tx.Create(&li).Error; err != nil {
				return err
			}
			inv.LineItems = append(inv.LineItems, li)
		}
		inv.Total = inv.ComputeTotal()
		return tx.Omit(clause.Associations).Save(&inv).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return s.Get(ctx, id, userID)
}

// Get loads one invoice with its line items in display order and attaches
// the current settings singleton for the printable view.
func (s *InvoiceService) Get(ctx context.Context, id, userID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("order_index") }).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var settings models.Settings
	if err := s.db.WithContext(ctx).First(&settings).Error; err == nil {
		inv.Settings = &settings
	}
	return &inv, nil
}

// List returns the user's invoices, most recent first, without line items.
// Always a non-nil slice so an empty list serializes as [].
func (s *InvoiceService) List(ctx context.Context, userID uint) ([]models.Invoice, error) {
	invoices := make([]models.Invoice, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// Delete removes the invoice; line items go with it via the FK cascade.
// Returns false when nothing was deleted.
func (s *InvoiceService) Delete(ctx context.Context, id, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Invoice{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
