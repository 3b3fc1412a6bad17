package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/diewo77/timebill/internal/httpx"
	"github.com/diewo77/timebill/internal/models"
	"gorm.io/gorm"
)

// SettingsHandler serves the per-deployment settings singleton. The row is
// guaranteed to exist (created at startup) and is only ever updated.
type SettingsHandler struct {
	db *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// Get: GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := h.db.WithContext(r.Context()).First(&settings).Error; err != nil {
		slog.Error("load settings", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

// Update: PUT /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		YourName          string  `json:"your_name"`
		BusinessName      string  `json:"business_name"`
		BusinessAddress   string  `json:"business_address"`
		DefaultHourlyRate float64 `json:"default_hourly_rate"`
		ACHAccount        string  `json:"ach_account"`
		ACHRouting        string  `json:"ach_routing"`
		ZelleContact      string  `json:"zelle_contact"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	var settings models.Settings
	if err := h.db.WithContext(r.Context()).First(&settings).Error; err != nil {
		slog.Error("load settings", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	settings.YourName = req.YourName
	settings.BusinessName = req.BusinessName
	settings.BusinessAddress = req.BusinessAddress
	settings.DefaultHourlyRate = req.DefaultHourlyRate
	settings.ACHAccount = req.ACHAccount
	settings.ACHRouting = req.ACHRouting
	settings.ZelleContact = req.ZelleContact
	if err := h.db.WithContext(r.Context()).Save(&settings).Error; err != nil {
		slog.Error("save settings", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}
