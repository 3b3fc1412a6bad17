package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/timebill/internal/auth"
	"github.com/diewo77/timebill/internal/httpx"
	"github.com/diewo77/timebill/internal/models"
	"github.com/diewo77/timebill/internal/validation"
	"gorm.io/gorm"
)

// ClientHandler serves the client book. There is no create endpoint: client
// rows only appear as a side effect of saving an invoice.
type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// pathID parses the {id} segment; 0 means invalid.
func pathID(r *http.Request) uint {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// List: GET /api/clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	clients := make([]models.Client, 0)
	if err := h.db.WithContext(r.Context()).Where("user_id = ?", userID).Order("name").Find(&clients).Error; err != nil {
		slog.Error("list clients", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

// Update: PUT /api/clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}

	var client models.Client
	// Scoped lookup: a client owned by someone else is indistinguishable
	// from one that does not exist.
	if err := h.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", id, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not found", nil)
			return
		}
		slog.Error("load client", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	client.Name = req.Name
	client.Address = req.Address
	if err := h.db.WithContext(r.Context()).Save(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusConflict, "already exists", nil)
			return
		}
		slog.Error("save client", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete: DELETE /api/clients/{id}
// Invoices keep their denormalized snapshot of the client, so this never
// cascades.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := pathID(r)
	res := h.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Client{})
	if res.Error != nil {
		slog.Error("delete client", "error", res.Error)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	httpx.Success(w)
}
