package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/diewo77/timebill/internal/auth"
	"github.com/diewo77/timebill/internal/httpx"
	"github.com/diewo77/timebill/internal/services"
)

// InvoiceHandler is a thin JSON layer over the invoice aggregate service;
// all ownership scoping and atomicity lives there.
type InvoiceHandler struct {
	svc *services.InvoiceService
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// List: GET /api/invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	invoices, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// Get: GET /api/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	inv, err := h.svc.Get(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Create: POST /api/invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var in services.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	inv, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	slog.Info("invoice created", "id", inv.ID, "number", inv.InvoiceNumber, "user", userID)
	httpx.JSON(w, http.StatusCreated, inv)
}

// Update: PUT /api/invoices/{id}
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	var in services.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	inv, err := h.svc.Update(r.Context(), id, userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: DELETE /api/invoices/{id}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := pathID(r)
	deleted, err := h.svc.Delete(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	httpx.Success(w)
}
