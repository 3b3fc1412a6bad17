package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/timebill/internal/httpx"
	"github.com/diewo77/timebill/internal/services"
)

// writeServiceError is the single translation point from service-layer
// failures to HTTP status codes. Unexpected errors are logged server-side
// and surface as a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if ve, ok := services.AsValidation(err); ok {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", ve.Violations)
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
	case errors.Is(err, services.ErrConflict):
		httpx.JSONError(w, http.StatusConflict, "already exists", nil)
	default:
		slog.Error("unexpected error", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
