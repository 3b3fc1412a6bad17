package main

import (
	"net/http"

	"github.com/diewo77/timebill/internal/auth"
	"github.com/diewo77/timebill/internal/handlers"
	"github.com/diewo77/timebill/internal/httpx"
	"github.com/diewo77/timebill/internal/middleware"
	"github.com/diewo77/timebill/internal/services"
	"gorm.io/gorm"
)

// App is the application handler with all routes configured.
type App struct {
	mux *http.ServeMux
	db  *gorm.DB
}

// NewApp wires handlers and routes. verify confirms that a token's user
// still exists; tokens for deleted users stop working immediately.
func NewApp(db *gorm.DB, tm *auth.TokenManager, verify auth.UserVerifier) *App {
	app := &App{mux: http.NewServeMux(), db: db}

	ah := handlers.NewAuthHandler(db, tm)
	sh := handlers.NewSettingsHandler(db)
	ch := handlers.NewClientHandler(db)
	ih := handlers.NewInvoiceHandler(services.NewInvoiceService(db))

	requireAuth := auth.RequireAuth(tm, verify)

	app.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database unavailable", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public
	app.mux.HandleFunc("POST /api/auth/signup", ah.Signup)
	app.mux.HandleFunc("POST /api/auth/login", ah.Login)

	// Authenticated
	app.mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(ah.Me)))

	app.mux.Handle("GET /api/settings", requireAuth(http.HandlerFunc(sh.Get)))
	app.mux.Handle("PUT /api/settings", requireAuth(http.HandlerFunc(sh.Update)))

	app.mux.Handle("GET /api/clients", requireAuth(http.HandlerFunc(ch.List)))
	app.mux.Handle("PUT /api/clients/{id}", requireAuth(http.HandlerFunc(ch.Update)))
	app.mux.Handle("DELETE /api/clients/{id}", requireAuth(http.HandlerFunc(ch.Delete)))

	app.mux.Handle("GET /api/invoices", requireAuth(http.HandlerFunc(ih.List)))
	app.mux.Handle("POST /api/invoices", requireAuth(http.HandlerFunc(ih.Create)))
	app.mux.Handle("GET /api/invoices/{id}", requireAuth(http.HandlerFunc(ih.Get)))
	app.mux.Handle("PUT /api/invoices/{id}", requireAuth(http.HandlerFunc(ih.Update)))
	app.mux.Handle("DELETE /api/invoices/{id}", requireAuth(http.HandlerFunc(ih.Delete)))

	// Unknown /api paths get a JSON 404 instead of the mux's text page.
	app.mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
	})

	return app
}

// ServeHTTP applies the global middleware chain around the route table.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := middleware.Logging(middleware.CORS(a.mux))
	handler.ServeHTTP(w, r)
}
