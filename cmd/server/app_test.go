package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/timebill/internal/auth"
	appdb "github.com/diewo77/timebill/internal/db"
	"github.com/diewo77/timebill/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := appdb.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := appdb.EnsureSettings(db); err != nil {
		t.Fatalf("settings: %v", err)
	}
	tm := auth.NewTokenManager("e2e-test-secret", auth.TokenTTL)
	verify := func(ctx context.Context, uid uint) bool {
		var count int64
		db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count > 0
	}
	return NewApp(db, tm, verify), db
}

func do(t *testing.T, app *App, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, app *App, username, password string) string {
	t.Helper()
	w := do(t, app, http.MethodPost, "/api/auth/signup", "", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: expected 201 got %d body=%s", username, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode signup: %v", err)
	}
	return resp.Token
}

func TestHealthz(t *testing.T) {
	app, _ := setupApp(t)
	w := do(t, app, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := setupApp(t)
	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/settings"},
		{http.MethodGet, "/api/clients"},
		{http.MethodGet, "/api/invoices"},
		{http.MethodPost, "/api/invoices"},
		{http.MethodGet, "/api/invoices/1"},
	}
	for _, p := range paths {
		w := do(t, app, p.method, p.path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 got %d", p.method, p.path, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"error"`) {
			t.Errorf("%s %s: expected error body, got %s", p.method, p.path, w.Body.String())
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	app, _ := setupApp(t)
	w := do(t, app, http.MethodOptions, "/api/invoices", "", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS headers: %v", w.Header())
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	app, _ := setupApp(t)
	token := signup(t, app, "alice", "secret1")
	w := do(t, app, http.MethodGet, "/api/nothing", token, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Fatalf("expected JSON 404, got %s", w.Body.String())
	}
}

func TestFullInvoiceFlow(t *testing.T) {
	app, _ := setupApp(t)
	token := signup(t, app, "alice", "secret1")

	// Me resolves from the token.
	w := do(t, app, http.MethodGet, "/api/auth/me", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200 got %d", w.Code)
	}
	var me struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Username != "alice" {
		t.Fatalf("me = %+v", me)
	}

	// Create the spec scenario invoice.
	body := `{"invoice_number":"INV-001","client_name":"Acme","invoice_date":"2024-01-15","hourly_rate":100,
		"line_items":[{"description":"Design","hours":5},{"description":"Build","hours":10}],"total":1500}`
	w = do(t, app, http.MethodPost, "/api/invoices", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	// Read it back: total 1500, two items in submitted order.
	w = do(t, app, http.MethodGet, fmt.Sprintf("/api/invoices/%d", created.ID), token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200 got %d", w.Code)
	}
	var got models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 1500 {
		t.Errorf("total = %f, want 1500", got.Total)
	}
	if len(got.LineItems) != 2 || got.LineItems[0].Description != "Design" || got.LineItems[1].Description != "Build" {
		t.Errorf("unexpected line items: %+v", got.LineItems)
	}

	// Upsert-on-save made the client visible.
	w = do(t, app, http.MethodGet, "/api/clients", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("clients: expected 200 got %d", w.Code)
	}
	var clients []models.Client
	if err := json.Unmarshal(w.Body.Bytes(), &clients); err != nil {
		t.Fatalf("decode clients: %v", err)
	}
	if len(clients) != 1 || clients[0].Name != "Acme" {
		t.Fatalf("unexpected clients: %+v", clients)
	}

	// Duplicate number for the same user is a 409.
	w = do(t, app, http.MethodPost, "/api/invoices", token, body)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409 got %d body=%s", w.Code, w.Body.String())
	}

	// Mark it paid via full update.
	time.Sleep(10 * time.Millisecond)
	paid := strings.Replace(body, `"hourly_rate":100`, `"hourly_rate":100,"status":"paid"`, 1)
	w = do(t, app, http.MethodPut, fmt.Sprintf("/api/invoices/%d", created.ID), token, paid)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var updated models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Status != models.InvoiceStatusPaid {
		t.Errorf("status = %q, want paid", updated.Status)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("updated_at %v not after created_at %v", updated.UpdatedAt, updated.CreatedAt)
	}

	// Delete returns {"success":true}; a second delete is 404.
	w = do(t, app, http.MethodDelete, fmt.Sprintf("/api/invoices/%d", created.ID), token, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("delete: got %d body=%s", w.Code, w.Body.String())
	}
	w = do(t, app, http.MethodDelete, fmt.Sprintf("/api/invoices/%d", created.ID), token, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404 got %d", w.Code)
	}
}

func TestTwoUsersCannotSeeEachOther(t *testing.T) {
	app, _ := setupApp(t)
	aliceToken := signup(t, app, "alice", "secret1")
	bobToken := signup(t, app, "bob", "secret2")

	body := `{"invoice_number":"INV-001","client_name":"Acme","invoice_date":"2024-01-15","hourly_rate":100,
		"line_items":[{"description":"Design","hours":5}]}`
	w := do(t, app, http.MethodPost, "/api/invoices", aliceToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d body=%s", w.Code, w.Body.String())
	}
	var created models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Bob's list is empty, and direct access to alice's invoice is 404.
	w = do(t, app, http.MethodGet, "/api/invoices", bobToken, "")
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Fatalf("bob's invoice list = %s, want []", body)
	}
	w = do(t, app, http.MethodGet, "/api/clients", bobToken, "")
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Fatalf("bob's client list = %s, want []", body)
	}
	w = do(t, app, http.MethodGet, fmt.Sprintf("/api/invoices/%d", created.ID), bobToken, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("bob's get: expected 404 got %d", w.Code)
	}

	// Bob can reuse the same invoice number.
	w = do(t, app, http.MethodPost, "/api/invoices", bobToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("bob create: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDeletedUserTokenRejected(t *testing.T) {
	app, db := setupApp(t)
	token := signup(t, app, "alice", "secret1")

	if err := db.Where("username = ?", "alice").Delete(&models.User{}).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}
	w := do(t, app, http.MethodGet, "/api/auth/me", token, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted user's token, got %d", w.Code)
	}
}

func TestDuplicateSignupConflict(t *testing.T) {
	app, _ := setupApp(t)
	signup(t, app, "alice", "secret1")
	w := do(t, app, http.MethodPost, "/api/auth/signup", "", `{"username":"alice","password":"different"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}
