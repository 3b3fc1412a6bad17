package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/timebill/internal/auth"
	"github.com/diewo77/timebill/internal/httpx"
	"github.com/diewo77/timebill/internal/models"
	"github.com/diewo77/timebill/internal/validation"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
	tm *auth.TokenManager
}

func NewAuthHandler(db *gorm.DB, tm *auth.TokenManager) *AuthHandler {
	return &AuthHandler{db: db, tm: tm}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  publicUser `json:"user"`
}

type publicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Signup: POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("username", req.Username, v)
	validation.MinLen("password", req.Password, 6, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("hash password", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	user := models.User{Username: req.Username, Password: hash}
	// The unique index decides duplicates, not a pre-check; two racing
	// signups cannot both win.
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusConflict, "username already taken", nil)
			return
		}
		slog.Error("create user", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	token, err := h.tm.Issue(user.ID, user.Username)
	if err != nil {
		slog.Error("issue token", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, authResponse{Token: token, User: publicUser{ID: user.ID, Username: user.Username}})
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid username or password", nil)
			return
		}
		slog.Error("load user", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	if !auth.VerifyPassword(req.Password, user.Password) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid username or password", nil)
		return
	}

	token, err := h.tm.Issue(user.ID, user.Username)
	if err != nil {
		slog.Error("issue token", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{Token: token, User: publicUser{ID: user.ID, Username: user.Username}})
}

// Me: GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	username, _ := auth.UsernameFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, publicUser{ID: userID, Username: username})
}
