package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/isaackcz/Edsight-sub000/internal/middleware"
	"github.com/isaackcz/Edsight-sub000/internal/permission"
	"github.com/isaackcz/Edsight-sub000/internal/service"
	"github.com/isaackcz/Edsight-sub000/pkg/validator"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Login authenticates an administrator and returns a token pair
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := validator.SanitizeEmail(req.Email)
	pair, admin, err := h.authService.Login(email, req.Password, getIP(r), r.UserAgent())
	if err != nil {
		slog.Warn("Login failed", "email", email, "error", err)
		respondWithServiceError(w, err)
		return
	}

	slog.Info("Administrator logged in", "admin_id", admin.ID, "level", admin.LevelName)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"admin":         admin,
		"capabilities":  permission.Effective(admin),
	})
}

// Refresh rotates a refresh token into a new token pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, admin, err := h.authService.RefreshToken(req.RefreshToken, getIP(r), r.UserAgent())
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"admin":         admin,
	})
}

// Logout invalidates the presented token's session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		respondWithError(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}

	if err := h.authService.Logout(parts[1]); err != nil {
		slog.Warn("Logout failed", "error", err)
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// Me returns the authenticated administrator and effective capabilities
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"admin":        admin,
		"capabilities": permission.Effective(admin),
	})
}
