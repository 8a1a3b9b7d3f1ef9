package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/auth"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
)

type contextKey string

const (
	AdminKey      contextKey = "admin"
	AdminEmailKey contextKey = "admin_email"
)

// AuthMiddleware validates JWT tokens
type AuthMiddleware struct {
	authService *auth.Service
	adminRepo   *repository.AdminRepository
	sessionRepo *repository.SessionRepository
	idleTimeout time.Duration
}

// NewAuthMiddleware creates a new auth middleware. Sessions idle for longer
// than idleTimeout are rejected even when the token itself is still valid.
func NewAuthMiddleware(authService *auth.Service, adminRepo *repository.AdminRepository, sessionRepo *repository.SessionRepository, idleTimeout time.Duration) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		idleTimeout: idleTimeout,
	}
}

// Authenticate validates the JWT token, checks the session, and puts the
// authenticated administrator on the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		token := parts[1]

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Check if session exists (validates that token hasn't been invalidated)
		if claims.ID != "" {
			session, err := m.sessionRepo.GetByJTI(claims.ID)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Token has been invalidated")
				return
			}
			if m.idleTimeout > 0 && time.Since(session.LastActivityAt) > m.idleTimeout {
				_ = m.sessionRepo.DeleteByJTI(claims.ID)
				respondWithError(w, http.StatusUnauthorized, "Session expired due to inactivity")
				return
			}
			_ = m.sessionRepo.UpdateLastActivity(session.ID)
		}

		admin, err := m.adminRepo.GetByID(claims.AdminID)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Administrator not found")
			return
		}

		if admin.Status != models.AdminActive {
			respondWithError(w, http.StatusForbidden, "Administrator account is not active")
			return
		}

		ctx := context.WithValue(r.Context(), AdminKey, admin)
		ctx = context.WithValue(ctx, AdminEmailKey, admin.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdmin retrieves the authenticated administrator from the request context
func GetAdmin(r *http.Request) (*models.Admin, bool) {
	admin, ok := r.Context().Value(AdminKey).(*models.Admin)
	return admin, ok
}

// GetAdminEmail retrieves the administrator email from the request context
func GetAdminEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(AdminEmailKey).(string)
	return email, ok
}

// Helper function to respond with JSON error
func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
