package handlers

import (
	"net/http"

	"github.com/isaackcz/Edsight-sub000/internal/middleware"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/internal/service"
)

// SessionHandler handles session management requests
type SessionHandler struct {
	sessionRepo *repository.SessionRepository
	authService *service.AuthService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionRepo *repository.SessionRepository, authService *service.AuthService) *SessionHandler {
	return &SessionHandler{
		sessionRepo: sessionRepo,
		authService: authService,
	}
}

// GetMySessions lists the caller's active sessions
func (h *SessionHandler) GetMySessions(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	sessions, err := h.sessionRepo.GetByAdminID(caller.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get sessions")
		return
	}

	// Token values never leave the server; expose session metadata only.
	result := make([]map[string]interface{}, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, map[string]interface{}{
			"id":               session.ID,
			"token_type":       session.TokenType,
			"created_at":       session.CreatedAt,
			"last_activity_at": session.LastActivityAt,
			"expires_at":       session.ExpiresAt,
			"ip_address":       session.IPAddress,
			"user_agent":       session.UserAgent,
		})
	}

	respondWithJSON(w, http.StatusOK, result)
}

// DeleteAllMySessions logs the caller out everywhere
func (h *SessionHandler) DeleteAllMySessions(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	if err := h.authService.LogoutAll(caller.ID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete sessions")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "All sessions deleted"})
}
