package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/isaackcz/Edsight-sub000/internal/auth"
	"github.com/isaackcz/Edsight-sub000/internal/config"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminInactive      = errors.New("administrator account is not active")
)

// TokenPair is the result of a successful login or refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessJTI    string
	RefreshJTI   string
}

// AuthService handles authentication business logic
type AuthService struct {
	adminRepo   *repository.AdminRepository
	sessionRepo *repository.SessionRepository
	authSvc     *auth.Service
	jwtCfg      *config.JWTConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(
	adminRepo *repository.AdminRepository,
	sessionRepo *repository.SessionRepository,
	authSvc *auth.Service,
	jwtCfg *config.JWTConfig,
) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		authSvc:     authSvc,
		jwtCfg:      jwtCfg,
	}
}

// Login authenticates an administrator and issues a token pair with tracked
// sessions. Lookups and password mismatches collapse into one error so the
// response does not reveal which part failed.
func (s *AuthService) Login(email, password, ipAddress, userAgent string) (*TokenPair, *models.Admin, error) {
	admin, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.authSvc.VerifyPassword(admin.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if admin.Status != models.AdminActive {
		return nil, nil, ErrAdminInactive
	}

	pair, err := s.issueTokens(admin, ipAddress, userAgent)
	if err != nil {
		return nil, nil, err
	}

	if err := s.adminRepo.UpdateLastLogin(admin.ID); err != nil {
		slog.Warn("Failed to update last login", "admin_id", admin.ID, "error", err)
	}

	return pair, admin, nil
}

// RefreshToken rotates a refresh token into a new token pair. The old
// sessions are deleted so the presented refresh token is single-use.
func (s *AuthService) RefreshToken(refreshToken, ipAddress, userAgent string) (*TokenPair, *models.Admin, error) {
	claims, err := s.authSvc.ValidateToken(refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	if claims.ID == "" {
		return nil, nil, errors.New("token missing JTI")
	}

	// The session check catches tokens revoked by logout
	session, err := s.sessionRepo.GetByJTI(claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("session not found or expired: %w", err)
	}

	if session.AdminID != claims.AdminID {
		return nil, nil, errors.New("session admin mismatch")
	}

	if session.TokenType != "refresh" {
		return nil, nil, errors.New("invalid token type")
	}

	admin, err := s.adminRepo.GetByID(claims.AdminID)
	if err != nil {
		return nil, nil, fmt.Errorf("administrator not found: %w", err)
	}

	if admin.Status != models.AdminActive {
		return nil, nil, ErrAdminInactive
	}

	if err := s.sessionRepo.DeleteByJTI(claims.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to revoke old session: %w", err)
	}

	pair, err := s.issueTokens(admin, ipAddress, userAgent)
	if err != nil {
		return nil, nil, err
	}

	return pair, admin, nil
}

// Logout invalidates the session behind a token. The JTI is extracted
// without validation so expired tokens can still be logged out.
func (s *AuthService) Logout(token string) error {
	jti, err := s.authSvc.ExtractJTI(token)
	if err != nil {
		return fmt.Errorf("failed to extract JTI: %w", err)
	}
	if jti == "" {
		return errors.New("token missing JTI")
	}

	return s.sessionRepo.DeleteByJTI(jti)
}

// LogoutAll invalidates every session for an administrator
func (s *AuthService) LogoutAll(adminID uint) error {
	return s.sessionRepo.DeleteAllAdminSessions(adminID)
}

// GetSession retrieves a live session by JTI
func (s *AuthService) GetSession(jti string) (*models.Session, error) {
	return s.sessionRepo.GetByJTI(jti)
}

// TouchSession updates a session's last activity timestamp
func (s *AuthService) TouchSession(sessionID string) error {
	return s.sessionRepo.UpdateLastActivity(sessionID)
}

// GetAdminByID retrieves an administrator by ID
func (s *AuthService) GetAdminByID(adminID uint) (*models.Admin, error) {
	return s.adminRepo.GetByID(adminID)
}

// CleanupExpiredSessions deletes sessions past their expiry
func (s *AuthService) CleanupExpiredSessions() error {
	return s.sessionRepo.DeleteExpiredSessions()
}

// issueTokens generates an access and refresh token pair and records a
// session row for each JTI
func (s *AuthService) issueTokens(admin *models.Admin, ipAddress, userAgent string) (*TokenPair, error) {
	accessToken, accessJTI, err := s.authSvc.GenerateToken(admin.ID, admin.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshJTI, err := s.authSvc.GenerateRefreshToken(admin.ID, admin.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	if err := s.createSession(admin.ID, accessJTI, "access", ipAddress, userAgent, now.Add(s.jwtCfg.Expiration)); err != nil {
		return nil, fmt.Errorf("failed to create access session: %w", err)
	}
	if err := s.createSession(admin.ID, refreshJTI, "refresh", ipAddress, userAgent, now.Add(s.jwtCfg.RefreshExpiration)); err != nil {
		return nil, fmt.Errorf("failed to create refresh session: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessJTI:    accessJTI,
		RefreshJTI:   refreshJTI,
	}, nil
}

func (s *AuthService) createSession(adminID uint, jti, tokenType, ipAddress, userAgent string, expiresAt time.Time) error {
	session := &models.Session{
		ID:             uuid.NewString(),
		AdminID:        adminID,
		JTI:            jti,
		TokenType:      tokenType,
		ExpiresAt:      expiresAt,
		LastActivityAt: time.Now(),
		CreatedAt:      time.Now(),
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
	}

	return s.sessionRepo.Create(session)
}
