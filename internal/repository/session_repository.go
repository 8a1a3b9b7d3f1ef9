package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/models"
)

var ErrSessionNotFound = errors.New("session not found or expired")

const sessionColumns = `id, admin_id, jti, token_type, expires_at, last_activity_at, created_at, ip_address, user_agent`

// SessionRepository handles session database operations
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row interface{ Scan(...interface{}) error }, s *models.Session) error {
	return row.Scan(
		&s.ID, &s.AdminID, &s.JTI, &s.TokenType,
		&s.ExpiresAt, &s.LastActivityAt, &s.CreatedAt,
		&s.IPAddress, &s.UserAgent,
	)
}

// Create creates a new session
func (r *SessionRepository) Create(session *models.Session) error {
	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(query,
		session.ID, session.AdminID, session.JTI, session.TokenType,
		session.ExpiresAt, session.LastActivityAt, session.CreatedAt,
		session.IPAddress, session.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByJTI retrieves a non-expired session by JTI
func (r *SessionRepository) GetByJTI(jti string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE jti = $1 AND expires_at > $2`

	session := &models.Session{}
	err := scanSession(r.db.QueryRow(query, jti, time.Now()), session)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// GetByAdminID retrieves all active sessions for an administrator,
// newest first
func (r *SessionRepository) GetByAdminID(adminID uint) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE admin_id = $1 AND expires_at > $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, adminID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get admin sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var session models.Session
		if err := scanSession(rows, &session); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// UpdateLastActivity updates the last activity timestamp for a session
func (r *SessionRepository) UpdateLastActivity(sessionID string) error {
	_, err := r.db.Exec(`UPDATE sessions SET last_activity_at = $1 WHERE id = $2`, time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}
	return nil
}

// DeleteByJTI deletes a session by JTI
func (r *SessionRepository) DeleteByJTI(jti string) error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE jti = $1`, jti); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteAllAdminSessions deletes all sessions for an administrator
func (r *SessionRepository) DeleteAllAdminSessions(adminID uint) error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE admin_id = $1`, adminID); err != nil {
		return fmt.Errorf("failed to delete admin sessions: %w", err)
	}
	return nil
}

// DeleteExpiredSessions deletes all expired sessions
func (r *SessionRepository) DeleteExpiredSessions() error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < $1`, time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
