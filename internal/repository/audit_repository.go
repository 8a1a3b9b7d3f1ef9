package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/models"
)

// AuditRepository handles audit log database operations. Rows are append-only.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends an audit log entry
func (r *AuditRepository) Create(entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (admin_id, action, resource, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		entry.AdminID,
		entry.Action,
		entry.Resource,
		entry.Details,
		entry.IPAddress,
		entry.UserAgent,
		now,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	entry.CreatedAt = now
	return nil
}

// AuditFilters holds filter parameters for audit log queries
type AuditFilters struct {
	AdminID *uint
	Action  string
	Since   *time.Time
	Until   *time.Time
}

// List retrieves audit log entries matching the filters, newest first
func (r *AuditRepository) List(filters AuditFilters, limit, offset int) ([]models.AuditLog, error) {
	query := `
		SELECT id, admin_id, action, resource, details, ip_address, user_agent, created_at
		FROM audit_logs
		WHERE 1=1
	`

	args := []interface{}{}
	argPos := 1

	if filters.AdminID != nil {
		query += fmt.Sprintf(` AND admin_id = $%d`, argPos)
		args = append(args, *filters.AdminID)
		argPos++
	}

	if filters.Action != "" {
		query += fmt.Sprintf(` AND action = $%d`, argPos)
		args = append(args, filters.Action)
		argPos++
	}

	if filters.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, argPos)
		args = append(args, *filters.Since)
		argPos++
	}

	if filters.Until != nil {
		query += fmt.Sprintf(` AND created_at <= $%d`, argPos)
		args = append(args, *filters.Until)
		argPos++
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.AdminID,
			&entry.Action,
			&entry.Resource,
			&entry.Details,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
