package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/isaackcz/Edsight-sub000/internal/models"
)

var (
	ErrAdminNotFound = errors.New("administrator not found")
	ErrAdminExists   = errors.New("administrator already exists")
)

const adminColumns = `
	id, email, password_hash, full_name, level, region_id, division_id, district_id, unit_id,
	can_create_admins, can_manage_admins, can_set_deadlines, can_approve_submissions, can_view_system_logs,
	status, created_by, updated_by, created_at, updated_at, last_login_at
`

// AdminRepository handles administrator database operations
type AdminRepository struct {
	db *sql.DB
}

// NewAdminRepository creates a new administrator repository
func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create creates a new administrator
func (r *AdminRepository) Create(admin *models.Admin) error {
	query := `
		INSERT INTO admins (email, password_hash, full_name, level, region_id, division_id, district_id, unit_id,
			can_create_admins, can_manage_admins, can_set_deadlines, can_approve_submissions, can_view_system_logs,
			status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		admin.Email,
		admin.PasswordHash,
		admin.FullName,
		admin.Level.String(),
		admin.RegionID,
		admin.DivisionID,
		admin.DistrictID,
		admin.UnitID,
		admin.Overrides.CreateAdmins,
		admin.Overrides.ManageAdmins,
		admin.Overrides.SetDeadlines,
		admin.Overrides.Approve,
		admin.Overrides.ViewLogs,
		admin.Status,
		admin.CreatedBy,
		now,
		now,
	).Scan(&admin.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrAdminExists, admin.Email)
		}
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	admin.LevelName = admin.Level.String()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	return nil
}

// GetByID retrieves an administrator by ID
func (r *AdminRepository) GetByID(id uint) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByEmail retrieves an administrator by email
func (r *AdminRepository) GetByEmail(email string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`
	return r.scanOne(r.db.QueryRow(query, email))
}

// Update updates an administrator's profile and capability overrides
func (r *AdminRepository) Update(admin *models.Admin) error {
	query := `
		UPDATE admins
		SET email = $1, full_name = $2,
		    can_create_admins = $3, can_manage_admins = $4, can_set_deadlines = $5,
		    can_approve_submissions = $6, can_view_system_logs = $7,
		    updated_by = $8, updated_at = $9
		WHERE id = $10
	`

	admin.UpdatedAt = time.Now()
	_, err := r.db.Exec(
		query,
		admin.Email,
		admin.FullName,
		admin.Overrides.CreateAdmins,
		admin.Overrides.ManageAdmins,
		admin.Overrides.SetDeadlines,
		admin.Overrides.Approve,
		admin.Overrides.ViewLogs,
		admin.UpdatedBy,
		admin.UpdatedAt,
		admin.ID,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrAdminExists, admin.Email)
		}
		return fmt.Errorf("failed to update administrator: %w", err)
	}

	return nil
}

// UpdateStatus changes an administrator's account status
func (r *AdminRepository) UpdateStatus(adminID uint, status models.AdminStatus, updatedBy uint) error {
	query := `
		UPDATE admins
		SET status = $1, updated_by = $2, updated_at = $3
		WHERE id = $4
	`

	_, err := r.db.Exec(query, status, updatedBy, time.Now(), adminID)
	if err != nil {
		return fmt.Errorf("failed to update administrator status: %w", err)
	}

	return nil
}

// UpdatePassword updates an administrator's password hash
func (r *AdminRepository) UpdatePassword(adminID uint, passwordHash string) error {
	query := `
		UPDATE admins
		SET password_hash = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(query, passwordHash, time.Now(), adminID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpdateLastLogin updates the last login timestamp
func (r *AdminRepository) UpdateLastLogin(adminID uint) error {
	query := `
		UPDATE admins
		SET last_login_at = $1, updated_at = $2
		WHERE id = $3
	`

	now := time.Now()
	_, err := r.db.Exec(query, now, now, adminID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

// AdminFilters holds filter parameters for administrator queries
type AdminFilters struct {
	Search      string
	Levels      []string
	Status      *models.AdminStatus
	RegionIDs   []int64
	DivisionIDs []int64
	DistrictIDs []int64
	UnitIDs     []int64
	SortBy      string
	SortOrder   string
}

// GetAllWithFilters retrieves administrators with filtering, sorting, and pagination
func (r *AdminRepository) GetAllWithFilters(filters AdminFilters, limit, offset int) ([]models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE 1=1`

	query, args := applyAdminFilters(query, filters)

	sortColumn := "created_at"
	switch filters.SortBy {
	case "id":
		sortColumn = "id"
	case "email":
		sortColumn = "email"
	case "name":
		sortColumn = "full_name"
	case "last_login_at":
		sortColumn = "last_login_at"
	}

	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	query += fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`, sortColumn, sortOrder, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get administrators: %w", err)
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		admin, err := r.scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *admin)
	}

	return admins, nil
}

// CountWithFilters returns the total count of administrators matching the filters
func (r *AdminRepository) CountWithFilters(filters AdminFilters) (int, error) {
	query := `SELECT COUNT(*) FROM admins WHERE 1=1`
	query, args := applyAdminFilters(query, filters)

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count administrators: %w", err)
	}

	return count, nil
}

// applyAdminFilters appends the shared WHERE clauses and returns the query args
func applyAdminFilters(query string, filters AdminFilters) (string, []interface{}) {
	args := []interface{}{}
	argPos := 1

	if filters.Search != "" {
		query += fmt.Sprintf(` AND (email ILIKE $%d OR full_name ILIKE $%d)`, argPos, argPos)
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	if len(filters.Levels) > 0 {
		query += fmt.Sprintf(` AND level = ANY($%d)`, argPos)
		args = append(args, pq.Array(filters.Levels))
		argPos++
	}

	if filters.Status != nil {
		query += fmt.Sprintf(` AND status = $%d`, argPos)
		args = append(args, *filters.Status)
		argPos++
	}

	if len(filters.RegionIDs) > 0 {
		query += fmt.Sprintf(` AND region_id = ANY($%d)`, argPos)
		args = append(args, pq.Array(filters.RegionIDs))
		argPos++
	}

	if len(filters.DivisionIDs) > 0 {
		query += fmt.Sprintf(` AND division_id = ANY($%d)`, argPos)
		args = append(args, pq.Array(filters.DivisionIDs))
		argPos++
	}

	if len(filters.DistrictIDs) > 0 {
		query += fmt.Sprintf(` AND district_id = ANY($%d)`, argPos)
		args = append(args, pq.Array(filters.DistrictIDs))
		argPos++
	}

	if len(filters.UnitIDs) > 0 {
		query += fmt.Sprintf(` AND unit_id = ANY($%d)`, argPos)
		args = append(args, pq.Array(filters.UnitIDs))
	}

	return query, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanOne scans a single administrator row, mapping sql.ErrNoRows
func (r *AdminRepository) scanOne(row *sql.Row) (*models.Admin, error) {
	admin, err := r.scanAdmin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// scanAdmin scans the adminColumns list into a model, parsing the level name
func (r *AdminRepository) scanAdmin(row rowScanner) (*models.Admin, error) {
	admin := &models.Admin{}
	err := row.Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.FullName,
		&admin.LevelName,
		&admin.RegionID,
		&admin.DivisionID,
		&admin.DistrictID,
		&admin.UnitID,
		&admin.Overrides.CreateAdmins,
		&admin.Overrides.ManageAdmins,
		&admin.Overrides.SetDeadlines,
		&admin.Overrides.Approve,
		&admin.Overrides.ViewLogs,
		&admin.Status,
		&admin.CreatedBy,
		&admin.UpdatedBy,
		&admin.CreatedAt,
		&admin.UpdatedAt,
		&admin.LastLoginAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan administrator: %w", err)
	}

	level, err := models.ParseLevel(admin.LevelName)
	if err != nil {
		return nil, fmt.Errorf("administrator %d: %w", admin.ID, err)
	}
	admin.Level = level

	return admin, nil
}
