package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/models"
)

var (
	ErrPeriodNotFound = errors.New("reporting period not found")
	ErrNoActivePeriod = errors.New("no active reporting period")
)

const periodColumns = `
	id, name, starts_at, ends_at, deadline, is_active, created_at, updated_at
`

// PeriodRepository handles reporting period database operations
type PeriodRepository struct {
	db *sql.DB
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(db *sql.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// Create creates a new reporting period
func (r *PeriodRepository) Create(period *models.Period) error {
	query := `
		INSERT INTO periods (name, starts_at, ends_at, deadline, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		period.Name,
		period.StartsAt,
		period.EndsAt,
		period.Deadline,
		period.IsActive,
		now,
		now,
	).Scan(&period.ID)

	if err != nil {
		return fmt.Errorf("failed to create period: %w", err)
	}

	period.CreatedAt = now
	period.UpdatedAt = now
	return nil
}

// GetByID retrieves a period by ID
func (r *PeriodRepository) GetByID(id uint) (*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE id = $1`

	period, err := r.scanPeriod(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPeriodNotFound
	}
	return period, err
}

// GetActive retrieves the active reporting period
func (r *PeriodRepository) GetActive() (*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE is_active = true ORDER BY starts_at DESC LIMIT 1`

	period, err := r.scanPeriod(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActivePeriod
	}
	return period, err
}

// List retrieves all periods, newest first
func (r *PeriodRepository) List() ([]models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods ORDER BY starts_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get periods: %w", err)
	}
	defer rows.Close()

	var periods []models.Period
	for rows.Next() {
		period, err := r.scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *period)
	}

	return periods, nil
}

// UpdateDeadline sets or clears the deadline on a period
func (r *PeriodRepository) UpdateDeadline(periodID uint, deadline *time.Time) error {
	query := `
		UPDATE periods
		SET deadline = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(query, deadline, time.Now(), periodID)
	if err != nil {
		return fmt.Errorf("failed to update deadline: %w", err)
	}

	return nil
}

// SetActive activates a period and deactivates every other one, so at most
// one period is live at a time.
func (r *PeriodRepository) SetActive(periodID uint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	now := time.Now()
	if _, err := tx.Exec(`UPDATE periods SET is_active = false, updated_at = $1 WHERE is_active = true`, now); err != nil {
		return fmt.Errorf("failed to deactivate periods: %w", err)
	}

	result, err := tx.Exec(`UPDATE periods SET is_active = true, updated_at = $1 WHERE id = $2`, now, periodID)
	if err != nil {
		return fmt.Errorf("failed to activate period: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrPeriodNotFound, periodID)
	}

	return tx.Commit()
}

func (r *PeriodRepository) scanPeriod(row rowScanner) (*models.Period, error) {
	period := &models.Period{}
	err := row.Scan(
		&period.ID,
		&period.Name,
		&period.StartsAt,
		&period.EndsAt,
		&period.Deadline,
		&period.IsActive,
		&period.CreatedAt,
		&period.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan period: %w", err)
	}

	return period, nil
}
