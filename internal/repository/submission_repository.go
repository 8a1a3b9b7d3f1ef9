package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/workflow"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSubmissionExists   = errors.New("submission already exists for this unit and period")
)

const submissionColumns = `
	id, unit_id, period_id, status, current_level, created_at, updated_at, submitted_at, last_reviewed_at
`

// SubmissionRepository handles submission database operations. It implements
// the workflow engine's store contract: a transition only commits when the
// stored (status, current_level) pair still matches the guard.
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create creates a draft submission for a unit and period
func (r *SubmissionRepository) Create(submission *models.Submission) error {
	query := `
		INSERT INTO submissions (unit_id, period_id, status, current_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		submission.UnitID,
		submission.PeriodID,
		submission.Status,
		submission.CurrentLevel.String(),
		now,
		now,
	).Scan(&submission.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: unit %d, period %d", ErrSubmissionExists, submission.UnitID, submission.PeriodID)
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}

	submission.LevelName = submission.CurrentLevel.String()
	submission.CreatedAt = now
	submission.UpdatedAt = now
	return nil
}

// GetSubmission retrieves a submission by ID
func (r *SubmissionRepository) GetSubmission(id uint) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByUnitAndPeriod retrieves a unit's submission for a period
func (r *SubmissionRepository) GetByUnitAndPeriod(unitID, periodID uint) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE unit_id = $1 AND period_id = $2`
	return r.scanOne(r.db.QueryRow(query, unitID, periodID))
}

// ListForUnits retrieves submissions belonging to the given units, optionally
// filtered by period and status. The unit list comes from the caller's
// resolved scope.
func (r *SubmissionRepository) ListForUnits(unitIDs []uint, periodID *uint, status *models.SubmissionStatus) ([]models.Submission, error) {
	if len(unitIDs) == 0 {
		return []models.Submission{}, nil
	}

	ids := make([]int64, len(unitIDs))
	for i, id := range unitIDs {
		ids[i] = int64(id)
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE unit_id = ANY($1)`
	args := []interface{}{pq.Array(ids)}
	argPos := 2

	if periodID != nil {
		query += fmt.Sprintf(` AND period_id = $%d`, argPos)
		args = append(args, *periodID)
		argPos++
	}

	if status != nil {
		query += fmt.Sprintf(` AND status = $%d`, argPos)
		args = append(args, *status)
	}

	query += ` ORDER BY unit_id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		submission, err := r.scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *submission)
	}

	return submissions, nil
}

// ApplyTransition applies a workflow transition atomically. The UPDATE is
// guarded by the expected (status, current_level) pair; zero rows affected
// means another reviewer won the race and the caller gets a conflict. The
// review decision, when present, is appended in the same transaction.
func (r *SubmissionRepository) ApplyTransition(t workflow.Transition) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback only if not committed
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	now := time.Now()
	query := `
		UPDATE submissions
		SET status = $1, current_level = $2, updated_at = $3
	`
	args := []interface{}{t.ToStatus, t.ToLevel.String(), now}
	argPos := 4

	if t.SetSubmittedAt {
		query += fmt.Sprintf(`, submitted_at = $%d`, argPos)
		args = append(args, now)
		argPos++
	}

	if t.SetReviewedAt {
		query += fmt.Sprintf(`, last_reviewed_at = $%d`, argPos)
		args = append(args, now)
		argPos++
	}

	query += fmt.Sprintf(` WHERE id = $%d AND status = $%d AND current_level = $%d`, argPos, argPos+1, argPos+2)
	args = append(args, t.SubmissionID, t.FromStatus, t.FromLevel.String())

	result, err := tx.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to apply transition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: submission %d", workflow.ErrConflict, t.SubmissionID)
	}

	if t.Decision != nil {
		decisionQuery := `
			INSERT INTO review_decisions (submission_id, reviewer_id, level, outcome, comment, decided_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`

		err := tx.QueryRow(
			decisionQuery,
			t.Decision.SubmissionID,
			t.Decision.ReviewerID,
			t.Decision.LevelName,
			t.Decision.Outcome,
			t.Decision.Comment,
			t.Decision.DecidedAt,
		).Scan(&t.Decision.ID)
		if err != nil {
			return fmt.Errorf("failed to record review decision: %w", err)
		}
	}

	return tx.Commit()
}

// ListDecisions retrieves the review trail for a submission, oldest first
func (r *SubmissionRepository) ListDecisions(submissionID uint) ([]models.ReviewDecision, error) {
	query := `
		SELECT id, submission_id, reviewer_id, level, outcome, comment, decided_at
		FROM review_decisions
		WHERE submission_id = $1
		ORDER BY decided_at, id
	`

	rows, err := r.db.Query(query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review decisions: %w", err)
	}
	defer rows.Close()

	var decisions []models.ReviewDecision
	for rows.Next() {
		var decision models.ReviewDecision
		if err := rows.Scan(
			&decision.ID,
			&decision.SubmissionID,
			&decision.ReviewerID,
			&decision.LevelName,
			&decision.Outcome,
			&decision.Comment,
			&decision.DecidedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review decision: %w", err)
		}
		decisions = append(decisions, decision)
	}

	return decisions, nil
}

// CountByStatus returns submission counts per status for the given units
func (r *SubmissionRepository) CountByStatus(unitIDs []uint, periodID uint) (map[models.SubmissionStatus]int, error) {
	counts := make(map[models.SubmissionStatus]int)
	if len(unitIDs) == 0 {
		return counts, nil
	}

	ids := make([]int64, len(unitIDs))
	for i, id := range unitIDs {
		ids[i] = int64(id)
	}

	query := `
		SELECT status, COUNT(*)
		FROM submissions
		WHERE unit_id = ANY($1) AND period_id = $2
		GROUP BY status
	`

	rows, err := r.db.Query(query, pq.Array(ids), periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.SubmissionStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan submission count: %w", err)
		}
		counts[status] = count
	}

	return counts, nil
}

// scanOne scans a single submission row, mapping sql.ErrNoRows
func (r *SubmissionRepository) scanOne(row *sql.Row) (*models.Submission, error) {
	submission, err := r.scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// scanSubmission scans the submissionColumns list, parsing the level name
func (r *SubmissionRepository) scanSubmission(row rowScanner) (*models.Submission, error) {
	submission := &models.Submission{}
	err := row.Scan(
		&submission.ID,
		&submission.UnitID,
		&submission.PeriodID,
		&submission.Status,
		&submission.LevelName,
		&submission.CreatedAt,
		&submission.UpdatedAt,
		&submission.SubmittedAt,
		&submission.LastReviewedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}

	level, err := models.ParseLevel(submission.LevelName)
	if err != nil {
		return nil, fmt.Errorf("submission %d: %w", submission.ID, err)
	}
	submission.CurrentLevel = level

	return submission, nil
}
