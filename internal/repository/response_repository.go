package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/completion"
	"github.com/isaackcz/Edsight-sub000/internal/models"
)

// ResponseRepository handles survey answer database operations
type ResponseRepository struct {
	db *sql.DB
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Upsert writes an answer, replacing any previous answer for the same
// (submission, question, sub-question). The unique index collapses a missing
// sub-question to 0, so COALESCE keeps the conflict target stable.
func (r *ResponseRepository) Upsert(response *models.ResponseRecord) error {
	query := `
		INSERT INTO responses (submission_id, question_id, sub_question_id, value, answered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (submission_id, question_id, COALESCE(sub_question_id, 0))
		DO UPDATE SET value = EXCLUDED.value, answered_at = EXCLUDED.answered_at
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(
		query,
		response.SubmissionID,
		response.QuestionID,
		response.SubQuestionID,
		response.Value,
		now,
	).Scan(&response.ID)

	if err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}

	response.AnsweredAt = now
	return nil
}

// ListBySubmission retrieves all answers on a submission
func (r *ResponseRepository) ListBySubmission(submissionID uint) ([]models.ResponseRecord, error) {
	query := `
		SELECT id, submission_id, question_id, sub_question_id, value, answered_at
		FROM responses
		WHERE submission_id = $1
		ORDER BY question_id, sub_question_id
	`

	rows, err := r.db.Query(query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	defer rows.Close()

	return scanResponses(rows)
}

// ForPeriod returns a read-only view of answers scoped to one reporting
// period, suitable for completion computation.
func (r *ResponseRepository) ForPeriod(periodID uint) completion.Source {
	return &periodSource{db: r.db, periodID: periodID}
}

// periodSource reads a unit's answers through its submission for one period
type periodSource struct {
	db       *sql.DB
	periodID uint
}

// LatestResponses returns the answers on the unit's submission for the
// period. A unit without a submission yields an empty slice.
func (s *periodSource) LatestResponses(unitID uint) ([]models.ResponseRecord, error) {
	query := `
		SELECT r.id, r.submission_id, r.question_id, r.sub_question_id, r.value, r.answered_at
		FROM responses r
		JOIN submissions s ON r.submission_id = s.id
		WHERE s.unit_id = $1 AND s.period_id = $2
		ORDER BY r.question_id, r.sub_question_id
	`

	rows, err := s.db.Query(query, unitID, s.periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses for unit %d: %w", unitID, err)
	}
	defer rows.Close()

	return scanResponses(rows)
}

func scanResponses(rows *sql.Rows) ([]models.ResponseRecord, error) {
	responses := []models.ResponseRecord{}
	for rows.Next() {
		var response models.ResponseRecord
		if err := rows.Scan(
			&response.ID,
			&response.SubmissionID,
			&response.QuestionID,
			&response.SubQuestionID,
			&response.Value,
			&response.AnsweredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, response)
	}

	return responses, nil
}
