package repository

import (
	"database/sql"
	"fmt"

	"github.com/isaackcz/Edsight-sub000/internal/models"
)

// QuestionRepository reads the survey form definition. The form itself is
// authored elsewhere; this side only needs the mandatory question set.
type QuestionRepository struct {
	db *sql.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *sql.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListRequired retrieves the mandatory questions and sub-questions. The
// returned set is the denominator for completion computation.
func (r *QuestionRepository) ListRequired() ([]models.RequiredQuestion, error) {
	query := `
		SELECT question_id, sub_question_id
		FROM required_questions
		ORDER BY question_id, sub_question_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get required questions: %w", err)
	}
	defer rows.Close()

	var required []models.RequiredQuestion
	for rows.Next() {
		var q models.RequiredQuestion
		if err := rows.Scan(&q.QuestionID, &q.SubQuestionID); err != nil {
			return nil, fmt.Errorf("failed to scan required question: %w", err)
		}
		required = append(required, q)
	}

	return required, nil
}
