package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/permission"
	"github.com/isaackcz/Edsight-sub000/internal/scope"
)

var (
	ErrInvalidTransition = errors.New("invalid workflow transition")
	ErrConflict          = errors.New("submission was modified concurrently")
	ErrCommentRequired   = errors.New("a comment is required to return a submission")
	ErrSubmissionGone    = errors.New("submission not found")
)

// FirstReviewLevel is where a submitted record enters the review chain.
const FirstReviewLevel = models.LevelDistrict

// Transition is one atomic status/level change. The from pair is the
// compare-and-swap guard: the store must refuse the change when the stored
// row no longer matches it, surfacing ErrConflict to the caller.
type Transition struct {
	SubmissionID   uint
	FromStatus     models.SubmissionStatus
	FromLevel      models.Level
	ToStatus       models.SubmissionStatus
	ToLevel        models.Level
	SetSubmittedAt bool
	SetReviewedAt  bool
	// Decision, when set, is appended in the same transaction as the
	// status change. Neither may exist without the other.
	Decision *models.ReviewDecision
}

// Store persists submissions and applies transitions atomically.
type Store interface {
	GetSubmission(id uint) (*models.Submission, error)
	ApplyTransition(t Transition) error
}

// Engine drives the submission lifecycle across the review levels. Every
// transition is authorized against a freshly resolved scope.
type Engine struct {
	store Store
}

// NewEngine creates a workflow engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Submit moves a draft (or returned) submission into the first review
// level's pending state. Only the owning unit may submit.
func (e *Engine) Submit(submissionID uint, sc *scope.Scope) (models.SubmissionStatus, models.Level, error) {
	sub, err := e.load(submissionID)
	if err != nil {
		return "", 0, err
	}

	if sc.Admin().Level != models.LevelUnit || !sc.CanAccessUnit(sub.UnitID) {
		return "", 0, fmt.Errorf("%w: unit %d", scope.ErrAccessDenied, sub.UnitID)
	}
	if sub.Status != models.StatusDraft && !sub.Status.IsReturned() {
		return "", 0, fmt.Errorf("%w: cannot submit from %s", ErrInvalidTransition, sub.Status)
	}

	t := Transition{
		SubmissionID:   sub.ID,
		FromStatus:     sub.Status,
		FromLevel:      sub.CurrentLevel,
		ToStatus:       models.PendingStatus(FirstReviewLevel),
		ToLevel:        FirstReviewLevel,
		SetSubmittedAt: true,
	}
	if err := e.store.ApplyTransition(t); err != nil {
		return "", 0, err
	}
	return t.ToStatus, t.ToLevel, nil
}

// Approve advances a pending submission to the next level, or to completed
// when the nationwide office approves. The reviewer must sit at the
// submission's current level, hold the approve capability, and have the
// owning unit in scope.
func (e *Engine) Approve(submissionID uint, sc *scope.Scope, comment string) (models.SubmissionStatus, models.Level, error) {
	sub, err := e.load(submissionID)
	if err != nil {
		return "", 0, err
	}
	if err := e.authorizeReview(sub, sc); err != nil {
		return "", 0, err
	}

	reviewer := sc.Admin()
	toStatus := models.StatusCompleted
	toLevel := sub.CurrentLevel
	if sub.CurrentLevel != models.LevelNationwide {
		next, err := sub.CurrentLevel.Next()
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		toStatus = models.PendingStatus(next)
		toLevel = next
	}

	t := Transition{
		SubmissionID:  sub.ID,
		FromStatus:    sub.Status,
		FromLevel:     sub.CurrentLevel,
		ToStatus:      toStatus,
		ToLevel:       toLevel,
		SetReviewedAt: true,
		Decision:      newDecision(sub.ID, reviewer, models.OutcomeApproved, comment),
	}
	if err := e.store.ApplyTransition(t); err != nil {
		return "", 0, err
	}
	return t.ToStatus, t.ToLevel, nil
}

// Return sends a pending submission one level back toward the unit. The
// comment is mandatory; the unit must resubmit to re-enter the forward
// chain.
func (e *Engine) Return(submissionID uint, sc *scope.Scope, comment string) (models.SubmissionStatus, models.Level, error) {
	if strings.TrimSpace(comment) == "" {
		return "", 0, ErrCommentRequired
	}

	sub, err := e.load(submissionID)
	if err != nil {
		return "", 0, err
	}
	if err := e.authorizeReview(sub, sc); err != nil {
		return "", 0, err
	}

	prev, err := sub.CurrentLevel.Previous()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	t := Transition{
		SubmissionID:  sub.ID,
		FromStatus:    sub.Status,
		FromLevel:     sub.CurrentLevel,
		ToStatus:      models.ReturnedStatus(prev),
		ToLevel:       prev,
		SetReviewedAt: true,
		Decision:      newDecision(sub.ID, sc.Admin(), models.OutcomeReturned, comment),
	}
	if err := e.store.ApplyTransition(t); err != nil {
		return "", 0, err
	}
	return t.ToStatus, t.ToLevel, nil
}

func (e *Engine) load(id uint) (*models.Submission, error) {
	sub, err := e.store.GetSubmission(id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: %d", ErrSubmissionGone, id)
	}
	return sub, nil
}

// authorizeReview enforces the shared Approve/Return preconditions: the
// submission is pending at the reviewer's own level, the reviewer holds the
// approve capability, and the owning unit falls inside the reviewer's scope.
func (e *Engine) authorizeReview(sub *models.Submission, sc *scope.Scope) error {
	reviewer := sc.Admin()

	if err := permission.Require(reviewer, permission.CapApprove); err != nil {
		return err
	}
	if !sc.CanAccessUnit(sub.UnitID) {
		return fmt.Errorf("%w: unit %d", scope.ErrAccessDenied, sub.UnitID)
	}
	if sub.Status != models.PendingStatus(sub.CurrentLevel) {
		return fmt.Errorf("%w: submission %d is %s, not awaiting review", ErrInvalidTransition, sub.ID, sub.Status)
	}
	if reviewer.Level != sub.CurrentLevel {
		return fmt.Errorf("%w: submission %d is at %s, reviewer is %s",
			ErrInvalidTransition, sub.ID, sub.CurrentLevel, reviewer.Level)
	}
	return nil
}

func newDecision(submissionID uint, reviewer *models.Admin, outcome models.DecisionOutcome, comment string) *models.ReviewDecision {
	d := &models.ReviewDecision{
		SubmissionID: submissionID,
		ReviewerID:   reviewer.ID,
		LevelName:    reviewer.Level.String(),
		Outcome:      outcome,
		DecidedAt:    time.Now(),
	}
	if strings.TrimSpace(comment) != "" {
		c := comment
		d.Comment = &c
	}
	return d
}
