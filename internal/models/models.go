package models

import (
	"time"
)

// Region is a top-level geographic node. Its parent is the implicit
// nationwide root.
type Region struct {
	ID        uint      `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Division is a geographic node under a region.
type Division struct {
	ID        uint      `json:"id" db:"id"`
	RegionID  uint      `json:"region_id" db:"region_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// District is a geographic node under a division.
type District struct {
	ID         uint      `json:"id" db:"id"`
	DivisionID uint      `json:"division_id" db:"division_id"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Unit is a leaf geographic node, the reporting entity that owns submissions.
type Unit struct {
	ID         uint      `json:"id" db:"id"`
	DistrictID uint      `json:"district_id" db:"district_id"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// AdminStatus is the account state of an administrator. Deactivation is the
// terminal state; administrators are never hard-deleted.
type AdminStatus string

const (
	AdminActive    AdminStatus = "active"
	AdminInactive  AdminStatus = "inactive"
	AdminSuspended AdminStatus = "suspended"
)

// CapabilityOverrides narrows the level-default capability set per
// administrator. A nil field means "use the level default"; a stored false
// removes the capability. Stored true never widens beyond the default.
type CapabilityOverrides struct {
	CreateAdmins *bool `json:"create_admins,omitempty" db:"can_create_admins"`
	ManageAdmins *bool `json:"manage_admins,omitempty" db:"can_manage_admins"`
	SetDeadlines *bool `json:"set_deadlines,omitempty" db:"can_set_deadlines"`
	Approve      *bool `json:"approve_submissions,omitempty" db:"can_approve_submissions"`
	ViewLogs     *bool `json:"view_system_logs,omitempty" db:"can_view_system_logs"`
}

// Admin represents an administrator account anchored to the geographic
// hierarchy. The populated geographic foreign keys must be consistent with
// Level: an admin stores the ids of every ancestor at or above its level.
type Admin struct {
	ID           uint                `json:"id" db:"id"`
	Email        string              `json:"email" db:"email"`
	PasswordHash string              `json:"-" db:"password_hash"`
	FullName     string              `json:"full_name" db:"full_name"`
	Level        Level               `json:"-" db:"-"`
	LevelName    string              `json:"level" db:"level"`
	RegionID     *uint               `json:"region_id,omitempty" db:"region_id"`
	DivisionID   *uint               `json:"division_id,omitempty" db:"division_id"`
	DistrictID   *uint               `json:"district_id,omitempty" db:"district_id"`
	UnitID       *uint               `json:"unit_id,omitempty" db:"unit_id"`
	Overrides    CapabilityOverrides `json:"overrides"`
	Status       AdminStatus         `json:"status" db:"status"`
	CreatedBy    *uint               `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy    *uint               `json:"updated_by,omitempty" db:"updated_by"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
	LastLoginAt  *time.Time          `json:"last_login_at,omitempty" db:"last_login_at"`
}

// AnchorID returns the id of the admin's anchor node at its own level.
// Nationwide admins have no anchor; ok is false.
func (a *Admin) AnchorID() (uint, bool) {
	switch a.Level {
	case LevelRegion:
		if a.RegionID != nil {
			return *a.RegionID, true
		}
	case LevelDivision:
		if a.DivisionID != nil {
			return *a.DivisionID, true
		}
	case LevelDistrict:
		if a.DistrictID != nil {
			return *a.DistrictID, true
		}
	case LevelUnit:
		if a.UnitID != nil {
			return *a.UnitID, true
		}
	}
	return 0, false
}

// Period is a reporting window. Submissions attach to the active period and
// there is at most one live submission per unit per period.
type Period struct {
	ID        uint       `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	StartsAt  time.Time  `json:"starts_at" db:"starts_at"`
	EndsAt    time.Time  `json:"ends_at" db:"ends_at"`
	Deadline  *time.Time `json:"deadline,omitempty" db:"deadline"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Submission is one unit's survey record for a reporting period.
type Submission struct {
	ID             uint             `json:"id" db:"id"`
	UnitID         uint             `json:"unit_id" db:"unit_id"`
	PeriodID       uint             `json:"period_id" db:"period_id"`
	Status         SubmissionStatus `json:"status" db:"status"`
	CurrentLevel   Level            `json:"-" db:"-"`
	LevelName      string           `json:"current_level" db:"current_level"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
	SubmittedAt    *time.Time       `json:"submitted_at,omitempty" db:"submitted_at"`
	LastReviewedAt *time.Time       `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
}

// DecisionOutcome is the result recorded for a review action.
type DecisionOutcome string

const (
	OutcomeApproved DecisionOutcome = "approved"
	OutcomeReturned DecisionOutcome = "returned"
)

// ReviewDecision is one approval or return taken on a submission at a given
// level. Append-only; together the rows form the workflow audit trail.
type ReviewDecision struct {
	ID           uint            `json:"id" db:"id"`
	SubmissionID uint            `json:"submission_id" db:"submission_id"`
	ReviewerID   uint            `json:"reviewer_id" db:"reviewer_id"`
	LevelName    string          `json:"level" db:"level"`
	Outcome      DecisionOutcome `json:"outcome" db:"outcome"`
	Comment      *string         `json:"comment,omitempty" db:"comment"`
	DecidedAt    time.Time       `json:"decided_at" db:"decided_at"`
}

// ResponseRecord is one answer on a submission, keyed by
// (submission, question, sub-question). Re-answers upsert in place.
type ResponseRecord struct {
	ID            uint      `json:"id" db:"id"`
	SubmissionID  uint      `json:"submission_id" db:"submission_id"`
	QuestionID    uint      `json:"question_id" db:"question_id"`
	SubQuestionID *uint     `json:"sub_question_id,omitempty" db:"sub_question_id"`
	Value         string    `json:"value" db:"value"`
	AnsweredAt    time.Time `json:"answered_at" db:"answered_at"`
}

// RequiredQuestion identifies a mandatory question or sub-question. The set
// is owned by the form-definition collaborator and read-only here.
type RequiredQuestion struct {
	QuestionID    uint  `json:"question_id" db:"question_id"`
	SubQuestionID *uint `json:"sub_question_id,omitempty" db:"sub_question_id"`
}

// Key returns the identity of the required question within a submission.
func (q RequiredQuestion) Key() QuestionKey {
	k := QuestionKey{QuestionID: q.QuestionID}
	if q.SubQuestionID != nil {
		k.SubQuestionID = *q.SubQuestionID
	}
	return k
}

// QuestionKey is the comparable (question, sub-question) identity.
// SubQuestionID zero means no sub-question.
type QuestionKey struct {
	QuestionID    uint
	SubQuestionID uint
}

// AuditLog is an append-only record of a mutating administrator action.
type AuditLog struct {
	ID        uint      `json:"id" db:"id"`
	AdminID   *uint     `json:"admin_id,omitempty" db:"admin_id"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details,omitempty" db:"details"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Session tracks an issued token so logout can invalidate it server-side.
type Session struct {
	ID             string    `json:"id" db:"id"`
	AdminID        uint      `json:"admin_id" db:"admin_id"`
	JTI            string    `json:"jti" db:"jti"`
	TokenType      string    `json:"token_type" db:"token_type"` // "access" or "refresh"
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	IPAddress      string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent      string    `json:"user_agent,omitempty" db:"user_agent"`
}
