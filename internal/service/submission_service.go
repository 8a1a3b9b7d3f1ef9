package service

import (
	"errors"
	"fmt"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/internal/scope"
	"github.com/isaackcz/Edsight-sub000/internal/workflow"
)

var (
	ErrNotEditable  = errors.New("submission is not editable in its current state")
	ErrNotUnitAdmin = errors.New("only unit administrators can work on submissions")
)

// SubmissionService handles the survey submission lifecycle: drafting,
// answering, and moving records through the review chain.
type SubmissionService struct {
	submissionRepo *repository.SubmissionRepository
	responseRepo   *repository.ResponseRepository
	periodRepo     *repository.PeriodRepository
	scopeSvc       *ScopeService
	engine         *workflow.Engine
	auditSvc       *AuditService
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	submissionRepo *repository.SubmissionRepository,
	responseRepo *repository.ResponseRepository,
	periodRepo *repository.PeriodRepository,
	scopeSvc *ScopeService,
	engine *workflow.Engine,
	auditSvc *AuditService,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		responseRepo:   responseRepo,
		periodRepo:     periodRepo,
		scopeSvc:       scopeSvc,
		engine:         engine,
		auditSvc:       auditSvc,
	}
}

// CreateDraft opens a draft submission for the caller's unit in the active
// period. At most one submission exists per unit and period.
func (s *SubmissionService) CreateDraft(caller *models.Admin) (*models.Submission, error) {
	unitID, err := callerUnit(caller)
	if err != nil {
		return nil, err
	}

	period, err := s.periodRepo.GetActive()
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		UnitID:       unitID,
		PeriodID:     period.ID,
		Status:       models.StatusDraft,
		CurrentLevel: models.LevelUnit,
	}

	if err := s.submissionRepo.Create(submission); err != nil {
		return nil, err
	}

	return submission, nil
}

// GetOrCreateDraft returns the caller's submission for the active period,
// creating a draft when none exists yet
func (s *SubmissionService) GetOrCreateDraft(caller *models.Admin) (*models.Submission, error) {
	unitID, err := callerUnit(caller)
	if err != nil {
		return nil, err
	}

	period, err := s.periodRepo.GetActive()
	if err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.GetByUnitAndPeriod(unitID, period.ID)
	if errors.Is(err, repository.ErrSubmissionNotFound) {
		return s.CreateDraft(caller)
	}
	if err != nil {
		return nil, err
	}

	return submission, nil
}

// SaveAnswer upserts one answer on the caller's submission. Answers are only
// writable while the record is in the unit's hands.
func (s *SubmissionService) SaveAnswer(caller *models.Admin, submissionID, questionID uint, subQuestionID *uint, value string) (*models.ResponseRecord, error) {
	submission, err := s.authorizeOwner(caller, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Status != models.StatusDraft && !submission.Status.IsReturned() {
		return nil, fmt.Errorf("%w: %s", ErrNotEditable, submission.Status)
	}

	response := &models.ResponseRecord{
		SubmissionID:  submissionID,
		QuestionID:    questionID,
		SubQuestionID: subQuestionID,
		Value:         value,
	}

	if err := s.responseRepo.Upsert(response); err != nil {
		return nil, err
	}

	return response, nil
}

// Submit moves the caller's submission into the first review level
func (s *SubmissionService) Submit(caller *models.Admin, submissionID uint, ipAddress, userAgent string) (models.SubmissionStatus, models.Level, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return "", 0, err
	}

	status, level, err := s.engine.Submit(submissionID, sc)
	if err != nil {
		return "", 0, err
	}

	s.auditSvc.Log(caller.ID, "submission.submit", fmt.Sprintf("submission:%d", submissionID),
		fmt.Sprintf("submitted for %s review", level), ipAddress, userAgent)

	return status, level, nil
}

// Approve advances a submission past the caller's review level
func (s *SubmissionService) Approve(caller *models.Admin, submissionID uint, comment, ipAddress, userAgent string) (models.SubmissionStatus, models.Level, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return "", 0, err
	}

	status, level, err := s.engine.Approve(submissionID, sc, comment)
	if err != nil {
		return "", 0, err
	}

	s.auditSvc.Log(caller.ID, "submission.approve", fmt.Sprintf("submission:%d", submissionID),
		fmt.Sprintf("approved at %s, now %s", caller.LevelName, status), ipAddress, userAgent)

	return status, level, nil
}

// Return sends a submission one level back with a mandatory comment
func (s *SubmissionService) Return(caller *models.Admin, submissionID uint, comment, ipAddress, userAgent string) (models.SubmissionStatus, models.Level, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return "", 0, err
	}

	status, level, err := s.engine.Return(submissionID, sc, comment)
	if err != nil {
		return "", 0, err
	}

	s.auditSvc.Log(caller.ID, "submission.return", fmt.Sprintf("submission:%d", submissionID),
		fmt.Sprintf("returned at %s, now %s", caller.LevelName, status), ipAddress, userAgent)

	return status, level, nil
}

// SubmissionDetail bundles a submission with its answers and review trail
type SubmissionDetail struct {
	Submission *models.Submission      `json:"submission"`
	Responses  []models.ResponseRecord `json:"responses"`
	Decisions  []models.ReviewDecision `json:"decisions"`
}

// GetSubmission retrieves a submission with answers and decisions, provided
// its unit is inside the caller's scope
func (s *SubmissionService) GetSubmission(caller *models.Admin, submissionID uint) (*SubmissionDetail, error) {
	submission, err := s.submissionRepo.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}

	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	if err := sc.CheckNode(geo.NodeRef{Level: models.LevelUnit, ID: submission.UnitID}); err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.ListBySubmission(submissionID)
	if err != nil {
		return nil, err
	}

	decisions, err := s.submissionRepo.ListDecisions(submissionID)
	if err != nil {
		return nil, err
	}

	return &SubmissionDetail{
		Submission: submission,
		Responses:  responses,
		Decisions:  decisions,
	}, nil
}

// ListSubmissionsInput holds filter parameters for listing submissions
type ListSubmissionsInput struct {
	PeriodID   *uint
	Status     *models.SubmissionStatus
	RegionID   *uint
	DivisionID *uint
	DistrictID *uint
}

// ListSubmissions retrieves submissions for the units inside the caller's
// scope, optionally narrowed to one subtree. A filter node outside the scope
// is refused.
func (s *SubmissionService) ListSubmissions(caller *models.Admin, input ListSubmissionsInput) ([]models.Submission, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	unitIDs, err := filterUnits(sc, input.RegionID, input.DivisionID, input.DistrictID)
	if err != nil {
		return nil, err
	}

	return s.submissionRepo.ListForUnits(unitIDs, input.PeriodID, input.Status)
}

// authorizeOwner checks that the caller is the unit administrator owning the
// submission
func (s *SubmissionService) authorizeOwner(caller *models.Admin, submissionID uint) (*models.Submission, error) {
	unitID, err := callerUnit(caller)
	if err != nil {
		return nil, err
	}

	submission, err := s.submissionRepo.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}

	if submission.UnitID != unitID {
		return nil, fmt.Errorf("%w: unit %d", scope.ErrAccessDenied, submission.UnitID)
	}

	return submission, nil
}

// callerUnit returns the caller's unit anchor, refusing non-unit admins
func callerUnit(caller *models.Admin) (uint, error) {
	if caller.Level != models.LevelUnit || caller.UnitID == nil {
		return 0, ErrNotUnitAdmin
	}
	return *caller.UnitID, nil
}

// filterUnits narrows the scope's unit set to one subtree when geographic
// filters are present. Every supplied filter is checked against the scope,
// not just the narrowest, so an out-of-scope node always fails loudly.
func filterUnits(sc *scope.Scope, regionID, divisionID, districtID *uint) ([]uint, error) {
	var nodes []geo.NodeRef
	if regionID != nil {
		nodes = append(nodes, geo.NodeRef{Level: models.LevelRegion, ID: *regionID})
	}
	if divisionID != nil {
		nodes = append(nodes, geo.NodeRef{Level: models.LevelDivision, ID: *divisionID})
	}
	if districtID != nil {
		nodes = append(nodes, geo.NodeRef{Level: models.LevelDistrict, ID: *districtID})
	}

	if len(nodes) == 0 {
		return sc.UnitIDs(), nil
	}

	for _, node := range nodes {
		if err := sc.CheckNode(node); err != nil {
			return nil, err
		}
	}

	// Filters were appended broadest first, so the last is the narrowest.
	return sc.Tree().UnitsUnder(nodes[len(nodes)-1]), nil
}
