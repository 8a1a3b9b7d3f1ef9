package service

import (
	"github.com/isaackcz/Edsight-sub000/internal/completion"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
)

// ReportService computes completion statistics over the caller's scope. All
// reads; nothing here mutates state.
type ReportService struct {
	questionRepo   *repository.QuestionRepository
	responseRepo   *repository.ResponseRepository
	submissionRepo *repository.SubmissionRepository
	periodRepo     *repository.PeriodRepository
	scopeSvc       *ScopeService
}

// NewReportService creates a new report service
func NewReportService(
	questionRepo *repository.QuestionRepository,
	responseRepo *repository.ResponseRepository,
	submissionRepo *repository.SubmissionRepository,
	periodRepo *repository.PeriodRepository,
	scopeSvc *ScopeService,
) *ReportService {
	return &ReportService{
		questionRepo:   questionRepo,
		responseRepo:   responseRepo,
		submissionRepo: submissionRepo,
		periodRepo:     periodRepo,
		scopeSvc:       scopeSvc,
	}
}

// UnitCompletion computes per-unit completion for every unit in the caller's
// scope. A nil period means the active one.
func (s *ReportService) UnitCompletion(caller *models.Admin, periodID *uint) ([]completion.UnitStat, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	period, err := s.resolvePeriod(periodID)
	if err != nil {
		return nil, err
	}

	required, err := s.questionRepo.ListRequired()
	if err != nil {
		return nil, err
	}

	return completion.Compute(sc, required, s.responseRepo.ForPeriod(period.ID))
}

// GroupCompletion rolls per-unit completion up to one grouping level
func (s *ReportService) GroupCompletion(caller *models.Admin, periodID *uint, levelName string) ([]completion.GroupStat, error) {
	level, err := models.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	stats, err := s.UnitCompletion(caller, periodID)
	if err != nil {
		return nil, err
	}

	return completion.Aggregate(stats, level)
}

// StatusSummary counts submissions per workflow status across the scope
func (s *ReportService) StatusSummary(caller *models.Admin, periodID *uint) (map[models.SubmissionStatus]int, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	period, err := s.resolvePeriod(periodID)
	if err != nil {
		return nil, err
	}

	return s.submissionRepo.CountByStatus(sc.UnitIDs(), period.ID)
}

func (s *ReportService) resolvePeriod(periodID *uint) (*models.Period, error) {
	if periodID != nil {
		return s.periodRepo.GetByID(*periodID)
	}
	return s.periodRepo.GetActive()
}
