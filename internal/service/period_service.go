package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/permission"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
)

var ErrInvalidPeriodRange = errors.New("period start must be before its end")

// PeriodService manages reporting periods and deadlines
type PeriodService struct {
	periodRepo *repository.PeriodRepository
	auditSvc   *AuditService
}

// NewPeriodService creates a new period service
func NewPeriodService(periodRepo *repository.PeriodRepository, auditSvc *AuditService) *PeriodService {
	return &PeriodService{
		periodRepo: periodRepo,
		auditSvc:   auditSvc,
	}
}

// CreatePeriod creates a reporting period. Requires the deadline capability.
func (s *PeriodService) CreatePeriod(caller *models.Admin, name string, startsAt, endsAt time.Time, deadline *time.Time, ipAddress, userAgent string) (*models.Period, error) {
	if err := permission.Require(caller, permission.CapSetDeadlines); err != nil {
		return nil, err
	}

	if !startsAt.Before(endsAt) {
		return nil, ErrInvalidPeriodRange
	}

	period := &models.Period{
		Name:     name,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Deadline: deadline,
	}

	if err := s.periodRepo.Create(period); err != nil {
		return nil, err
	}

	s.auditSvc.Log(caller.ID, "period.create", fmt.Sprintf("period:%d", period.ID),
		fmt.Sprintf("created period %s", period.Name), ipAddress, userAgent)

	return period, nil
}

// SetDeadline sets or clears the submission deadline on a period
func (s *PeriodService) SetDeadline(caller *models.Admin, periodID uint, deadline *time.Time, ipAddress, userAgent string) error {
	if err := permission.Require(caller, permission.CapSetDeadlines); err != nil {
		return err
	}

	if _, err := s.periodRepo.GetByID(periodID); err != nil {
		return err
	}

	if err := s.periodRepo.UpdateDeadline(periodID, deadline); err != nil {
		return err
	}

	s.auditSvc.Log(caller.ID, "period.deadline", fmt.Sprintf("period:%d", periodID),
		"updated submission deadline", ipAddress, userAgent)

	return nil
}

// ActivatePeriod makes a period the single active one
func (s *PeriodService) ActivatePeriod(caller *models.Admin, periodID uint, ipAddress, userAgent string) error {
	if err := permission.Require(caller, permission.CapSetDeadlines); err != nil {
		return err
	}

	if err := s.periodRepo.SetActive(periodID); err != nil {
		return err
	}

	s.auditSvc.Log(caller.ID, "period.activate", fmt.Sprintf("period:%d", periodID),
		"activated reporting period", ipAddress, userAgent)

	return nil
}

// ListPeriods retrieves all reporting periods
func (s *PeriodService) ListPeriods() ([]models.Period, error) {
	return s.periodRepo.List()
}

// GetActivePeriod retrieves the active reporting period
func (s *PeriodService) GetActivePeriod() (*models.Period, error) {
	return s.periodRepo.GetActive()
}
