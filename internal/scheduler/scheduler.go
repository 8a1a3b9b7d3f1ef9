package scheduler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/config"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/internal/service"
)

// Scheduler handles periodic maintenance tasks
type Scheduler struct {
	authService *service.AuthService
	periodRepo  *repository.PeriodRepository
	config      *config.SchedulerConfig
	stopChan    chan bool
}

// NewScheduler creates a new scheduler
func NewScheduler(
	authService *service.AuthService,
	periodRepo *repository.PeriodRepository,
	cfg *config.SchedulerConfig,
) *Scheduler {
	return &Scheduler{
		authService: authService,
		periodRepo:  periodRepo,
		config:      cfg,
		stopChan:    make(chan bool),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	if !s.config.Enabled {
		slog.Info("Scheduler is disabled")
		return
	}

	slog.Info("Starting scheduler",
		"session_cleanup_interval", s.config.SessionCleanupInterval,
		"deadline_check_interval", s.config.DeadlineCheckInterval)

	go s.scheduleIntervalTask(s.config.SessionCleanupInterval, "session_cleanup", s.cleanupSessions)
	go s.scheduleIntervalTask(s.config.DeadlineCheckInterval, "deadline_check", s.checkDeadline)

	slog.Info("Scheduler started")
}

// Stop stops all scheduled tasks
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	close(s.stopChan)
}

// scheduleIntervalTask runs a task at fixed intervals, once immediately and
// then on every tick, until the scheduler is stopped
func (s *Scheduler) scheduleIntervalTask(interval time.Duration, taskName string, task func()) {
	slog.Info("Scheduled interval task", "task", taskName, "interval", interval)

	task()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			slog.Debug("Running scheduled task", "task", taskName)
			task()
		case <-s.stopChan:
			slog.Info("Stopped scheduled task", "task", taskName)
			return
		}
	}
}

// cleanupSessions removes expired sessions so stale tokens cannot be refreshed
func (s *Scheduler) cleanupSessions() {
	if err := s.authService.CleanupExpiredSessions(); err != nil {
		slog.Error("Session cleanup failed", "error", err)
	}
}

// checkDeadline logs when the active collection period has passed its deadline
func (s *Scheduler) checkDeadline() {
	period, err := s.periodRepo.GetActive()
	if err != nil {
		if errors.Is(err, repository.ErrNoActivePeriod) {
			return
		}
		slog.Error("Deadline check failed", "error", err)
		return
	}

	if period.Deadline != nil && time.Now().After(*period.Deadline) {
		slog.Warn("Active period is past its submission deadline",
			"period_id", period.ID,
			"period", period.Name,
			"deadline", period.Deadline)
	}
}
