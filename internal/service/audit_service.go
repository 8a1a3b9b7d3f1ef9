package service

import (
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
)

// AuditService handles audit logging
type AuditService struct {
	auditRepo *repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo *repository.AuditRepository) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
	}
}

// Log creates an audit log entry, ignoring errors
// This is the recommended way to log audit events as it won't fail the main operation
func (s *AuditService) Log(adminID uint, action, resource, details, ipAddress, userAgent string) {
	_ = s.auditRepo.Create(&models.AuditLog{
		AdminID:   &adminID,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
}

// List retrieves audit log entries matching the filters
func (s *AuditService) List(filters repository.AuditFilters, limit, offset int) ([]models.AuditLog, error) {
	return s.auditRepo.List(filters, limit, offset)
}
