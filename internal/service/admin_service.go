package service

import (
	"errors"
	"fmt"

	"github.com/isaackcz/Edsight-sub000/internal/auth"
	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/permission"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/pkg/validator"
)

var (
	ErrMissingAnchor    = errors.New("a geographic anchor is required for this level")
	ErrCannotModifySelf = errors.New("administrators cannot change their own account status")
)

// AdminService handles administrator management business logic. Every
// operation is authorized twice: the caller must hold the capability and the
// target must sit inside the caller's geographic scope.
type AdminService struct {
	adminRepo *repository.AdminRepository
	scopeSvc  *ScopeService
	authSvc   *auth.Service
	auditSvc  *AuditService
}

// NewAdminService creates a new administrator management service
func NewAdminService(
	adminRepo *repository.AdminRepository,
	scopeSvc *ScopeService,
	authSvc *auth.Service,
	auditSvc *AuditService,
) *AdminService {
	return &AdminService{
		adminRepo: adminRepo,
		scopeSvc:  scopeSvc,
		authSvc:   authSvc,
		auditSvc:  auditSvc,
	}
}

// CreateAdminInput holds the fields for creating an administrator
type CreateAdminInput struct {
	Email      string
	Password   string
	FullName   string
	LevelName  string
	RegionID   *uint
	DivisionID *uint
	DistrictID *uint
	UnitID     *uint
	Overrides  models.CapabilityOverrides
}

// CreateAdmin creates an administrator at or below the caller's level, inside
// the caller's scope. Ancestor foreign keys are derived from the tree rather
// than trusted from input, so stored anchors stay consistent.
func (s *AdminService) CreateAdmin(caller *models.Admin, input CreateAdminInput, ipAddress, userAgent string) (*models.Admin, error) {
	if err := permission.Require(caller, permission.CapCreateAdmins); err != nil {
		return nil, err
	}

	level, err := models.ParseLevel(input.LevelName)
	if err != nil {
		return nil, err
	}

	if err := permission.CheckAssignable(caller, level); err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Email:     input.Email,
		FullName:  input.FullName,
		Level:     level,
		LevelName: level.String(),
		Overrides: input.Overrides,
		Status:    models.AdminActive,
		CreatedBy: &caller.ID,
	}

	if level != models.LevelNationwide {
		sc, err := s.scopeSvc.ResolveFor(caller)
		if err != nil {
			return nil, err
		}

		anchor, err := anchorFromInput(level, input)
		if err != nil {
			return nil, err
		}

		if err := sc.CheckNode(anchor); err != nil {
			return nil, err
		}

		if err := fillAncestorIDs(admin, sc.Tree(), anchor); err != nil {
			return nil, err
		}
	}

	if err := validator.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	passwordHash, err := s.authSvc.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin.PasswordHash = passwordHash

	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}

	s.auditSvc.Log(caller.ID, "admin.create", fmt.Sprintf("admin:%d", admin.ID),
		fmt.Sprintf("created %s administrator %s", admin.LevelName, admin.Email), ipAddress, userAgent)

	return admin, nil
}

// UpdateAdminInput holds the optional fields for updating an administrator.
// Nil fields are left unchanged.
type UpdateAdminInput struct {
	Email     *string
	FullName  *string
	Overrides *models.CapabilityOverrides
}

// UpdateAdmin updates an administrator's profile and capability overrides
func (s *AdminService) UpdateAdmin(caller *models.Admin, adminID uint, input UpdateAdminInput, ipAddress, userAgent string) (*models.Admin, error) {
	admin, err := s.authorizeManage(caller, adminID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		admin.Email = *input.Email
	}
	if input.FullName != nil {
		admin.FullName = *input.FullName
	}
	if input.Overrides != nil {
		admin.Overrides = *input.Overrides
	}
	admin.UpdatedBy = &caller.ID

	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}

	s.auditSvc.Log(caller.ID, "admin.update", fmt.Sprintf("admin:%d", admin.ID),
		fmt.Sprintf("updated administrator %s", admin.Email), ipAddress, userAgent)

	return admin, nil
}

// SetStatus changes an administrator's account status. Self-service status
// changes are refused so an administrator cannot lock themselves out
// accidentally or reactivate their own suspension.
func (s *AdminService) SetStatus(caller *models.Admin, adminID uint, status models.AdminStatus, ipAddress, userAgent string) error {
	if caller.ID == adminID {
		return ErrCannotModifySelf
	}

	admin, err := s.authorizeManage(caller, adminID)
	if err != nil {
		return err
	}

	if err := s.adminRepo.UpdateStatus(admin.ID, status, caller.ID); err != nil {
		return err
	}

	s.auditSvc.Log(caller.ID, "admin.status", fmt.Sprintf("admin:%d", admin.ID),
		fmt.Sprintf("set status of %s to %s", admin.Email, status), ipAddress, userAgent)

	return nil
}

// ResetPassword sets a new password for an administrator in the caller's scope
func (s *AdminService) ResetPassword(caller *models.Admin, adminID uint, newPassword, ipAddress, userAgent string) error {
	admin, err := s.authorizeManage(caller, adminID)
	if err != nil {
		return err
	}

	if err := validator.ValidatePassword(newPassword); err != nil {
		return err
	}
	passwordHash, err := s.authSvc.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.adminRepo.UpdatePassword(admin.ID, passwordHash); err != nil {
		return err
	}

	s.auditSvc.Log(caller.ID, "admin.reset_password", fmt.Sprintf("admin:%d", admin.ID),
		fmt.Sprintf("reset password of %s", admin.Email), ipAddress, userAgent)

	return nil
}

// GetAdmin retrieves an administrator visible to the caller
func (s *AdminService) GetAdmin(caller *models.Admin, adminID uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}

	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	if err := sc.CheckAdmin(admin); err != nil {
		return nil, err
	}

	return admin, nil
}

// ListAdminsInput holds filter parameters for listing administrators
type ListAdminsInput struct {
	Search     string
	LevelName  string
	Status     *models.AdminStatus
	RegionID   *uint
	DivisionID *uint
	DistrictID *uint
	UnitID     *uint
	SortBy     string
	SortOrder  string
	Limit      int
	Offset     int
}

// ListAdmins retrieves administrators inside the caller's scope. An explicit
// geographic filter outside the scope is refused rather than silently
// returning an empty page.
func (s *AdminService) ListAdmins(caller *models.Admin, input ListAdminsInput) ([]models.Admin, int, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, 0, err
	}

	filters := repository.AdminFilters{
		Search:    input.Search,
		Status:    input.Status,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
	}
	if input.LevelName != "" {
		filters.Levels = []string{input.LevelName}
	}

	// Explicit filters must be inside the scope; a denied node fails loudly
	requested := []struct {
		level models.Level
		id    *uint
	}{
		{models.LevelRegion, input.RegionID},
		{models.LevelDivision, input.DivisionID},
		{models.LevelDistrict, input.DistrictID},
		{models.LevelUnit, input.UnitID},
	}
	for _, f := range requested {
		if f.id == nil {
			continue
		}
		if err := sc.CheckNode(geo.NodeRef{Level: f.level, ID: *f.id}); err != nil {
			return nil, 0, err
		}
		switch f.level {
		case models.LevelRegion:
			filters.RegionIDs = []int64{int64(*f.id)}
		case models.LevelDivision:
			filters.DivisionIDs = []int64{int64(*f.id)}
		case models.LevelDistrict:
			filters.DistrictIDs = []int64{int64(*f.id)}
		case models.LevelUnit:
			filters.UnitIDs = []int64{int64(*f.id)}
		}
	}

	// Restricted callers only see administrators anchored under their own node
	if !sc.Unrestricted() {
		anchor, _ := sc.Anchor()
		switch anchor.Level {
		case models.LevelRegion:
			filters.RegionIDs = []int64{int64(anchor.ID)}
		case models.LevelDivision:
			filters.DivisionIDs = []int64{int64(anchor.ID)}
		case models.LevelDistrict:
			filters.DistrictIDs = []int64{int64(anchor.ID)}
		case models.LevelUnit:
			filters.UnitIDs = []int64{int64(anchor.ID)}
		}
	}

	admins, err := s.adminRepo.GetAllWithFilters(filters, input.Limit, input.Offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.adminRepo.CountWithFilters(filters)
	if err != nil {
		return nil, 0, err
	}

	return admins, total, nil
}

// authorizeManage checks the manage capability and scope for a target admin
func (s *AdminService) authorizeManage(caller *models.Admin, adminID uint) (*models.Admin, error) {
	if err := permission.Require(caller, permission.CapManageAdmins); err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}

	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	if err := sc.CheckAdmin(admin); err != nil {
		return nil, err
	}

	return admin, nil
}

// anchorFromInput picks the anchor node reference matching the target level
func anchorFromInput(level models.Level, input CreateAdminInput) (geo.NodeRef, error) {
	var id *uint
	switch level {
	case models.LevelRegion:
		id = input.RegionID
	case models.LevelDivision:
		id = input.DivisionID
	case models.LevelDistrict:
		id = input.DistrictID
	case models.LevelUnit:
		id = input.UnitID
	}

	if id == nil {
		return geo.NodeRef{}, fmt.Errorf("%w: %s", ErrMissingAnchor, level)
	}

	return geo.NodeRef{Level: level, ID: *id}, nil
}

// fillAncestorIDs derives the full ancestor chain of the anchor and stores it
// on the admin
func fillAncestorIDs(admin *models.Admin, tree *geo.Tree, anchor geo.NodeRef) error {
	if !tree.Contains(anchor) {
		return fmt.Errorf("%w: %s", geo.ErrNodeNotFound, anchor)
	}

	for ref := anchor; ; {
		switch ref.Level {
		case models.LevelRegion:
			id := ref.ID
			admin.RegionID = &id
		case models.LevelDivision:
			id := ref.ID
			admin.DivisionID = &id
		case models.LevelDistrict:
			id := ref.ID
			admin.DistrictID = &id
		case models.LevelUnit:
			id := ref.ID
			admin.UnitID = &id
		}

		parent, ok := tree.Parent(ref)
		if !ok {
			return nil
		}
		ref = parent
	}
}
