package service

import (
	"fmt"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/permission"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/internal/scope"
)

// GeoService exposes scope-filtered views of the geographic hierarchy and
// the nationwide-only import of new nodes.
type GeoService struct {
	geoRepo  *repository.GeoRepository
	scopeSvc *ScopeService
	auditSvc *AuditService
}

// NewGeoService creates a new geographic service
func NewGeoService(geoRepo *repository.GeoRepository, scopeSvc *ScopeService, auditSvc *AuditService) *GeoService {
	return &GeoService{
		geoRepo:  geoRepo,
		scopeSvc: scopeSvc,
		auditSvc: auditSvc,
	}
}

// ListRegions retrieves the regions visible to the caller
func (s *GeoService) ListRegions(caller *models.Admin) ([]models.Region, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	regions, err := s.geoRepo.ListRegions()
	if err != nil {
		return nil, err
	}

	visible := []models.Region{}
	for _, region := range regions {
		if sc.CanAccessNode(geo.NodeRef{Level: models.LevelRegion, ID: region.ID}) {
			visible = append(visible, region)
		}
	}

	return visible, nil
}

// ListDivisions retrieves the divisions visible to the caller, optionally
// under one region. A region outside the scope is refused.
func (s *GeoService) ListDivisions(caller *models.Admin, regionID *uint) ([]models.Division, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	if regionID != nil {
		if err := sc.CheckNode(geo.NodeRef{Level: models.LevelRegion, ID: *regionID}); err != nil {
			return nil, err
		}
	}

	divisions, err := s.geoRepo.ListDivisions(regionID)
	if err != nil {
		return nil, err
	}

	visible := []models.Division{}
	for _, division := range divisions {
		if sc.CanAccessNode(geo.NodeRef{Level: models.LevelDivision, ID: division.ID}) {
			visible = append(visible, division)
		}
	}

	return visible, nil
}

// ListDistricts retrieves the districts visible to the caller, optionally
// under one division. A division outside the scope is refused.
func (s *GeoService) ListDistricts(caller *models.Admin, divisionID *uint) ([]models.District, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	if divisionID != nil {
		if err := sc.CheckNode(geo.NodeRef{Level: models.LevelDivision, ID: *divisionID}); err != nil {
			return nil, err
		}
	}

	districts, err := s.geoRepo.ListDistricts(divisionID)
	if err != nil {
		return nil, err
	}

	visible := []models.District{}
	for _, district := range districts {
		if sc.CanAccessNode(geo.NodeRef{Level: models.LevelDistrict, ID: district.ID}) {
			visible = append(visible, district)
		}
	}

	return visible, nil
}

// ListUnits retrieves the units visible to the caller, optionally under one
// district. A district outside the scope is refused.
func (s *GeoService) ListUnits(caller *models.Admin, districtID *uint) ([]models.Unit, error) {
	sc, err := s.scopeSvc.ResolveFor(caller)
	if err != nil {
		return nil, err
	}

	if districtID != nil {
		if err := sc.CheckNode(geo.NodeRef{Level: models.LevelDistrict, ID: *districtID}); err != nil {
			return nil, err
		}
	}

	units, err := s.geoRepo.ListUnits(districtID)
	if err != nil {
		return nil, err
	}

	visible := []models.Unit{}
	for _, unit := range units {
		if sc.CanAccessUnit(unit.ID) {
			visible = append(visible, unit)
		}
	}

	return visible, nil
}

// ImportNode adds a node to the hierarchy. Only unrestricted administrators
// may alter the tree; the cached snapshot is invalidated afterwards.
type ImportNodeInput struct {
	LevelName string
	Name      string
	ParentID  uint
}

// ImportNode creates a region, division, district, or unit
func (s *GeoService) ImportNode(caller *models.Admin, input ImportNodeInput, ipAddress, userAgent string) (uint, error) {
	if caller.Level != models.LevelNationwide {
		return 0, fmt.Errorf("%w: hierarchy changes are nationwide-only", scope.ErrAccessDenied)
	}
	if err := permission.Require(caller, permission.CapManageAdmins); err != nil {
		return 0, err
	}

	level, err := models.ParseLevel(input.LevelName)
	if err != nil {
		return 0, err
	}

	tree, err := s.scopeSvc.Tree()
	if err != nil {
		return 0, err
	}

	var id uint
	switch level {
	case models.LevelRegion:
		region := &models.Region{Name: input.Name}
		if err := s.geoRepo.CreateRegion(region); err != nil {
			return 0, err
		}
		id = region.ID
	case models.LevelDivision:
		if !tree.Contains(geo.NodeRef{Level: models.LevelRegion, ID: input.ParentID}) {
			return 0, fmt.Errorf("%w: region %d", geo.ErrNodeNotFound, input.ParentID)
		}
		division := &models.Division{RegionID: input.ParentID, Name: input.Name}
		if err := s.geoRepo.CreateDivision(division); err != nil {
			return 0, err
		}
		id = division.ID
	case models.LevelDistrict:
		if !tree.Contains(geo.NodeRef{Level: models.LevelDivision, ID: input.ParentID}) {
			return 0, fmt.Errorf("%w: division %d", geo.ErrNodeNotFound, input.ParentID)
		}
		district := &models.District{DivisionID: input.ParentID, Name: input.Name}
		if err := s.geoRepo.CreateDistrict(district); err != nil {
			return 0, err
		}
		id = district.ID
	case models.LevelUnit:
		if !tree.Contains(geo.NodeRef{Level: models.LevelDistrict, ID: input.ParentID}) {
			return 0, fmt.Errorf("%w: district %d", geo.ErrNodeNotFound, input.ParentID)
		}
		unit := &models.Unit{DistrictID: input.ParentID, Name: input.Name}
		if err := s.geoRepo.CreateUnit(unit); err != nil {
			return 0, err
		}
		id = unit.ID
	default:
		return 0, fmt.Errorf("%w: cannot import a %s node", models.ErrLevelRange, level)
	}

	s.scopeSvc.Invalidate()

	s.auditSvc.Log(caller.ID, "geo.import", fmt.Sprintf("%s:%d", level, id),
		fmt.Sprintf("imported %s %q", level, input.Name), ipAddress, userAgent)

	return id, nil
}
