package scope

import (
	"errors"
	"testing"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
)

// Fixture: region R1 holds divisions D1 (districts T1, T2) and D2 (district
// T3); each district holds one unit.
func fixtureTree(t *testing.T) *geo.Tree {
	t.Helper()

	tree, err := geo.NewTree(
		[]models.Region{{ID: 1, Name: "R1"}, {ID: 2, Name: "R2"}},
		[]models.Division{
			{ID: 10, RegionID: 1, Name: "D1"},
			{ID: 11, RegionID: 1, Name: "D2"},
			{ID: 20, RegionID: 2, Name: "D3"},
		},
		[]models.District{
			{ID: 100, DivisionID: 10, Name: "T1"},
			{ID: 101, DivisionID: 10, Name: "T2"},
			{ID: 110, DivisionID: 11, Name: "T3"},
		},
		[]models.Unit{
			{ID: 1000, DistrictID: 100, Name: "U1"},
			{ID: 1010, DistrictID: 101, Name: "U2"},
			{ID: 1100, DistrictID: 110, Name: "U3"},
		},
	)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}
	return tree
}

func uintPtr(v uint) *uint { return &v }

func TestResolveDivisionScope(t *testing.T) {
	tree := fixtureTree(t)
	admin := &models.Admin{
		ID:         7,
		Level:      models.LevelDivision,
		RegionID:   uintPtr(1),
		DivisionID: uintPtr(10),
	}

	s, err := Resolve(admin, tree)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	inScope := []geo.NodeRef{
		{Level: models.LevelDivision, ID: 10},
		{Level: models.LevelDistrict, ID: 100},
		{Level: models.LevelDistrict, ID: 101},
		{Level: models.LevelUnit, ID: 1000},
		{Level: models.LevelUnit, ID: 1010},
	}
	for _, node := range inScope {
		if !s.CanAccessNode(node) {
			t.Errorf("Expected %v in scope", node)
		}
	}

	outOfScope := []geo.NodeRef{
		{Level: models.LevelDivision, ID: 11},
		{Level: models.LevelDistrict, ID: 110},
		{Level: models.LevelUnit, ID: 1100},
		{Level: models.LevelRegion, ID: 1}, // ancestor, not independently browsable
	}
	for _, node := range outOfScope {
		if s.CanAccessNode(node) {
			t.Errorf("Expected %v out of scope", node)
		}
	}

	units := s.UnitIDs()
	if len(units) != 2 {
		t.Errorf("Expected 2 units in scope, got %d", len(units))
	}
}

func TestResolveNationwideScope(t *testing.T) {
	tree := fixtureTree(t)
	admin := &models.Admin{ID: 1, Level: models.LevelNationwide}

	s, err := Resolve(admin, tree)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !s.Unrestricted() {
		t.Error("Nationwide scope should be unrestricted")
	}
	if !s.CanAccessNode(geo.NodeRef{Level: models.LevelUnit, ID: 1100}) {
		t.Error("Nationwide scope should reach every unit")
	}
	if got := len(s.UnitIDs()); got != 3 {
		t.Errorf("Expected 3 units, got %d", got)
	}
}

func TestResolveUnitScope(t *testing.T) {
	tree := fixtureTree(t)
	admin := &models.Admin{
		ID:         9,
		Level:      models.LevelUnit,
		RegionID:   uintPtr(1),
		DivisionID: uintPtr(10),
		DistrictID: uintPtr(100),
		UnitID:     uintPtr(1000),
	}

	s, err := Resolve(admin, tree)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !s.CanAccessUnit(1000) {
		t.Error("Unit admin should access its own unit")
	}
	if s.CanAccessUnit(1010) {
		t.Error("Unit admin should not access sibling units")
	}
}

func TestResolveRejectsInconsistentAnchors(t *testing.T) {
	tree := fixtureTree(t)

	// Division D1 belongs to region 1, but the admin stores region 2.
	admin := &models.Admin{
		ID:         3,
		Level:      models.LevelDivision,
		RegionID:   uintPtr(2),
		DivisionID: uintPtr(10),
	}
	if _, err := Resolve(admin, tree); !errors.Is(err, ErrInconsistentAnchor) {
		t.Errorf("Expected ErrInconsistentAnchor, got %v", err)
	}

	// Missing anchor entirely.
	admin = &models.Admin{ID: 4, Level: models.LevelDistrict}
	if _, err := Resolve(admin, tree); !errors.Is(err, ErrInconsistentAnchor) {
		t.Errorf("Expected ErrInconsistentAnchor for missing anchor, got %v", err)
	}
}

func TestCheckNodeFailsLoudly(t *testing.T) {
	tree := fixtureTree(t)
	admin := &models.Admin{
		ID:         7,
		Level:      models.LevelDivision,
		RegionID:   uintPtr(1),
		DivisionID: uintPtr(10),
	}
	s, err := Resolve(admin, tree)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	err = s.CheckNode(geo.NodeRef{Level: models.LevelDistrict, ID: 110})
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for out-of-scope filter, got %v", err)
	}
}

func TestCanAccessAdmin(t *testing.T) {
	tree := fixtureTree(t)
	division := &models.Admin{
		ID:         7,
		Level:      models.LevelDivision,
		RegionID:   uintPtr(1),
		DivisionID: uintPtr(10),
	}
	s, err := Resolve(division, tree)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	districtAdmin := &models.Admin{
		ID:         8,
		Level:      models.LevelDistrict,
		RegionID:   uintPtr(1),
		DivisionID: uintPtr(10),
		DistrictID: uintPtr(100),
	}
	if !s.CanAccessAdmin(districtAdmin) {
		t.Error("District admin under D1 should be in scope")
	}

	siblingAdmin := &models.Admin{
		ID:         9,
		Level:      models.LevelDistrict,
		RegionID:   uintPtr(1),
		DivisionID: uintPtr(11),
		DistrictID: uintPtr(110),
	}
	if s.CanAccessAdmin(siblingAdmin) {
		t.Error("District admin under sibling division should be out of scope")
	}

	regionAdmin := &models.Admin{ID: 10, Level: models.LevelRegion, RegionID: uintPtr(1)}
	if s.CanAccessAdmin(regionAdmin) {
		t.Error("Higher-level admin should be out of a division scope")
	}
}
