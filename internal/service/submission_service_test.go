package service

import (
	"errors"
	"testing"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/scope"
)

// Fixture: region R1 holds division D1 (district T1, unit U1); region R2
// holds division D2 (district T2, unit U2). The scope belongs to a region
// administrator anchored at R1.
func filterTestScope(t *testing.T) *scope.Scope {
	t.Helper()

	tree, err := geo.NewTree(
		[]models.Region{{ID: 1, Name: "R1"}, {ID: 2, Name: "R2"}},
		[]models.Division{
			{ID: 10, RegionID: 1, Name: "D1"},
			{ID: 20, RegionID: 2, Name: "D2"},
		},
		[]models.District{
			{ID: 100, DivisionID: 10, Name: "T1"},
			{ID: 200, DivisionID: 20, Name: "T2"},
		},
		[]models.Unit{
			{ID: 1000, DistrictID: 100, Name: "U1"},
			{ID: 2000, DistrictID: 200, Name: "U2"},
		},
	)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}

	regionID := uint(1)
	admin := &models.Admin{
		ID:       3,
		Level:    models.LevelRegion,
		RegionID: &regionID,
	}

	sc, err := scope.Resolve(admin, tree)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return sc
}

func TestFilterUnitsChecksEveryFilter(t *testing.T) {
	sc := filterTestScope(t)

	inDistrict := uint(100)
	outRegion := uint(2)

	// An out-of-scope broad filter must fail even when paired with an
	// in-scope narrow one.
	_, err := filterUnits(sc, &outRegion, nil, &inDistrict)
	if !errors.Is(err, scope.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for out-of-scope region filter, got %v", err)
	}

	inRegion := uint(1)
	units, err := filterUnits(sc, &inRegion, nil, &inDistrict)
	if err != nil {
		t.Fatalf("In-scope filters failed: %v", err)
	}
	if len(units) != 1 || units[0] != 1000 {
		t.Errorf("Expected unit 1000 under district 100, got %v", units)
	}
}

func TestFilterUnitsNoFilter(t *testing.T) {
	sc := filterTestScope(t)

	units, err := filterUnits(sc, nil, nil, nil)
	if err != nil {
		t.Fatalf("Unfiltered listing failed: %v", err)
	}
	if len(units) != 1 || units[0] != 1000 {
		t.Errorf("Expected the scope's own unit set, got %v", units)
	}
}
