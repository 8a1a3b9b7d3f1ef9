package geo

import (
	"testing"

	"github.com/isaackcz/Edsight-sub000/internal/models"
)

func buildTestTree(t *testing.T) *Tree {
	t.Helper()

	tree, err := NewTree(
		[]models.Region{{ID: 1, Name: "Region I"}, {ID: 2, Name: "Region II"}},
		[]models.Division{
			{ID: 10, RegionID: 1, Name: "Division A"},
			{ID: 11, RegionID: 1, Name: "Division B"},
			{ID: 20, RegionID: 2, Name: "Division C"},
		},
		[]models.District{
			{ID: 100, DivisionID: 10, Name: "District A1"},
			{ID: 101, DivisionID: 10, Name: "District A2"},
			{ID: 110, DivisionID: 11, Name: "District B1"},
		},
		[]models.Unit{
			{ID: 1000, DistrictID: 100, Name: "Unit 1"},
			{ID: 1001, DistrictID: 100, Name: "Unit 2"},
			{ID: 1010, DistrictID: 101, Name: "Unit 3"},
			{ID: 1100, DistrictID: 110, Name: "Unit 4"},
		},
	)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}
	return tree
}

func TestNewTreeRejectsOrphans(t *testing.T) {
	_, err := NewTree(
		[]models.Region{{ID: 1}},
		[]models.Division{{ID: 10, RegionID: 99}},
		nil, nil,
	)
	if err == nil {
		t.Fatal("Expected error for division with missing region")
	}
}

func TestAncestorAt(t *testing.T) {
	tree := buildTestTree(t)

	unit := NodeRef{Level: models.LevelUnit, ID: 1000}
	region, ok := tree.AncestorAt(unit, models.LevelRegion)
	if !ok {
		t.Fatal("Expected region ancestor for unit 1000")
	}
	if region.ID != 1 {
		t.Errorf("Expected region 1, got %d", region.ID)
	}

	division, ok := tree.AncestorAt(unit, models.LevelDivision)
	if !ok || division.ID != 10 {
		t.Errorf("Expected division 10, got %v (ok=%v)", division, ok)
	}

	// A node is its own ancestor at its own level.
	self, ok := tree.AncestorAt(unit, models.LevelUnit)
	if !ok || self != unit {
		t.Errorf("Expected self ancestor, got %v (ok=%v)", self, ok)
	}
}

func TestIsDescendant(t *testing.T) {
	tree := buildTestTree(t)

	tests := []struct {
		name   string
		node   NodeRef
		anchor NodeRef
		want   bool
	}{
		{"unit under own district", NodeRef{models.LevelUnit, 1000}, NodeRef{models.LevelDistrict, 100}, true},
		{"unit under own division", NodeRef{models.LevelUnit, 1000}, NodeRef{models.LevelDivision, 10}, true},
		{"unit under own region", NodeRef{models.LevelUnit, 1000}, NodeRef{models.LevelRegion, 1}, true},
		{"unit under sibling district", NodeRef{models.LevelUnit, 1000}, NodeRef{models.LevelDistrict, 101}, false},
		{"district under sibling division", NodeRef{models.LevelDistrict, 100}, NodeRef{models.LevelDivision, 11}, false},
		{"anchor equals node", NodeRef{models.LevelDivision, 10}, NodeRef{models.LevelDivision, 10}, true},
		{"ancestor is not descendant", NodeRef{models.LevelRegion, 1}, NodeRef{models.LevelDivision, 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tree.IsDescendant(tt.node, tt.anchor); got != tt.want {
				t.Errorf("IsDescendant(%v, %v) = %v, want %v", tt.node, tt.anchor, got, tt.want)
			}
		})
	}
}

func TestPathToRoot(t *testing.T) {
	tree := buildTestTree(t)

	path, ok := tree.PathToRoot(NodeRef{models.LevelUnit, 1000})
	if !ok {
		t.Fatal("Expected path for known unit")
	}
	want := []NodeRef{
		{models.LevelUnit, 1000},
		{models.LevelDistrict, 100},
		{models.LevelDivision, 10},
		{models.LevelRegion, 1},
	}
	if len(path) != len(want) {
		t.Fatalf("Path length = %d, want %d", len(path), len(want))
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("Path[%d] = %v, want %v", i, path[i], want[i])
		}
	}

	if _, ok := tree.PathToRoot(NodeRef{models.LevelUnit, 9999}); ok {
		t.Error("Expected no path for unknown unit")
	}
}

func TestUnitsUnder(t *testing.T) {
	tree := buildTestTree(t)

	units := tree.UnitsUnder(NodeRef{Level: models.LevelDivision, ID: 10})
	if len(units) != 3 {
		t.Errorf("Expected 3 units under division 10, got %d", len(units))
	}

	units = tree.UnitsUnder(NodeRef{Level: models.LevelRegion, ID: 2})
	if len(units) != 0 {
		t.Errorf("Expected 0 units under region 2, got %d", len(units))
	}

	if got := len(tree.AllUnits()); got != 4 {
		t.Errorf("Expected 4 units in tree, got %d", got)
	}
}
