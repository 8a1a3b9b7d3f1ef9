package geo

import (
	"errors"
	"fmt"

	"github.com/isaackcz/Edsight-sub000/internal/models"
)

var ErrNodeNotFound = errors.New("geographic node not found")

// NodeRef identifies one node of the hierarchy by level and id.
type NodeRef struct {
	Level models.Level `json:"level"`
	ID    uint         `json:"id"`
}

func (n NodeRef) String() string {
	return fmt.Sprintf("%s/%d", n.Level, n.ID)
}

// Tree is an immutable-per-request snapshot of the geographic hierarchy with
// parent pointers at each level. The nationwide root is implicit.
type Tree struct {
	regions   map[uint]models.Region
	divisions map[uint]models.Division
	districts map[uint]models.District
	units     map[uint]models.Unit

	divisionsByRegion  map[uint][]uint
	districtsByDivision map[uint][]uint
	unitsByDistrict    map[uint][]uint
}

// NewTree builds a tree from node slices. Children referencing a missing
// parent are rejected so a broken parent chain cannot be resolved silently.
func NewTree(regions []models.Region, divisions []models.Division, districts []models.District, units []models.Unit) (*Tree, error) {
	t := &Tree{
		regions:            make(map[uint]models.Region, len(regions)),
		divisions:          make(map[uint]models.Division, len(divisions)),
		districts:          make(map[uint]models.District, len(districts)),
		units:              make(map[uint]models.Unit, len(units)),
		divisionsByRegion:  make(map[uint][]uint),
		districtsByDivision: make(map[uint][]uint),
		unitsByDistrict:    make(map[uint][]uint),
	}

	for _, r := range regions {
		t.regions[r.ID] = r
	}
	for _, d := range divisions {
		if _, ok := t.regions[d.RegionID]; !ok {
			return nil, fmt.Errorf("division %d: %w: region %d", d.ID, ErrNodeNotFound, d.RegionID)
		}
		t.divisions[d.ID] = d
		t.divisionsByRegion[d.RegionID] = append(t.divisionsByRegion[d.RegionID], d.ID)
	}
	for _, d := range districts {
		if _, ok := t.divisions[d.DivisionID]; !ok {
			return nil, fmt.Errorf("district %d: %w: division %d", d.ID, ErrNodeNotFound, d.DivisionID)
		}
		t.districts[d.ID] = d
		t.districtsByDivision[d.DivisionID] = append(t.districtsByDivision[d.DivisionID], d.ID)
	}
	for _, u := range units {
		if _, ok := t.districts[u.DistrictID]; !ok {
			return nil, fmt.Errorf("unit %d: %w: district %d", u.ID, ErrNodeNotFound, u.DistrictID)
		}
		t.units[u.ID] = u
		t.unitsByDistrict[u.DistrictID] = append(t.unitsByDistrict[u.DistrictID], u.ID)
	}

	return t, nil
}

// Contains reports whether the referenced node exists in the tree.
func (t *Tree) Contains(ref NodeRef) bool {
	switch ref.Level {
	case models.LevelRegion:
		_, ok := t.regions[ref.ID]
		return ok
	case models.LevelDivision:
		_, ok := t.divisions[ref.ID]
		return ok
	case models.LevelDistrict:
		_, ok := t.districts[ref.ID]
		return ok
	case models.LevelUnit:
		_, ok := t.units[ref.ID]
		return ok
	}
	return false
}

// Parent returns the parent reference of a node. Regions have no parent
// inside the tree; ok is false.
func (t *Tree) Parent(ref NodeRef) (NodeRef, bool) {
	switch ref.Level {
	case models.LevelDivision:
		if d, ok := t.divisions[ref.ID]; ok {
			return NodeRef{Level: models.LevelRegion, ID: d.RegionID}, true
		}
	case models.LevelDistrict:
		if d, ok := t.districts[ref.ID]; ok {
			return NodeRef{Level: models.LevelDivision, ID: d.DivisionID}, true
		}
	case models.LevelUnit:
		if u, ok := t.units[ref.ID]; ok {
			return NodeRef{Level: models.LevelDistrict, ID: u.DistrictID}, true
		}
	}
	return NodeRef{}, false
}

// AncestorAt walks the parent chain of ref up to the given level. The chain
// is acyclic by construction and terminates at a region.
func (t *Tree) AncestorAt(ref NodeRef, level models.Level) (NodeRef, bool) {
	if level < ref.Level || level > models.LevelRegion {
		return NodeRef{}, false
	}
	cur := ref
	for cur.Level < level {
		parent, ok := t.Parent(cur)
		if !ok {
			return NodeRef{}, false
		}
		cur = parent
	}
	return cur, true
}

// PathToRoot returns ref followed by its ancestors, ending at the region.
func (t *Tree) PathToRoot(ref NodeRef) ([]NodeRef, bool) {
	if !t.Contains(ref) {
		return nil, false
	}
	path := []NodeRef{ref}
	cur := ref
	for {
		parent, ok := t.Parent(cur)
		if !ok {
			break
		}
		path = append(path, parent)
		cur = parent
	}
	return path, true
}

// IsDescendant reports whether node is anchor itself or sits anywhere in the
// subtree under anchor.
func (t *Tree) IsDescendant(node, anchor NodeRef) bool {
	if node.Level > anchor.Level {
		return false
	}
	up, ok := t.AncestorAt(node, anchor.Level)
	return ok && up == anchor
}

// UnitsUnder returns the ids of every unit in the subtree rooted at ref.
func (t *Tree) UnitsUnder(ref NodeRef) []uint {
	switch ref.Level {
	case models.LevelUnit:
		if _, ok := t.units[ref.ID]; ok {
			return []uint{ref.ID}
		}
		return nil
	case models.LevelDistrict:
		out := make([]uint, 0, len(t.unitsByDistrict[ref.ID]))
		return append(out, t.unitsByDistrict[ref.ID]...)
	case models.LevelDivision:
		var out []uint
		for _, districtID := range t.districtsByDivision[ref.ID] {
			out = append(out, t.unitsByDistrict[districtID]...)
		}
		return out
	case models.LevelRegion:
		var out []uint
		for _, divisionID := range t.divisionsByRegion[ref.ID] {
			for _, districtID := range t.districtsByDivision[divisionID] {
				out = append(out, t.unitsByDistrict[districtID]...)
			}
		}
		return out
	}
	return nil
}

// AllUnits returns the ids of every unit in the tree.
func (t *Tree) AllUnits() []uint {
	out := make([]uint, 0, len(t.units))
	for id := range t.units {
		out = append(out, id)
	}
	return out
}

// Unit returns the unit node by id.
func (t *Tree) Unit(id uint) (models.Unit, bool) {
	u, ok := t.units[id]
	return u, ok
}
