package scope

import (
	"errors"
	"fmt"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
)

var (
	ErrAccessDenied       = errors.New("access denied")
	ErrInconsistentAnchor = errors.New("administrator geographic anchors are inconsistent")
)

// Scope is the closed subtree of geographic nodes and administrator accounts
// an administrator may act upon. It is resolved fresh from current
// administrator state on every call; callers must not cache it across
// requests that could change assignment.
type Scope struct {
	admin  *models.Admin
	tree   *geo.Tree
	anchor geo.NodeRef
	// nationwide scopes match everything and carry no anchor
	unrestricted bool
}

// Resolve computes the scope for an administrator against the current tree.
// It validates that the admin's populated geographic foreign keys agree with
// its level and with each other before trusting them.
func Resolve(admin *models.Admin, tree *geo.Tree) (*Scope, error) {
	if admin.Level == models.LevelNationwide {
		return &Scope{admin: admin, tree: tree, unrestricted: true}, nil
	}

	anchorID, ok := admin.AnchorID()
	if !ok {
		return nil, fmt.Errorf("%w: admin %d has no %s anchor", ErrInconsistentAnchor, admin.ID, admin.Level)
	}
	anchor := geo.NodeRef{Level: admin.Level, ID: anchorID}
	if !tree.Contains(anchor) {
		return nil, fmt.Errorf("%w: admin %d anchor %s", ErrInconsistentAnchor, admin.ID, anchor)
	}

	if err := checkAncestors(admin, tree, anchor); err != nil {
		return nil, err
	}

	return &Scope{admin: admin, tree: tree, anchor: anchor}, nil
}

// checkAncestors verifies that every ancestor id stored on the admin matches
// the actual parent chain of its anchor. A division admin whose region id
// points at a different region is rejected, not silently rescoped.
func checkAncestors(admin *models.Admin, tree *geo.Tree, anchor geo.NodeRef) error {
	check := func(level models.Level, stored *uint) error {
		if stored == nil || level <= anchor.Level {
			return nil
		}
		ancestor, ok := tree.AncestorAt(anchor, level)
		if !ok || ancestor.ID != *stored {
			return fmt.Errorf("%w: admin %d stores %s %d but anchor %s belongs to %s",
				ErrInconsistentAnchor, admin.ID, level, *stored, anchor, ancestor)
		}
		return nil
	}

	if err := check(models.LevelRegion, admin.RegionID); err != nil {
		return err
	}
	if err := check(models.LevelDivision, admin.DivisionID); err != nil {
		return err
	}
	return check(models.LevelDistrict, admin.DistrictID)
}

// Admin returns the administrator the scope was resolved for.
func (s *Scope) Admin() *models.Admin { return s.admin }

// Unrestricted reports whether the scope matches every node and admin.
func (s *Scope) Unrestricted() bool { return s.unrestricted }

// Anchor returns the anchor node. ok is false for nationwide scopes.
func (s *Scope) Anchor() (geo.NodeRef, bool) {
	if s.unrestricted {
		return geo.NodeRef{}, false
	}
	return s.anchor, true
}

// CanAccessNode reports whether the node equals the admin's anchor or is a
// descendant of it.
func (s *Scope) CanAccessNode(node geo.NodeRef) bool {
	if s.unrestricted {
		return s.tree.Contains(node)
	}
	return s.tree.IsDescendant(node, s.anchor)
}

// CanAccessUnit is CanAccessNode for a unit id.
func (s *Scope) CanAccessUnit(unitID uint) bool {
	return s.CanAccessNode(geo.NodeRef{Level: models.LevelUnit, ID: unitID})
}

// CanAccessAdmin reports whether the other administrator's anchor node falls
// inside this scope. Nationwide admins are only visible to nationwide scopes.
func (s *Scope) CanAccessAdmin(other *models.Admin) bool {
	if s.unrestricted {
		return true
	}
	if other.Level == models.LevelNationwide {
		return false
	}
	anchorID, ok := other.AnchorID()
	if !ok {
		return false
	}
	return s.CanAccessNode(geo.NodeRef{Level: other.Level, ID: anchorID})
}

// CheckNode returns ErrAccessDenied when the node is out of scope. Callers
// use it to fail out-of-scope filters loudly instead of returning empty
// result sets that would mask scope-bypass bugs.
func (s *Scope) CheckNode(node geo.NodeRef) error {
	if !s.CanAccessNode(node) {
		return fmt.Errorf("%w: %s", ErrAccessDenied, node)
	}
	return nil
}

// CheckAdmin returns ErrAccessDenied when the other admin is out of scope.
func (s *Scope) CheckAdmin(other *models.Admin) error {
	if !s.CanAccessAdmin(other) {
		return fmt.Errorf("%w: admin %d", ErrAccessDenied, other.ID)
	}
	return nil
}

// UnitIDs returns every unit id inside the scope.
func (s *Scope) UnitIDs() []uint {
	if s.unrestricted {
		return s.tree.AllUnits()
	}
	return s.tree.UnitsUnder(s.anchor)
}

// Tree exposes the snapshot the scope was resolved against.
func (s *Scope) Tree() *geo.Tree { return s.tree }
