package permission

import (
	"errors"
	"testing"

	"github.com/isaackcz/Edsight-sub000/internal/models"
)

func TestCapabilitiesTable(t *testing.T) {
	tests := []struct {
		level models.Level
		want  []Capability
	}{
		{models.LevelNationwide, []Capability{CapCreateAdmins, CapManageAdmins, CapSetDeadlines, CapApprove, CapViewLogs}},
		{models.LevelRegion, []Capability{CapSetDeadlines, CapApprove, CapViewLogs}},
		{models.LevelDivision, []Capability{CapCreateAdmins, CapManageAdmins, CapApprove}},
		{models.LevelDistrict, []Capability{CapApprove}},
		{models.LevelUnit, nil},
	}

	all := []Capability{CapCreateAdmins, CapManageAdmins, CapSetDeadlines, CapApprove, CapViewLogs}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			set := Capabilities(tt.level)
			if len(set) != len(tt.want) {
				t.Fatalf("Expected %d capabilities, got %d", len(tt.want), len(set))
			}
			wanted := make(map[Capability]bool)
			for _, c := range tt.want {
				wanted[c] = true
			}
			for _, c := range all {
				if set.Has(c) != wanted[c] {
					t.Errorf("Capability %s = %v, want %v", c, set.Has(c), wanted[c])
				}
			}
		})
	}
}

func TestEffectiveNarrowsOnly(t *testing.T) {
	no := false
	yes := true

	admin := &models.Admin{
		Level: models.LevelDivision,
		Overrides: models.CapabilityOverrides{
			CreateAdmins: &no,  // removes a default capability
			SetDeadlines: &yes, // must not widen beyond division defaults
		},
	}

	set := Effective(admin)
	if set.Has(CapCreateAdmins) {
		t.Error("Stored false should remove create_admins")
	}
	if set.Has(CapSetDeadlines) {
		t.Error("Stored true must not widen beyond the level default")
	}
	if !set.Has(CapApprove) || !set.Has(CapManageAdmins) {
		t.Error("Untouched defaults should remain")
	}
}

func TestMaxAssignableLevel(t *testing.T) {
	for l := models.LevelUnit; l <= models.LevelNationwide; l++ {
		if got := MaxAssignableLevel(l); got != l {
			t.Errorf("MaxAssignableLevel(%s) = %s, want %s", l, got, l)
		}
	}
}

func TestCheckAssignable(t *testing.T) {
	division := &models.Admin{Level: models.LevelDivision}

	for l := models.LevelUnit; l <= models.LevelDivision; l++ {
		if err := CheckAssignable(division, l); err != nil {
			t.Errorf("Expected level %s assignable by division admin, got %v", l, err)
		}
	}
	for l := models.LevelRegion; l <= models.LevelNationwide; l++ {
		err := CheckAssignable(division, l)
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("Expected ErrPermissionDenied assigning %s, got %v", l, err)
		}
	}
}

func TestRequire(t *testing.T) {
	district := &models.Admin{Level: models.LevelDistrict}

	if err := Require(district, CapApprove); err != nil {
		t.Errorf("District admin should approve, got %v", err)
	}
	if err := Require(district, CapCreateAdmins); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Expected ErrPermissionDenied, got %v", err)
	}
}
