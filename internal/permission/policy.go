package permission

import (
	"errors"

	"github.com/isaackcz/Edsight-sub000/internal/models"
)

var ErrPermissionDenied = errors.New("permission denied")

// Capability is one of the fixed administrator capability flags.
type Capability string

const (
	CapCreateAdmins Capability = "create_admins"
	CapManageAdmins Capability = "manage_admins"
	CapSetDeadlines Capability = "set_deadlines"
	CapApprove      Capability = "approve_submissions"
	CapViewLogs     Capability = "view_system_logs"
)

// Set is a capability flag set.
type Set map[Capability]bool

// Has reports whether the capability is present.
func (s Set) Has(c Capability) bool {
	return s[c]
}

// levelDefaults is the authoritative level-to-capability table. Stored
// per-admin flags may only narrow these defaults, never widen them.
var levelDefaults = map[models.Level][]Capability{
	models.LevelNationwide: {CapCreateAdmins, CapManageAdmins, CapSetDeadlines, CapApprove, CapViewLogs},
	models.LevelRegion:     {CapSetDeadlines, CapApprove, CapViewLogs},
	models.LevelDivision:   {CapCreateAdmins, CapManageAdmins, CapApprove},
	models.LevelDistrict:   {CapApprove},
	models.LevelUnit:       {},
}

// Capabilities returns the immutable default capability set for a level.
func Capabilities(level models.Level) Set {
	set := make(Set)
	for _, c := range levelDefaults[level] {
		set[c] = true
	}
	return set
}

// Effective intersects the level defaults with the admin's stored overrides.
// A stored false removes the capability; a stored true outside the level
// default has no effect.
func Effective(admin *models.Admin) Set {
	set := Capabilities(admin.Level)
	narrow := func(c Capability, override *bool) {
		if override != nil && !*override {
			delete(set, c)
		}
	}
	narrow(CapCreateAdmins, admin.Overrides.CreateAdmins)
	narrow(CapManageAdmins, admin.Overrides.ManageAdmins)
	narrow(CapSetDeadlines, admin.Overrides.SetDeadlines)
	narrow(CapApprove, admin.Overrides.Approve)
	narrow(CapViewLogs, admin.Overrides.ViewLogs)
	return set
}

// MaxAssignableLevel returns the highest level an administrator at the given
// level may create or assign other administrators to.
func MaxAssignableLevel(level models.Level) models.Level {
	return level
}

// CheckAssignable verifies the caller may assign the target level. Assigning
// above the caller's own level fails regardless of any flag override.
func CheckAssignable(caller *models.Admin, target models.Level) error {
	if target > MaxAssignableLevel(caller.Level) {
		return ErrPermissionDenied
	}
	return nil
}

// Require verifies the admin's effective capability set contains c.
func Require(admin *models.Admin, c Capability) error {
	if !Effective(admin).Has(c) {
		return ErrPermissionDenied
	}
	return nil
}
