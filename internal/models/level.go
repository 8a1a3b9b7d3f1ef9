package models

import (
	"errors"
	"fmt"
)

// Level identifies a tier of the geographic hierarchy. Levels are ordered
// from the unit (lowest) up to the nationwide office (highest), so "next"
// and "previous" are a single increment or decrement with range checks.
type Level int

const (
	LevelUnit Level = iota + 1
	LevelDistrict
	LevelDivision
	LevelRegion
	LevelNationwide
)

var (
	ErrUnknownLevel = errors.New("unknown level")
	ErrLevelRange   = errors.New("level out of range")
)

var levelNames = map[Level]string{
	LevelUnit:       "unit",
	LevelDistrict:   "district",
	LevelDivision:   "division",
	LevelRegion:     "region",
	LevelNationwide: "nationwide",
}

// ParseLevel converts a stored level name into a Level.
func ParseLevel(name string) (Level, error) {
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

// String returns the canonical level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// Next returns the level one step toward the nationwide office.
// Requesting the level above nationwide is an input error.
func (l Level) Next() (Level, error) {
	if !l.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	if l == LevelNationwide {
		return 0, fmt.Errorf("%w: no level above %s", ErrLevelRange, l)
	}
	return l + 1, nil
}

// Previous returns the level one step toward the unit.
// Requesting the level below unit is an input error.
func (l Level) Previous() (Level, error) {
	if !l.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	if l == LevelUnit {
		return 0, fmt.Errorf("%w: no level below %s", ErrLevelRange, l)
	}
	return l - 1, nil
}

// SubmissionStatus is the lifecycle state of a submission.
type SubmissionStatus string

const (
	StatusDraft     SubmissionStatus = "draft"
	StatusCompleted SubmissionStatus = "completed"
)

// PendingStatus returns the "awaiting review" status for a review level.
func PendingStatus(l Level) SubmissionStatus {
	return SubmissionStatus(l.String() + "_pending")
}

// ReturnedStatus returns the "sent back" status for the level a submission
// lands on after a return.
func ReturnedStatus(l Level) SubmissionStatus {
	return SubmissionStatus(l.String() + "_returned")
}

// IsReturned reports whether the status is any of the per-level returned states.
func (s SubmissionStatus) IsReturned() bool {
	for l := LevelUnit; l <= LevelRegion; l++ {
		if s == ReturnedStatus(l) {
			return true
		}
	}
	return false
}
