package models

import (
	"errors"
	"testing"
)

func TestLevelOrdering(t *testing.T) {
	order := []Level{LevelUnit, LevelDistrict, LevelDivision, LevelRegion, LevelNationwide}

	for i, l := range order[:len(order)-1] {
		next, err := l.Next()
		if err != nil {
			t.Fatalf("Next(%s) failed: %v", l, err)
		}
		if next != order[i+1] {
			t.Errorf("Next(%s) = %s, want %s", l, next, order[i+1])
		}
		prev, err := next.Previous()
		if err != nil {
			t.Fatalf("Previous(%s) failed: %v", next, err)
		}
		if prev != l {
			t.Errorf("Previous(%s) = %s, want %s", next, prev, l)
		}
	}
}

func TestLevelRangeErrors(t *testing.T) {
	if _, err := LevelNationwide.Next(); !errors.Is(err, ErrLevelRange) {
		t.Errorf("Next above nationwide should be a range error, got %v", err)
	}
	if _, err := LevelUnit.Previous(); !errors.Is(err, ErrLevelRange) {
		t.Errorf("Previous below unit should be a range error, got %v", err)
	}
	if _, err := Level(0).Next(); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Next on an unknown level should fail, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	for l := LevelUnit; l <= LevelNationwide; l++ {
		parsed, err := ParseLevel(l.String())
		if err != nil {
			t.Fatalf("ParseLevel(%q) failed: %v", l.String(), err)
		}
		if parsed != l {
			t.Errorf("ParseLevel(%q) = %s, want %s", l.String(), parsed, l)
		}
	}
	if _, err := ParseLevel("province"); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Expected ErrUnknownLevel, got %v", err)
	}
}

func TestStatusHelpers(t *testing.T) {
	if got := PendingStatus(LevelDistrict); got != SubmissionStatus("district_pending") {
		t.Errorf("PendingStatus(district) = %s", got)
	}
	if got := ReturnedStatus(LevelUnit); got != SubmissionStatus("unit_returned") {
		t.Errorf("ReturnedStatus(unit) = %s", got)
	}
	if !ReturnedStatus(LevelDivision).IsReturned() {
		t.Error("division_returned should report IsReturned")
	}
	if StatusDraft.IsReturned() || StatusCompleted.IsReturned() {
		t.Error("draft/completed are not returned states")
	}
}
