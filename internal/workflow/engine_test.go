package workflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/scope"
)

// stubStore keeps one submission in memory and enforces the same
// compare-and-swap contract as the SQL store.
type stubStore struct {
	sub       *models.Submission
	decisions []models.ReviewDecision
	// beforeApply, when set, runs between the engine's read and its
	// write, simulating a concurrent reviewer.
	beforeApply func()
}

func (s *stubStore) GetSubmission(id uint) (*models.Submission, error) {
	if s.sub == nil || s.sub.ID != id {
		return nil, nil
	}
	copy := *s.sub
	return &copy, nil
}

func (s *stubStore) ApplyTransition(t Transition) error {
	if s.beforeApply != nil {
		hook := s.beforeApply
		s.beforeApply = nil
		hook()
	}
	if s.sub == nil || s.sub.ID != t.SubmissionID {
		return fmt.Errorf("%w: %d", ErrSubmissionGone, t.SubmissionID)
	}
	if s.sub.Status != t.FromStatus || s.sub.CurrentLevel != t.FromLevel {
		return fmt.Errorf("%w: submission %d", ErrConflict, t.SubmissionID)
	}
	s.sub.Status = t.ToStatus
	s.sub.CurrentLevel = t.ToLevel
	if t.Decision != nil {
		s.decisions = append(s.decisions, *t.Decision)
	}
	return nil
}

func testTree(t *testing.T) *geo.Tree {
	t.Helper()
	tree, err := geo.NewTree(
		[]models.Region{{ID: 1}},
		[]models.Division{{ID: 10, RegionID: 1}},
		[]models.District{{ID: 100, DivisionID: 10}},
		[]models.Unit{{ID: 1000, DistrictID: 100}, {ID: 1001, DistrictID: 100}},
	)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}
	return tree
}

func scopeFor(t *testing.T, tree *geo.Tree, level models.Level, unitID uint) *scope.Scope {
	t.Helper()
	one := uint(1)
	ten := uint(10)
	hundred := uint(100)

	admin := &models.Admin{ID: uint(level) * 11, Level: level, Status: models.AdminActive}
	switch level {
	case models.LevelUnit:
		admin.RegionID, admin.DivisionID, admin.DistrictID, admin.UnitID = &one, &ten, &hundred, &unitID
	case models.LevelDistrict:
		admin.RegionID, admin.DivisionID, admin.DistrictID = &one, &ten, &hundred
	case models.LevelDivision:
		admin.RegionID, admin.DivisionID = &one, &ten
	case models.LevelRegion:
		admin.RegionID = &one
	}

	sc, err := scope.Resolve(admin, tree)
	if err != nil {
		t.Fatalf("Failed to resolve %s scope: %v", level, err)
	}
	return sc
}

func draftSubmission() *models.Submission {
	return &models.Submission{ID: 1, UnitID: 1000, PeriodID: 1, Status: models.StatusDraft, CurrentLevel: models.LevelUnit}
}

func TestSubmitFromDraft(t *testing.T) {
	tree := testTree(t)
	store := &stubStore{sub: draftSubmission()}
	engine := NewEngine(store)

	status, level, err := engine.Submit(1, scopeFor(t, tree, models.LevelUnit, 1000))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if status != models.PendingStatus(models.LevelDistrict) || level != models.LevelDistrict {
		t.Errorf("Expected district_pending/district, got %s/%s", status, level)
	}
	if len(store.decisions) != 0 {
		t.Errorf("Submit must not record a review decision, got %d", len(store.decisions))
	}
}

func TestSubmitByWrongUnitDenied(t *testing.T) {
	tree := testTree(t)
	store := &stubStore{sub: draftSubmission()}
	engine := NewEngine(store)

	_, _, err := engine.Submit(1, scopeFor(t, tree, models.LevelUnit, 1001))
	if !errors.Is(err, scope.ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied, got %v", err)
	}
}

func TestApproveChainReachesCompletedInFourSteps(t *testing.T) {
	tree := testTree(t)
	store := &stubStore{sub: draftSubmission()}
	engine := NewEngine(store)

	if _, _, err := engine.Submit(1, scopeFor(t, tree, models.LevelUnit, 1000)); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	reviewLevels := []models.Level{models.LevelDistrict, models.LevelDivision, models.LevelRegion, models.LevelNationwide}
	for i, level := range reviewLevels {
		status, newLevel, err := engine.Approve(1, scopeFor(t, tree, level, 0), "")
		if err != nil {
			t.Fatalf("Approve at %s failed: %v", level, err)
		}
		if i < len(reviewLevels)-1 {
			next := reviewLevels[i+1]
			if status != models.PendingStatus(next) || newLevel != next {
				t.Errorf("After %s approval expected %s_pending, got %s/%s", level, next, status, newLevel)
			}
		} else if status != models.StatusCompleted {
			t.Errorf("After nationwide approval expected completed, got %s", status)
		}
	}

	if len(store.decisions) != 4 {
		t.Fatalf("Expected 4 review decisions, got %d", len(store.decisions))
	}
	if store.decisions[0].Outcome != models.OutcomeApproved || store.decisions[0].LevelName != "district" {
		t.Errorf("First decision should be approved at district, got %+v", store.decisions[0])
	}
}

func TestApproveWrongLevelRejected(t *testing.T) {
	tree := testTree(t)
	sub := draftSubmission()
	sub.Status = models.PendingStatus(models.LevelDistrict)
	sub.CurrentLevel = models.LevelDistrict
	store := &stubStore{sub: sub}
	engine := NewEngine(store)

	_, _, err := engine.Approve(1, scopeFor(t, tree, models.LevelRegion, 0), "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for wrong-level reviewer, got %v", err)
	}
}

func TestApproveDraftRejected(t *testing.T) {
	tree := testTree(t)
	store := &stubStore{sub: draftSubmission()}
	engine := NewEngine(store)

	_, _, err := engine.Approve(1, scopeFor(t, tree, models.LevelDistrict, 0), "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition approving a draft, got %v", err)
	}
}

func TestReturnStepsOneLevelDown(t *testing.T) {
	tree := testTree(t)
	sub := draftSubmission()
	sub.Status = models.PendingStatus(models.LevelDivision)
	sub.CurrentLevel = models.LevelDivision
	store := &stubStore{sub: sub}
	engine := NewEngine(store)

	status, level, err := engine.Return(1, scopeFor(t, tree, models.LevelDivision, 0), "incomplete enrollment data")
	if err != nil {
		t.Fatalf("Return failed: %v", err)
	}
	if status != models.ReturnedStatus(models.LevelDistrict) || level != models.LevelDistrict {
		t.Errorf("Expected district_returned/district, got %s/%s", status, level)
	}
	if len(store.decisions) != 1 || store.decisions[0].Outcome != models.OutcomeReturned {
		t.Fatalf("Expected one returned decision, got %+v", store.decisions)
	}
	if store.decisions[0].Comment == nil || *store.decisions[0].Comment == "" {
		t.Error("Returned decision must carry the comment")
	}

	// Resubmission re-enters at the first review level, never higher.
	status, level, err = engine.Submit(1, scopeFor(t, tree, models.LevelUnit, 1000))
	if err != nil {
		t.Fatalf("Resubmit failed: %v", err)
	}
	if status != models.PendingStatus(models.LevelDistrict) || level != models.LevelDistrict {
		t.Errorf("Resubmit should land at district_pending, got %s/%s", status, level)
	}
}

func TestReturnRequiresComment(t *testing.T) {
	tree := testTree(t)
	sub := draftSubmission()
	sub.Status = models.PendingStatus(models.LevelDistrict)
	sub.CurrentLevel = models.LevelDistrict
	engine := NewEngine(&stubStore{sub: sub})

	_, _, err := engine.Return(1, scopeFor(t, tree, models.LevelDistrict, 0), "   ")
	if !errors.Is(err, ErrCommentRequired) {
		t.Errorf("Expected ErrCommentRequired, got %v", err)
	}
}

func TestConcurrentApprovalLosesWithConflict(t *testing.T) {
	tree := testTree(t)
	sub := draftSubmission()
	sub.Status = models.PendingStatus(models.LevelDistrict)
	sub.CurrentLevel = models.LevelDistrict
	store := &stubStore{sub: sub}
	engine := NewEngine(store)

	// A second reviewer approves between this reviewer's read and write.
	store.beforeApply = func() {
		store.sub.Status = models.PendingStatus(models.LevelDivision)
		store.sub.CurrentLevel = models.LevelDivision
		store.decisions = append(store.decisions, models.ReviewDecision{
			SubmissionID: 1, Outcome: models.OutcomeApproved, LevelName: "district",
		})
	}

	_, _, err := engine.Approve(1, scopeFor(t, tree, models.LevelDistrict, 0), "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict for lost race, got %v", err)
	}
	if len(store.decisions) != 1 {
		t.Errorf("Exactly one decision should exist after the race, got %d", len(store.decisions))
	}
	if store.sub.Status != models.PendingStatus(models.LevelDivision) {
		t.Errorf("Exactly one state advance should survive, got %s", store.sub.Status)
	}
}
