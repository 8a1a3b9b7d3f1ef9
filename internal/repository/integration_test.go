package repository_test

import (
	"errors"
	"testing"

	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/internal/testutil"
	"github.com/isaackcz/Edsight-sub000/internal/workflow"
)

// TestCreateDraftRoundTrip verifies that the level name written by Create is
// the representation the schema stores, so a reloaded row parses back to the
// same workflow level instead of failing on a numeric rendering.
func TestCreateDraftRoundTrip(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSubmissionRepository(containers.DB)

	draft := &models.Submission{
		UnitID:       fixtures.UnitA.ID,
		PeriodID:     fixtures.Period.ID,
		Status:       models.StatusDraft,
		CurrentLevel: models.LevelUnit,
	}
	if err := repo.Create(draft); err != nil {
		t.Fatalf("Failed to create draft: %v", err)
	}

	got, err := repo.GetSubmission(draft.ID)
	if err != nil {
		t.Fatalf("Failed to reload draft: %v", err)
	}
	if got.LevelName != models.LevelUnit.String() {
		t.Errorf("Expected stored level %q, got %q", models.LevelUnit.String(), got.LevelName)
	}
	if got.CurrentLevel != models.LevelUnit {
		t.Errorf("Expected parsed level %v, got %v", models.LevelUnit, got.CurrentLevel)
	}
	if got.Status != models.StatusDraft {
		t.Errorf("Expected status %s, got %s", models.StatusDraft, got.Status)
	}
}

// TestTransitionGuard verifies that a transition only commits when the
// stored status/level pair still matches, so two reviewers racing on the
// same submission cannot both win.
func TestTransitionGuard(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSubmissionRepository(containers.DB)

	sub := fixtures.CreateSubmission(t, fixtures.UnitA.ID, models.StatusDraft, models.LevelUnit)

	submit := workflow.Transition{
		SubmissionID:   sub.ID,
		FromStatus:     models.StatusDraft,
		FromLevel:      models.LevelUnit,
		ToStatus:       models.PendingStatus(models.LevelDistrict),
		ToLevel:        models.LevelDistrict,
		SetSubmittedAt: true,
	}

	if err := repo.ApplyTransition(submit); err != nil {
		t.Fatalf("First transition failed: %v", err)
	}

	// Same guard again: the row has moved on, so this must conflict.
	err := repo.ApplyTransition(submit)
	if !errors.Is(err, workflow.ErrConflict) {
		t.Errorf("Expected ErrConflict on stale guard, got %v", err)
	}

	got, err := repo.GetSubmission(sub.ID)
	if err != nil {
		t.Fatalf("Failed to reload submission: %v", err)
	}
	if got.Status != models.PendingStatus(models.LevelDistrict) {
		t.Errorf("Expected status %s, got %s", models.PendingStatus(models.LevelDistrict), got.Status)
	}
	if got.CurrentLevel != models.LevelDistrict {
		t.Errorf("Expected current level %v, got %v", models.LevelDistrict, got.CurrentLevel)
	}
	if got.SubmittedAt == nil {
		t.Error("Expected submitted_at to be set")
	}
}

// TestTransitionDecisionTrail verifies that decisions land in the same
// transaction as the status change and come back in order.
func TestTransitionDecisionTrail(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSubmissionRepository(containers.DB)

	sub := fixtures.CreateSubmission(t, fixtures.UnitA.ID,
		models.PendingStatus(models.LevelDistrict), models.LevelDistrict)

	approve := workflow.Transition{
		SubmissionID:  sub.ID,
		FromStatus:    models.PendingStatus(models.LevelDistrict),
		FromLevel:     models.LevelDistrict,
		ToStatus:      models.PendingStatus(models.LevelDivision),
		ToLevel:       models.LevelDivision,
		SetReviewedAt: true,
		Decision: &models.ReviewDecision{
			SubmissionID: sub.ID,
			ReviewerID:   fixtures.DistrictAdmin.ID,
			LevelName:    models.LevelDistrict.String(),
			Outcome:      models.OutcomeApproved,
		},
	}
	if err := repo.ApplyTransition(approve); err != nil {
		t.Fatalf("Approve transition failed: %v", err)
	}

	comment := "missing enrollment figures"
	ret := workflow.Transition{
		SubmissionID:  sub.ID,
		FromStatus:    models.PendingStatus(models.LevelDivision),
		FromLevel:     models.LevelDivision,
		ToStatus:      models.ReturnedStatus(models.LevelDistrict),
		ToLevel:       models.LevelDistrict,
		SetReviewedAt: true,
		Decision: &models.ReviewDecision{
			SubmissionID: sub.ID,
			ReviewerID:   fixtures.DivisionAdmin.ID,
			LevelName:    models.LevelDivision.String(),
			Outcome:      models.OutcomeReturned,
			Comment:      &comment,
		},
	}
	if err := repo.ApplyTransition(ret); err != nil {
		t.Fatalf("Return transition failed: %v", err)
	}

	decisions, err := repo.ListDecisions(sub.ID)
	if err != nil {
		t.Fatalf("Failed to list decisions: %v", err)
	}
	if len(decisions) != 2 {
		t.Fatalf("Expected 2 decisions, got %d", len(decisions))
	}
	if decisions[0].Outcome != models.OutcomeApproved {
		t.Errorf("Expected first decision approved, got %s", decisions[0].Outcome)
	}
	if decisions[1].Outcome != models.OutcomeReturned {
		t.Errorf("Expected second decision returned, got %s", decisions[1].Outcome)
	}
	if decisions[1].LevelName != models.LevelDivision.String() {
		t.Errorf("Expected return decided at division, got %q", decisions[1].LevelName)
	}
	if decisions[1].Comment == nil || *decisions[1].Comment != comment {
		t.Errorf("Unexpected return comment: %v", decisions[1].Comment)
	}
}

// TestResponseUpsert verifies that saving the same answer twice updates in
// place and that a question and its sub-questions do not collide.
func TestResponseUpsert(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewResponseRepository(containers.DB)

	sub := fixtures.CreateSubmission(t, fixtures.UnitA.ID, models.StatusDraft, models.LevelUnit)

	first := &models.ResponseRecord{SubmissionID: sub.ID, QuestionID: 7, Value: "120"}
	if err := repo.Upsert(first); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	second := &models.ResponseRecord{SubmissionID: sub.ID, QuestionID: 7, Value: "125"}
	if err := repo.Upsert(second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected upsert to reuse row %d, got %d", first.ID, second.ID)
	}

	subQ := uint(2)
	third := &models.ResponseRecord{SubmissionID: sub.ID, QuestionID: 7, SubQuestionID: &subQ, Value: "40"}
	if err := repo.Upsert(third); err != nil {
		t.Fatalf("Sub-question upsert failed: %v", err)
	}
	if third.ID == first.ID {
		t.Error("Sub-question answer must not collide with the plain answer")
	}

	responses, err := repo.ListBySubmission(sub.ID)
	if err != nil {
		t.Fatalf("Failed to list responses: %v", err)
	}
	if len(responses) != 2 {
		t.Errorf("Expected 2 responses, got %d", len(responses))
	}
}

// TestRequiredQuestionNullKey verifies that a question without sub-questions
// cannot be registered as required twice; NULL collapses to a fixed key.
func TestRequiredQuestionNullKey(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	insert := "INSERT INTO required_questions (question_id, sub_question_id) VALUES ($1, $2)"
	if _, err := containers.DB.Exec(insert, 7, nil); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if _, err := containers.DB.Exec(insert, 7, nil); err == nil {
		t.Error("Duplicate (question, NULL) row must be rejected")
	}
	if _, err := containers.DB.Exec(insert, 7, 1); err != nil {
		t.Errorf("Sub-question row must not collide with the plain row: %v", err)
	}
}

// TestListForUnitsScoping verifies the unit filter the scope layer relies on.
func TestListForUnitsScoping(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewSubmissionRepository(containers.DB)

	fixtures.CreateSubmission(t, fixtures.UnitA.ID, models.StatusDraft, models.LevelUnit)
	fixtures.CreateSubmission(t, fixtures.UnitB.ID, models.StatusDraft, models.LevelUnit)

	subs, err := repo.ListForUnits([]uint{fixtures.UnitA.ID}, nil, nil)
	if err != nil {
		t.Fatalf("Failed to list submissions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("Expected 1 submission inside scope, got %d", len(subs))
	}
	if subs[0].UnitID != fixtures.UnitA.ID {
		t.Errorf("Expected submission for unit %d, got %d", fixtures.UnitA.ID, subs[0].UnitID)
	}
}
