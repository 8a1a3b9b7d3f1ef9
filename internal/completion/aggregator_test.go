package completion

import (
	"math"
	"testing"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/scope"
)

type stubSource struct {
	responses map[uint][]models.ResponseRecord
}

func (s *stubSource) LatestResponses(unitID uint) ([]models.ResponseRecord, error) {
	return s.responses[unitID], nil
}

// tenUnitTree builds one region/division with two districts of five units
// each (ids 1..10).
func tenUnitTree(t *testing.T) *geo.Tree {
	t.Helper()

	units := make([]models.Unit, 0, 10)
	for i := uint(1); i <= 10; i++ {
		districtID := uint(100)
		if i > 5 {
			districtID = 101
		}
		units = append(units, models.Unit{ID: i, DistrictID: districtID})
	}

	tree, err := geo.NewTree(
		[]models.Region{{ID: 1}},
		[]models.Division{{ID: 10, RegionID: 1}},
		[]models.District{{ID: 100, DivisionID: 10}, {ID: 101, DivisionID: 10}},
		units,
	)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}
	return tree
}

func nationwideScope(t *testing.T, tree *geo.Tree) *scope.Scope {
	t.Helper()
	sc, err := scope.Resolve(&models.Admin{ID: 1, Level: models.LevelNationwide}, tree)
	if err != nil {
		t.Fatalf("Failed to resolve scope: %v", err)
	}
	return sc
}

func requiredQuestions(n int) []models.RequiredQuestion {
	qs := make([]models.RequiredQuestion, 0, n)
	for i := uint(1); i <= uint(n); i++ {
		qs = append(qs, models.RequiredQuestion{QuestionID: i})
	}
	return qs
}

func answers(unitID uint, n int) []models.ResponseRecord {
	out := make([]models.ResponseRecord, 0, n)
	for i := uint(1); i <= uint(n); i++ {
		out = append(out, models.ResponseRecord{SubmissionID: unitID, QuestionID: i, Value: "yes"})
	}
	return out
}

func TestComputeGroupCompletionScenario(t *testing.T) {
	// 10 units, 20 required questions; 6 units answer all 20, 4 answer 10.
	tree := tenUnitTree(t)
	src := &stubSource{responses: map[uint][]models.ResponseRecord{}}
	for i := uint(1); i <= 6; i++ {
		src.responses[i] = answers(i, 20)
	}
	for i := uint(7); i <= 10; i++ {
		src.responses[i] = answers(i, 10)
	}

	stats, err := Compute(nationwideScope(t, tree), requiredQuestions(20), src)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(stats) != 10 {
		t.Fatalf("Expected 10 unit stats, got %d", len(stats))
	}

	groups, err := Aggregate(stats, models.LevelNationwide)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("Expected one nationwide group, got %d", len(groups))
	}
	g := groups[0]
	if g.Answered != 160 || g.Required != 200 {
		t.Errorf("Expected 160/200, got %d/%d", g.Answered, g.Required)
	}
	if math.Abs(g.Completion-0.80) > 1e-9 {
		t.Errorf("Expected completion 0.80, got %v", g.Completion)
	}
	if DisplayPct(g.Completion) != 80.0 {
		t.Errorf("Expected display 80.0, got %v", DisplayPct(g.Completion))
	}
}

func TestComputeBounds(t *testing.T) {
	tree := tenUnitTree(t)
	src := &stubSource{responses: map[uint][]models.ResponseRecord{
		// Duplicate answers and answers outside the required set must not
		// push completion past 1.0.
		1: append(answers(1, 20), answers(1, 20)...),
		2: append(answers(2, 5), models.ResponseRecord{QuestionID: 99, Value: "extra"}),
		3: {{QuestionID: 1, Value: "   "}}, // blank values do not count
	}}

	stats, err := Compute(nationwideScope(t, tree), requiredQuestions(20), src)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for _, s := range stats {
		if s.Completion < 0 || s.Completion > 1 {
			t.Errorf("Unit %d completion %v out of bounds", s.UnitID, s.Completion)
		}
	}
	if stats[0].Answered != 20 || stats[0].Completion != 1.0 {
		t.Errorf("Unit 1 should be fully complete, got %d (%v)", stats[0].Answered, stats[0].Completion)
	}
	if stats[1].Answered != 5 {
		t.Errorf("Unit 2 should count 5 answers, got %d", stats[1].Answered)
	}
	if stats[2].Answered != 0 {
		t.Errorf("Blank values should not count, got %d", stats[2].Answered)
	}
	// Units with no submission contribute 0%, not omission.
	if stats[4].Answered != 0 || stats[4].Required != 20 {
		t.Errorf("Unit without submission should be 0/20, got %d/%d", stats[4].Answered, stats[4].Required)
	}
}

func TestComputeZeroRequired(t *testing.T) {
	tree := tenUnitTree(t)
	stats, err := Compute(nationwideScope(t, tree), nil, &stubSource{})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for _, s := range stats {
		if s.Completion != 0 {
			t.Errorf("Zero required questions should give 0 completion, got %v", s.Completion)
		}
	}
}

func TestComputeEmptyScope(t *testing.T) {
	// A division admin over an empty sibling branch: region 2 exists with
	// no descendants at all.
	tree, err := geo.NewTree(
		[]models.Region{{ID: 1}, {ID: 2}},
		[]models.Division{{ID: 10, RegionID: 1}},
		[]models.District{{ID: 100, DivisionID: 10}},
		[]models.Unit{{ID: 1, DistrictID: 100}},
	)
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}
	two := uint(2)
	sc, err := scope.Resolve(&models.Admin{ID: 5, Level: models.LevelRegion, RegionID: &two}, tree)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	stats, err := Compute(sc, requiredQuestions(3), &stubSource{})
	if err != nil {
		t.Fatalf("Empty scope must not error: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("Expected empty stats, got %d", len(stats))
	}
}

func TestAggregateAdditivity(t *testing.T) {
	tree := tenUnitTree(t)
	src := &stubSource{responses: map[uint][]models.ResponseRecord{}}
	for i := uint(1); i <= 10; i++ {
		src.responses[i] = answers(i, int(i)) // unit i answers i questions
	}

	stats, err := Compute(nationwideScope(t, tree), requiredQuestions(20), src)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	groups, err := Aggregate(stats, models.LevelDistrict)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("Expected 2 district groups, got %d", len(groups))
	}

	for _, g := range groups {
		sumAnswered, sumRequired := 0, 0
		for _, s := range stats {
			if s.DistrictID == g.GroupID {
				sumAnswered += s.Answered
				sumRequired += s.Required
			}
		}
		if g.Answered != sumAnswered || g.Required != sumRequired {
			t.Errorf("Group %d totals %d/%d do not match member sums %d/%d",
				g.GroupID, g.Answered, g.Required, sumAnswered, sumRequired)
		}
		want := float64(sumAnswered) / float64(sumRequired)
		if math.Abs(g.Completion-want) > 1e-12 {
			t.Errorf("Group %d completion %v, want %v", g.GroupID, g.Completion, want)
		}
	}
}

func TestAggregateRejectsUnitGrouping(t *testing.T) {
	if _, err := Aggregate(nil, models.LevelUnit); err == nil {
		t.Error("Grouping by unit should be rejected")
	}
}
