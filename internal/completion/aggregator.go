package completion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/scope"
)

// UnitStat is the completion result for one unit. Completion holds the
// unrounded ratio; rounding happens only at display time so repeated
// aggregation stays stable.
type UnitStat struct {
	UnitID     uint    `json:"unit_id"`
	UnitName   string  `json:"unit_name,omitempty"`
	DistrictID uint    `json:"district_id"`
	DivisionID uint    `json:"division_id"`
	RegionID   uint    `json:"region_id"`
	Answered   int     `json:"answered"`
	Required   int     `json:"required"`
	Completion float64 `json:"completion"`
}

// GroupStat is the rolled-up completion for one node at a grouping level.
type GroupStat struct {
	Level      string  `json:"level"`
	GroupID    uint    `json:"group_id"`
	Units      int     `json:"units"`
	Answered   int     `json:"answered"`
	Required   int     `json:"required"`
	Completion float64 `json:"completion"`
}

// Source reads the answers belonging to a unit's latest submission. Units
// without a submission yet return an empty slice, not an error.
type Source interface {
	LatestResponses(unitID uint) ([]models.ResponseRecord, error)
}

// Compute produces per-unit completion for every unit inside the scope. An
// empty scope yields an empty list. This component performs no writes.
func Compute(sc *scope.Scope, required []models.RequiredQuestion, src Source) ([]UnitStat, error) {
	requiredSet := make(map[models.QuestionKey]bool, len(required))
	for _, q := range required {
		requiredSet[q.Key()] = true
	}

	tree := sc.Tree()
	unitIDs := sc.UnitIDs()
	stats := make([]UnitStat, 0, len(unitIDs))

	for _, unitID := range unitIDs {
		responses, err := src.LatestResponses(unitID)
		if err != nil {
			return nil, fmt.Errorf("failed to read responses for unit %d: %w", unitID, err)
		}

		answered := make(map[models.QuestionKey]bool)
		for _, r := range responses {
			if strings.TrimSpace(r.Value) == "" {
				continue
			}
			key := models.QuestionKey{QuestionID: r.QuestionID}
			if r.SubQuestionID != nil {
				key.SubQuestionID = *r.SubQuestionID
			}
			if requiredSet[key] {
				answered[key] = true
			}
		}

		stat := UnitStat{
			UnitID:     unitID,
			Answered:   len(answered),
			Required:   len(requiredSet),
			Completion: ratio(len(answered), len(requiredSet)),
		}
		fillAncestors(&stat, tree, unitID)
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].UnitID < stats[j].UnitID })
	return stats, nil
}

// Aggregate rolls per-unit stats up to the grouping level. Group totals are
// the plain sums of the member units, so the result is exactly reproducible
// from the per-unit stats.
func Aggregate(stats []UnitStat, level models.Level) ([]GroupStat, error) {
	if level < models.LevelDistrict || level > models.LevelNationwide {
		return nil, fmt.Errorf("%w: cannot group by %s", models.ErrLevelRange, level)
	}

	groups := make(map[uint]*GroupStat)
	for _, s := range stats {
		var groupID uint
		switch level {
		case models.LevelDistrict:
			groupID = s.DistrictID
		case models.LevelDivision:
			groupID = s.DivisionID
		case models.LevelRegion:
			groupID = s.RegionID
		case models.LevelNationwide:
			groupID = 0
		}

		g, ok := groups[groupID]
		if !ok {
			g = &GroupStat{Level: level.String(), GroupID: groupID}
			groups[groupID] = g
		}
		g.Units++
		g.Answered += s.Answered
		g.Required += s.Required
	}

	out := make([]GroupStat, 0, len(groups))
	for _, g := range groups {
		g.Completion = ratio(g.Answered, g.Required)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out, nil
}

// DisplayPct converts an unrounded completion ratio into a percentage with
// one decimal place for display.
func DisplayPct(completion float64) float64 {
	return math.Round(completion*1000) / 10
}

func ratio(answered, required int) float64 {
	if required == 0 {
		return 0
	}
	return float64(answered) / float64(required)
}

func fillAncestors(stat *UnitStat, tree *geo.Tree, unitID uint) {
	if u, ok := tree.Unit(unitID); ok {
		stat.UnitName = u.Name
	}
	ref := geo.NodeRef{Level: models.LevelUnit, ID: unitID}
	if d, ok := tree.AncestorAt(ref, models.LevelDistrict); ok {
		stat.DistrictID = d.ID
	}
	if d, ok := tree.AncestorAt(ref, models.LevelDivision); ok {
		stat.DivisionID = d.ID
	}
	if r, ok := tree.AncestorAt(ref, models.LevelRegion); ok {
		stat.RegionID = r.ID
	}
}
