package scenario

import (
	"fmt"

	"github.com/dd0wney/cluso-pathview/pkg/dataset"
)

// DeriveHighlight picks the path a finished scenario should emphasise.
//
// Offensive scenarios show the top path of the re-run analysis (after).
// Defensive scenarios show the top path of before that survived the
// simulation, together with the removed edges; if nothing survived only the
// removed edges are shown. nil means no highlight.
func DeriveHighlight(id string, ms []Mutation, before, after *dataset.AnalysisResult, sim *dataset.SimulateResult) *dataset.ScenarioHighlight {
	if IsOffensive(ms) {
		if after == nil || len(after.Paths) == 0 {
			return nil
		}
		top := after.Paths[0]
		return &dataset.ScenarioHighlight{
			ScenarioID:     id,
			EdgeIDs:        top.EdgeIDs(),
			NodeNames:      append([]string(nil), top.Nodes...),
			RemovedEdgeIDs: []string{},
		}
	}

	removed := RemovedEdgeIDs(ms)
	if removed == nil {
		removed = []string{}
	}

	if before != nil && sim != nil {
		surviving := make(map[string]bool, len(sim.After.PathIDs))
		for _, pid := range sim.After.PathIDs {
			surviving[pid] = true
		}
		for _, p := range before.Paths {
			if !surviving[p.PathID] {
				continue
			}
			return &dataset.ScenarioHighlight{
				ScenarioID:     id,
				EdgeIDs:        p.EdgeIDs(),
				NodeNames:      append([]string(nil), p.Nodes...),
				RemovedEdgeIDs: removed,
			}
		}
	}

	if len(removed) > 0 {
		return &dataset.ScenarioHighlight{
			ScenarioID:     id,
			EdgeIDs:        []string{},
			NodeNames:      []string{},
			RemovedEdgeIDs: removed,
		}
	}
	return nil
}

// Badge is a severity label for a scenario's risk change
type Badge struct {
	Label string `json:"label"`
	Level string `json:"level"`
}

// ImpactBadge grades a risk-change percentage. Offensive scenarios are graded
// as risk, defensive ones as remediation impact.
func ImpactBadge(pct float64, offensive bool) Badge {
	if pct < 0 {
		pct = -pct
	}
	if offensive {
		switch {
		case pct >= 20:
			return Badge{Label: "HIGH RISK", Level: "high"}
		case pct >= 8:
			return Badge{Label: "MEDIUM RISK", Level: "medium"}
		}
		return Badge{Label: "LOW RISK", Level: "low"}
	}
	switch {
	case pct >= 50:
		return Badge{Label: "HIGH IMPACT", Level: "high"}
	case pct >= 20:
		return Badge{Label: "MEDIUM IMPACT", Level: "medium"}
	}
	return Badge{Label: "LOW IMPACT", Level: "low"}
}

// DeltaLabel formats after-before as a signed change, or "—" when unchanged
func DeltaLabel(before, after int) string {
	diff := after - before
	switch {
	case diff == 0:
		return "—"
	case diff > 0:
		return fmt.Sprintf("+%d", diff)
	}
	return fmt.Sprintf("%d", diff)
}

// Trend classifies a change for colouring: fewer paths or less risk is better
func Trend(before, after float64) string {
	switch {
	case after > before:
		return "worse"
	case after < before:
		return "better"
	}
	return "same"
}
