package checks

import (
	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// StructureCheck surfaces the structural violations the replay flagged
// inline: redefined artists, records for unspawned artists, and done
// claims that disagree with the log. Overlaps are reported by
// OverlapCheck instead; the two partition the replay's findings.
type StructureCheck struct{}

// Name implements Check.
func (StructureCheck) Name() string { return "structure" }

// Run implements Check.
func (StructureCheck) Run(state *replay.State, _ Expectations) []model.Violation {
	var out []model.Violation
	for _, v := range state.Violations {
		if v.Kind == model.ViolationOverlapDraw {
			continue
		}
		out = append(out, v)
	}
	return out
}
