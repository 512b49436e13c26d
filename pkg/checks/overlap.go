package checks

import (
	"sort"

	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// OverlapCheck reports cells painted by more than one artist. The replay
// already deduplicated per cell and fixed ownership by log order; this
// check orders the findings by cell so neighboring conflicts sit
// together in the report.
type OverlapCheck struct{}

// Name implements Check.
func (OverlapCheck) Name() string { return "overlap" }

// Run implements Check.
func (OverlapCheck) Run(state *replay.State, _ Expectations) []model.Violation {
	var out []model.Violation
	for _, v := range state.Violations {
		if v.Kind == model.ViolationOverlapDraw {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cell.Less(out[j].Cell) })
	return out
}
