package checks

import (
	"sort"

	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// ColorsCheck verifies that no color is used by more than one artist.
// The first artist seen with a color in ascending id order owns it;
// every later artist using it is flagged. An artist that drew with
// several colors contends with all of them.
type ColorsCheck struct{}

// Name implements Check.
func (ColorsCheck) Name() string { return "colors" }

// Run implements Check.
func (ColorsCheck) Run(state *replay.State, _ Expectations) []model.Violation {
	owner := make(map[model.Color]int64)
	var out []model.Violation

	for _, a := range state.Registry.Artists() {
		for _, c := range sortedColors(a.Colors) {
			prev, taken := owner[c]
			if !taken {
				owner[c] = a.ID
				continue
			}
			if prev != a.ID {
				out = append(out, model.SharedColor(c, prev, a.ID))
			}
		}
	}
	return out
}

func sortedColors(set map[model.Color]struct{}) []model.Color {
	out := make([]model.Color, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.R != b.R {
			return a.R < b.R
		}
		if a.G != b.G {
			return a.G < b.G
		}
		return a.B < b.B
	})
	return out
}
