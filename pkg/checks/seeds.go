package checks

import (
	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// SeedsCheck verifies that no two artists declared the same pattern
// seed. Two artists sharing a seed means their generators produce the
// same pixel sequence, which defeats the point of per-artist patterns.
// Skipped entirely for dialects without seed tokens.
type SeedsCheck struct{}

// Name implements Check.
func (SeedsCheck) Name() string { return "seeds" }

func (SeedsCheck) applies(exp Expectations) bool { return exp.HasSeeds }

// Run implements Check.
func (SeedsCheck) Run(state *replay.State, _ Expectations) []model.Violation {
	owner := make(map[string]int64)
	var out []model.Violation

	for _, a := range state.Registry.Artists() {
		if !a.Registered || a.Seed == "" {
			continue
		}
		prev, taken := owner[a.Seed]
		if !taken {
			owner[a.Seed] = a.ID
			continue
		}
		out = append(out, model.SharedSeed(a.Seed, prev, a.ID))
	}
	return out
}
