package checks

import (
	"sort"

	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// IslandsCheck reports pixels with no neighboring pixel by the same
// artist, using 8-neighborhood adjacency. A pattern generator that
// walks the canvas never leaves stray disconnected pixels, so an island
// usually means a corrupted coordinate. Artists with a single pixel are
// exempt; one pixel has nothing to connect to.
//
// Opt-in: not every workload draws connected patterns, so the standard
// suite only includes this check when asked.
type IslandsCheck struct{}

// Name implements Check.
func (IslandsCheck) Name() string { return "islands" }

// Run implements Check.
func (IslandsCheck) Run(state *replay.State, _ Expectations) []model.Violation {
	var out []model.Violation
	for _, a := range state.Registry.Artists() {
		if len(a.Cells) < 2 {
			continue
		}

		cells := make([]model.Point, 0, len(a.Cells))
		for p := range a.Cells {
			cells = append(cells, p)
		}
		sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })

		for _, p := range cells {
			if !hasNeighbor(a.Cells, p) {
				out = append(out, model.Island(a.ID, p))
			}
		}
	}
	return out
}

func hasNeighbor(cells map[model.Point]struct{}, p model.Point) bool {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if _, ok := cells[model.Point{X: p.X + dx, Y: p.Y + dy}]; ok {
				return true
			}
		}
	}
	return false
}
