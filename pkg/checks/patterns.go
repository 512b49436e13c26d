package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// PatternsCheck finds artists whose drawn shapes are identical up to
// translation. Two artists with the same shape almost certainly share a
// random generator even when their seeds claim otherwise, so this check
// catches what the seed comparison cannot. Shapes are compared by
// normalizing each artist's cell set against its maximum cell in (x, y)
// order; the y tie-break keeps the anchor unique and the comparison
// reproducible.
//
// Single-cell shapes carry no pattern information and are not compared;
// competing draws inside a shared pattern can still hide a duplicate,
// so a clean result here is evidence, not proof.
type PatternsCheck struct{}

// Name implements Check.
func (PatternsCheck) Name() string { return "patterns" }

// Run implements Check.
func (PatternsCheck) Run(state *replay.State, _ Expectations) []model.Violation {
	groups := make(map[string][]int64)
	var order []string

	for _, a := range state.Registry.Artists() {
		if len(a.Cells) < 2 {
			continue
		}
		sig := patternSignature(a.Cells)
		if _, seen := groups[sig]; !seen {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], a.ID)
	}

	var out []model.Violation
	for _, sig := range order {
		ids := groups[sig]
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				out = append(out, model.SamePattern(ids[i], ids[j]))
			}
		}
	}
	return out
}

// patternSignature serializes a cell set relative to its maximum cell.
// Translation preserves the (x, y) order of cells, so sorting first and
// translating after yields a canonical string per shape.
func patternSignature(cells map[model.Point]struct{}) string {
	pts := make([]model.Point, 0, len(cells))
	for p := range cells {
		pts = append(pts, p)
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Less(pts[j]) })

	anchor := pts[len(pts)-1]
	var b strings.Builder
	for _, p := range pts {
		fmt.Fprintf(&b, "%d,%d;", p.X-anchor.X, p.Y-anchor.Y)
	}
	return b.String()
}
