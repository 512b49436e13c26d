package checks

import (
	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// PixelsCheck verifies that every artist drew enough distinct cells:
// at least MinPixels always, and exactly PixelsPerArtist in strict mode.
// Repaints never count twice, so a starved artist cannot hide behind
// redrawing one cell.
type PixelsCheck struct{}

// Name implements Check.
func (PixelsCheck) Name() string { return "pixels" }

// Run implements Check.
func (PixelsCheck) Run(state *replay.State, exp Expectations) []model.Violation {
	var out []model.Violation
	for _, a := range state.Registry.Artists() {
		pixels := a.Pixels()
		if pixels < exp.MinPixels {
			out = append(out, model.TooFewPixels(a.ID, pixels, exp.MinPixels))
			continue
		}
		if exp.StrictPixels && exp.PixelsPerArtist > 0 && pixels != exp.PixelsPerArtist {
			out = append(out, model.PixelCountOff(a.ID, exp.PixelsPerArtist, pixels, false))
		}
	}
	return out
}
