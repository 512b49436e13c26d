package checks

import (
	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// ArtistCountCheck verifies the artist populations: exactly the expected
// number of main artists and rookies, and, when a roster is known, that
// every roster id actually appears. Rogue records (ids that were never
// spawned) do not count toward any population.
type ArtistCountCheck struct{}

// Name implements Check.
func (ArtistCountCheck) Name() string { return "artist-count" }

// Run implements Check.
func (ArtistCountCheck) Run(state *replay.State, exp Expectations) []model.Violation {
	var mains, rookies int64
	for _, a := range state.Registry.Artists() {
		if !a.Registered {
			continue
		}
		class := a.Class
		if exp.ClassOf != nil {
			class = exp.ClassOf(a.ID)
		}
		switch class {
		case model.ClassMain:
			mains++
		case model.ClassRookie:
			rookies++
		}
	}

	var out []model.Violation
	if mains != exp.MainArtists {
		out = append(out, model.CountMismatch(model.ClassMain, exp.MainArtists, mains))
	}
	if rookies != exp.RookieArtists {
		out = append(out, model.CountMismatch(model.ClassRookie, exp.RookieArtists, rookies))
	}

	for _, id := range exp.Roster {
		a, ok := state.Registry.Lookup(id)
		if !ok || !a.Registered {
			out = append(out, model.RosterGap(id))
		}
	}
	return out
}
