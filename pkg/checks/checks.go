// Package checks implements the behavioral validators that run over a
// finished replay.
//
// Every check in a suite always runs; a failing check never
// short-circuits the ones after it, so a single report carries the
// complete picture. Checks read the replayed state and never mutate it.
package checks

import (
	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/replay"
)

// Expectations carries the workload parameters the validators compare
// the log against.
type Expectations struct {
	// MainArtists and RookieArtists are the exact expected population
	// sizes.
	MainArtists   int64
	RookieArtists int64

	// ClassOf overrides the spawn-declared class for counting, used by
	// the id-threshold classing scheme. Nil counts by declared class.
	ClassOf func(id int64) model.ArtistClass

	// Roster, when non-empty, is the full set of artist ids that must
	// appear in the log, ascending.
	Roster []int64

	// MinPixels is the minimum number of distinct cells every artist
	// must draw.
	MinPixels int64

	// StrictPixels additionally requires exactly PixelsPerArtist
	// distinct cells per artist.
	StrictPixels    bool
	PixelsPerArtist int64

	// HasSeeds reports whether the dialect carries seed tokens; without
	// them the seed check is skipped rather than vacuously passed.
	HasSeeds bool
}

// Check inspects a replayed state and reports what it finds.
type Check interface {
	// Name returns the stable check name used in reports.
	Name() string

	// Run returns every violation the check finds, deterministically
	// ordered.
	Run(state *replay.State, exp Expectations) []model.Violation
}

// skippable is implemented by checks that may not apply to a run at
// all, as opposed to passing on it.
type skippable interface {
	applies(exp Expectations) bool
}

// Result is the outcome of one check.
type Result struct {
	Name       string
	Skipped    bool
	Violations []model.Violation
}

// Failed reports whether the check found anything.
func (r Result) Failed() bool {
	return len(r.Violations) > 0
}

// Suite is an ordered list of checks run as a unit.
type Suite struct {
	checks []Check
}

// NewSuite builds a suite from the given checks, preserving order.
func NewSuite(checks ...Check) *Suite {
	return &Suite{checks: checks}
}

// StandardSuite returns the default suite in report order. The island
// check is opt-in; everything else always ships.
func StandardSuite(withIslands bool) *Suite {
	checks := []Check{
		StructureCheck{},
		ColorsCheck{},
		OverlapCheck{},
		ArtistCountCheck{},
		PixelsCheck{},
		SeedsCheck{},
		PatternsCheck{},
	}
	if withIslands {
		checks = append(checks, IslandsCheck{})
	}
	return NewSuite(checks...)
}

// Run executes every check in order and returns one result per check.
// Inapplicable checks are reported as skipped, not passed.
func (s *Suite) Run(state *replay.State, exp Expectations) []Result {
	results := make([]Result, 0, len(s.checks))
	for _, c := range s.checks {
		r := Result{Name: c.Name()}
		if sk, ok := c.(skippable); ok && !sk.applies(exp) {
			r.Skipped = true
		} else {
			r.Violations = c.Run(state, exp)
		}
		results = append(results, r)
	}
	return results
}
