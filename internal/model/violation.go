package model

import (
	"fmt"
	"sort"
)

// ViolationKind classifies one behavioral correctness failure.
type ViolationKind uint8

const (
	ViolationNone ViolationKind = iota
	ViolationArtistRedefined
	ViolationUnknownArtist
	ViolationOverlapDraw
	ViolationDuplicateColor
	ViolationArtistCount
	ViolationMissingArtist
	ViolationNoPixels
	ViolationPixelCount
	ViolationDuplicateSeed
	ViolationDuplicatePattern
	ViolationIslandPixel
)

// String returns the kind name used in reports.
func (k ViolationKind) String() string {
	switch k {
	case ViolationArtistRedefined:
		return "artist_redefined"
	case ViolationUnknownArtist:
		return "unknown_artist"
	case ViolationOverlapDraw:
		return "overlap_draw"
	case ViolationDuplicateColor:
		return "duplicate_color"
	case ViolationArtistCount:
		return "artist_count_mismatch"
	case ViolationMissingArtist:
		return "missing_artist"
	case ViolationNoPixels:
		return "no_pixels_drawn"
	case ViolationPixelCount:
		return "pixel_count_mismatch"
	case ViolationDuplicateSeed:
		return "duplicate_seed"
	case ViolationDuplicatePattern:
		return "duplicate_pattern"
	case ViolationIslandPixel:
		return "island_pixel"
	default:
		return "none"
	}
}

// Violation records one behavioral correctness failure found in a log.
// Everything a renderer needs is carried inline so that reports for the
// same log are byte-identical run to run.
type Violation struct {
	Kind ViolationKind

	// Artists lists the ids involved. Most kinds keep it ascending; for
	// overlaps the cell owner comes first, the intruder second.
	Artists []int64

	// Cell is the canvas position for overlap and island kinds.
	Cell Point

	// Color is set for duplicate color violations.
	Color Color

	// Seed is set for duplicate seed violations.
	Seed string

	// Class is the population a count violation applies to, or
	// ClassUnknown when the count covers all artists.
	Class ArtistClass

	// Expected and Actual carry the two sides of a count mismatch.
	Expected int64
	Actual   int64

	// Line is the source line that triggered the violation, when one
	// line is attributable.
	Line int

	// Message is the human-readable description.
	Message string
}

// RedefinedArtist reports a second spawn record for an id that already
// exists with a different color or seed. The first spawn stays in force.
func RedefinedArtist(artist int64, line int) Violation {
	return Violation{
		Kind:    ViolationArtistRedefined,
		Artists: []int64{artist},
		Line:    line,
		Message: fmt.Sprintf("artist %d spawned again on line %d with a different color or seed", artist, line),
	}
}

// UnknownArtistRecord reports a draw or done record for an id that was
// never spawned.
func UnknownArtistRecord(artist int64, kind EventKind, line int) Violation {
	return Violation{
		Kind:    ViolationUnknownArtist,
		Artists: []int64{artist},
		Line:    line,
		Message: fmt.Sprintf("artist %d logged a %s record on line %d without being spawned", artist, kind, line),
	}
}

// Overlap reports an intruder painting a cell the owner painted first.
func Overlap(cell Point, owner, intruder int64, line int) Violation {
	return Violation{
		Kind:    ViolationOverlapDraw,
		Artists: []int64{owner, intruder},
		Cell:    cell,
		Line:    line,
		Message: fmt.Sprintf("artist %d painted over artist %d at %s", intruder, owner, cell),
	}
}

// SharedColor reports a color used by more than one artist. The owner is
// the artist the validator charged with the color first; other is the
// one flagged for reusing it.
func SharedColor(color Color, owner, other int64) Violation {
	return Violation{
		Kind:    ViolationDuplicateColor,
		Artists: []int64{owner, other},
		Color:   color,
		Message: fmt.Sprintf("artist %d uses color %s, which is also used by artist %d", other, color, owner),
	}
}

// CountMismatch reports the wrong number of artists for a class. Pass
// ClassUnknown when the expectation covers the whole population.
func CountMismatch(class ArtistClass, expected, actual int64) Violation {
	var msg string
	if class == ClassUnknown {
		msg = fmt.Sprintf("expected %d artists, found %d", expected, actual)
	} else {
		msg = fmt.Sprintf("expected %d %s artists, found %d", expected, class, actual)
	}
	return Violation{
		Kind:     ViolationArtistCount,
		Class:    class,
		Expected: expected,
		Actual:   actual,
		Message:  msg,
	}
}

// RosterGap reports a roster id that never appears in the log.
func RosterGap(artist int64) Violation {
	return Violation{
		Kind:    ViolationMissingArtist,
		Artists: []int64{artist},
		Message: fmt.Sprintf("artist %d never appears in the log", artist),
	}
}

// TooFewPixels reports an artist that drew fewer distinct cells than the
// minimum. Repaints of the same cell do not count twice.
func TooFewPixels(artist, drew, min int64) Violation {
	return Violation{
		Kind:     ViolationNoPixels,
		Artists:  []int64{artist},
		Expected: min,
		Actual:   drew,
		Message:  fmt.Sprintf("artist %d drew %d pixels; should draw at least %d", artist, drew, min),
	}
}

// PixelCountOff reports an exact pixel count mismatch, either against a
// configured per-artist quota or against the artist's own done claim.
func PixelCountOff(artist, expected, actual int64, claimed bool) Violation {
	var msg string
	if claimed {
		msg = fmt.Sprintf("artist %d reported %d pixels done but the log shows %d", artist, expected, actual)
	} else {
		msg = fmt.Sprintf("artist %d drew %d pixels; expected exactly %d", artist, actual, expected)
	}
	return Violation{
		Kind:     ViolationPixelCount,
		Artists:  []int64{artist},
		Expected: expected,
		Actual:   actual,
		Message:  msg,
	}
}

// SharedSeed reports a seed token used by more than one artist.
func SharedSeed(seed string, owner, other int64) Violation {
	return Violation{
		Kind:    ViolationDuplicateSeed,
		Artists: []int64{owner, other},
		Seed:    seed,
		Message: fmt.Sprintf("artist %d uses seed %q, which is also used by artist %d", other, seed, owner),
	}
}

// SamePattern reports two artists whose drawn shapes are identical up to
// translation.
func SamePattern(a, b int64) Violation {
	if b < a {
		a, b = b, a
	}
	return Violation{
		Kind:    ViolationDuplicatePattern,
		Artists: []int64{a, b},
		Message: fmt.Sprintf("artists %d and %d drew the same pattern", a, b),
	}
}

// Island reports a pixel with no same-artist neighbor.
func Island(artist int64, cell Point) Violation {
	return Violation{
		Kind:    ViolationIslandPixel,
		Artists: []int64{artist},
		Cell:    cell,
		Message: fmt.Sprintf("artist %d has an isolated pixel at %s", artist, cell),
	}
}

// SortViolations orders violations for stable reporting: source line
// first, then primary artist, then cell, then kind. Replay output is
// already in line order; aggregate checks rely on the artist and cell
// tie-breaks.
func SortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		ai, bi := primaryArtist(a), primaryArtist(b)
		if ai != bi {
			return ai < bi
		}
		if a.Cell != b.Cell {
			return a.Cell.Less(b.Cell)
		}
		return a.Kind < b.Kind
	})
}

func primaryArtist(v Violation) int64 {
	if len(v.Artists) == 0 {
		return -1
	}
	return v.Artists[0]
}
