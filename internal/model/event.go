// Package model defines core data structures for canvascheck.
package model

import "fmt"

// EventKind identifies the record type of a parsed log line.
type EventKind uint8

const (
	KindUnknown EventKind = iota
	KindSpawn
	KindDraw
	KindDone
)

// String returns the kind token as it appears in tagged logs.
func (k EventKind) String() string {
	switch k {
	case KindSpawn:
		return "spawn"
	case KindDraw:
		return "draw"
	case KindDone:
		return "done"
	default:
		return "unknown"
	}
}

// ParseEventKind parses a kind token.
func ParseEventKind(s string) EventKind {
	switch s {
	case "spawn":
		return KindSpawn
	case "draw":
		return KindDraw
	case "done":
		return KindDone
	default:
		return KindUnknown
	}
}

// ArtistClass distinguishes the two artist populations of the drawing
// program: the main artists started at launch and the rookies recruited
// while the program runs.
type ArtistClass uint8

const (
	ClassUnknown ArtistClass = iota
	ClassMain
	ClassRookie
)

// String returns the class name.
func (c ArtistClass) String() string {
	switch c {
	case ClassMain:
		return "main"
	case ClassRookie:
		return "rookie"
	default:
		return "unknown"
	}
}

// ParseArtistClass parses a class token.
func ParseArtistClass(s string) ArtistClass {
	switch s {
	case "main", "MAIN":
		return ClassMain
	case "rookie", "ROOKIE":
		return ClassRookie
	default:
		return ClassUnknown
	}
}

// Color is one RGB triple as logged by the drawing program.
type Color struct {
	R, G, B uint8
}

// String formats the color the way the drawing program prints it.
func (c Color) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// Point is one canvas cell coordinate. Coordinates may be negative; the
// analyzer treats the canvas as unbounded.
type Point struct {
	X, Y int
}

// String formats the point as a coordinate pair.
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Less orders points by x, then y. The y tie-break matters: every place
// that picks a maximum or sorts cells must agree on one total order or
// reports stop being reproducible.
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

// Event represents a single decoded log record. Fields beyond Kind,
// Artist and Line are only meaningful for the kinds noted on each; the
// parser leaves the rest at their zero values.
type Event struct {
	// Kind is the record type.
	Kind EventKind

	// Artist is the id the drawing thread logged for itself.
	Artist int64

	// Line is the 1-based source line the event was decoded from.
	Line int

	// Pos is the target cell (draw).
	Pos Point

	// Color is the paint color (spawn, draw).
	Color Color

	// Class is the artist population (spawn).
	Class ArtistClass

	// Seed is the artist's pattern seed token (spawn).
	Seed string

	// Claimed is the pixel count the artist reported for itself (done),
	// or -1 when the record carries none.
	Claimed int64
}
