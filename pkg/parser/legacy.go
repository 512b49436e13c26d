package parser

import (
	"bytes"

	"github.com/canvascheck/canvascheck/internal/model"
)

// Legacy dialect layout, one draw record per line:
//
//	<artist>, <x>, <y>, <r>, <g>, <b>
//
// The legacy logger separated fields with a comma and a single space.
// Splitting on single spaces and stripping trailing commas per field
// reproduces its tokenization exactly: runs of spaces produce empty
// fields and fail the six-field requirement, as they did originally.
func decodeLegacy(line []byte, lineNum int) (model.Event, *ParseError) {
	parts := bytes.Split(line, []byte{' '})
	for i := range parts {
		parts[i] = trimTrailingCommas(parts[i])
	}
	if len(parts) != 6 {
		return model.Event{}, malformed(lineNum, line, "")
	}

	artist, ok := parseArtistID(parts[0])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "artist")
	}
	x, ok := parseInt(parts[1])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "x")
	}
	y, ok := parseInt(parts[2])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "y")
	}
	r, ok := parseUint8(parts[3])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "red")
	}
	g, ok := parseUint8(parts[4])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "green")
	}
	b, ok := parseUint8(parts[5])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "blue")
	}

	return model.Event{
		Kind:   model.KindDraw,
		Artist: artist,
		Line:   lineNum,
		Pos:    model.Point{X: int(x), Y: int(y)},
		Color:  model.Color{R: r, G: g, B: b},
	}, nil
}

// trimTrailingCommas strips the comma separators the legacy logger
// appended to every field but the last.
func trimTrailingCommas(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == ',' {
		b = b[:len(b)-1]
	}
	return b
}
