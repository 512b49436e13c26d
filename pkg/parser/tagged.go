package parser

import (
	"bytes"

	"github.com/canvascheck/canvascheck/internal/model"
)

// Tagged dialect layouts:
//
//	spawn <artist> <class> <r,g,b> <seed>
//	draw  <artist> <x> <y> <r,g,b>
//	done  <artist> [<pixels>]
func decodeTagged(line []byte, lineNum int) (model.Event, *ParseError) {
	fields := bytes.Fields(line)

	kind := model.ParseEventKind(string(fields[0]))
	if kind == model.KindUnknown {
		return model.Event{}, unknownKind(lineNum, line, fields[0])
	}

	switch kind {
	case model.KindSpawn:
		return decodeSpawn(fields, line, lineNum)
	case model.KindDraw:
		return decodeDraw(fields, line, lineNum)
	default:
		return decodeDone(fields, line, lineNum)
	}
}

func decodeSpawn(fields [][]byte, line []byte, lineNum int) (model.Event, *ParseError) {
	if len(fields) != 5 {
		return model.Event{}, malformed(lineNum, line, "")
	}

	artist, ok := parseArtistID(fields[1])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "artist")
	}
	class := model.ParseArtistClass(string(fields[2]))
	if class == model.ClassUnknown {
		return model.Event{}, malformed(lineNum, line, "class")
	}
	color, ok := parseColor(fields[3])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "color")
	}

	return model.Event{
		Kind:   model.KindSpawn,
		Artist: artist,
		Line:   lineNum,
		Color:  color,
		Class:  class,
		Seed:   string(fields[4]),
	}, nil
}

func decodeDraw(fields [][]byte, line []byte, lineNum int) (model.Event, *ParseError) {
	if len(fields) != 5 {
		return model.Event{}, malformed(lineNum, line, "")
	}

	artist, ok := parseArtistID(fields[1])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "artist")
	}
	x, ok := parseInt(fields[2])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "x")
	}
	y, ok := parseInt(fields[3])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "y")
	}
	color, ok := parseColor(fields[4])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "color")
	}

	return model.Event{
		Kind:   model.KindDraw,
		Artist: artist,
		Line:   lineNum,
		Pos:    model.Point{X: int(x), Y: int(y)},
		Color:  color,
	}, nil
}

func decodeDone(fields [][]byte, line []byte, lineNum int) (model.Event, *ParseError) {
	if len(fields) != 2 && len(fields) != 3 {
		return model.Event{}, malformed(lineNum, line, "")
	}

	artist, ok := parseArtistID(fields[1])
	if !ok {
		return model.Event{}, malformed(lineNum, line, "artist")
	}

	claimed := int64(-1)
	if len(fields) == 3 {
		v, ok := parseInt(fields[2])
		if !ok || v < 0 {
			return model.Event{}, malformed(lineNum, line, "pixels")
		}
		claimed = v
	}

	return model.Event{
		Kind:    model.KindDone,
		Artist:  artist,
		Line:    lineNum,
		Claimed: claimed,
	}, nil
}
