package parser

import (
	"bytes"

	"github.com/canvascheck/canvascheck/internal/model"
)

// parseInt parses a decimal integer with an optional leading minus,
// without going through a string conversion.
func parseInt(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}

	neg := false
	i := 0
	if b[0] == '-' {
		if len(b) == 1 {
			return 0, false
		}
		neg = true
		i = 1
	}

	var v int64
	for ; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int64(c-'0')
		if v < 0 {
			// Overflow.
			return 0, false
		}
	}

	if neg {
		v = -v
	}
	return v, true
}

// parseArtistID parses a non-negative artist id.
func parseArtistID(b []byte) (int64, bool) {
	v, ok := parseInt(b)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

// parseUint8 parses one 0-255 color component.
func parseUint8(b []byte) (uint8, bool) {
	v, ok := parseInt(b)
	if !ok || v < 0 || v > 255 {
		return 0, false
	}
	return uint8(v), true
}

// parseColor parses an r,g,b triple with no embedded spaces.
func parseColor(b []byte) (model.Color, bool) {
	parts := bytes.Split(b, []byte{','})
	if len(parts) != 3 {
		return model.Color{}, false
	}

	r, ok := parseUint8(parts[0])
	if !ok {
		return model.Color{}, false
	}
	g, ok := parseUint8(parts[1])
	if !ok {
		return model.Color{}, false
	}
	bl, ok := parseUint8(parts[2])
	if !ok {
		return model.Color{}, false
	}

	return model.Color{R: r, G: g, B: bl}, true
}
