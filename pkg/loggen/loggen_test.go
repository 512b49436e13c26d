package loggen

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/canvascheck/canvascheck/internal/model"
	"github.com/canvascheck/canvascheck/pkg/analyze"
	"github.com/canvascheck/canvascheck/pkg/parser"
	"github.com/canvascheck/canvascheck/pkg/report"
)

func smallGen(seed int64) *Generator {
	g := New(seed)
	g.MainArtists = 2
	g.RookieArtists = 3
	g.Width = 16
	g.Height = 32
	g.PixelsPerArtist = 4
	return g
}

func analyzeLog(t *testing.T, data []byte, opts analyze.Options) *analyze.Result {
	t.Helper()
	res, err := analyze.New(opts).Run(context.Background(), "generated", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestGenerateCleanTagged(t *testing.T) {
	g := smallGen(7)

	var calls, lastDone, lastTotal int
	g.Progress = func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	}

	var buf bytes.Buffer
	st, err := g.Generate(&buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if st.Spawns != 5 || st.Draws != 20 || st.Dones != 5 {
		t.Errorf("got %d spawns, %d draws, %d dones, want 5, 20, 5", st.Spawns, st.Draws, st.Dones)
	}
	if st.Lines != 32 {
		t.Errorf("Lines = %d, want 32", st.Lines)
	}
	if st.Cells != 20 {
		t.Errorf("Cells = %d, want 20", st.Cells)
	}
	if got := bytes.Count(buf.Bytes(), []byte("\n")); got != st.Lines {
		t.Errorf("wrote %d lines, stats say %d", got, st.Lines)
	}
	if calls != st.Lines || lastDone != st.Lines || lastTotal != st.Lines {
		t.Errorf("progress ended at %d/%d after %d calls, want %d/%d after %d",
			lastDone, lastTotal, calls, st.Lines, st.Lines, st.Lines)
	}

	res := analyzeLog(t, buf.Bytes(), analyze.Options{
		ClassScheme:     "tag",
		MainArtists:     2,
		RookieArtists:   3,
		MinPixels:       1,
		PixelsPerArtist: 4,
		StrictPixels:    true,
	})
	if !res.Report.Passed {
		t.Fatalf("clean log did not pass: %+v", res.Report.Checks)
	}
	if len(res.Report.ParseErrors) != 0 {
		t.Errorf("clean log produced %d parse errors", len(res.Report.ParseErrors))
	}
}

func TestGenerateDefaultScale(t *testing.T) {
	// Stock generator settings: 4 mains, 50 rookies, 16 pixels each.
	g := New(11)

	var buf bytes.Buffer
	st, err := g.Generate(&buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if st.Spawns != 54 || st.Draws != 864 || st.Dones != 54 {
		t.Errorf("got %d spawns, %d draws, %d dones, want 54, 864, 54", st.Spawns, st.Draws, st.Dones)
	}
	if st.Cells != 864 {
		t.Errorf("Cells = %d, want 864", st.Cells)
	}

	res := analyzeLog(t, buf.Bytes(), analyze.Options{
		ClassScheme:     "tag",
		MainArtists:     4,
		RookieArtists:   50,
		MinPixels:       1,
		PixelsPerArtist: 16,
		StrictPixels:    true,
	})
	if !res.Report.Passed {
		t.Fatalf("default-scale clean log did not pass: %+v", res.Report.Checks)
	}
	if res.Report.Summary.Artists != 54 {
		t.Errorf("Summary.Artists = %d, want 54", res.Report.Summary.Artists)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	gen := func(seed int64) []byte {
		g := smallGen(seed)
		var buf bytes.Buffer
		if _, err := g.Generate(&buf); err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return buf.Bytes()
	}

	if !bytes.Equal(gen(42), gen(42)) {
		t.Error("same seed produced different logs")
	}
	if bytes.Equal(gen(42), gen(43)) {
		t.Error("different seeds produced identical logs")
	}
}

func TestGenerateLegacyClean(t *testing.T) {
	g := smallGen(11)
	g.Dialect = parser.DialectLegacy

	var buf bytes.Buffer
	st, err := g.Generate(&buf)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if st.Spawns != 0 || st.Dones != 0 {
		t.Errorf("legacy log has %d spawns, %d dones, want none", st.Spawns, st.Dones)
	}
	if st.Draws != 20 || st.Lines != 22 {
		t.Errorf("got %d draws over %d lines, want 20 over 22", st.Draws, st.Lines)
	}

	res := analyzeLog(t, buf.Bytes(), analyze.Options{
		ClassScheme:   "threshold",
		MainBelow:     2,
		MainArtists:   2,
		RookieArtists: 3,
		MinPixels:     1,
	})
	if !res.Report.Passed {
		t.Fatalf("clean legacy log did not pass: %+v", res.Report.Checks)
	}
	if cr, ok := res.Report.Check("seeds"); !ok || cr.Status != report.StatusSkipped {
		t.Errorf("seeds check = %+v, want skipped for a seedless log", cr)
	}
}

func TestDefects(t *testing.T) {
	tests := []struct {
		name   string
		plant  func(g *Generator)
		check  string
		kind   model.ViolationKind
		legacy bool
	}{
		{
			name:  "overlap",
			plant: func(g *Generator) { g.Overlap = true },
			check: "overlap",
			kind:  model.ViolationOverlapDraw,
		},
		{
			name:   "overlap legacy",
			plant:  func(g *Generator) { g.Overlap = true },
			check:  "overlap",
			kind:   model.ViolationOverlapDraw,
			legacy: true,
		},
		{
			name:  "shared color",
			plant: func(g *Generator) { g.SharedColor = true },
			check: "colors",
			kind:  model.ViolationDuplicateColor,
		},
		{
			name:   "shared color legacy",
			plant:  func(g *Generator) { g.SharedColor = true },
			check:  "colors",
			kind:   model.ViolationDuplicateColor,
			legacy: true,
		},
		{
			name:  "shared seed",
			plant: func(g *Generator) { g.SharedSeed = true },
			check: "seeds",
			kind:  model.ViolationDuplicateSeed,
		},
		{
			name:  "redefine",
			plant: func(g *Generator) { g.Redefine = true },
			check: "structure",
			kind:  model.ViolationArtistRedefined,
		},
		{
			name:  "unknown artist",
			plant: func(g *Generator) { g.UnknownArtist = true },
			check: "structure",
			kind:  model.ViolationUnknownArtist,
		},
		{
			name:  "short claim",
			plant: func(g *Generator) { g.ShortClaim = true },
			check: "structure",
			kind:  model.ViolationPixelCount,
		},
		{
			name:  "same pattern",
			plant: func(g *Generator) { g.SamePattern = true },
			check: "patterns",
			kind:  model.ViolationDuplicatePattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := smallGen(99)
			if tt.legacy {
				g.Dialect = parser.DialectLegacy
			}
			tt.plant(g)

			var buf bytes.Buffer
			if _, err := g.Generate(&buf); err != nil {
				t.Fatalf("Generate: %v", err)
			}

			opts := analyze.Options{
				ClassScheme:   "tag",
				MainArtists:   2,
				RookieArtists: 3,
				MinPixels:     1,
			}
			if tt.legacy {
				opts.ClassScheme = "threshold"
				opts.MainBelow = 2
			}
			res := analyzeLog(t, buf.Bytes(), opts)

			if res.Report.Passed {
				t.Fatal("planted defect went undetected")
			}
			cr, ok := res.Report.Check(tt.check)
			if !ok {
				t.Fatalf("report has no %q check", tt.check)
			}
			if cr.Status != report.StatusFail {
				t.Fatalf("%s check = %s, want fail", tt.check, cr.Status)
			}
			found := false
			for _, v := range cr.Violations {
				if v.Kind == tt.kind {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("%s violations %+v carry no %v", tt.check, cr.Violations, tt.kind)
			}
		})
	}
}

func TestMalformedLine(t *testing.T) {
	g := smallGen(5)
	g.Malformed = true

	var buf bytes.Buffer
	if _, err := g.Generate(&buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	res := analyzeLog(t, buf.Bytes(), analyze.Options{
		ClassScheme:   "tag",
		MainArtists:   2,
		RookieArtists: 3,
		MinPixels:     1,
	})
	if len(res.Report.ParseErrors) != 1 {
		t.Fatalf("got %d parse errors, want 1", len(res.Report.ParseErrors))
	}
	if res.Report.Passed {
		t.Error("log with a malformed line still passed")
	}
	if n := res.Report.ViolationCount(); n != 0 {
		t.Errorf("malformed line caused %d violations, want none", n)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(g *Generator)
	}{
		{"no artists", func(g *Generator) { g.MainArtists = 0; g.RookieArtists = 0 }},
		{"negative count", func(g *Generator) { g.RookieArtists = -1 }},
		{"narrow canvas", func(g *Generator) { g.Width = 1 }},
		{"no pixels", func(g *Generator) { g.PixelsPerArtist = 0 }},
		{"canvas too small", func(g *Generator) { g.Height = 4 }},
		{"overlap needs two", func(g *Generator) { g.MainArtists = 1; g.RookieArtists = 0; g.Overlap = true }},
		{"pattern needs two pixels", func(g *Generator) { g.PixelsPerArtist = 1; g.SamePattern = true }},
		{"bad dialect", func(g *Generator) { g.Dialect = parser.DialectUnknown }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := smallGen(1)
			tt.mod(g)
			if _, err := g.Generate(io.Discard); err == nil {
				t.Error("Generate accepted an invalid configuration")
			}
		})
	}
}

func TestOccupancy(t *testing.T) {
	occ := NewOccupancy(8)

	if !occ.Paint(model.Point{X: 2, Y: 1}, 0) {
		t.Error("first paint of a cell reported not fresh")
	}
	if occ.Paint(model.Point{X: 2, Y: 1}, 1) {
		t.Error("second paint of a cell reported fresh")
	}
	occ.Paint(model.Point{X: 3, Y: 1}, 1)

	if got := occ.Cells(0); got != 1 {
		t.Errorf("Cells(0) = %d, want 1", got)
	}
	if got := occ.Cells(1); got != 2 {
		t.Errorf("Cells(1) = %d, want 2", got)
	}
	if got := occ.PaintedCount(); got != 2 {
		t.Errorf("PaintedCount = %d, want 2", got)
	}
}
